package dto_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/application/dto"
	"github.com/jhoicas/pos-ledger/internal/domain"
)

func TestValidate_CampoConNombreJSON(t *testing.T) {
	err := dto.Validate(dto.DocumentRequest{Lines: []dto.LineRequest{{Quantity: decimal.NewFromInt(1)}}})
	require.Error(t, err)
	var ve *domain.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "lines[0].product_id", ve.Field)
	assert.Equal(t, "required", ve.Reason)
}

func TestValidate_Casos(t *testing.T) {
	ok := []dto.LineRequest{{ProductID: "p", Quantity: decimal.NewFromInt(1)}}
	cases := []struct {
		name  string
		req   any
		field string
	}{
		{"sin líneas", dto.DocumentRequest{}, "lines"},
		{"modo de pago", dto.DocumentRequest{PaymentMode: "trueque", Lines: ok}, "payment_mode"},
		{"estado", dto.DocumentRequest{Status: "cancelled", Lines: ok}, "status"},
		{"edición sin motivo", dto.EditDocumentRequest{DocumentRequest: dto.DocumentRequest{Lines: ok}}, "reason"},
		{"anulación sin motivo", dto.CancelRequest{}, "reason"},
		{"devolución sin line_id", dto.ReturnRequest{Lines: []dto.ReturnLineRequest{{Quantity: decimal.NewFromInt(1)}}}, "lines[0].line_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := dto.Validate(tc.req)
			require.ErrorIs(t, err, domain.ErrInvalidInput)
			var ve *domain.ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tc.field, ve.Field)
		})
	}

	assert.NoError(t, dto.Validate(dto.DocumentRequest{PaymentMode: "upi", Lines: ok}))
	assert.NoError(t, dto.Validate(dto.LockRequest{Reason: "cierre de mes"}))
}
