package jwt_test

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/pos-ledger/pkg/jwt"
)

var cashier = pkgjwt.Identity{UserID: "user-1", TenantID: "tenant-1", Role: "cashier"}

func TestSignVerify(t *testing.T) {
	tok, err := pkgjwt.Sign("secret", cashier, "test", 5*time.Minute)
	require.NoError(t, err)

	id, err := pkgjwt.Verify("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, cashier, id)
}

func TestVerify_FirmaIncorrecta(t *testing.T) {
	tok, err := pkgjwt.Sign("secret", cashier, "test", 5*time.Minute)
	require.NoError(t, err)

	_, err = pkgjwt.Verify("otro-secret", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_Expirado(t *testing.T) {
	tok, err := pkgjwt.Sign("secret", cashier, "test", -time.Minute)
	require.NoError(t, err)

	_, err = pkgjwt.Verify("secret", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
	assert.ErrorIs(t, err, gojwt.ErrTokenExpired)
}

func TestVerify_SinExpiracion(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, gojwt.MapClaims{
		"user_id": "user-1", "tenant_id": "tenant-1", "role": "owner",
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = pkgjwt.Verify("secret", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestVerify_OtroAlgoritmo(t *testing.T) {
	tok, err := gojwt.NewWithClaims(gojwt.SigningMethodHS512, gojwt.MapClaims{
		"user_id": "user-1", "tenant_id": "tenant-1", "role": "owner",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = pkgjwt.Verify("secret", tok)
	assert.ErrorIs(t, err, pkgjwt.ErrInvalidToken)
}

func TestSign_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Sign("", cashier, "test", time.Minute)
	assert.ErrorIs(t, err, pkgjwt.ErrEmptySecret)
}
