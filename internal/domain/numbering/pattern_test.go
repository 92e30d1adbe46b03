package numbering_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-ledger/internal/domain/numbering"
)

var day = time.Date(2026, 7, 4, 15, 30, 0, 0, time.UTC)

func TestRender_Tokens(t *testing.T) {
	cases := []struct {
		pattern string
		seq     int64
		want    string
	}{
		{"{PREFIX}-{DATE}-{SEQUENCE4}", 7, "INV-20260704-0007"},
		{"{PREFIX}/{YEAR}/{MONTH}/{DAY}/{SEQUENCE}", 12345, "INV/2026/07/04/12345"},
		{"{PREFIX}{SEQUENCE2}", 3, "INV03"},
		{"{PREFIX}{SEQUENCE3}", 3, "INV003"},
		{"F-{SEQUENCE4}", 123456, "F-123456"},
	}
	for _, tc := range cases {
		t.Run(tc.pattern, func(t *testing.T) {
			p, err := numbering.Parse(tc.pattern)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Render("INV", tc.seq, day))
		})
	}
}

func TestParse_PlantillasInvalidas(t *testing.T) {
	for _, raw := range []string{
		"",
		"{PREFIX}-{DATE}",           // sin secuencia
		"{PREFIX}-{SEQ}",            // token desconocido
		"{PREFIX}-{SEQUENCE4",       // llave sin cerrar
		"PREFIX}-{SEQUENCE4}",       // llave sin abrir
		"{PREFIX}-}{SEQUENCE}",      // cierre antes de apertura
	} {
		_, err := numbering.Parse(raw)
		assert.Error(t, err, "plantilla %q debe fallar", raw)
	}
}

func TestFallbackNumber_IdaYVuelta(t *testing.T) {
	n := numbering.FallbackNumber("PUR", 42, day)
	assert.Equal(t, "PUR-20260704-0042", n)
	assert.Equal(t, int64(42), numbering.ParseFallbackSequence(n, "PUR", day))
	assert.Equal(t, int64(0), numbering.ParseFallbackSequence(n, "INV", day))
	assert.Equal(t, int64(0), numbering.ParseFallbackSequence("PUR-20260704-abc", "PUR", day))
}
