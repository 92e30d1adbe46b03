// Package numbering renderiza números de documento a partir de la plantilla del tenant.
package numbering

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Tokens soportados en la plantilla.
const (
	TokenPrefix    = "PREFIX"
	TokenDate      = "DATE" // YYYYMMDD
	TokenYear      = "YEAR"
	TokenMonth     = "MONTH"
	TokenDay       = "DAY"
	TokenSequence  = "SEQUENCE"
	TokenSequence2 = "SEQUENCE2"
	TokenSequence3 = "SEQUENCE3"
	TokenSequence4 = "SEQUENCE4"
)

type segment struct {
	literal string
	token   string
}

// Pattern plantilla ya validada.
type Pattern struct {
	raw      string
	segments []segment
}

// Parse valida la plantilla. Falla con tokens desconocidos, llaves sin cerrar
// o si no hay token de secuencia (la plantilla nunca produciría un segundo número).
func Parse(raw string) (*Pattern, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("numbering: plantilla vacía")
	}
	p := &Pattern{raw: raw}
	hasSequence := false
	rest := raw
	for len(rest) > 0 {
		open := strings.IndexByte(rest, '{')
		closeIdx := strings.IndexByte(rest, '}')
		if open < 0 {
			if closeIdx >= 0 {
				return nil, fmt.Errorf("numbering: '}' sin abrir en %q", raw)
			}
			p.segments = append(p.segments, segment{literal: rest})
			break
		}
		if closeIdx >= 0 && closeIdx < open {
			return nil, fmt.Errorf("numbering: '}' sin abrir en %q", raw)
		}
		if open > 0 {
			p.segments = append(p.segments, segment{literal: rest[:open]})
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return nil, fmt.Errorf("numbering: '{' sin cerrar en %q", raw)
		}
		token := rest[open+1 : open+end]
		switch token {
		case TokenPrefix, TokenDate, TokenYear, TokenMonth, TokenDay:
		case TokenSequence, TokenSequence2, TokenSequence3, TokenSequence4:
			hasSequence = true
		default:
			return nil, fmt.Errorf("numbering: token desconocido {%s}", token)
		}
		p.segments = append(p.segments, segment{token: token})
		rest = rest[open+end+1:]
	}
	if !hasSequence {
		return nil, fmt.Errorf("numbering: la plantilla %q no tiene token de secuencia", raw)
	}
	return p, nil
}

// String devuelve la plantilla original.
func (p *Pattern) String() string { return p.raw }

// Render sustituye los tokens.
func (p *Pattern) Render(prefix string, seq int64, at time.Time) string {
	var b strings.Builder
	for _, s := range p.segments {
		if s.token == "" {
			b.WriteString(s.literal)
			continue
		}
		switch s.token {
		case TokenPrefix:
			b.WriteString(prefix)
		case TokenDate:
			b.WriteString(at.Format("20060102"))
		case TokenYear:
			b.WriteString(at.Format("2006"))
		case TokenMonth:
			b.WriteString(at.Format("01"))
		case TokenDay:
			b.WriteString(at.Format("02"))
		case TokenSequence:
			b.WriteString(strconv.FormatInt(seq, 10))
		case TokenSequence2:
			b.WriteString(pad(seq, 2))
		case TokenSequence3:
			b.WriteString(pad(seq, 3))
		case TokenSequence4:
			b.WriteString(pad(seq, 4))
		}
	}
	return b.String()
}

func pad(seq int64, width int) string {
	return fmt.Sprintf("%0*d", width, seq)
}

// DailyPrefix parte fija del formato por defecto para el día: PREFIX-YYYYMMDD-.
func DailyPrefix(prefix string, at time.Time) string {
	return prefix + "-" + at.Format("20060102") + "-"
}

// FallbackNumber formato por defecto PREFIX-YYYYMMDD-NNNN.
func FallbackNumber(prefix string, seq int64, at time.Time) string {
	return DailyPrefix(prefix, at) + pad(seq, 4)
}

// ParseFallbackSequence extrae la secuencia de un número con formato por defecto.
// Devuelve 0 si number no pertenece al día/prefijo dado.
func ParseFallbackSequence(number, prefix string, at time.Time) int64 {
	head := DailyPrefix(prefix, at)
	if !strings.HasPrefix(number, head) {
		return 0
	}
	n, err := strconv.ParseInt(strings.TrimPrefix(number, head), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
