package editing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/pos-ledger/internal/domain/entity"
)

// summarize describe los cambios de cabecera como "campo: antes -> después".
// Es informativo; el snapshot completo queda en original_data.
func summarize(before, after *entity.Document, linesBefore, linesAfter int) string {
	var parts []string
	add := func(field, a, b string) {
		if a != b {
			parts = append(parts, fmt.Sprintf("%s: %s -> %s", field, quote(a), quote(b)))
		}
	}
	add("party_name", before.PartyName, after.PartyName)
	add("party_contact", before.PartyContact, after.PartyContact)
	add("payment_mode", before.PaymentMode, after.PaymentMode)
	add("notes", before.Notes, after.Notes)
	add("status", before.Status, after.Status)
	add("tax_suppressed", strconv.FormatBool(before.TaxSuppressed), strconv.FormatBool(after.TaxSuppressed))
	if !before.DiscountAmount.Equal(after.DiscountAmount) {
		add("discount_amount", before.DiscountAmount.String(), after.DiscountAmount.String())
	}
	if linesBefore != linesAfter {
		add("lines", strconv.Itoa(linesBefore), strconv.Itoa(linesAfter))
	}
	if !before.TotalAmount.Equal(after.TotalAmount) {
		add("total_amount", before.TotalAmount.String(), after.TotalAmount.String())
	}
	if len(parts) == 0 {
		return "sin cambios de cabecera"
	}
	return strings.Join(parts, "; ")
}

func quote(s string) string {
	if s == "" {
		return `""`
	}
	return s
}
