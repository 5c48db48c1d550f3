package reminder

import (
	"fmt"
	"strings"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
)

const (
	displayDateFormat = "2 January 2006"
	finalDateGrace    = 14 // days past due before the stated final date
)

// Interpolation is the resolved value set for one invoice at one send
// instant. Values are computed fresh; nothing here is ever persisted.
type Interpolation struct {
	replacer *strings.Replacer
}

// NewInterpolation computes every recognized placeholder value from the
// invoice, its payments and the owning user. Unrecognized tokens in a
// template are left verbatim.
func NewInterpolation(invoice *model.Invoice, payments []*model.Payment, user *model.User) *Interpolation {
	var paidCents int64
	for _, p := range payments {
		paidCents += p.AmountCents
	}
	paid := float64(paidCents) / 100
	outstanding := invoice.Amount - paid

	senderName := ""
	if user != nil {
		senderName = user.SenderName
	}

	return &Interpolation{
		replacer: strings.NewReplacer(
			"{client_name}", invoice.ClientName,
			"{client_email}", invoice.ClientEmail,
			"{amount}", fmt.Sprintf("%.2f", invoice.Amount),
			"{due_date}", invoice.DueDate.Format(displayDateFormat),
			"{invoice_number}", InvoiceNumber(invoice),
			"{outstanding_amount}", fmt.Sprintf("%.2f", outstanding),
			"{paid_amount}", fmt.Sprintf("%.2f", paid),
			"{final_date}", invoice.DueDate.AddDate(0, 0, finalDateGrace).Format(displayDateFormat),
			"{sender_name}", senderName,
		),
	}
}

// Apply substitutes every recognized placeholder, globally and literally.
func (i *Interpolation) Apply(text string) string {
	return i.replacer.Replace(text)
}

// InvoiceNumber derives a short human-readable reference from the invoice id.
// Deterministic: the same invoice always renders the same number.
func InvoiceNumber(invoice *model.Invoice) string {
	id := invoice.ID.String()
	return "INV-" + strings.ToUpper(id[:8])
}

// HTMLBody converts the interpolated plain-text body for the HTML part:
// newlines become breaks and the tracking pixel is appended. No templating
// engine is involved, only this transform.
func HTMLBody(text, pixelURL string) string {
	html := strings.ReplaceAll(text, "\n", "<br/>")
	pixel := fmt.Sprintf(`<img src="%s" width="1" height="1" style="display:none;" alt="" />`, pixelURL)
	return fmt.Sprintf("<p>%s</p>%s", html, pixel)
}

// PixelURL builds the open-tracking pixel reference for a send token.
func PixelURL(baseURL, token string) string {
	return fmt.Sprintf("%s/track/open?rid=%s", strings.TrimRight(baseURL, "/"), token)
}
