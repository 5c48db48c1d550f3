package reminder

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
)

func fixtureInvoice() *model.Invoice {
	return &model.Invoice{
		ID:          uuid.MustParse("a1b2c3d4-0000-4000-8000-000000000001"),
		UserID:      uuid.New(),
		ClientName:  "Acme Ltd",
		ClientEmail: "billing@acme.test",
		Amount:      1200.00,
		DueDate:     time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC),
	}
}

func TestInterpolationAppliesAllTokens(t *testing.T) {
	invoice := fixtureInvoice()
	payments := []*model.Payment{{InvoiceID: invoice.ID, AmountCents: 40000}}
	user := &model.User{SenderName: "Sarah"}

	template := "name={client_name} email={client_email} amount={amount} due={due_date} " +
		"ref={invoice_number} outstanding={outstanding_amount} paid={paid_amount} " +
		"final={final_date} from={sender_name}"

	got := NewInterpolation(invoice, payments, user).Apply(template)

	assert.Contains(t, got, "name=Acme Ltd")
	assert.Contains(t, got, "email=billing@acme.test")
	assert.Contains(t, got, "amount=1200.00")
	assert.Contains(t, got, "due=15 March 2024")
	assert.Contains(t, got, "ref=INV-A1B2C3D4")
	assert.Contains(t, got, "outstanding=800.00")
	assert.Contains(t, got, "paid=400.00")
	assert.Contains(t, got, "final=29 March 2024")
	assert.Contains(t, got, "from=Sarah")

	// No recognized token survives interpolation.
	for _, token := range []string{
		"{client_name}", "{client_email}", "{amount}", "{due_date}",
		"{invoice_number}", "{outstanding_amount}", "{paid_amount}",
		"{final_date}", "{sender_name}",
	} {
		assert.NotContains(t, got, token)
	}
}

func TestInterpolationReplacesGlobally(t *testing.T) {
	invoice := fixtureInvoice()
	got := NewInterpolation(invoice, nil, nil).Apply("{client_name} and again {client_name}")
	assert.Equal(t, "Acme Ltd and again Acme Ltd", got)
}

func TestInterpolationLeavesUnknownTokens(t *testing.T) {
	invoice := fixtureInvoice()
	got := NewInterpolation(invoice, nil, nil).Apply("{mystery_token} stays")
	assert.Equal(t, "{mystery_token} stays", got)
}

func TestInterpolationWithoutUser(t *testing.T) {
	invoice := fixtureInvoice()
	got := NewInterpolation(invoice, nil, nil).Apply("from {sender_name}.")
	assert.Equal(t, "from .", got)
}

func TestInvoiceNumberIsDeterministic(t *testing.T) {
	invoice := fixtureInvoice()
	assert.Equal(t, "INV-A1B2C3D4", InvoiceNumber(invoice))
	assert.Equal(t, InvoiceNumber(invoice), InvoiceNumber(invoice))
}

func TestHTMLBody(t *testing.T) {
	html := HTMLBody("line one\nline two", "http://app.test/track/open?rid=abc")

	assert.True(t, strings.HasPrefix(html, "<p>line one<br/>line two</p>"))
	assert.Contains(t, html, `src="http://app.test/track/open?rid=abc"`)
	assert.Contains(t, html, `width="1" height="1"`)
	assert.Contains(t, html, `style="display:none;"`)
}

func TestPixelURL(t *testing.T) {
	assert.Equal(t,
		"http://app.test/track/open?rid=tok",
		PixelURL("http://app.test/", "tok"),
	)
}
