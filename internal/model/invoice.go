package model

import (
	"time"

	"github.com/google/uuid"
)

type Invoice struct {
	ID          uuid.UUID `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	ClientName  string    `db:"client_name" json:"client_name"`
	ClientEmail string    `db:"client_email" json:"client_email"`
	Amount      float64   `db:"amount" json:"amount"`
	DueDate     time.Time `db:"due_date" json:"due_date"`
	IsPaid      bool      `db:"is_paid" json:"is_paid"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Payment amounts are stored in minor currency units to avoid
// floating point drift when summing.
type Payment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	InvoiceID   uuid.UUID `db:"invoice_id" json:"invoice_id"`
	AmountCents int64     `db:"amount_cents" json:"amount_cents"`
	PaidAt      time.Time `db:"paid_at" json:"paid_at"`
	Note        *string   `db:"note" json:"note,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Outstanding returns the amount still owed given the payments recorded
// against the invoice. Never persisted; recomputed at every read.
func (i *Invoice) Outstanding(payments []*Payment) float64 {
	var paidCents int64
	for _, p := range payments {
		paidCents += p.AmountCents
	}
	return i.Amount - float64(paidCents)/100
}

// Settled reports whether the invoice should be treated as paid: either
// flagged explicitly or fully covered by payments.
func (i *Invoice) Settled(payments []*Payment) bool {
	return i.IsPaid || i.Outstanding(payments) <= 0
}

type CreateInvoiceRequest struct {
	ClientName  string  `json:"client_name" binding:"required,max=200"`
	ClientEmail string  `json:"client_email" binding:"required,email"`
	Amount      float64 `json:"amount" binding:"required,gt=0"`
	DueDate     string  `json:"due_date" binding:"required,datetime=2006-01-02"`
}

type UpdateInvoiceRequest struct {
	ClientName  *string  `json:"client_name"`
	ClientEmail *string  `json:"client_email" binding:"omitempty,email"`
	Amount      *float64 `json:"amount" binding:"omitempty,gt=0"`
	DueDate     *string  `json:"due_date" binding:"omitempty,datetime=2006-01-02"`
	IsPaid      *bool    `json:"is_paid"`
}

type CreatePaymentRequest struct {
	AmountCents int64   `json:"amount_cents" binding:"required,gt=0"`
	PaidAt      string  `json:"paid_at" binding:"required,datetime=2006-01-02"`
	Note        *string `json:"note" binding:"omitempty,max=500"`
}
