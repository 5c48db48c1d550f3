package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, invoice_id, amount_cents, paid_at, note, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.InvoiceID,
		payment.AmountCents,
		payment.PaidAt,
		payment.Note,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*model.Payment, error) {
	query := `
		SELECT id, invoice_id, amount_cents, paid_at, note, created_at
		FROM payments
		WHERE invoice_id = $1
		ORDER BY paid_at ASC
	`
	var payments []*model.Payment
	err := r.db.SelectContext(ctx, &payments, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
