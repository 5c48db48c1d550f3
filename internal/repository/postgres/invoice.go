package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

type invoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) repository.InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	query := `
		INSERT INTO invoices (
			id, user_id, client_name, client_email, amount,
			due_date, is_paid, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	invoice.ID = uuid.New()
	invoice.CreatedAt = time.Now()
	invoice.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		invoice.ID,
		invoice.UserID,
		invoice.ClientName,
		invoice.ClientEmail,
		invoice.Amount,
		invoice.DueDate,
		invoice.IsPaid,
		invoice.CreatedAt,
		invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create invoice: %w", err)
	}
	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, user_id, client_name, client_email, amount,
			   due_date, is_paid, created_at, updated_at
		FROM invoices
		WHERE id = $1
	`
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) GetForUser(ctx context.Context, id, userID uuid.UUID) (*model.Invoice, error) {
	query := `
		SELECT id, user_id, client_name, client_email, amount,
			   due_date, is_paid, created_at, updated_at
		FROM invoices
		WHERE id = $1 AND user_id = $2
	`
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, query, id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	return &invoice, nil
}

func (r *invoiceRepository) Update(ctx context.Context, invoice *model.Invoice) error {
	query := `
		UPDATE invoices
		SET client_name = $1, client_email = $2, amount = $3,
			due_date = $4, is_paid = $5, updated_at = $6
		WHERE id = $7
	`
	invoice.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		invoice.ClientName,
		invoice.ClientEmail,
		invoice.Amount,
		invoice.DueDate,
		invoice.IsPaid,
		invoice.UpdatedAt,
		invoice.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		DELETE FROM invoices
		WHERE id = $1 AND user_id = $2
	`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete invoice: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *invoiceRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error) {
	query := `
		SELECT id, user_id, client_name, client_email, amount,
			   due_date, is_paid, created_at, updated_at
		FROM invoices
		WHERE user_id = $1
		ORDER BY due_date ASC
	`
	var invoices []*model.Invoice
	err := r.db.SelectContext(ctx, &invoices, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

func (r *invoiceRepository) ListUnpaid(ctx context.Context) ([]*model.Invoice, error) {
	query := `
		SELECT id, user_id, client_name, client_email, amount,
			   due_date, is_paid, created_at, updated_at
		FROM invoices
		WHERE is_paid = false
		ORDER BY due_date ASC
	`
	var invoices []*model.Invoice
	err := r.db.SelectContext(ctx, &invoices, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid invoices: %w", err)
	}
	return invoices, nil
}
