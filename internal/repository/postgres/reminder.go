package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

const pqUniqueViolation = "23505"

type reminderRepository struct {
	db *sqlx.DB
}

func NewReminderRepository(db *sqlx.DB) repository.ReminderRepository {
	return &reminderRepository{db: db}
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	query := `
		INSERT INTO reminders (
			id, invoice_id, category, sent_on, sent_at, status, error_message,
			tracking_token, open_count, source, template_id, tone, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	reminder.ID = uuid.New()
	reminder.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		reminder.ID,
		reminder.InvoiceID,
		reminder.Category,
		reminder.SentOn,
		reminder.SentAt,
		reminder.Status,
		reminder.ErrorMessage,
		reminder.TrackingToken,
		reminder.OpenCount,
		reminder.Source,
		reminder.TemplateID,
		reminder.Tone,
		reminder.CreatedAt,
	)
	if err != nil {
		// The unique constraint on (invoice_id, category, sent_on) is the
		// idempotency check; a violation means another run got there first.
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repository.ErrDuplicateReminder
		}
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

func (r *reminderRepository) ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*model.Reminder, error) {
	query := `
		SELECT id, invoice_id, category, sent_on, sent_at, status, error_message,
			   tracking_token, first_opened_at, open_count, source, template_id,
			   tone, created_at
		FROM reminders
		WHERE invoice_id = $1
		ORDER BY sent_at DESC
	`
	var reminders []*model.Reminder
	err := r.db.SelectContext(ctx, &reminders, query, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (r *reminderRepository) SentCategoriesOn(ctx context.Context, invoiceID uuid.UUID, day time.Time) ([]model.ReminderCategory, error) {
	query := `
		SELECT DISTINCT category
		FROM reminders
		WHERE invoice_id = $1 AND sent_on = $2
	`
	var categories []model.ReminderCategory
	err := r.db.SelectContext(ctx, &categories, query, invoiceID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to list sent categories: %w", err)
	}
	return categories, nil
}

func (r *reminderRepository) RecordOpen(ctx context.Context, token uuid.UUID, openedAt time.Time) (int64, error) {
	// Single update so two near-simultaneous opens cannot both claim the
	// first-open timestamp or lose an increment.
	query := `
		UPDATE reminders
		SET open_count = open_count + 1,
			first_opened_at = COALESCE(first_opened_at, $2)
		WHERE tracking_token = $1
	`
	result, err := r.db.ExecContext(ctx, query, token, openedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to record open: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
