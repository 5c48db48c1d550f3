package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
)

// ErrDuplicateReminder is returned when a reminder for the same
// invoice/category/day already exists. The unique constraint on
// (invoice_id, category, sent_on) makes the insert the idempotency check.
var ErrDuplicateReminder = errors.New("reminder already recorded for this invoice, category and day")

// ErrNotFound is returned for single-row lookups that match nothing.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	UserRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *model.Invoice) error
		Get(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
		GetForUser(ctx context.Context, id, userID uuid.UUID) (*model.Invoice, error)
		Update(ctx context.Context, invoice *model.Invoice) error
		Delete(ctx context.Context, id, userID uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error)
		ListUnpaid(ctx context.Context) ([]*model.Invoice, error)
	}

	PaymentRepository interface {
		Create(ctx context.Context, payment *model.Payment) error
		ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*model.Payment, error)
	}

	TemplateRepository interface {
		Create(ctx context.Context, template *model.Template, version *model.TemplateVersion) error
		Get(ctx context.Context, id uuid.UUID) (*model.Template, error)
		Update(ctx context.Context, template *model.Template) error
		Delete(ctx context.Context, id, userID uuid.UUID) error
		List(ctx context.Context, userID uuid.UUID) ([]*model.Template, error)

		// Resolver lookups. Each returns ErrNotFound rather than failing hard;
		// the resolver degrades tier by tier.
		GetByCategory(ctx context.Context, userID uuid.UUID, category model.ReminderCategory) (*model.Template, error)
		GetByToneUnbound(ctx context.Context, userID uuid.UUID, tone model.Tone) (*model.Template, error)
		GetSystemBySlug(ctx context.Context, slug string) (*model.Template, error)
		GetActiveVersion(ctx context.Context, templateID uuid.UUID) (*model.TemplateVersion, error)

		// AssignCategory binds a template to a workflow category, clearing the
		// binding from any other template of the same user in one transaction.
		AssignCategory(ctx context.Context, templateID, userID uuid.UUID, category *model.ReminderCategory) error

		ListVersions(ctx context.Context, templateID uuid.UUID) ([]*model.TemplateVersion, error)
		CreateVersion(ctx context.Context, version *model.TemplateVersion) error
		// ActivateVersion deactivates all sibling versions and activates the
		// target atomically.
		ActivateVersion(ctx context.Context, templateID, versionID uuid.UUID) error
	}

	ReminderRepository interface {
		// Create inserts a send record; returns ErrDuplicateReminder when the
		// per-day uniqueness constraint rejects it.
		Create(ctx context.Context, reminder *model.Reminder) error
		ListForInvoice(ctx context.Context, invoiceID uuid.UUID) ([]*model.Reminder, error)
		// SentCategoriesOn reports which categories already have a reminder for
		// the invoice on the given calendar day.
		SentCategoriesOn(ctx context.Context, invoiceID uuid.UUID, day time.Time) ([]model.ReminderCategory, error)
		// RecordOpen increments open_count and sets first_opened_at if unset,
		// in a single update. Returns the number of rows matched.
		RecordOpen(ctx context.Context, token uuid.UUID, openedAt time.Time) (int64, error)
	}
)
