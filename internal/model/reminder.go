package model

import (
	"time"

	"github.com/google/uuid"
)

// ReminderCategory denotes when relative to the due date a notice is sent.
type ReminderCategory string

const (
	CategoryBeforeDue      ReminderCategory = "before_due"
	CategoryOnDue          ReminderCategory = "on_due"
	CategoryAfterDue       ReminderCategory = "after_due"
	CategoryPartialPayment ReminderCategory = "partial_payment"
)

type ReminderStatus string

const (
	ReminderStatusSent   ReminderStatus = "sent"
	ReminderStatusFailed ReminderStatus = "failed"
)

type ReminderSource string

const (
	ReminderSourceAutomated ReminderSource = "automated"
	ReminderSourceManual    ReminderSource = "manual"
)

// Reminder is one row per attempted send. SentOn is the calendar-day bucket
// backing the per-day idempotency constraint (invoice_id, category, sent_on).
// The tracking token is issued before dispatch and never changes.
type Reminder struct {
	ID            uuid.UUID        `db:"id" json:"id"`
	InvoiceID     uuid.UUID        `db:"invoice_id" json:"invoice_id"`
	Category      ReminderCategory `db:"category" json:"category"`
	SentOn        time.Time        `db:"sent_on" json:"sent_on"`
	SentAt        time.Time        `db:"sent_at" json:"sent_at"`
	Status        ReminderStatus   `db:"status" json:"status"`
	ErrorMessage  *string          `db:"error_message" json:"error_message,omitempty"`
	TrackingToken uuid.UUID        `db:"tracking_token" json:"tracking_token"`
	FirstOpenedAt *time.Time       `db:"first_opened_at" json:"first_opened_at,omitempty"`
	OpenCount     int              `db:"open_count" json:"open_count"`
	Source        ReminderSource   `db:"source" json:"source"`
	TemplateID    *uuid.UUID       `db:"template_id" json:"template_id,omitempty"`
	Tone          Tone             `db:"tone" json:"tone"`
	CreatedAt     time.Time        `db:"created_at" json:"created_at"`
}

// RunStats are the aggregate counts returned to the scheduler trigger.
type RunStats struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Failed    int `json:"failed"`
}

type ResendReminderRequest struct {
	InvoiceID uuid.UUID        `json:"invoice_id" binding:"required"`
	Category  ReminderCategory `json:"category" binding:"required,oneof=before_due on_due after_due partial_payment"`
}
