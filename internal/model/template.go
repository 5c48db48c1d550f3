package model

import (
	"time"

	"github.com/google/uuid"
)

// Tone is the user-facing label on a template. Categories map onto tones
// for legacy template selection; see ToneForCategory.
type Tone string

const (
	ToneFriendly Tone = "friendly"
	ToneNeutral  Tone = "neutral"
	ToneFirm     Tone = "firm"
	ToneFinal    Tone = "final"
	TonePartial  Tone = "partial"
)

// Template is a user-defined (or shared system) email template. At most one
// of a user's templates may be bound to a given reminder category; assigning
// a category clears any prior holder first.
type Template struct {
	ID        uuid.UUID         `db:"id" json:"id"`
	UserID    *uuid.UUID        `db:"user_id" json:"user_id,omitempty"`
	Name      string            `db:"name" json:"name"`
	Tone      Tone              `db:"tone" json:"tone"`
	IsSystem  bool              `db:"is_system" json:"is_system"`
	Slug      *string           `db:"slug" json:"slug,omitempty"`
	Category  *ReminderCategory `db:"reminder_category" json:"reminder_category,omitempty"`
	CreatedAt time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt time.Time         `db:"updated_at" json:"updated_at"`
}

// TemplateVersion holds the literal subject/body text. At most one version
// per template is active; the resolver only ever reads the active one.
type TemplateVersion struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TemplateID uuid.UUID `db:"template_id" json:"template_id"`
	Subject    string    `db:"subject" json:"subject"`
	Body       string    `db:"body" json:"body"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// ToneForCategory maps a reminder category to the legacy tone used when no
// workflow binding exists.
func ToneForCategory(category ReminderCategory) Tone {
	switch category {
	case CategoryBeforeDue:
		return ToneFriendly
	case CategoryOnDue:
		return ToneNeutral
	case CategoryAfterDue:
		return ToneFirm
	case CategoryPartialPayment:
		return TonePartial
	default:
		return ToneFriendly
	}
}

// SystemSlugForCategory returns the stable slug of the shared system template
// for a category, or "" when none exists.
func SystemSlugForCategory(category ReminderCategory) string {
	switch category {
	case CategoryBeforeDue:
		return "friendly-pre-due"
	case CategoryOnDue:
		return "due-today"
	case CategoryAfterDue:
		return "firm-follow-up"
	default:
		return ""
	}
}

type CreateTemplateRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Tone    Tone   `json:"tone" binding:"required,oneof=friendly neutral firm final partial"`
	Subject string `json:"subject" binding:"required,max=500"`
	Body    string `json:"body" binding:"required"`
}

type UpdateTemplateRequest struct {
	Name    *string `json:"name" binding:"omitempty,max=200"`
	Subject *string `json:"subject" binding:"omitempty,max=500"`
	Body    *string `json:"body"`
}

type AssignCategoryRequest struct {
	Category *ReminderCategory `json:"reminder_category" binding:"omitempty,oneof=before_due on_due after_due partial_payment"`
}
