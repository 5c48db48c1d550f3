package template

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

// ResolvedSource tags which tier produced the content.
type ResolvedSource string

const (
	SourceWorkflow ResolvedSource = "workflow"
	SourceTone     ResolvedSource = "tone"
	SourceSystem   ResolvedSource = "system"
	SourceBuiltin  ResolvedSource = "builtin"
)

// ResolvedTemplate is the content a reminder send will use, tagged with its
// provenance so the send record can attribute it.
type ResolvedTemplate struct {
	Subject      string
	Body         string
	TemplateID   *uuid.UUID
	Tone         model.Tone
	TemplateName string
	Source       ResolvedSource
}

var builtinDefaults = map[model.Tone]ResolvedTemplate{
	model.ToneFriendly: {
		Subject: "Friendly Reminder: Invoice Payment Due",
		Body:    "Hi {client_name}, Just a friendly reminder that your invoice for £{amount} is due on {due_date}. Thank you!",
	},
	model.ToneNeutral: {
		Subject: "Invoice {invoice_number} due today",
		Body:    "Hi {client_name}, This is a reminder that invoice {invoice_number} for £{amount} is due today ({due_date}). Please arrange payment at your earliest convenience.",
	},
	model.ToneFirm: {
		Subject: "Overdue invoice - action required",
		Body:    "Hi {client_name}, Invoice {invoice_number} for £{amount} remains outstanding since {due_date}. Please confirm when payment will be made.",
	},
	model.TonePartial: {
		Subject: "Invoice {invoice_number} partially paid - {outstanding_amount} outstanding",
		Body:    "Hi {client_name}, Thank you for your payment of £{paid_amount} towards invoice {invoice_number}. £{outstanding_amount} remains outstanding; the original due date was {due_date}.",
	},
}

const (
	systemCacheTTL     = 5 * time.Minute
	systemCacheCleanup = 10 * time.Minute
)

// Resolver picks the subject/body for a (user, category) pair. Resolution is
// total: every tier degrades to the next and the built-in defaults always
// exist, so Resolve never returns an error for a missing row.
type Resolver struct {
	repo        repository.TemplateRepository
	systemCache *gocache.Cache
}

func NewResolver(repo repository.TemplateRepository) *Resolver {
	return &Resolver{
		repo:        repo,
		systemCache: gocache.New(systemCacheTTL, systemCacheCleanup),
	}
}

// Resolve applies the four-tier priority order:
//  1. the user's template bound to this workflow category
//  2. the user's unbound template matching the legacy tone
//  3. the shared system template for the category slug
//  4. the built-in default for the tone
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID, category model.ReminderCategory) ResolvedTemplate {
	tone := model.ToneForCategory(category)

	if resolved, ok := r.resolveUserTemplate(ctx, userID, category, tone); ok {
		return resolved
	}
	if resolved, ok := r.resolveSystemTemplate(ctx, category, tone); ok {
		return resolved
	}

	builtin, ok := builtinDefaults[tone]
	if !ok {
		builtin = builtinDefaults[model.ToneFriendly]
	}
	builtin.Tone = tone
	builtin.Source = SourceBuiltin
	return builtin
}

func (r *Resolver) resolveUserTemplate(ctx context.Context, userID uuid.UUID, category model.ReminderCategory, tone model.Tone) (ResolvedTemplate, bool) {
	tmpl, err := r.repo.GetByCategory(ctx, userID, category)
	if err == nil {
		if version, err := r.repo.GetActiveVersion(ctx, tmpl.ID); err == nil {
			return ResolvedTemplate{
				Subject:      version.Subject,
				Body:         version.Body,
				TemplateID:   &tmpl.ID,
				Tone:         tmpl.Tone,
				TemplateName: tmpl.Name,
				Source:       SourceWorkflow,
			}, true
		}
	}

	tmpl, err = r.repo.GetByToneUnbound(ctx, userID, tone)
	if err == nil {
		if version, err := r.repo.GetActiveVersion(ctx, tmpl.ID); err == nil {
			return ResolvedTemplate{
				Subject:      version.Subject,
				Body:         version.Body,
				TemplateID:   &tmpl.ID,
				Tone:         tone,
				TemplateName: tmpl.Name,
				Source:       SourceTone,
			}, true
		}
	}

	return ResolvedTemplate{}, false
}

func (r *Resolver) resolveSystemTemplate(ctx context.Context, category model.ReminderCategory, tone model.Tone) (ResolvedTemplate, bool) {
	slug := model.SystemSlugForCategory(category)
	if slug == "" {
		return ResolvedTemplate{}, false
	}

	if cached, found := r.systemCache.Get(slug); found {
		resolved := cached.(ResolvedTemplate)
		resolved.Tone = tone
		return resolved, true
	}

	tmpl, err := r.repo.GetSystemBySlug(ctx, slug)
	if err != nil {
		return ResolvedTemplate{}, false
	}
	version, err := r.repo.GetActiveVersion(ctx, tmpl.ID)
	if err != nil {
		return ResolvedTemplate{}, false
	}

	resolved := ResolvedTemplate{
		Subject:      version.Subject,
		Body:         version.Body,
		TemplateID:   &tmpl.ID,
		Tone:         tone,
		TemplateName: tmpl.Name,
		Source:       SourceSystem,
	}
	r.systemCache.Set(slug, resolved, gocache.DefaultExpiration)
	return resolved, true
}
