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

type templateRepository struct {
	*BaseRepository
}

func NewTemplateRepository(base *BaseRepository) repository.TemplateRepository {
	return &templateRepository{BaseRepository: base}
}

const templateColumns = `id, user_id, name, tone, is_system, slug, reminder_category, created_at, updated_at`

func (r *templateRepository) Create(ctx context.Context, template *model.Template, version *model.TemplateVersion) error {
	template.ID = uuid.New()
	template.CreatedAt = time.Now()
	template.UpdatedAt = time.Now()

	version.ID = uuid.New()
	version.TemplateID = template.ID
	version.IsActive = true
	version.CreatedAt = time.Now()

	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO templates (
				id, user_id, name, tone, is_system, slug, reminder_category,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		`,
			template.ID,
			template.UserID,
			template.Name,
			template.Tone,
			template.IsSystem,
			template.Slug,
			template.Category,
			template.CreatedAt,
			template.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create template: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO template_versions (
				id, template_id, subject, body, is_active, created_at
			) VALUES ($1, $2, $3, $4, $5, $6)
		`,
			version.ID,
			version.TemplateID,
			version.Subject,
			version.Body,
			version.IsActive,
			version.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create template version: %w", err)
		}
		return nil
	})
}

func (r *templateRepository) Get(ctx context.Context, id uuid.UUID) (*model.Template, error) {
	query := `SELECT ` + templateColumns + ` FROM templates WHERE id = $1`

	var template model.Template
	err := r.db.GetContext(ctx, &template, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) Update(ctx context.Context, template *model.Template) error {
	query := `
		UPDATE templates
		SET name = $1, updated_at = $2
		WHERE id = $3 AND is_system = false
	`
	template.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query, template.Name, template.UpdatedAt, template.ID)
	if err != nil {
		return fmt.Errorf("failed to update template: %w", err)
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

func (r *templateRepository) Delete(ctx context.Context, id, userID uuid.UUID) error {
	query := `
		DELETE FROM templates
		WHERE id = $1 AND user_id = $2 AND is_system = false
	`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
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

func (r *templateRepository) List(ctx context.Context, userID uuid.UUID) ([]*model.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE user_id = $1 AND is_system = false
		ORDER BY created_at DESC
	`
	var templates []*model.Template
	err := r.db.SelectContext(ctx, &templates, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

func (r *templateRepository) GetByCategory(ctx context.Context, userID uuid.UUID, category model.ReminderCategory) (*model.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE user_id = $1 AND is_system = false AND reminder_category = $2
	`
	var template model.Template
	err := r.db.GetContext(ctx, &template, query, userID, category)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template by category: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) GetByToneUnbound(ctx context.Context, userID uuid.UUID, tone model.Tone) (*model.Template, error) {
	// A template bound to another workflow category must never match here.
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE user_id = $1 AND is_system = false AND tone = $2
		  AND reminder_category IS NULL
		ORDER BY created_at DESC
		LIMIT 1
	`
	var template model.Template
	err := r.db.GetContext(ctx, &template, query, userID, tone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get template by tone: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) GetSystemBySlug(ctx context.Context, slug string) (*model.Template, error) {
	query := `
		SELECT ` + templateColumns + `
		FROM templates
		WHERE is_system = true AND slug = $1
	`
	var template model.Template
	err := r.db.GetContext(ctx, &template, query, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get system template: %w", err)
	}
	return &template, nil
}

func (r *templateRepository) GetActiveVersion(ctx context.Context, templateID uuid.UUID) (*model.TemplateVersion, error) {
	query := `
		SELECT id, template_id, subject, body, is_active, created_at
		FROM template_versions
		WHERE template_id = $1 AND is_active = true
	`
	var version model.TemplateVersion
	err := r.db.GetContext(ctx, &version, query, templateID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active version: %w", err)
	}
	return &version, nil
}

func (r *templateRepository) AssignCategory(ctx context.Context, templateID, userID uuid.UUID, category *model.ReminderCategory) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		if category != nil {
			// At most one of a user's templates may hold a category; clear the
			// prior holder before assigning.
			_, err := tx.ExecContext(ctx, `
				UPDATE templates
				SET reminder_category = NULL, updated_at = $1
				WHERE user_id = $2 AND reminder_category = $3 AND id != $4
			`, time.Now(), userID, *category, templateID)
			if err != nil {
				return fmt.Errorf("failed to clear prior category holder: %w", err)
			}
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE templates
			SET reminder_category = $1, updated_at = $2
			WHERE id = $3 AND user_id = $4 AND is_system = false
		`, category, time.Now(), templateID, userID)
		if err != nil {
			return fmt.Errorf("failed to assign category: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}

func (r *templateRepository) ListVersions(ctx context.Context, templateID uuid.UUID) ([]*model.TemplateVersion, error) {
	query := `
		SELECT id, template_id, subject, body, is_active, created_at
		FROM template_versions
		WHERE template_id = $1
		ORDER BY created_at DESC
	`
	var versions []*model.TemplateVersion
	err := r.db.SelectContext(ctx, &versions, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template versions: %w", err)
	}
	return versions, nil
}

func (r *templateRepository) CreateVersion(ctx context.Context, version *model.TemplateVersion) error {
	version.ID = uuid.New()
	version.CreatedAt = time.Now()

	query := `
		INSERT INTO template_versions (
			id, template_id, subject, body, is_active, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		version.ID,
		version.TemplateID,
		version.Subject,
		version.Body,
		version.IsActive,
		version.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create template version: %w", err)
	}
	return nil
}

func (r *templateRepository) ActivateVersion(ctx context.Context, templateID, versionID uuid.UUID) error {
	return r.WithTx(ctx, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			UPDATE template_versions
			SET is_active = false
			WHERE template_id = $1 AND id != $2
		`, templateID, versionID)
		if err != nil {
			return fmt.Errorf("failed to deactivate versions: %w", err)
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE template_versions
			SET is_active = true
			WHERE id = $1 AND template_id = $2
		`, versionID, templateID)
		if err != nil {
			return fmt.Errorf("failed to activate version: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rows == 0 {
			return repository.ErrNotFound
		}
		return nil
	})
}
