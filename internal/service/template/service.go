package template

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateTemplateRequest) (*model.Template, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*model.Template, error)
	Update(ctx context.Context, id, userID uuid.UUID, req *model.UpdateTemplateRequest) (*model.Template, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]*model.Template, error)
	Clone(ctx context.Context, id, userID uuid.UUID) (*model.Template, error)
	AssignCategory(ctx context.Context, id, userID uuid.UUID, category *model.ReminderCategory) error
	ListVersions(ctx context.Context, id, userID uuid.UUID) ([]*model.TemplateVersion, error)
	ActivateVersion(ctx context.Context, id, versionID, userID uuid.UUID) error
}

type service struct {
	repo repository.TemplateRepository
}

func NewService(repo repository.TemplateRepository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateTemplateRequest) (*model.Template, error) {
	template := &model.Template{
		UserID: &userID,
		Name:   req.Name,
		Tone:   req.Tone,
	}
	version := &model.TemplateVersion{
		Subject: req.Subject,
		Body:    req.Body,
	}

	if err := s.repo.Create(ctx, template, version); err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}
	return template, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*model.Template, error) {
	template, err := s.ownedBy(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return template, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, req *model.UpdateTemplateRequest) (*model.Template, error) {
	template, err := s.ownedBy(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		template.Name = *req.Name
		if err := s.repo.Update(ctx, template); err != nil {
			return nil, fmt.Errorf("failed to update template: %w", err)
		}
	}

	// Subject/body edits create a new active version; the template itself
	// keeps its history.
	if req.Subject != nil || req.Body != nil {
		active, err := s.repo.GetActiveVersion(ctx, template.ID)
		subject, body := "", ""
		if err == nil {
			subject, body = active.Subject, active.Body
		}
		if req.Subject != nil {
			subject = *req.Subject
		}
		if req.Body != nil {
			body = *req.Body
		}

		version := &model.TemplateVersion{
			TemplateID: template.ID,
			Subject:    subject,
			Body:       body,
		}
		if err := s.repo.CreateVersion(ctx, version); err != nil {
			return nil, fmt.Errorf("failed to create version: %w", err)
		}
		if err := s.repo.ActivateVersion(ctx, template.ID, version.ID); err != nil {
			return nil, fmt.Errorf("failed to activate version: %w", err)
		}
	}

	return template, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.repo.Delete(ctx, id, userID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*model.Template, error) {
	return s.repo.List(ctx, userID)
}

func (s *service) Clone(ctx context.Context, id, userID uuid.UUID) (*model.Template, error) {
	source, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// System templates may be cloned into a user copy; other users' templates
	// may not.
	if !source.IsSystem && (source.UserID == nil || *source.UserID != userID) {
		return nil, repository.ErrNotFound
	}

	active, err := s.repo.GetActiveVersion(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active version: %w", err)
	}

	clone := &model.Template{
		UserID: &userID,
		Name:   source.Name + " (copy)",
		Tone:   source.Tone,
	}
	version := &model.TemplateVersion{
		Subject: active.Subject,
		Body:    active.Body,
	}
	if err := s.repo.Create(ctx, clone, version); err != nil {
		return nil, fmt.Errorf("failed to clone template: %w", err)
	}
	return clone, nil
}

func (s *service) AssignCategory(ctx context.Context, id, userID uuid.UUID, category *model.ReminderCategory) error {
	return s.repo.AssignCategory(ctx, id, userID, category)
}

func (s *service) ListVersions(ctx context.Context, id, userID uuid.UUID) ([]*model.TemplateVersion, error) {
	if _, err := s.ownedBy(ctx, id, userID); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, id)
}

func (s *service) ActivateVersion(ctx context.Context, id, versionID, userID uuid.UUID) error {
	if _, err := s.ownedBy(ctx, id, userID); err != nil {
		return err
	}
	return s.repo.ActivateVersion(ctx, id, versionID)
}

func (s *service) ownedBy(ctx context.Context, id, userID uuid.UUID) (*model.Template, error) {
	template, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if template.IsSystem || template.UserID == nil || *template.UserID != userID {
		return nil, repository.ErrNotFound
	}
	return template, nil
}
