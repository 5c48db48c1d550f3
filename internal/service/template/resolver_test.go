package template

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

// resolverRepo serves exactly what each test stocks it with; everything else
// returns ErrNotFound so resolution degrades tier by tier.
type resolverRepo struct {
	byCategory map[model.ReminderCategory]*model.Template
	byTone     map[model.Tone]*model.Template
	bySlug     map[string]*model.Template
	versions   map[uuid.UUID]*model.TemplateVersion

	slugLookups int
}

func newResolverRepo() *resolverRepo {
	return &resolverRepo{
		byCategory: map[model.ReminderCategory]*model.Template{},
		byTone:     map[model.Tone]*model.Template{},
		bySlug:     map[string]*model.Template{},
		versions:   map[uuid.UUID]*model.TemplateVersion{},
	}
}

func (r *resolverRepo) add(tmpl *model.Template, subject, body string) *model.Template {
	tmpl.ID = uuid.New()
	r.versions[tmpl.ID] = &model.TemplateVersion{
		ID:         uuid.New(),
		TemplateID: tmpl.ID,
		Subject:    subject,
		Body:       body,
		IsActive:   true,
	}
	if tmpl.Category != nil {
		r.byCategory[*tmpl.Category] = tmpl
	} else if tmpl.IsSystem && tmpl.Slug != nil {
		r.bySlug[*tmpl.Slug] = tmpl
	} else {
		r.byTone[tmpl.Tone] = tmpl
	}
	return tmpl
}

func (r *resolverRepo) Create(_ context.Context, _ *model.Template, _ *model.TemplateVersion) error {
	return nil
}
func (r *resolverRepo) Get(_ context.Context, _ uuid.UUID) (*model.Template, error) {
	return nil, repository.ErrNotFound
}
func (r *resolverRepo) Update(_ context.Context, _ *model.Template) error { return nil }
func (r *resolverRepo) Delete(_ context.Context, _, _ uuid.UUID) error    { return nil }
func (r *resolverRepo) List(_ context.Context, _ uuid.UUID) ([]*model.Template, error) {
	return nil, nil
}
func (r *resolverRepo) GetByCategory(_ context.Context, _ uuid.UUID, category model.ReminderCategory) (*model.Template, error) {
	if tmpl, ok := r.byCategory[category]; ok {
		return tmpl, nil
	}
	return nil, repository.ErrNotFound
}
func (r *resolverRepo) GetByToneUnbound(_ context.Context, _ uuid.UUID, tone model.Tone) (*model.Template, error) {
	if tmpl, ok := r.byTone[tone]; ok {
		return tmpl, nil
	}
	return nil, repository.ErrNotFound
}
func (r *resolverRepo) GetSystemBySlug(_ context.Context, slug string) (*model.Template, error) {
	r.slugLookups++
	if tmpl, ok := r.bySlug[slug]; ok {
		return tmpl, nil
	}
	return nil, repository.ErrNotFound
}
func (r *resolverRepo) GetActiveVersion(_ context.Context, templateID uuid.UUID) (*model.TemplateVersion, error) {
	if v, ok := r.versions[templateID]; ok {
		return v, nil
	}
	return nil, repository.ErrNotFound
}
func (r *resolverRepo) AssignCategory(_ context.Context, _, _ uuid.UUID, _ *model.ReminderCategory) error {
	return nil
}
func (r *resolverRepo) ListVersions(_ context.Context, _ uuid.UUID) ([]*model.TemplateVersion, error) {
	return nil, nil
}
func (r *resolverRepo) CreateVersion(_ context.Context, _ *model.TemplateVersion) error {
	return nil
}
func (r *resolverRepo) ActivateVersion(_ context.Context, _, _ uuid.UUID) error { return nil }

func category(c model.ReminderCategory) *model.ReminderCategory { return &c }

func strptr(s string) *string { return &s }

func TestResolvePrefersWorkflowBinding(t *testing.T) {
	repo := newResolverRepo()
	userID := uuid.New()

	bound := repo.add(&model.Template{
		UserID:   &userID,
		Name:     "My chase",
		Tone:     model.ToneFirm,
		Category: category(model.CategoryBeforeDue),
	}, "bound subject", "bound body")
	repo.add(&model.Template{UserID: &userID, Tone: model.ToneFriendly}, "tone subject", "tone body")
	repo.add(&model.Template{IsSystem: true, Tone: model.ToneFriendly, Slug: strptr("friendly-pre-due")}, "system subject", "system body")

	resolved := NewResolver(repo).Resolve(context.Background(), userID, model.CategoryBeforeDue)

	assert.Equal(t, SourceWorkflow, resolved.Source)
	assert.Equal(t, "bound subject", resolved.Subject)
	assert.Equal(t, "bound body", resolved.Body)
	require.NotNil(t, resolved.TemplateID)
	assert.Equal(t, bound.ID, *resolved.TemplateID)
	// A workflow binding overrides the tone mapping: the template's own tone
	// carries through.
	assert.Equal(t, model.ToneFirm, resolved.Tone)
}

func TestResolveFallsBackToToneMatch(t *testing.T) {
	repo := newResolverRepo()
	userID := uuid.New()

	toneTmpl := repo.add(&model.Template{UserID: &userID, Tone: model.ToneFriendly}, "tone subject", "tone body")
	repo.add(&model.Template{IsSystem: true, Tone: model.ToneFriendly, Slug: strptr("friendly-pre-due")}, "system subject", "system body")

	resolved := NewResolver(repo).Resolve(context.Background(), userID, model.CategoryBeforeDue)

	assert.Equal(t, SourceTone, resolved.Source)
	assert.Equal(t, "tone subject", resolved.Subject)
	require.NotNil(t, resolved.TemplateID)
	assert.Equal(t, toneTmpl.ID, *resolved.TemplateID)
	assert.Equal(t, model.ToneFriendly, resolved.Tone)
}

func TestResolveIgnoresTemplateBoundToOtherCategory(t *testing.T) {
	repo := newResolverRepo()
	userID := uuid.New()

	// A friendly template bound to on_due must not satisfy before_due's tone
	// fallback; only unbound templates qualify for tier two.
	repo.add(&model.Template{
		UserID:   &userID,
		Tone:     model.ToneFriendly,
		Category: category(model.CategoryOnDue),
	}, "wrong subject", "wrong body")

	resolved := NewResolver(repo).Resolve(context.Background(), userID, model.CategoryBeforeDue)

	assert.Equal(t, SourceBuiltin, resolved.Source)
	assert.NotEqual(t, "wrong subject", resolved.Subject)
}

func TestResolveFallsBackToSystemTemplate(t *testing.T) {
	repo := newResolverRepo()
	sys := repo.add(&model.Template{
		IsSystem: true,
		Name:     "Due today",
		Tone:     model.ToneNeutral,
		Slug:     strptr("due-today"),
	}, "system subject", "system body")

	resolved := NewResolver(repo).Resolve(context.Background(), uuid.New(), model.CategoryOnDue)

	assert.Equal(t, SourceSystem, resolved.Source)
	assert.Equal(t, "system subject", resolved.Subject)
	require.NotNil(t, resolved.TemplateID)
	assert.Equal(t, sys.ID, *resolved.TemplateID)
	assert.Equal(t, model.ToneNeutral, resolved.Tone)
}

func TestResolveCachesSystemTemplates(t *testing.T) {
	repo := newResolverRepo()
	repo.add(&model.Template{
		IsSystem: true,
		Tone:     model.ToneFirm,
		Slug:     strptr("firm-follow-up"),
	}, "system subject", "system body")

	resolver := NewResolver(repo)
	resolver.Resolve(context.Background(), uuid.New(), model.CategoryAfterDue)
	resolver.Resolve(context.Background(), uuid.New(), model.CategoryAfterDue)

	assert.Equal(t, 1, repo.slugLookups)
}

func TestResolveIsTotal(t *testing.T) {
	// Empty repo: every category still resolves to something sendable.
	resolver := NewResolver(newResolverRepo())

	for _, cat := range []model.ReminderCategory{
		model.CategoryBeforeDue,
		model.CategoryOnDue,
		model.CategoryAfterDue,
		model.CategoryPartialPayment,
	} {
		resolved := resolver.Resolve(context.Background(), uuid.New(), cat)
		assert.Equal(t, SourceBuiltin, resolved.Source, "category %s", cat)
		assert.NotEmpty(t, resolved.Subject, "category %s", cat)
		assert.NotEmpty(t, resolved.Body, "category %s", cat)
		assert.Nil(t, resolved.TemplateID, "category %s", cat)
		assert.Equal(t, model.ToneForCategory(cat), resolved.Tone, "category %s", cat)
	}
}

func TestResolveBuiltinToneMapping(t *testing.T) {
	resolver := NewResolver(newResolverRepo())

	resolved := resolver.Resolve(context.Background(), uuid.New(), model.CategoryBeforeDue)
	assert.Equal(t, model.ToneFriendly, resolved.Tone)
	assert.Contains(t, resolved.Body, "{client_name}")
	assert.Contains(t, resolved.Body, "{due_date}")
}
