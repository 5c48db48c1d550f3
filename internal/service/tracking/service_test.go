package tracking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
)

// openRecorder mirrors the store's single-update contract: every hit on a
// known token bumps open_count, and only the first hit claims first_opened_at.
type openRecorder struct {
	rows   map[uuid.UUID]*model.Reminder
	tokens []uuid.UUID
	stamps []time.Time
	err    error
}

func (f *openRecorder) Create(_ context.Context, _ *model.Reminder) error { return nil }
func (f *openRecorder) ListForInvoice(_ context.Context, _ uuid.UUID) ([]*model.Reminder, error) {
	return nil, nil
}
func (f *openRecorder) SentCategoriesOn(_ context.Context, _ uuid.UUID, _ time.Time) ([]model.ReminderCategory, error) {
	return nil, nil
}
func (f *openRecorder) RecordOpen(_ context.Context, token uuid.UUID, openedAt time.Time) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.tokens = append(f.tokens, token)
	f.stamps = append(f.stamps, openedAt)

	row, ok := f.rows[token]
	if !ok {
		return 0, nil
	}
	row.OpenCount++
	if row.FirstOpenedAt == nil {
		t := openedAt
		row.FirstOpenedAt = &t
	}
	return 1, nil
}

func TestRecordOpenWithValidToken(t *testing.T) {
	repo := &openRecorder{}
	now := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)

	svc := NewService(repo, zerolog.Nop()).(*service)
	svc.now = func() time.Time { return now }

	token := uuid.New()
	svc.RecordOpen(context.Background(), token.String())

	require.Len(t, repo.tokens, 1)
	assert.Equal(t, token, repo.tokens[0])
	assert.Equal(t, now, repo.stamps[0])
}

func TestRecordOpenRejectsMalformedTokens(t *testing.T) {
	repo := &openRecorder{}
	svc := NewService(repo, zerolog.Nop())

	// Includes spellings uuid.Parse would accept but the canonical form
	// excludes: braced, urn-prefixed and bare hex.
	canonical := uuid.New().String()
	for _, raw := range []string{
		"", "not-a-uuid", "12345", "a1b2c3d4",
		"{" + canonical + "}",
		"urn:uuid:" + canonical,
		strings.ReplaceAll(canonical, "-", ""),
	} {
		svc.RecordOpen(context.Background(), raw)
	}

	assert.Empty(t, repo.tokens, "malformed tokens must never reach the store")
}

func TestRecordOpenStampsFirstOpenOnce(t *testing.T) {
	token := uuid.New()
	repo := &openRecorder{rows: map[uuid.UUID]*model.Reminder{
		token: {TrackingToken: token},
	}}

	first := time.Date(2024, time.March, 15, 10, 30, 0, 0, time.UTC)
	second := first.Add(45 * time.Minute)

	svc := NewService(repo, zerolog.Nop()).(*service)
	svc.now = func() time.Time { return first }
	svc.RecordOpen(context.Background(), token.String())
	svc.now = func() time.Time { return second }
	svc.RecordOpen(context.Background(), token.String())

	row := repo.rows[token]
	assert.Equal(t, 2, row.OpenCount)
	require.NotNil(t, row.FirstOpenedAt)
	assert.Equal(t, first, *row.FirstOpenedAt)
}

func TestRecordOpenSwallowsStoreErrors(t *testing.T) {
	repo := &openRecorder{err: errors.New("connection refused")}
	svc := NewService(repo, zerolog.Nop())

	// Must not panic or surface anything; the pixel response never varies.
	svc.RecordOpen(context.Background(), uuid.New().String())
}

func TestRecordOpenCountsRepeatOpens(t *testing.T) {
	repo := &openRecorder{}
	svc := NewService(repo, zerolog.Nop())

	token := uuid.New()
	svc.RecordOpen(context.Background(), token.String())
	svc.RecordOpen(context.Background(), token.String())

	assert.Len(t, repo.tokens, 2)
}
