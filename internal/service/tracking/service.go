package tracking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

// Service correlates inbound pixel requests back to send records. It never
// reports an outcome to the caller: whether the token is missing, malformed,
// unknown or valid, the HTTP layer serves the same pixel, so nothing here
// can leak which tokens exist.
type Service interface {
	RecordOpen(ctx context.Context, rawToken string)
}

type service struct {
	repo   repository.ReminderRepository
	logger zerolog.Logger
	now    func() time.Time
}

func NewService(repo repository.ReminderRepository, logger zerolog.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *service) RecordOpen(ctx context.Context, rawToken string) {
	// Syntactic validation before any lookup; junk never reaches the store.
	// Only the canonical 36-character form counts: uuid.Parse alone would
	// also admit braced, urn-prefixed and bare-hex spellings.
	if len(rawToken) != 36 {
		return
	}
	token, err := uuid.Parse(rawToken)
	if err != nil {
		return
	}

	// Increment and first-open stamp happen in one update; see the
	// repository for the conditional form.
	rows, err := s.repo.RecordOpen(ctx, token, s.now())
	if err != nil {
		// Swallowed: the pixel response is unconditional.
		s.logger.Error().Err(err).Msg("failed to record email open")
		return
	}
	if rows > 0 {
		s.logger.Debug().Str("token", token.String()).Msg("email open recorded")
	}
}
