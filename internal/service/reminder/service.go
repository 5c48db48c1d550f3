package reminder

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/DamnnnMat/InvoiceChaser/internal/email"
	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
	"github.com/DamnnnMat/InvoiceChaser/internal/service/schedule"
	"github.com/DamnnnMat/InvoiceChaser/internal/service/template"
)

const (
	sendTimeout = 30 * time.Second

	// runLockKey guards against overlapping dispatch runs when the scheduler
	// can fire concurrently; the per-day insert constraint is the backstop.
	runLockKey = "reminder-dispatch"
	runLockTTL = 10 * time.Minute
)

// ErrRunInProgress is returned when another dispatch run holds the lock.
var ErrRunInProgress = errors.New("a dispatch run is already in progress")

// ErrMailNotConfigured aborts a run before any send is attempted.
var ErrMailNotConfigured = errors.New("mail sender address is not configured")

type Service interface {
	// Run processes all unpaid invoices once and returns aggregate counts.
	Run(ctx context.Context) (*model.RunStats, error)
	// SendManual dispatches a single reminder outside the schedule.
	SendManual(ctx context.Context, userID, invoiceID uuid.UUID, category model.ReminderCategory) (*model.Reminder, error)
	// History lists the send records for one invoice.
	History(ctx context.Context, userID, invoiceID uuid.UUID) ([]*model.Reminder, error)
}

type service struct {
	invoices  repository.InvoiceRepository
	payments  repository.PaymentRepository
	reminders repository.ReminderRepository
	users     repository.UserRepository
	resolver  *template.Resolver
	mailer    email.Service
	redis     *redis.Client
	logger    zerolog.Logger

	fromAddr string
	baseURL  string
	now      func() time.Time
}

func NewService(
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
	reminders repository.ReminderRepository,
	users repository.UserRepository,
	resolver *template.Resolver,
	mailer email.Service,
	redisClient *redis.Client,
	logger zerolog.Logger,
	fromAddr, baseURL string,
) Service {
	return &service{
		invoices:  invoices,
		payments:  payments,
		reminders: reminders,
		users:     users,
		resolver:  resolver,
		mailer:    mailer,
		redis:     redisClient,
		logger:    logger,
		fromAddr:  fromAddr,
		baseURL:   baseURL,
		now:       time.Now,
	}
}

func (s *service) Run(ctx context.Context) (*model.RunStats, error) {
	if s.fromAddr == "" {
		return nil, ErrMailNotConfigured
	}

	unlock, err := s.acquireRunLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// One instant for the whole run: classification and the per-day
	// suppression check must agree even if the run straddles midnight.
	now := s.now()
	stats := &model.RunStats{}

	invoices, err := s.invoices.ListUnpaid(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpaid invoices: %w", err)
	}

	for _, invoice := range invoices {
		stats.Processed++

		if err := s.processInvoice(ctx, invoice, now, stats); err != nil {
			// Failure isolation: one invoice never stops the run.
			s.logger.Error().Err(err).
				Str("invoice_id", invoice.ID.String()).
				Msg("failed to process invoice")
		}
	}

	s.logger.Info().
		Int("processed", stats.Processed).
		Int("sent", stats.Sent).
		Int("failed", stats.Failed).
		Msg("dispatch run complete")

	return stats, nil
}

func (s *service) processInvoice(ctx context.Context, invoice *model.Invoice, now time.Time, stats *model.RunStats) error {
	category, due := schedule.Classify(now, invoice.DueDate)
	if !due {
		return nil
	}

	payments, err := s.payments.ListForInvoice(ctx, invoice.ID)
	if err != nil {
		return fmt.Errorf("failed to load payments: %w", err)
	}
	// An invoice fully covered by payments never produces a reminder even if
	// nobody flipped the paid flag.
	if invoice.Settled(payments) {
		return nil
	}

	sentToday, err := s.reminders.SentCategoriesOn(ctx, invoice.ID, schedule.DayOf(now))
	if err != nil {
		return fmt.Errorf("failed to check sent categories: %w", err)
	}
	if schedule.AlreadySent(category, sentToday) {
		return nil
	}

	reminder, err := s.dispatch(ctx, invoice, payments, category, now, model.ReminderSourceAutomated)
	if err != nil {
		return err
	}

	switch reminder.Status {
	case model.ReminderStatusSent:
		stats.Sent++
	case model.ReminderStatusFailed:
		stats.Failed++
	}
	return nil
}

// dispatch resolves, interpolates, sends and records a single reminder. The
// tracking token is issued before the send so a failed attempt still carries
// one, and the send record is written regardless of outcome.
func (s *service) dispatch(ctx context.Context, invoice *model.Invoice, payments []*model.Payment, category model.ReminderCategory, now time.Time, source model.ReminderSource) (*model.Reminder, error) {
	resolved := s.resolver.Resolve(ctx, invoice.UserID, category)

	user, err := s.users.Get(ctx, invoice.UserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	interp := NewInterpolation(invoice, payments, user)
	subject := interp.Apply(resolved.Subject)
	body := interp.Apply(resolved.Body)

	token := uuid.New()
	htmlBody := HTMLBody(body, PixelURL(s.baseURL, token.String()))

	reminder := &model.Reminder{
		InvoiceID:     invoice.ID,
		Category:      category,
		SentOn:        schedule.DayOf(now),
		SentAt:        now,
		TrackingToken: token,
		Source:        source,
		TemplateID:    resolved.TemplateID,
		Tone:          resolved.Tone,
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	providerID, sendErr := s.mailer.Send(sendCtx, &email.Message{
		From:    s.fromAddr,
		To:      invoice.ClientEmail,
		Subject: subject,
		Text:    body,
		HTML:    htmlBody,
	})
	if sendErr == nil && providerID == "" {
		// Success without a provider id is ambiguous; treat it as a failure.
		sendErr = errors.New("mail provider returned success without a message id")
	}

	if sendErr != nil {
		msg := sendErr.Error()
		reminder.Status = model.ReminderStatusFailed
		reminder.ErrorMessage = &msg
	} else {
		reminder.Status = model.ReminderStatusSent
	}

	if err := s.reminders.Create(ctx, reminder); err != nil {
		if errors.Is(err, repository.ErrDuplicateReminder) {
			// A concurrent run recorded this invoice/category/day first.
			s.logger.Warn().
				Str("invoice_id", invoice.ID.String()).
				Str("category", string(category)).
				Msg("duplicate reminder suppressed by constraint")
			return reminder, nil
		}
		return nil, fmt.Errorf("failed to record reminder: %w", err)
	}

	event := s.logger.Info()
	if sendErr != nil {
		event = s.logger.Warn().Err(sendErr)
	}
	event.
		Str("invoice_id", invoice.ID.String()).
		Str("category", string(category)).
		Str("status", string(reminder.Status)).
		Str("template_source", string(resolved.Source)).
		Msg("reminder recorded")

	return reminder, nil
}

func (s *service) SendManual(ctx context.Context, userID, invoiceID uuid.UUID, category model.ReminderCategory) (*model.Reminder, error) {
	if s.fromAddr == "" {
		return nil, ErrMailNotConfigured
	}

	invoice, err := s.invoices.GetForUser(ctx, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListForInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payments: %w", err)
	}
	if invoice.Settled(payments) {
		return nil, errors.New("cannot send reminders for paid invoices")
	}

	return s.dispatch(ctx, invoice, payments, category, s.now(), model.ReminderSourceManual)
}

func (s *service) History(ctx context.Context, userID, invoiceID uuid.UUID) ([]*model.Reminder, error) {
	if _, err := s.invoices.GetForUser(ctx, invoiceID, userID); err != nil {
		return nil, err
	}
	return s.reminders.ListForInvoice(ctx, invoiceID)
}

// acquireRunLock takes the advisory run lock when redis is configured. In
// single-instance deployments the client is nil and the lock is a no-op.
func (s *service) acquireRunLock(ctx context.Context) (func(), error) {
	if s.redis == nil {
		return func() {}, nil
	}

	ok, err := s.redis.SetNX(ctx, runLockKey, s.now().Format(time.RFC3339), runLockTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire run lock: %w", err)
	}
	if !ok {
		return nil, ErrRunInProgress
	}

	return func() {
		if err := s.redis.Del(context.Background(), runLockKey).Err(); err != nil {
			s.logger.Error().Err(err).Msg("failed to release run lock")
		}
	}, nil
}
