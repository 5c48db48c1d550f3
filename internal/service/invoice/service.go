package invoice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

const dateLayout = "2006-01-02"

// ErrOverpayment rejects a payment exceeding the current outstanding amount.
var ErrOverpayment = errors.New("payment exceeds outstanding amount")

// Detail is an invoice with its payments and the derived amounts clients
// display. Outstanding is always recomputed, never read from the row.
type Detail struct {
	Invoice     *model.Invoice   `json:"invoice"`
	Payments    []*model.Payment `json:"payments"`
	PaidAmount  float64          `json:"paid_amount"`
	Outstanding float64          `json:"outstanding"`
}

type Service interface {
	Create(ctx context.Context, userID uuid.UUID, req *model.CreateInvoiceRequest) (*model.Invoice, error)
	Get(ctx context.Context, id, userID uuid.UUID) (*Detail, error)
	Update(ctx context.Context, id, userID uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error)
	Delete(ctx context.Context, id, userID uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error)
	MarkPaid(ctx context.Context, id, userID uuid.UUID) (*model.Invoice, error)
	AddPayment(ctx context.Context, invoiceID, userID uuid.UUID, req *model.CreatePaymentRequest) (*model.Payment, error)
}

type service struct {
	invoices repository.InvoiceRepository
	payments repository.PaymentRepository
}

func NewService(invoices repository.InvoiceRepository, payments repository.PaymentRepository) Service {
	return &service{invoices: invoices, payments: payments}
}

func (s *service) Create(ctx context.Context, userID uuid.UUID, req *model.CreateInvoiceRequest) (*model.Invoice, error) {
	dueDate, err := time.Parse(dateLayout, req.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due date: %w", err)
	}

	invoice := &model.Invoice{
		UserID:      userID,
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		Amount:      req.Amount,
		DueDate:     dueDate,
	}
	if err := s.invoices.Create(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) Get(ctx context.Context, id, userID uuid.UUID) (*Detail, error) {
	invoice, err := s.invoices.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListForInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}

	outstanding := invoice.Outstanding(payments)
	return &Detail{
		Invoice:     invoice,
		Payments:    payments,
		PaidAmount:  invoice.Amount - outstanding,
		Outstanding: outstanding,
	}, nil
}

func (s *service) Update(ctx context.Context, id, userID uuid.UUID, req *model.UpdateInvoiceRequest) (*model.Invoice, error) {
	invoice, err := s.invoices.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if req.ClientName != nil {
		invoice.ClientName = *req.ClientName
	}
	if req.ClientEmail != nil {
		invoice.ClientEmail = *req.ClientEmail
	}
	if req.Amount != nil {
		invoice.Amount = *req.Amount
	}
	if req.DueDate != nil {
		dueDate, err := time.Parse(dateLayout, *req.DueDate)
		if err != nil {
			return nil, fmt.Errorf("invalid due date: %w", err)
		}
		invoice.DueDate = dueDate
	}
	if req.IsPaid != nil {
		invoice.IsPaid = *req.IsPaid
	}

	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	return s.invoices.Delete(ctx, id, userID)
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]*model.Invoice, error) {
	return s.invoices.List(ctx, userID)
}

func (s *service) MarkPaid(ctx context.Context, id, userID uuid.UUID) (*model.Invoice, error) {
	invoice, err := s.invoices.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	invoice.IsPaid = true
	if err := s.invoices.Update(ctx, invoice); err != nil {
		return nil, err
	}
	return invoice, nil
}

func (s *service) AddPayment(ctx context.Context, invoiceID, userID uuid.UUID, req *model.CreatePaymentRequest) (*model.Payment, error) {
	invoice, err := s.invoices.GetForUser(ctx, invoiceID, userID)
	if err != nil {
		return nil, err
	}

	payments, err := s.payments.ListForInvoice(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	if float64(req.AmountCents)/100 > invoice.Outstanding(payments) {
		return nil, ErrOverpayment
	}

	paidAt, err := time.Parse(dateLayout, req.PaidAt)
	if err != nil {
		return nil, fmt.Errorf("invalid paid date: %w", err)
	}

	payment := &model.Payment{
		InvoiceID:   invoice.ID,
		AmountCents: req.AmountCents,
		PaidAt:      paidAt,
		Note:        req.Note,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	// Fully covered invoices get the paid flag flipped so the dispatch
	// engine's unpaid scan skips them cheaply.
	if invoice.Outstanding(append(payments, payment)) <= 0 && !invoice.IsPaid {
		invoice.IsPaid = true
		if err := s.invoices.Update(ctx, invoice); err != nil {
			return nil, err
		}
	}

	return payment, nil
}
