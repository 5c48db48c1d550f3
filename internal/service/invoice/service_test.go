package invoice

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
)

type memInvoiceRepo struct {
	invoices map[uuid.UUID]*model.Invoice
}

func newMemInvoiceRepo() *memInvoiceRepo {
	return &memInvoiceRepo{invoices: map[uuid.UUID]*model.Invoice{}}
}

func (r *memInvoiceRepo) Create(_ context.Context, invoice *model.Invoice) error {
	invoice.ID = uuid.New()
	r.invoices[invoice.ID] = invoice
	return nil
}
func (r *memInvoiceRepo) Get(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	if inv, ok := r.invoices[id]; ok {
		return inv, nil
	}
	return nil, repository.ErrNotFound
}
func (r *memInvoiceRepo) GetForUser(_ context.Context, id, userID uuid.UUID) (*model.Invoice, error) {
	if inv, ok := r.invoices[id]; ok && inv.UserID == userID {
		return inv, nil
	}
	return nil, repository.ErrNotFound
}
func (r *memInvoiceRepo) Update(_ context.Context, invoice *model.Invoice) error {
	r.invoices[invoice.ID] = invoice
	return nil
}
func (r *memInvoiceRepo) Delete(_ context.Context, id, userID uuid.UUID) error {
	if inv, ok := r.invoices[id]; ok && inv.UserID == userID {
		delete(r.invoices, id)
		return nil
	}
	return repository.ErrNotFound
}
func (r *memInvoiceRepo) List(_ context.Context, userID uuid.UUID) ([]*model.Invoice, error) {
	var out []*model.Invoice
	for _, inv := range r.invoices {
		if inv.UserID == userID {
			out = append(out, inv)
		}
	}
	return out, nil
}
func (r *memInvoiceRepo) ListUnpaid(_ context.Context) ([]*model.Invoice, error) {
	var out []*model.Invoice
	for _, inv := range r.invoices {
		if !inv.IsPaid {
			out = append(out, inv)
		}
	}
	return out, nil
}

type memPaymentRepo struct {
	payments map[uuid.UUID][]*model.Payment
}

func newMemPaymentRepo() *memPaymentRepo {
	return &memPaymentRepo{payments: map[uuid.UUID][]*model.Payment{}}
}

func (r *memPaymentRepo) Create(_ context.Context, payment *model.Payment) error {
	payment.ID = uuid.New()
	r.payments[payment.InvoiceID] = append(r.payments[payment.InvoiceID], payment)
	return nil
}
func (r *memPaymentRepo) ListForInvoice(_ context.Context, invoiceID uuid.UUID) ([]*model.Payment, error) {
	return r.payments[invoiceID], nil
}

func newTestService() (Service, *memInvoiceRepo, *memPaymentRepo) {
	invoices := newMemInvoiceRepo()
	payments := newMemPaymentRepo()
	return NewService(invoices, payments), invoices, payments
}

func createTestInvoice(t *testing.T, svc Service, userID uuid.UUID, amount float64) *model.Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), userID, &model.CreateInvoiceRequest{
		ClientName:  "Acme Ltd",
		ClientEmail: "billing@acme.test",
		Amount:      amount,
		DueDate:     "2024-03-15",
	})
	require.NoError(t, err)
	return inv
}

func TestCreateParsesDueDate(t *testing.T) {
	svc, _, _ := newTestService()
	inv := createTestInvoice(t, svc, uuid.New(), 500)

	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), inv.DueDate)
	assert.False(t, inv.IsPaid)
}

func TestCreateRejectsBadDueDate(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Create(context.Background(), uuid.New(), &model.CreateInvoiceRequest{
		ClientName:  "Acme Ltd",
		ClientEmail: "billing@acme.test",
		Amount:      500,
		DueDate:     "15/03/2024",
	})
	assert.Error(t, err)
}

func TestGetComputesOutstanding(t *testing.T) {
	svc, _, payments := newTestService()
	userID := uuid.New()
	inv := createTestInvoice(t, svc, userID, 500)

	require.NoError(t, payments.Create(context.Background(), &model.Payment{
		InvoiceID: inv.ID, AmountCents: 12550,
	}))

	detail, err := svc.Get(context.Background(), inv.ID, userID)
	require.NoError(t, err)

	assert.InDelta(t, 125.50, detail.PaidAmount, 0.001)
	assert.InDelta(t, 374.50, detail.Outstanding, 0.001)
}

func TestGetRejectsForeignInvoice(t *testing.T) {
	svc, _, _ := newTestService()
	inv := createTestInvoice(t, svc, uuid.New(), 500)

	_, err := svc.Get(context.Background(), inv.ID, uuid.New())
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestMarkPaid(t *testing.T) {
	svc, invoices, _ := newTestService()
	userID := uuid.New()
	inv := createTestInvoice(t, svc, userID, 500)

	got, err := svc.MarkPaid(context.Background(), inv.ID, userID)
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	assert.True(t, invoices.invoices[inv.ID].IsPaid)
}

func TestAddPaymentRejectsOverpayment(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()
	inv := createTestInvoice(t, svc, userID, 100)

	_, err := svc.AddPayment(context.Background(), inv.ID, userID, &model.CreatePaymentRequest{
		AmountCents: 10001,
		PaidAt:      "2024-03-10",
	})
	assert.ErrorIs(t, err, ErrOverpayment)
}

func TestAddPaymentFlipsPaidWhenFullyCovered(t *testing.T) {
	svc, invoices, _ := newTestService()
	userID := uuid.New()
	inv := createTestInvoice(t, svc, userID, 100)

	_, err := svc.AddPayment(context.Background(), inv.ID, userID, &model.CreatePaymentRequest{
		AmountCents: 4000,
		PaidAt:      "2024-03-10",
	})
	require.NoError(t, err)
	assert.False(t, invoices.invoices[inv.ID].IsPaid)

	_, err = svc.AddPayment(context.Background(), inv.ID, userID, &model.CreatePaymentRequest{
		AmountCents: 6000,
		PaidAt:      "2024-03-11",
	})
	require.NoError(t, err)
	assert.True(t, invoices.invoices[inv.ID].IsPaid)
}

func TestUpdatePartialFields(t *testing.T) {
	svc, _, _ := newTestService()
	userID := uuid.New()
	inv := createTestInvoice(t, svc, userID, 500)

	amount := 750.0
	got, err := svc.Update(context.Background(), inv.ID, userID, &model.UpdateInvoiceRequest{
		Amount: &amount,
	})
	require.NoError(t, err)

	assert.Equal(t, 750.0, got.Amount)
	assert.Equal(t, "Acme Ltd", got.ClientName)
}
