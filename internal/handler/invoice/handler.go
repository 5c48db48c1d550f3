package invoice

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DamnnnMat/InvoiceChaser/internal/handler"
	"github.com/DamnnnMat/InvoiceChaser/internal/middleware"
	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
	invoiceService "github.com/DamnnnMat/InvoiceChaser/internal/service/invoice"
	reminderService "github.com/DamnnnMat/InvoiceChaser/internal/service/reminder"
)

type Handler struct {
	service   invoiceService.Service
	reminders reminderService.Service
}

func NewHandler(service invoiceService.Service, reminders reminderService.Service) *Handler {
	return &Handler{service: service, reminders: reminders}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	invoices := r.Group("/invoices")
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PATCH("/:id", h.UpdateInvoice)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.POST("/:id/mark-paid", h.MarkPaid)
		invoices.POST("/:id/payments", h.AddPayment)
		invoices.GET("/:id/reminders", h.ListReminders)
		invoices.POST("/resend-email", h.ResendEmail)
	}
}

func (h *Handler) CreateInvoice(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	invoice, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(invoice))
}

func (h *Handler) ListInvoices(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	invoices, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(invoices))
}

func (h *Handler) GetInvoice(c *gin.Context) {
	userID, invoiceID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), invoiceID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) UpdateInvoice(c *gin.Context) {
	userID, invoiceID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	var req model.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	invoice, err := h.service.Update(c.Request.Context(), invoiceID, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(invoice))
}

func (h *Handler) DeleteInvoice(c *gin.Context) {
	userID, invoiceID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), invoiceID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) MarkPaid(c *gin.Context) {
	userID, invoiceID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	invoice, err := h.service.MarkPaid(c.Request.Context(), invoiceID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(invoice))
}

func (h *Handler) AddPayment(c *gin.Context) {
	userID, invoiceID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	var req model.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	payment, err := h.service.AddPayment(c.Request.Context(), invoiceID, userID, &req)
	if err != nil {
		if errors.Is(err, invoiceService.ErrOverpayment) {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
			return
		}
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(payment))
}

func (h *Handler) ListReminders(c *gin.Context) {
	userID, invoiceID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	reminders, err := h.reminders.History(c.Request.Context(), userID, invoiceID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(reminders))
}

func (h *Handler) ResendEmail(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.ResendReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	rem, err := h.reminders.SendManual(c.Request.Context(), userID, req.InvoiceID, req.Category)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if rem.Status == model.ReminderStatusFailed {
		msg := "failed to send email"
		if rem.ErrorMessage != nil {
			msg = *rem.ErrorMessage
		}
		c.JSON(http.StatusBadGateway, handler.NewErrorResponse(msg))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rem))
}

func (h *Handler) idsFrom(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return uuid.Nil, uuid.Nil, false
	}

	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid invoice ID"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, invoiceID, true
}

func respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("invoice not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
}
