package cron

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DamnnnMat/InvoiceChaser/internal/handler"
	"github.com/DamnnnMat/InvoiceChaser/internal/service/reminder"
)

type Handler struct {
	service reminder.Service
}

func NewHandler(service reminder.Service) *Handler {
	return &Handler{service: service}
}

// ProcessReminders runs one dispatch pass over all unpaid invoices. The
// external scheduler only ever sees aggregate counts; individual send
// failures surface later through the reminder history.
func (h *Handler) ProcessReminders(c *gin.Context) {
	stats, err := h.service.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, reminder.ErrRunInProgress) {
			c.JSON(http.StatusConflict, handler.NewErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"processed": stats.Processed,
		"sent":      stats.Sent,
		"failed":    stats.Failed,
	})
}
