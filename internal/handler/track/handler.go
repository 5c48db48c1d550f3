package track

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/DamnnnMat/InvoiceChaser/internal/service/tracking"
)

type Handler struct {
	service tracking.Service
}

func NewHandler(service tracking.Service) *Handler {
	return &Handler{service: service}
}

// Open serves the tracking pixel. The response is identical for missing,
// malformed, unknown and valid tokens so a caller cannot probe which tokens
// exist; correlation happens as a side effect and any error there is
// swallowed inside the service.
func (h *Handler) Open(c *gin.Context) {
	h.service.RecordOpen(c.Request.Context(), c.Query("rid"))

	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Header("Content-Length", strconv.Itoa(len(tracking.Pixel)))
	c.Data(http.StatusOK, "image/png", tracking.Pixel)
}
