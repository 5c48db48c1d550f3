package template

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DamnnnMat/InvoiceChaser/internal/handler"
	"github.com/DamnnnMat/InvoiceChaser/internal/middleware"
	"github.com/DamnnnMat/InvoiceChaser/internal/model"
	"github.com/DamnnnMat/InvoiceChaser/internal/repository"
	templateService "github.com/DamnnnMat/InvoiceChaser/internal/service/template"
)

type Handler struct {
	service templateService.Service
}

func NewHandler(service templateService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	templates := r.Group("/templates")
	{
		templates.POST("", h.CreateTemplate)
		templates.GET("", h.ListTemplates)
		templates.GET("/:id", h.GetTemplate)
		templates.PATCH("/:id", h.UpdateTemplate)
		templates.DELETE("/:id", h.DeleteTemplate)
		templates.POST("/:id/clone", h.CloneTemplate)
		templates.PATCH("/:id/workflow", h.AssignCategory)
		templates.GET("/:id/versions", h.ListVersions)
		templates.POST("/:id/versions/:versionId/activate", h.ActivateVersion)
	}
}

func (h *Handler) CreateTemplate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	var req model.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	template, err := h.service.Create(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(template))
}

func (h *Handler) ListTemplates(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return
	}

	templates, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(templates))
}

func (h *Handler) GetTemplate(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	template, err := h.service.Get(c.Request.Context(), templateID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(template))
}

func (h *Handler) UpdateTemplate(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	var req model.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	template, err := h.service.Update(c.Request.Context(), templateID, userID, &req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(template))
}

func (h *Handler) DeleteTemplate(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), templateID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) CloneTemplate(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	clone, err := h.service.Clone(c.Request.Context(), templateID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(clone))
}

func (h *Handler) AssignCategory(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	var req model.AssignCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	if err := h.service.AssignCategory(c.Request.Context(), templateID, userID, req.Category); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) ListVersions(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	versions, err := h.service.ListVersions(c.Request.Context(), templateID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(versions))
}

func (h *Handler) ActivateVersion(c *gin.Context) {
	userID, templateID, ok := h.idsFrom(c)
	if !ok {
		return
	}

	versionID, err := uuid.Parse(c.Param("versionId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid version ID"))
		return
	}

	if err := h.service.ActivateVersion(c.Request.Context(), templateID, versionID, userID); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(nil))
}

func (h *Handler) idsFrom(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("unauthorized"))
		return uuid.Nil, uuid.Nil, false
	}

	templateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid template ID"))
		return uuid.Nil, uuid.Nil, false
	}
	return userID, templateID, true
}

func respondServiceError(c *gin.Context, err error) {
	if errors.Is(err, repository.ErrNotFound) {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("template not found"))
		return
	}
	c.JSON(http.StatusInternalServerError, handler.NewErrorResponse(err.Error()))
}
