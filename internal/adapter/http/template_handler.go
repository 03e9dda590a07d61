package http

import (
	"net/http"

	domain "github.com/bp4sp4/NMS-System-sub001/internal/domain/template"
	"github.com/bp4sp4/NMS-System-sub001/internal/usecase/template"

	"github.com/labstack/echo/v4"
)

type TemplateHandler struct{ uc *template.Usecase }

func NewTemplateHandler(uc *template.Usecase) *TemplateHandler { return &TemplateHandler{uc: uc} }

type saveTemplateReq struct {
	Name                string              `json:"name" validate:"required,max=100"`
	Description         string              `json:"description"`
	Category            string              `json:"category"`
	SortOrder           int                 `json:"sort_order"`
	Fields              []domain.Field      `json:"fields" validate:"required,min=1"`
	Flow                domain.ApprovalFlow `json:"flow"`
	RequiredAttachments []string            `json:"required_attachments"`
}

func (h *TemplateHandler) Create(c echo.Context) error {
	var req saveTemplateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Create(c.Request().Context(), template.SaveTemplateInput{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		SortOrder:           req.SortOrder,
		Fields:              req.Fields,
		Flow:                req.Flow,
		RequiredAttachments: req.RequiredAttachments,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *TemplateHandler) Update(c echo.Context) error {
	var req saveTemplateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Update(c.Request().Context(), c.Param("template_id"), template.SaveTemplateInput{
		Name:                req.Name,
		Description:         req.Description,
		Category:            req.Category,
		SortOrder:           req.SortOrder,
		Fields:              req.Fields,
		Flow:                req.Flow,
		RequiredAttachments: req.RequiredAttachments,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TemplateHandler) Deactivate(c echo.Context) error {
	if err := h.uc.Deactivate(c.Request().Context(), c.Param("template_id")); err != nil {
		return writeDomainError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *TemplateHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("template_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *TemplateHandler) List(c echo.Context) error {
	activeOnly := c.QueryParam("all") != "true"
	dtos, err := h.uc.List(c.Request().Context(), activeOnly)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}
