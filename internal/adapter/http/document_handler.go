package http

import (
	"net/http"
	"strings"

	"github.com/bp4sp4/NMS-System-sub001/internal/domain/approval"
	"github.com/bp4sp4/NMS-System-sub001/internal/usecase/document"
	"github.com/bp4sp4/NMS-System-sub001/pkg/id"

	"github.com/labstack/echo/v4"
)

type DocumentHandler struct{ uc *document.Usecase }

func NewDocumentHandler(uc *document.Usecase) *DocumentHandler { return &DocumentHandler{uc: uc} }

type createDraftReq struct {
	TemplateID  string          `json:"template_id" validate:"required,hex32"`
	Title       string          `json:"title"       validate:"required,max=200"`
	Department  string          `json:"department"`
	Priority    string          `json:"priority"    validate:"omitempty,oneof=low normal high urgent"`
	FormData    map[string]any  `json:"form_data"`
	Attachments []attachmentReq `json:"attachments"`
}

type attachmentReq struct {
	Kind string `json:"kind" validate:"required"`
	Name string `json:"name"`
	URL  string `json:"url"  validate:"required,url"`
}

type updateDraftReq struct {
	Title       string          `json:"title"    validate:"omitempty,max=200"`
	Priority    string          `json:"priority" validate:"omitempty,oneof=low normal high urgent"`
	FormData    map[string]any  `json:"form_data"`
	Attachments []attachmentReq `json:"attachments"`
}

type actReq struct {
	Action     string `json:"action"      validate:"required,oneof=approve reject return delegate"`
	Comment    string `json:"comment"     validate:"omitempty,max=1000"`
	DelegateTo string `json:"delegate_to" validate:"omitempty,hex32"`
}

// actorID pulls the authenticated caller from the gateway-set header.
func actorID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("Ax-User-Id"))
}

func (h *DocumentHandler) CreateDraft(c echo.Context) error {
	actor := actorID(c)
	if !id.Valid(actor) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-User-Id"})
	}
	var req createDraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.CreateDraft(c.Request().Context(), document.CreateDraftInput{
		TemplateID:  req.TemplateID,
		ApplicantID: actor,
		Department:  req.Department,
		Title:       req.Title,
		Priority:    req.Priority,
		FormData:    req.FormData,
		Attachments: toAttachments(req.Attachments),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *DocumentHandler) UpdateDraft(c echo.Context) error {
	actor := actorID(c)
	if !id.Valid(actor) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-User-Id"})
	}
	var req updateDraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.UpdateDraft(c.Request().Context(), document.UpdateDraftInput{
		DocumentID:  c.Param("document_id"),
		ActorID:     actor,
		Title:       req.Title,
		Priority:    req.Priority,
		FormData:    req.FormData,
		Attachments: toAttachments(req.Attachments),
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) Submit(c echo.Context) error {
	actor := actorID(c)
	if !id.Valid(actor) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-User-Id"})
	}
	dto, err := h.uc.Submit(c.Request().Context(), c.Param("document_id"), actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) Act(c echo.Context) error {
	actor := actorID(c)
	if !id.Valid(actor) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-User-Id"})
	}
	var req actReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Act(c.Request().Context(), document.ActInput{
		DocumentID: c.Param("document_id"),
		ActorID:    actor,
		Action:     approval.Action(req.Action),
		Comment:    req.Comment,
		DelegateTo: req.DelegateTo,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) Cancel(c echo.Context) error {
	actor := actorID(c)
	if !id.Valid(actor) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-User-Id"})
	}
	dto, err := h.uc.Cancel(c.Request().Context(), c.Param("document_id"), actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("document_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *DocumentHandler) List(c echo.Context) error {
	actor := actorID(c)
	if !id.Valid(actor) {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing or invalid Ax-User-Id"})
	}
	if c.QueryParam("box") == "inbox" {
		dtos, err := h.uc.Inbox(c.Request().Context(), actor)
		if err != nil {
			return writeDomainError(c, err)
		}
		return c.JSON(http.StatusOK, dtos)
	}
	dtos, err := h.uc.ListByApplicant(c.Request().Context(), actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

func toAttachments(in []attachmentReq) []approval.Attachment {
	if in == nil {
		return nil
	}
	out := make([]approval.Attachment, 0, len(in))
	for _, a := range in {
		out = append(out, approval.Attachment{Kind: a.Kind, Name: a.Name, URL: a.URL})
	}
	return out
}
