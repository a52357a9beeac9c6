package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	apierrors "github.com/grsix/outreach/pkg/api/errors"
	"github.com/grsix/outreach/pkg/knowledge"
	"github.com/grsix/outreach/pkg/logger"
	"github.com/grsix/outreach/pkg/models"
	"github.com/grsix/outreach/pkg/store"
)

// Uploaded knowledge base files are plain text, a megabyte is plenty.
const maxUploadBytes = 1 << 20

// KnowledgeHandler handles knowledge base uploads, generation and edits.
type KnowledgeHandler struct {
	svc    *knowledge.Service
	logger logger.Logger
}

// NewKnowledgeHandler creates a new knowledge base handler.
func NewKnowledgeHandler(svc *knowledge.Service, log logger.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{svc: svc, logger: log}
}

// Register mounts the knowledge base routes on the given group.
func (h *KnowledgeHandler) Register(g *echo.Group) {
	g.POST("/upload", h.Upload)
	g.POST("/generate", h.Generate)
	g.POST("/save-ai", h.SaveGenerated)
	g.GET("", h.List)
	g.GET("/id/:id", h.GetByID)
	g.GET("/:companyName", h.GetByCompany)
	g.POST("/:companyName", h.Update)
	g.POST("/:companyName/improve", h.Improve)
}

// Upload stores a manually uploaded knowledge base file.
func (h *KnowledgeHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	companyName := c.FormValue("companyName")
	if companyName == "" {
		return apierrors.BadRequestError(c, "companyName is required")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return apierrors.BadRequestError(c, "A knowledge base file is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return apierrors.BadRequestError(c, "File too large, 1MB maximum")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return apierrors.InternalError(c, err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return apierrors.InternalError(c, err)
	}

	id, err := h.svc.SaveManual(ctx, companyName, string(content))
	if err != nil {
		if errors.Is(err, knowledge.ErrMissingFields) {
			return apierrors.BadRequestError(c, "companyName and file content are required")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Knowledge base uploaded", ID: id})
}

// Generate scrapes a company website and stores the extracted text as a
// knowledge base.
func (h *KnowledgeHandler) Generate(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 90*time.Second)
	defer cancel()

	var req models.GenerateKnowledgeBaseRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	id, content, err := h.svc.SaveFromURL(ctx, req.CompanyName, req.Website)
	if err != nil {
		if errors.Is(err, knowledge.ErrContentTooShort) {
			return apierrors.BadRequestError(c, "Could not extract enough text from the website")
		}
		h.logger.Error("❌ Knowledge base generation failed", "website", req.Website, "error", err)
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]any{"id": id, "content": content})
}

// SaveGenerated stores AI-generated or pasted knowledge base content.
func (h *KnowledgeHandler) SaveGenerated(c echo.Context) error {
	var req models.SaveKnowledgeBaseRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	id, err := h.svc.SaveGenerated(c.Request().Context(), req.CompanyName, req.Content)
	if err != nil {
		if errors.Is(err, knowledge.ErrMissingFields) {
			return apierrors.BadRequestError(c, "companyName and content are required")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Knowledge base saved", ID: id})
}

// List returns every stored knowledge base.
func (h *KnowledgeHandler) List(c echo.Context) error {
	list, err := h.svc.List(c.Request().Context())
	if err != nil {
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// GetByID returns one knowledge base by numeric id.
func (h *KnowledgeHandler) GetByID(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return apierrors.BadRequestError(c, "Invalid knowledge base id")
	}

	kb, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "knowledge base")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, kb)
}

// GetByCompany returns one knowledge base by its company name.
func (h *KnowledgeHandler) GetByCompany(c echo.Context) error {
	kb, err := h.svc.GetByName(c.Request().Context(), c.Param("companyName"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "knowledge base")
		}
		return apierrors.DatabaseError(c, err)
	}
	return c.JSON(http.StatusOK, kb)
}

// Update replaces a knowledge base's content.
func (h *KnowledgeHandler) Update(c echo.Context) error {
	var req models.UpdateKnowledgeBaseRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	if err := h.svc.UpdateContent(c.Request().Context(), c.Param("companyName"), req.Content); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "knowledge base")
		}
		return apierrors.DatabaseError(c, err)
	}

	return c.JSON(http.StatusOK, models.MessageResponse{Message: "Knowledge base updated"})
}

// Improve rewrites a knowledge base with an AI revision following an
// operator instruction.
func (h *KnowledgeHandler) Improve(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 30*time.Second)
	defer cancel()

	var req models.ImproveKnowledgeBaseRequest
	if err := c.Bind(&req); err != nil {
		return apierrors.BadRequestError(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return apierrors.ValidationError(c, err)
	}

	content, err := h.svc.Improve(ctx, c.Param("companyName"), req.Instruction)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apierrors.NotFoundError(c, "knowledge base")
		}
		h.logger.Error("❌ Knowledge base improvement failed", "error", err)
		return apierrors.InternalError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"content": content})
}
