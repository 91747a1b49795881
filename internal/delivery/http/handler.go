package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quevendi/backend/internal/domain"
	"github.com/quevendi/backend/internal/usecase"
	"github.com/rs/zerolog"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	interpreter *usecase.InterpreterService
	parser      *usecase.CommandParser
	matcher     *usecase.MatchingService
	catalog     domain.CatalogRepository
	logger      zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	interpreter *usecase.InterpreterService,
	parser *usecase.CommandParser,
	matcher *usecase.MatchingService,
	catalog domain.CatalogRepository,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		interpreter: interpreter,
		parser:      parser,
		matcher:     matcher,
		catalog:     catalog,
		logger:      logger,
	}
}

// SearchResponse is the body returned by the product search endpoint
type SearchResponse struct {
	Query   string                 `json:"query"`
	Results []domain.ScoredProduct `json:"results"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "quevendi-backend",
		"version": "1.0.0",
	})
}

// ParseCommand classifies an utterance without touching any catalog
func (h *Handler) ParseCommand(c *gin.Context) {
	var req domain.VoiceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: text is required"})
		return
	}

	cmd := h.parser.Parse(req.Text)
	if cmd == nil {
		h.respondError(c, domain.ErrUnparseableCommand)
		return
	}

	c.JSON(http.StatusOK, cmd)
}

// Interpret parses an utterance and resolves it against the store catalog
func (h *Handler) Interpret(c *gin.Context) {
	if h.interpreter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "voice interpreter not configured"})
		return
	}

	var req domain.VoiceCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: text is required"})
		return
	}

	interp, err := h.interpreter.Interpret(c.Request.Context(), c.Param("store_id"), req.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, interp)
}

// Disambiguate applies the user's reply to a pending ambiguous match
func (h *Handler) Disambiguate(c *gin.Context) {
	if h.interpreter == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "voice interpreter not configured"})
		return
	}

	var req domain.DisambiguationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: token and reply are required"})
		return
	}

	interp, err := h.interpreter.Disambiguate(c.Request.Context(), req.Token, req.Reply)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, interp)
}

// SearchProducts ranks the store catalog against the q parameter
func (h *Handler) SearchProducts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}

	products, err := h.catalog.ProductsByStore(c.Request.Context(), c.Param("store_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	results := h.matcher.Search(query, products)
	if results == nil {
		results = []domain.ScoredProduct{}
	}

	c.JSON(http.StatusOK, SearchResponse{Query: query, Results: results})
}

// respondError maps domain errors to HTTP status codes
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrStoreNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrPendingNotFound):
		status = http.StatusGone
	case errors.Is(err, domain.ErrUnparseableCommand), errors.Is(err, domain.ErrSelectionNotUnderstood):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrCacheUnavailable), errors.Is(err, domain.ErrCatalogUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		if status == http.StatusInternalServerError {
			c.JSON(status, gin.H{"error": "internal server error"})
			return
		}
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
