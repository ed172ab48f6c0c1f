package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/StayBooks/stay_ledger_app/internal/apperrors"
	portssvc "github.com/StayBooks/stay_ledger_app/internal/core/ports/services"
	"github.com/StayBooks/stay_ledger_app/internal/dto"
	"github.com/StayBooks/stay_ledger_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	postingService portssvc.PostingSvc
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(ps portssvc.PostingSvc) *journalHandler {
	return &journalHandler{
		postingService: ps,
	}
}

// registerJournalRoutes registers routes related to journal entries.
func registerJournalRoutes(rg *gin.RouterGroup, postingService portssvc.PostingSvc) {
	h := newJournalHandler(postingService)

	entries := rg.Group("/entries")
	{
		entries.POST("", middleware.RequireCapability(middleware.CapabilityPost), h.postEntry)
		entries.GET("/:id", h.getEntry)
		entries.GET("", h.listEntries)
		entries.POST("/:id/reverse", middleware.RequireCapability(middleware.CapabilityPost), h.reverseEntry)
	}
}

// postEntry godoc
// @Summary Post a journal entry
// @Description Validates a proposed entry and appends it to the ledger atomically
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.CreateEntryRequest true "Entry details"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Write conflict, retry the request"
// @Failure 500 {object} map[string]string "Failed to post entry"
// @Security BearerAuth
// @Router /entries [post]
func (h *journalHandler) postEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for PostEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("Creator user ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to post entry",
		slog.String("reference_type", string(req.ReferenceType)),
		slog.Int("line_count", len(req.Lines)))

	entry, err := h.postingService.PostEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error posting entry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Write conflict posting entry", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": "Ledger write conflict, please retry"})
		} else {
			logger.Error("Failed to post entry in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to post entry"})
		}
		return
	}

	logger.Info("Entry posted successfully", slog.String("journal_id", entry.JournalID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(entry))
}

// getEntry godoc
// @Summary Get a journal entry by ID
// @Description Retrieves a committed entry with its lines
// @Tags entries
// @Produce  json
// @Param   id path string true "Journal entry ID"
// @Success 200 {object} dto.EntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve entry"
// @Security BearerAuth
// @Router /entries/{id} [get]
func (h *journalHandler) getEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("id")

	entry, err := h.postingService.GetEntryByID(c.Request.Context(), journalID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Entry not found", slog.String("journal_id", journalID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else {
			logger.Error("Failed to get entry from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve entry"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.ToEntryResponse(entry))
}

// listEntries godoc
// @Summary List journal entries
// @Description Retrieves a keyset-paginated list of entries, oldest first
// @Tags entries
// @Produce  json
// @Param   from query string false "Start date (YYYY-MM-DD)"
// @Param   to query string false "End date (YYYY-MM-DD)"
// @Param   referenceType query string false "Filter by reference type"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Pagination token from previous page"
// @Success 200 {object} dto.ListEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list entries"
// @Security BearerAuth
// @Router /entries [get]
func (h *journalHandler) listEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query for ListEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.postingService.ListEntries(c.Request.Context(), params)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Invalid entry listing query", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to list entries from service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list entries"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// reverseEntry godoc
// @Summary Reverse a journal entry
// @Description Posts a mirror entry and voids the original in one atomic change
// @Tags entries
// @Accept  json
// @Produce  json
// @Param   id path string true "Journal entry ID"
// @Param   reversal body dto.ReverseEntryRequest true "Reversal reason"
// @Success 201 {object} dto.EntryResponse
// @Failure 400 {object} map[string]string "Entry already voided or is itself a reversal"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Entry not found"
// @Failure 409 {object} map[string]string "Write conflict, retry the request"
// @Failure 500 {object} map[string]string "Failed to reverse entry"
// @Security BearerAuth
// @Router /entries/{id}/reverse [post]
func (h *journalHandler) reverseEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	journalID := c.Param("id")

	var req dto.ReverseEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ReverseEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		logger.Error("User ID not found in context")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	logger = logger.With(slog.String("journal_id", journalID), slog.String("user_id", userID))
	logger.Info("Received request to reverse entry")

	reversing, err := h.postingService.ReverseEntry(c.Request.Context(), journalID, req.Reason, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Entry not found for reversal")
			c.JSON(http.StatusNotFound, gin.H{"error": "Entry not found"})
		} else if errors.Is(err, apperrors.ErrValidation) {
			logger.Warn("Validation error reversing entry", slog.String("error", err.Error()))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else if errors.Is(err, apperrors.ErrConflict) {
			logger.Warn("Write conflict reversing entry", slog.String("error", err.Error()))
			c.JSON(http.StatusConflict, gin.H{"error": "Ledger write conflict, please retry"})
		} else {
			logger.Error("Failed to reverse entry in service", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reverse entry"})
		}
		return
	}

	logger.Info("Entry reversed successfully", slog.String("reversing_journal_id", reversing.JournalID))
	c.JSON(http.StatusCreated, dto.ToEntryResponse(reversing))
}
