package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
)

// @Summary List support cases
// @Tags cases
// @Produce json
// @Param channel query string false "Channel filter"
// @Param status query string false "Status filter"
// @Param case_type query string false "Case type filter"
// @Param q query string false "Search in identity, name, summary"
// @Success 200 {object} map[string]any
// @Router /api/cases [get]
func (h *Handler) CasesList(c *gin.Context) {
	channel := c.Query("channel")
	status := c.Query("status")
	caseType := c.Query("case_type")
	q := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	items, err := h.Store.ListCases(c.Request.Context(), channel, status, caseType, q, limit, offset)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list cases", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

// @Summary Case details with full message history
// @Tags cases
// @Produce json
// @Param id path string true "Case ID"
// @Success 200 {object} map[string]any
// @Router /api/cases/{id} [get]
func (h *Handler) CaseDetails(c *gin.Context) {
	id := c.Param("id")
	result, err := h.Store.GetCaseDetails(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(c, http.StatusNotFound, "NOT_FOUND", "Case not found", nil)
			return
		}
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get case", nil)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) TelemetryList(c *gin.Context) {
	source := c.Query("source")
	level := c.Query("level")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	items, err := h.Store.ListTelemetry(c.Request.Context(), source, level, limit)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list telemetry", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}
