package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cyberguard/awareness-service/internal/repositories"
	"github.com/cyberguard/awareness-service/internal/services"
	"github.com/cyberguard/awareness-service/internal/utils"
)

// ReportHandler serves score history and spreadsheet exports
type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// ExportProgress godoc
// @Summary Download the caller's progress as an XLSX workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Router /progress/export [get]
func (h *ReportHandler) ExportProgress(c *gin.Context) {
	data, err := h.reportService.ExportProgress(c.Request.Context(), c.GetString(ContextClientID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendWorkbook(c, "progress.xlsx", data)
}

// ListScores godoc
// @Summary List the signed-in user's completed challenge runs
// @Tags reports
// @Produce json
// @Param challenge_id query int false "Filter by challenge"
// @Param limit query int false "Page size"
// @Param offset query int false "Offset"
// @Param sort_by query string false "completed_at, score or test_id"
// @Param sort_order query string false "asc or desc"
// @Success 200 {object} SuccessResponse{data=services.ScoreList}
// @Failure 401 {object} ErrorResponse
// @Router /me/scores [get]
func (h *ReportHandler) ListScores(c *gin.Context) {
	userID, _ := currentUserID(c)

	filters, err := parseScoreFilters(c)
	if err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err, err.Error())
		return
	}

	list, err := h.reportService.ListScores(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Scores retrieved successfully", list)
}

// ExportScores godoc
// @Summary Download the signed-in user's score history as an XLSX workbook
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 401 {object} ErrorResponse
// @Router /me/scores/export [get]
func (h *ReportHandler) ExportScores(c *gin.Context) {
	userID, _ := currentUserID(c)

	data, err := h.reportService.ExportScores(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendWorkbook(c, fmt.Sprintf("scores-%d.xlsx", userID), data)
}

func parseScoreFilters(c *gin.Context) (repositories.ScoreFilters, error) {
	filters := repositories.ScoreFilters{
		SortBy:    c.DefaultQuery("sort_by", "completed_at"),
		SortOrder: c.DefaultQuery("sort_order", "desc"),
	}

	if v := c.Query("challenge_id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return filters, fmt.Errorf("challenge_id: %w", err)
		}
		filters.TestID = &id
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filters, fmt.Errorf("limit must be a non-negative integer")
		}
		filters.Limit = n
	}
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return filters, fmt.Errorf("offset must be a non-negative integer")
		}
		filters.Offset = n
	}

	switch filters.SortBy {
	case "completed_at", "score", "test_id":
	default:
		return filters, fmt.Errorf("unsupported sort_by %q", filters.SortBy)
	}
	switch filters.SortOrder {
	case "asc", "desc":
	default:
		return filters, fmt.Errorf("unsupported sort_order %q", filters.SortOrder)
	}
	return filters, nil
}
