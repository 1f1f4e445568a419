package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyberguard/awareness-service/internal/services"
	"github.com/cyberguard/awareness-service/internal/utils"
)

// ProgressHandler exposes the caller's progress and challenge session
type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

type MinutesRequest struct {
	Minutes int `json:"minutes"`
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// GetProgress godoc
// @Summary Get progress, learning progress, statistics and the active session
// @Tags progress
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.ProgressView}
// @Router /progress [get]
func (h *ProgressHandler) GetProgress(c *gin.Context) {
	view, err := h.progressService.GetProgress(c.Request.Context(), c.GetString(ContextClientID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Progress retrieved successfully", view)
}

// StartChallenge godoc
// @Summary Start (or restart) a challenge, abandoning any active one
// @Tags progress
// @Produce json
// @Param id path int true "Challenge ID"
// @Success 200 {object} SuccessResponse{data=services.SessionView}
// @Failure 404 {object} ErrorResponse
// @Router /progress/challenges/{id}/start [post]
func (h *ProgressHandler) StartChallenge(c *gin.Context) {
	id, ok := ParseIntIDParam(c, "id")
	if !ok {
		return
	}

	h.LogRequest(c, "Starting challenge", "challenge_id", id)

	session, err := h.progressService.StartChallenge(c.Request.Context(), actor(c), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Challenge started", session)
}

// CurrentQuiz godoc
// @Summary Get the active session and its current quiz without the answer
// @Tags progress
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.SessionView}
// @Failure 409 {object} ErrorResponse
// @Router /progress/current [get]
func (h *ProgressHandler) CurrentQuiz(c *gin.Context) {
	session, err := h.progressService.CurrentSession(c.Request.Context(), c.GetString(ContextClientID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Current quiz retrieved", session)
}

// SubmitAnswer godoc
// @Summary Submit an answer for the current quiz
// @Tags progress
// @Accept json
// @Produce json
// @Param answer body services.SubmitRequest true "Answer shaped by quiz type, or a password"
// @Success 200 {object} SuccessResponse{data=services.SubmitResponse}
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /progress/submit [post]
func (h *ProgressHandler) SubmitAnswer(c *gin.Context) {
	var req services.SubmitRequest
	if !h.bindJSON(c, &req) {
		return
	}

	resp, err := h.progressService.SubmitAnswer(c.Request.Context(), actor(c), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	h.LogRequest(c, "Answer submitted",
		"challenge_id", resp.Result.ChallengeID,
		"quiz_index", resp.Result.QuizIndex,
		"correct", resp.Result.Correct)
	h.RespondWithSuccess(c, http.StatusOK, "Answer evaluated", resp)
}

// ResetSession godoc
// @Summary Abandon the active challenge, keeping earned points
// @Tags progress
// @Produce json
// @Success 200 {object} SuccessResponse{data=services.ProgressView}
// @Router /progress/reset [post]
func (h *ProgressHandler) ResetSession(c *gin.Context) {
	view, err := h.progressService.ResetSession(c.Request.Context(), actor(c))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Session reset", view)
}

// ClearProgress godoc
// @Summary Delete all stored progress for the caller
// @Tags progress
// @Success 204
// @Router /progress [delete]
func (h *ProgressHandler) ClearProgress(c *gin.Context) {
	if err := h.progressService.ClearProgress(c.Request.Context(), actor(c)); err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.LogRequest(c, "Progress cleared")
	c.Status(http.StatusNoContent)
}

// CompleteTopic godoc
// @Summary Mark a learning topic as completed
// @Tags progress
// @Accept json
// @Produce json
// @Param id path int true "Topic ID"
// @Param body body MinutesRequest false "Minutes spent, defaults to the topic duration"
// @Success 200 {object} SuccessResponse{data=services.ProgressView}
// @Router /progress/topics/{id}/complete [post]
func (h *ProgressHandler) CompleteTopic(c *gin.Context) {
	id, ok := ParseIntIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Minutes *int `json:"minutes"`
	}
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	view, err := h.progressService.CompleteTopic(c.Request.Context(), actor(c), id, req.Minutes)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Topic completed", view)
}

// RecordLearningTime godoc
// @Summary Add study minutes to learning progress
// @Tags progress
// @Accept json
// @Produce json
// @Param body body MinutesRequest true "Minutes"
// @Success 200 {object} SuccessResponse{data=services.ProgressView}
// @Router /progress/time [post]
func (h *ProgressHandler) RecordLearningTime(c *gin.Context) {
	var req MinutesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	view, err := h.progressService.RecordLearningTime(c.Request.Context(), actor(c), req.Minutes)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Learning time recorded", view)
}

// GetAchievements godoc
// @Summary List achievements with their unlocked state
// @Tags progress
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]progress.Achievement}
// @Router /progress/achievements [get]
func (h *ProgressHandler) GetAchievements(c *gin.Context) {
	list, err := h.progressService.Achievements(c.Request.Context(), c.GetString(ContextClientID))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	h.RespondWithSuccess(c, http.StatusOK, "Achievements retrieved", list)
}
