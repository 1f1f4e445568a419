package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cyberguard/awareness-service/internal/content"
	"github.com/cyberguard/awareness-service/internal/models"
	"github.com/cyberguard/awareness-service/internal/utils"
)

// ContentHandler serves the read-only challenge catalog
type ContentHandler struct {
	BaseHandler
	catalog *content.Catalog
}

func NewContentHandler(catalog *content.Catalog, logger utils.Logger) *ContentHandler {
	return &ContentHandler{
		BaseHandler: NewBaseHandler(logger),
		catalog:     catalog,
	}
}

type ChallengeDetail struct {
	models.ChallengeSummary
	Quizzes []models.Quiz `json:"quizzes"`
}

// ListChallenges godoc
// @Summary List challenges
// @Tags content
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.ChallengeSummary}
// @Router /challenges [get]
func (h *ContentHandler) ListChallenges(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "Challenges retrieved successfully", h.catalog.Summaries())
}

// GetChallenge godoc
// @Summary Get a challenge with its quizzes, answers withheld
// @Tags content
// @Produce json
// @Param id path int true "Challenge ID"
// @Success 200 {object} SuccessResponse{data=ChallengeDetail}
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /challenges/{id} [get]
func (h *ContentHandler) GetChallenge(c *gin.Context) {
	id, ok := ParseIntIDParam(c, "id")
	if !ok {
		return
	}

	challenge, found := h.catalog.Challenge(id)
	if !found {
		h.RespondWithError(c, http.StatusNotFound, "Challenge not found", nil)
		return
	}

	detail := ChallengeDetail{
		ChallengeSummary: challenge.Summary(),
		Quizzes:          make([]models.Quiz, 0, len(challenge.Quizzes)),
	}
	for _, q := range challenge.Quizzes {
		detail.Quizzes = append(detail.Quizzes, q.WithoutAnswer())
	}
	h.RespondWithSuccess(c, http.StatusOK, "Challenge retrieved successfully", detail)
}

// ListLearningPaths godoc
// @Summary List learning paths and their topics
// @Tags content
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.LearningPath}
// @Router /learning-paths [get]
func (h *ContentHandler) ListLearningPaths(c *gin.Context) {
	h.RespondWithSuccess(c, http.StatusOK, "Learning paths retrieved successfully", h.catalog.LearningPaths())
}
