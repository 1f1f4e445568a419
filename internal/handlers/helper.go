package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// ParseIntIDParam reads a positive integer path parameter. On failure it
// writes a 400 response and returns false.
func ParseIntIDParam(c *gin.Context, param string) (int, bool) {
	idStr := strings.TrimSpace(c.Param(param))
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		details := "ID must be a positive integer"
		if idStr == "" {
			details = "ID cannot be empty"
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + param,
			Details: details,
		})
		return 0, false
	}
	return id, true
}

// HealthCheck reports liveness
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "awareness-service",
	})
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sendWorkbook(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}
