package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/pcsengine/internal/grade"
)

func (s *Server) NormalizeGrade(c *gin.Context) {
	input := strings.TrimSpace(c.Query("input"))
	if input == "" {
		AbortWithError(c, newValidationError("input", "required", "input is required"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": grade.Normalize(input)})
}
