package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	entdomain "github.com/smallbiznis/pcsengine/internal/entitlement/domain"
)

func (s *Server) CalculateEntitlements(c *gin.Context) {
	var req entdomain.ClaimInput
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.entitlementSvc.Calculate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Set("claim_id", result.ClaimID)
	c.JSON(http.StatusOK, gin.H{"data": result})
}
