package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ratedomain "github.com/smallbiznis/pcsengine/internal/rate/domain"
)

type resolveRateQuery struct {
	Key  string `form:"key"`
	AsOf string `form:"as_of"`
}

func (s *Server) ResolveRate(c *gin.Context) {
	rateType, ok := ratedomain.ParseRateType(strings.TrimSpace(c.Param("rate_type")))
	if !ok {
		AbortWithError(c, ratedomain.ErrInvalidRateType)
		return
	}

	var query resolveRateQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	asOf, err := parseAsOf(query.AsOf, s.clock)
	if err != nil {
		AbortWithError(c, newValidationError("as_of", "invalid_as_of", "as_of must be YYYY-MM-DD"))
		return
	}

	res, err := s.rateSvc.Resolve(c.Request.Context(), rateType, query.Key, asOf)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": res})
}

func (s *Server) ListRateHistory(c *gin.Context) {
	rateType, ok := ratedomain.ParseRateType(strings.TrimSpace(c.Param("rate_type")))
	if !ok {
		AbortWithError(c, ratedomain.ErrInvalidRateType)
		return
	}

	records, err := s.rateSvc.History(c.Request.Context(), rateType, c.Query("key"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": records})
}

func (s *Server) PublishRate(c *gin.Context) {
	var req ratedomain.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	record, err := s.rateSvc.Publish(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": record})
}
