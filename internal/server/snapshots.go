package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	snapshotdomain "github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"github.com/smallbiznis/pcsengine/pkg/db/pagination"
)

type listSnapshotsQuery struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

func (s *Server) ListClaimSnapshots(c *gin.Context) {
	var query listSnapshotsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.snapshotSvc.ListByClaim(c.Request.Context(), snapshotdomain.ListSnapshotRequest{
		Pagination: pagination.Pagination{
			PageToken: strings.TrimSpace(query.PageToken),
			PageSize:  query.PageSize,
		},
		ClaimID: c.Param("claim_id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Snapshots, "page_info": resp.PageInfo})
}
