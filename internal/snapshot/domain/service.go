package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/pcsengine/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, snapshot *Snapshot) error
	ListByClaim(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Snapshot, error)
}

// Recorder accepts snapshots without blocking and without reporting
// failures to the caller.
type Recorder interface {
	Append(ctx context.Context, entry Entry)
}

type ListSnapshotRequest struct {
	pagination.Pagination
	ClaimID string
}

type ListSnapshotResponse struct {
	pagination.PageInfo
	Snapshots []Snapshot `json:"snapshots"`
}

type Service interface {
	Recorder
	ListByClaim(ctx context.Context, req ListSnapshotRequest) (ListSnapshotResponse, error)
}

var (
	ErrInvalidClaimID   = errors.New("invalid_claim_id")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
