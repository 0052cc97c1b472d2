package repository

import (
	"context"

	"github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, snapshot *domain.Snapshot) error {
	if snapshot == nil {
		return nil
	}
	return db.WithContext(ctx).Exec(
		`INSERT INTO calculation_snapshots (
			id, claim_id, request_id, rule_version, total_cents,
			confidence, result, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		snapshot.ID,
		snapshot.ClaimID,
		snapshot.RequestID,
		snapshot.RuleVersion,
		snapshot.TotalCents,
		snapshot.Confidence,
		snapshot.Result,
		snapshot.CreatedAt,
	).Error
}

// ListByClaim returns newest first, fetching one row past Limit so callers
// can tell whether another page exists.
func (r *repo) ListByClaim(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.Snapshot, error) {
	var items []domain.Snapshot
	stmt := db.WithContext(ctx).Model(&domain.Snapshot{}).
		Where("claim_id = ?", filter.ClaimID)

	if filter.Cursor != nil {
		stmt = stmt.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			filter.Cursor.CreatedAt,
			filter.Cursor.CreatedAt,
			filter.Cursor.ID,
		)
	}

	stmt = stmt.Order("created_at desc, id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
