package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/goccy/go-json"
	"github.com/smallbiznis/pcsengine/internal/clock"
	"github.com/smallbiznis/pcsengine/internal/config"
	obsmetrics "github.com/smallbiznis/pcsengine/internal/observability/metrics"
	snapshotdomain "github.com/smallbiznis/pcsengine/internal/snapshot/domain"
	"github.com/smallbiznis/pcsengine/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultQueueSize    = 256
	defaultWriteTimeout = 2 * time.Second

	reasonQueueFull      = "queue_full"
	reasonStopped        = "recorder_stopped"
	reasonEncodeFailed   = "encode_failed"
	reasonInsertFailed   = "insert_failed"
	reasonInvalidClaimID = "invalid_claim_id"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    snapshotdomain.Repository
	Config  config.Config
	Metrics *obsmetrics.Metrics `optional:"true"`
}

// Service records snapshots through a bounded queue drained by one worker.
// Append never blocks; a full queue drops the snapshot.
type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         snapshotdomain.Repository
	metrics      *obsmetrics.Metrics
	writeTimeout time.Duration

	queue chan snapshotdomain.Entry

	// mu guards stopped and orders every enqueue before the final drain.
	mu       sync.Mutex
	stopped  bool
	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

func NewService(p Params) *Service {
	size := p.Config.Snapshot.QueueSize
	if size <= 0 {
		size = defaultQueueSize
	}
	timeout := p.Config.Snapshot.WriteTimeout
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("snapshot.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		metrics:      p.Metrics,
		writeTimeout: timeout,
		queue:        make(chan snapshotdomain.Entry, size),
	}
}

func (s *Service) Append(ctx context.Context, entry snapshotdomain.Entry) {
	if s == nil {
		return
	}
	entry.ClaimID = strings.TrimSpace(entry.ClaimID)
	if entry.ClaimID == "" {
		s.drop(ctx, entry, reasonInvalidClaimID)
		return
	}
	if reason := s.enqueue(entry); reason != "" {
		s.drop(ctx, entry, reason)
	}
}

// enqueue is a non-blocking send made under mu, so no entry can land after
// Stop has marked the recorder stopped and the writer has drained.
func (s *Service) enqueue(entry snapshotdomain.Entry) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return reasonStopped
	}
	select {
	case s.queue <- entry:
		return ""
	default:
		return reasonQueueFull
	}
}

func (s *Service) drop(ctx context.Context, entry snapshotdomain.Entry, reason string) {
	s.log.Warn("calculation snapshot dropped",
		zap.String("claim_id", entry.ClaimID),
		zap.String("reason", reason),
	)
	s.metrics.RecordSnapshotFailure(ctx, reason)
}

// Start launches the writer. Calling it twice is a no-op.
func (s *Service) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopCh != nil {
		return
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go func() {
		defer close(s.doneCh)
		for {
			select {
			case entry := <-s.queue:
				s.write(entry)
			case <-s.stopCh:
				s.drain()
				return
			}
		}
	}()
}

// Stop rejects new snapshots, flushes what is queued and waits for the
// writer until ctx expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	if stopCh == nil {
		return nil
	}
	s.stopOnce.Do(func() { close(stopCh) })
	select {
	case <-doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Service) drain() {
	for {
		select {
		case entry := <-s.queue:
			s.write(entry)
		default:
			return
		}
	}
}

func (s *Service) write(entry snapshotdomain.Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	payload, err := json.Marshal(entry.Result)
	if err != nil {
		s.log.Warn("failed to encode calculation snapshot", zap.String("claim_id", entry.ClaimID), zap.Error(err))
		s.metrics.RecordSnapshotFailure(ctx, reasonEncodeFailed)
		return
	}

	row := snapshotdomain.Snapshot{
		ID:          s.genID.Generate(),
		ClaimID:     entry.ClaimID,
		RuleVersion: entry.RuleVersion,
		TotalCents:  entry.TotalCents,
		Confidence:  entry.Confidence,
		Result:      datatypes.JSON(payload),
		CreatedAt:   s.clock.Now().UTC(),
	}
	if requestID := strings.TrimSpace(entry.RequestID); requestID != "" {
		row.RequestID = &requestID
	}

	if err := s.repo.Insert(ctx, s.db, &row); err != nil {
		s.log.Warn("failed to write calculation snapshot", zap.String("claim_id", entry.ClaimID), zap.Error(err))
		s.metrics.RecordSnapshotFailure(ctx, reasonInsertFailed)
	}
}

func (s *Service) ListByClaim(ctx context.Context, req snapshotdomain.ListSnapshotRequest) (snapshotdomain.ListSnapshotResponse, error) {
	claimID := strings.TrimSpace(req.ClaimID)
	if claimID == "" {
		return snapshotdomain.ListSnapshotResponse{}, snapshotdomain.ErrInvalidClaimID
	}

	var cursor *snapshotdomain.Cursor
	decoded, err := pagination.DecodeCursor(req.PageToken)
	if err != nil {
		return snapshotdomain.ListSnapshotResponse{}, snapshotdomain.ErrInvalidPageToken
	}
	if decoded != nil {
		createdAt, err := time.Parse(time.RFC3339Nano, decoded.CreatedAt)
		if err != nil {
			return snapshotdomain.ListSnapshotResponse{}, snapshotdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return snapshotdomain.ListSnapshotResponse{}, snapshotdomain.ErrInvalidPageToken
		}
		cursor = &snapshotdomain.Cursor{ID: id, CreatedAt: createdAt}
	}

	limit := req.Limit()
	items, err := s.repo.ListByClaim(ctx, s.db, snapshotdomain.ListFilter{
		ClaimID: claimID,
		Cursor:  cursor,
		Limit:   limit,
	})
	if err != nil {
		return snapshotdomain.ListSnapshotResponse{}, err
	}

	items, pageInfo := pagination.BuildCursorPageInfo(items, limit, func(item snapshotdomain.Snapshot) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})

	return snapshotdomain.ListSnapshotResponse{PageInfo: pageInfo, Snapshots: items}, nil
}

var _ snapshotdomain.Service = (*Service)(nil)
