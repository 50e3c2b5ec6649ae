package repos

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/ainews-backend/internal/domain/jobs"
	"github.com/yungbote/ainews-backend/internal/platform/logger"
)

type RunRecordRepo interface {
	Save(ctx context.Context, tx *gorm.DB, rec *jobs.RunRecord) error
	GetLatest(ctx context.Context, tx *gorm.DB) (*jobs.RunRecord, error)
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*jobs.RunRecord, error)
	// SaveRun persists a cycle summary; it satisfies the orchestrator ledger.
	SaveRun(ctx context.Context, s jobs.RunSummary) error
}

type runRecordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRunRecordRepo(db *gorm.DB, baseLog *logger.Logger) RunRecordRepo {
	return &runRecordRepo{
		db:  db,
		log: baseLog.With("repo", "RunRecordRepo"),
	}
}

// Save upserts by run id.
func (r *runRecordRepo) Save(ctx context.Context, tx *gorm.DB, rec *jobs.RunRecord) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if rec == nil || rec.ID == "" {
		return errors.New("run record requires an id")
	}
	return transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

// GetLatest returns the most recently started run, or nil when there is none.
func (r *runRecordRepo) GetLatest(ctx context.Context, tx *gorm.DB) (*jobs.RunRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out jobs.RunRecord
	err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(1).
		Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *runRecordRepo) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*jobs.RunRecord, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var out []*jobs.RunRecord
	if err := transaction.WithContext(ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *runRecordRepo) SaveRun(ctx context.Context, s jobs.RunSummary) error {
	rec, err := jobs.NewRunRecord(s)
	if err != nil {
		return err
	}
	if err := r.Save(ctx, nil, rec); err != nil {
		return err
	}
	r.log.Debug("Run recorded", "run_id", rec.ID, "outcome", rec.Outcome)
	return nil
}
