package gormrepo

import (
	"context"
	"time"

	"timeherosim/internal/adapter/repo/gorm/model"
	"timeherosim/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RunRepo struct {
	db *gorm.DB
}

func NewRunRepo(db *gorm.DB) RunRepo {
	return RunRepo{db: db}
}

func (r RunRepo) Create(ctx context.Context, run ports.RunRecord) error {
	if run.Status == "" {
		run.Status = ports.RunStatusRunning
	}
	m := model.SimRun{
		RunID:     run.RunID,
		Persona:   run.Persona,
		Status:    run.Status,
		Reason:    run.Reason,
		Summary:   run.Summary,
		StartedAt: run.StartedAt,
		UpdatedAt: run.UpdatedAt,
	}
	return mapErr(getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&m).Error)
}

func (r RunRepo) Get(ctx context.Context, runID string) (ports.RunRecord, error) {
	var m model.SimRun
	if err := getDBFromCtx(ctx, r.db).WithContext(ctx).Where("run_id = ?", runID).First(&m).Error; err != nil {
		return ports.RunRecord{}, mapErr(err)
	}
	return toRunRecord(m), nil
}

func (r RunRepo) Complete(ctx context.Context, runID, reason, summary string, at time.Time) error {
	res := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Model(&model.SimRun{}).
		Where("run_id = ?", runID).
		Updates(map[string]any{
			"status":     ports.RunStatusCompleted,
			"reason":     reason,
			"summary":    summary,
			"updated_at": at,
		})
	if res.Error != nil {
		return mapErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r RunRepo) List(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	rows := []model.SimRun{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "started_at"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]ports.RunRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toRunRecord(m))
	}
	return out, nil
}

func toRunRecord(m model.SimRun) ports.RunRecord {
	return ports.RunRecord{
		RunID:     m.RunID,
		Persona:   m.Persona,
		Status:    m.Status,
		Reason:    m.Reason,
		Summary:   m.Summary,
		StartedAt: m.StartedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
