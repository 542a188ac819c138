package gormrepo

import (
	"context"
	"slices"

	"timeherosim/internal/adapter/repo/gorm/model"
	"timeherosim/internal/app/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SnapshotRepo struct {
	db *gorm.DB
}

func NewSnapshotRepo(db *gorm.DB) SnapshotRepo {
	return SnapshotRepo{db: db}
}

func (r SnapshotRepo) Save(ctx context.Context, snap ports.SnapshotRecord) error {
	m := model.SimSnapshot{
		RunID:   snap.RunID,
		Tick:    snap.Tick,
		Day:     int32(snap.Day),
		Payload: snap.Payload,
		SavedAt: snap.SavedAt,
	}
	return mapErr(getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&m).Error)
}

func (r SnapshotRepo) Latest(ctx context.Context, runID string) (ports.SnapshotRecord, error) {
	var m model.SimSnapshot
	err := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where("run_id = ?", runID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "tick"}, Desc: true}).
		First(&m).Error
	if err != nil {
		return ports.SnapshotRecord{}, mapErr(err)
	}
	return toSnapshotRecord(m), nil
}

// ListByRunID returns the latest limit snapshots, oldest first.
func (r SnapshotRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]ports.SnapshotRecord, error) {
	rows := []model.SimSnapshot{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where("run_id = ?", runID).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "tick"}, Desc: true})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	slices.Reverse(rows)
	out := make([]ports.SnapshotRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, toSnapshotRecord(m))
	}
	return out, nil
}

func toSnapshotRecord(m model.SimSnapshot) ports.SnapshotRecord {
	return ports.SnapshotRecord{
		RunID:   m.RunID,
		Tick:    m.Tick,
		Day:     int(m.Day),
		Payload: m.Payload,
		SavedAt: m.SavedAt,
	}
}
