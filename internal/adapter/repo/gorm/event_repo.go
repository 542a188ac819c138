package gormrepo

import (
	"context"
	"encoding/json"
	"slices"

	"timeherosim/internal/adapter/repo/gorm/model"
	"timeherosim/internal/domain/game"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type EventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepo {
	return EventRepo{db: db}
}

func (r EventRepo) Append(ctx context.Context, runID string, events []game.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]model.SimEvent, 0, len(events))
	for _, e := range events {
		b, err := json.Marshal(e.Data)
		if err != nil {
			return err
		}
		rows = append(rows, model.SimEvent{
			RunID:       runID,
			Type:        e.Type,
			Description: e.Description,
			OccurredAt:  int32(e.OccurredAt),
			Data:        b,
		})
	}
	return getDBFromCtx(ctx, r.db).WithContext(ctx).Create(&rows).Error
}

// ListByRunID returns the latest limit events in insertion order.
func (r EventRepo) ListByRunID(ctx context.Context, runID string, limit int) ([]game.DomainEvent, error) {
	rows := []model.SimEvent{}
	query := getDBFromCtx(ctx, r.db).WithContext(ctx).
		Where(&model.SimEvent{RunID: runID}).
		Clauses(clause.OrderBy{
			Columns: []clause.OrderByColumn{{Column: clause.Column{Name: "id"}, Desc: true}},
		})
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	slices.Reverse(rows)

	out := make([]game.DomainEvent, 0, len(rows))
	for _, row := range rows {
		var data map[string]any
		if len(row.Data) > 0 {
			_ = json.Unmarshal(row.Data, &data)
		}
		out = append(out, game.DomainEvent{
			Type:        row.Type,
			Description: row.Description,
			OccurredAt:  int(row.OccurredAt),
			Data:        data,
		})
	}
	return out, nil
}
