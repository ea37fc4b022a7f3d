package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/logger"
	"github.com/sho-platform/sho-core/pkg/mathutil"
)

func (p *Provider) ListEvents(ctx context.Context, filter dataprovider.EventFilter) ([]dataprovider.Event, error) {
	limit := mathutil.ClampLimit(filter.Limit, defaultPageSize, maxPageSize)

	q := p.db.NewSelect().
		Model((*eventRow)(nil)).
		Order("e.created_at DESC").
		Limit(limit)

	if filter.Type != "" {
		q = q.Where("e.type = ?", filter.Type)
	}
	if filter.ActorID != "" {
		q = q.Where("e.actor_id = ?", filter.ActorID)
	}
	if filter.TargetID != "" {
		q = q.Where("e.target_id = ?", filter.TargetID)
	}
	if filter.Since != nil {
		q = q.Where("e.created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		q = q.Where("e.created_at < ?", *filter.Until)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []eventRow
	if err := q.Scan(ctx, &rows); err != nil {
		p.log.Error("list events failed", logger.Error(err))
		return nil, p.mapError(err)
	}

	events := make([]dataprovider.Event, len(rows))
	for i := range rows {
		events[i] = rows[i].toEvent()
	}
	return events, nil
}

func (p *Provider) GetEvent(ctx context.Context, id string) (*dataprovider.Event, error) {
	var row eventRow
	err := p.db.NewSelect().
		Model(&row).
		Where("e.id = ?", id).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &dataprovider.NotFoundError{Resource: "event", ID: id}
		}
		p.log.Error("get event failed", logger.Error(err), slog.String("id", id))
		return nil, p.mapError(err)
	}

	event := row.toEvent()
	return &event, nil
}

func (p *Provider) AppendEvent(ctx context.Context, input dataprovider.EventInput) (string, error) {
	var fields []dataprovider.FieldError
	if input.Type == "" {
		fields = append(fields, dataprovider.FieldError{Field: "type", Message: "is required"})
	}
	if input.ActorID == "" {
		fields = append(fields, dataprovider.FieldError{Field: "actorId", Message: "is required"})
	}
	if len(fields) > 0 {
		return "", &dataprovider.ValidationError{Fields: fields}
	}

	row := &eventRow{
		Type:     input.Type,
		ActorID:  input.ActorID,
		TargetID: input.TargetID,
		Metadata: input.Metadata,
	}
	if _, err := p.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		p.log.Error("append event failed", logger.Error(err))
		return "", p.mapError(err)
	}
	return row.ID, nil
}
