// Package postgres implements the DataProvider contract against the primary
// managed PostgreSQL database using bun.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/logger"
	"github.com/sho-platform/sho-core/pkg/mathutil"
	"github.com/sho-platform/sho-core/pkg/pgutils"
)

// Page size bounds applied to every listing operation. Unbounded listing is
// not allowed through this contract.
const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// Options tunes the provider. The read-through cache covers GetThing and
// GetConnection; invalidation happens on the corresponding writes.
type Options struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider implements dataprovider.DataProvider on top of bun.IDB.
type Provider struct {
	db    bun.IDB
	log   *slog.Logger
	cache *entityCache
}

var _ dataprovider.DataProvider = (*Provider)(nil)

// New creates a postgres-backed provider around an existing database handle.
func New(db bun.IDB, log *slog.Logger, opts Options) *Provider {
	p := &Provider{
		db:  db,
		log: log.With(logger.Scope("dataprovider.postgres")),
	}
	if opts.CacheEnabled {
		p.cache = newEntityCache(opts.CacheTTL)
	}
	return p
}

// Ping issues a trivial round-trip query.
func (p *Provider) Ping(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, "SELECT 1"); err != nil {
		return p.mapError(err)
	}
	return nil
}

// mapError translates database errors into the contract's failure taxonomy.
func (p *Provider) mapError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &dataprovider.NetworkError{Cause: err}
	default:
		return &dataprovider.ServerError{Status: 500, Message: err.Error()}
	}
}

// ------------------------------------------------------------------
// Things
// ------------------------------------------------------------------

func (p *Provider) ListThings(ctx context.Context, filter dataprovider.ThingFilter) ([]dataprovider.Thing, error) {
	limit := mathutil.ClampLimit(filter.Limit, defaultPageSize, maxPageSize)

	q := p.db.NewSelect().
		Model((*thingRow)(nil)).
		Where("t.deleted_at IS NULL").
		Order("t.created_at DESC").
		Limit(limit)

	if filter.Type != "" {
		q = q.Where("t.type = ?", filter.Type)
	}
	if filter.Status != "" {
		q = q.Where("t.status = ?", filter.Status)
	}
	if filter.NameContains != "" {
		q = q.Where("t.name ILIKE ?", "%"+filter.NameContains+"%")
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []thingRow
	if err := q.Scan(ctx, &rows); err != nil {
		p.log.Error("list things failed", logger.Error(err))
		return nil, p.mapError(err)
	}

	things := make([]dataprovider.Thing, len(rows))
	for i := range rows {
		things[i] = rows[i].toThing()
	}
	return things, nil
}

func (p *Provider) GetThing(ctx context.Context, id string) (*dataprovider.Thing, error) {
	if t, ok := p.cache.getThing(id); ok {
		return t, nil
	}

	var row thingRow
	err := p.db.NewSelect().
		Model(&row).
		Where("t.id = ?", id).
		Where("t.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &dataprovider.NotFoundError{Resource: "thing", ID: id}
		}
		p.log.Error("get thing failed", logger.Error(err), slog.String("id", id))
		return nil, p.mapError(err)
	}

	thing := row.toThing()
	p.cache.putThing(&thing)
	return &thing, nil
}

func (p *Provider) CreateThing(ctx context.Context, input dataprovider.CreateThingInput) (string, error) {
	var fields []dataprovider.FieldError
	if input.Type == "" {
		fields = append(fields, dataprovider.FieldError{Field: "type", Message: "is required"})
	}
	if input.Name == "" {
		fields = append(fields, dataprovider.FieldError{Field: "name", Message: "is required"})
	}
	if len(fields) > 0 {
		return "", &dataprovider.ValidationError{Fields: fields}
	}

	props := input.Properties
	if props == nil {
		props = map[string]any{}
	}
	row := &thingRow{
		Type:       input.Type,
		Name:       input.Name,
		Status:     input.Status,
		Properties: props,
	}
	if _, err := p.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		p.log.Error("create thing failed", logger.Error(err))
		return "", p.mapError(err)
	}
	return row.ID, nil
}

func (p *Provider) UpdateThing(ctx context.Context, input dataprovider.UpdateThingInput) (*dataprovider.Thing, error) {
	if input.ID == "" {
		return nil, &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
			{Field: "id", Message: "is required"},
		}}
	}

	q := p.db.NewUpdate().
		Model((*thingRow)(nil)).
		Set("updated_at = now()").
		Where("id = ?", input.ID).
		Where("deleted_at IS NULL")

	if input.Name != nil {
		q = q.Set("name = ?", *input.Name)
	}
	if input.Status != nil {
		q = q.Set("status = ?", *input.Status)
	}
	if input.Properties != nil {
		q = q.Set("properties = ?", input.Properties)
	}

	var row thingRow
	err := q.Returning("*").Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &dataprovider.NotFoundError{Resource: "thing", ID: input.ID}
		}
		p.log.Error("update thing failed", logger.Error(err), slog.String("id", input.ID))
		return nil, p.mapError(err)
	}

	p.cache.dropThing(input.ID)
	thing := row.toThing()
	return &thing, nil
}

func (p *Provider) DeleteThing(ctx context.Context, id string) error {
	res, err := p.db.NewUpdate().
		Model((*thingRow)(nil)).
		Set("deleted_at = now()").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		p.log.Error("delete thing failed", logger.Error(err), slog.String("id", id))
		return p.mapError(err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &dataprovider.NotFoundError{Resource: "thing", ID: id}
	}
	p.cache.dropThing(id)
	return nil
}

// ------------------------------------------------------------------
// Connections
// ------------------------------------------------------------------

func (p *Provider) ListConnections(ctx context.Context, filter dataprovider.ConnectionFilter) ([]dataprovider.Connection, error) {
	limit := mathutil.ClampLimit(filter.Limit, defaultPageSize, maxPageSize)

	q := p.db.NewSelect().
		Model((*connectionRow)(nil)).
		Where("c.deleted_at IS NULL").
		Order("c.created_at DESC").
		Limit(limit)

	if filter.FromID != "" {
		q = q.Where("c.from_id = ?", filter.FromID)
	}
	if filter.ToID != "" {
		q = q.Where("c.to_id = ?", filter.ToID)
	}
	if filter.Type != "" {
		q = q.Where("c.type = ?", filter.Type)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var rows []connectionRow
	if err := q.Scan(ctx, &rows); err != nil {
		p.log.Error("list connections failed", logger.Error(err))
		return nil, p.mapError(err)
	}

	conns := make([]dataprovider.Connection, len(rows))
	for i := range rows {
		conns[i] = rows[i].toConnection()
	}
	return conns, nil
}

func (p *Provider) GetConnection(ctx context.Context, id string) (*dataprovider.Connection, error) {
	if c, ok := p.cache.getConnection(id); ok {
		return c, nil
	}

	var row connectionRow
	err := p.db.NewSelect().
		Model(&row).
		Where("c.id = ?", id).
		Where("c.deleted_at IS NULL").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &dataprovider.NotFoundError{Resource: "connection", ID: id}
		}
		p.log.Error("get connection failed", logger.Error(err), slog.String("id", id))
		return nil, p.mapError(err)
	}

	conn := row.toConnection()
	p.cache.putConnection(&conn)
	return &conn, nil
}

func (p *Provider) GetRelatedThings(ctx context.Context, thingID, relationshipType string, direction dataprovider.Direction) ([]dataprovider.Thing, error) {
	if thingID == "" {
		return nil, &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
			{Field: "thingId", Message: "is required"},
		}}
	}

	q := p.db.NewSelect().
		Model((*thingRow)(nil)).
		Where("t.deleted_at IS NULL").
		Order("t.created_at DESC").
		Limit(maxPageSize)

	switch direction {
	case dataprovider.DirectionOutgoing, "":
		q = q.Join("JOIN core.connections AS c ON c.to_id = t.id").
			Where("c.from_id = ?", thingID)
	case dataprovider.DirectionIncoming:
		q = q.Join("JOIN core.connections AS c ON c.from_id = t.id").
			Where("c.to_id = ?", thingID)
	case dataprovider.DirectionBoth:
		// Reciprocal pairs (A->B and B->A) match the join twice; collapse
		// them to one row per counterpart.
		q = q.Distinct().
			Join("JOIN core.connections AS c ON c.to_id = t.id OR c.from_id = t.id").
			Where("(c.from_id = ? OR c.to_id = ?)", thingID, thingID).
			Where("t.id != ?", thingID)
	default:
		return nil, &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
			{Field: "direction", Message: "must be outgoing, incoming or both"},
		}}
	}

	q = q.Where("c.deleted_at IS NULL")
	if relationshipType != "" {
		q = q.Where("c.type = ?", relationshipType)
	}

	var rows []thingRow
	if err := q.Scan(ctx, &rows); err != nil {
		p.log.Error("get related things failed", logger.Error(err), slog.String("thingID", thingID))
		return nil, p.mapError(err)
	}

	things := make([]dataprovider.Thing, len(rows))
	for i := range rows {
		things[i] = rows[i].toThing()
	}
	return things, nil
}

func (p *Provider) CreateConnection(ctx context.Context, input dataprovider.CreateConnectionInput) (string, error) {
	var fields []dataprovider.FieldError
	if input.FromID == "" {
		fields = append(fields, dataprovider.FieldError{Field: "fromId", Message: "is required"})
	}
	if input.ToID == "" {
		fields = append(fields, dataprovider.FieldError{Field: "toId", Message: "is required"})
	}
	if input.Type == "" {
		fields = append(fields, dataprovider.FieldError{Field: "type", Message: "is required"})
	}
	if len(fields) > 0 {
		return "", &dataprovider.ValidationError{Fields: fields}
	}

	row := &connectionRow{
		FromID:    input.FromID,
		ToID:      input.ToID,
		Type:      input.Type,
		Metadata:  input.Metadata,
		Strength:  input.Strength,
		ValidFrom: input.ValidFrom,
		ValidTo:   input.ValidTo,
	}
	if _, err := p.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		if pgutils.IsForeignKeyViolation(err) {
			return "", &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
				{Field: "fromId/toId", Message: "must reference existing things"},
			}}
		}
		p.log.Error("create connection failed", logger.Error(err))
		return "", p.mapError(err)
	}
	return row.ID, nil
}

func (p *Provider) UpdateConnection(ctx context.Context, id string, patch dataprovider.ConnectionPatch) (*dataprovider.Connection, error) {
	if id == "" {
		return nil, &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
			{Field: "id", Message: "is required"},
		}}
	}

	q := p.db.NewUpdate().
		Model((*connectionRow)(nil)).
		Set("updated_at = now()").
		Where("id = ?", id).
		Where("deleted_at IS NULL")

	if patch.Metadata != nil {
		q = q.Set("metadata = ?", patch.Metadata)
	}
	if patch.Strength != nil {
		q = q.Set("strength = ?", *patch.Strength)
	}
	if patch.ValidFrom != nil {
		q = q.Set("valid_from = ?", *patch.ValidFrom)
	}
	if patch.ValidTo != nil {
		q = q.Set("valid_to = ?", *patch.ValidTo)
	}

	var row connectionRow
	err := q.Returning("*").Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &dataprovider.NotFoundError{Resource: "connection", ID: id}
		}
		p.log.Error("update connection failed", logger.Error(err), slog.String("id", id))
		return nil, p.mapError(err)
	}

	p.cache.dropConnection(id)
	conn := row.toConnection()
	return &conn, nil
}

func (p *Provider) DeleteConnection(ctx context.Context, id string) error {
	res, err := p.db.NewUpdate().
		Model((*connectionRow)(nil)).
		Set("deleted_at = now()").
		Where("id = ?", id).
		Where("deleted_at IS NULL").
		Exec(ctx)
	if err != nil {
		p.log.Error("delete connection failed", logger.Error(err), slog.String("id", id))
		return p.mapError(err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return &dataprovider.NotFoundError{Resource: "connection", ID: id}
	}
	p.cache.dropConnection(id)
	return nil
}
