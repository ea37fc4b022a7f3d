package postgres

import (
	"context"
	"log/slog"
	"sort"

	"github.com/sho-platform/sho-core/pkg/dataprovider"
	"github.com/sho-platform/sho-core/pkg/logger"
	"github.com/sho-platform/sho-core/pkg/mathutil"
	"github.com/sho-platform/sho-core/pkg/pgutils"
)

// vectorCandidatePool bounds how many embedded rows are pulled for in-process
// similarity ranking. Embeddings of mixed dimensionality share one table, so
// ranking happens here rather than in an index.
const vectorCandidatePool = 1000

func (p *Provider) SearchKnowledge(ctx context.Context, query dataprovider.KnowledgeQuery) ([]dataprovider.KnowledgeItem, error) {
	if len(query.Embedding) > 0 {
		return p.vectorSearch(ctx, query)
	}
	if query.Text != "" {
		return p.lexicalSearch(ctx, query)
	}
	return nil, &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
		{Field: "query", Message: "text or embedding is required"},
	}}
}

func (p *Provider) lexicalSearch(ctx context.Context, query dataprovider.KnowledgeQuery) ([]dataprovider.KnowledgeItem, error) {
	limit := mathutil.ClampLimit(query.Limit, defaultPageSize, maxPageSize)

	sqlQuery := `
		SELECT k.id, k.knowledge_type, k.text, k.embedding, k.embedding_model,
		       k.embedding_dim, k.source_id, k.labels, k.metadata,
		       k.created_at, k.updated_at, k.deleted_at,
		       ts_rank(k.fts, websearch_to_tsquery('simple', ?)) AS rank
		FROM core.knowledge k
		WHERE k.fts @@ websearch_to_tsquery('simple', ?)
		  AND k.deleted_at IS NULL
		ORDER BY rank DESC
		LIMIT ?
	`

	var rows []struct {
		knowledgeRow `bun:",extend"`
		Rank         float32 `bun:"rank"`
	}
	if err := p.db.NewRaw(sqlQuery, query.Text, query.Text, limit).Scan(ctx, &rows); err != nil {
		p.log.Error("lexical knowledge search failed", logger.Error(err))
		return nil, p.mapError(err)
	}

	var items []dataprovider.KnowledgeItem
	for i := range rows {
		if query.Threshold > 0 && rows[i].Rank < query.Threshold {
			continue
		}
		item, err := rows[i].toItem()
		if err != nil {
			p.log.Warn("skipping knowledge row with malformed embedding",
				logger.Error(err), slog.String("id", rows[i].ID))
			continue
		}
		item.Score = rows[i].Rank
		items = append(items, item)
	}
	return items, nil
}

func (p *Provider) vectorSearch(ctx context.Context, query dataprovider.KnowledgeQuery) ([]dataprovider.KnowledgeItem, error) {
	limit := mathutil.ClampLimit(query.Limit, defaultPageSize, maxPageSize)

	var rows []knowledgeRow
	err := p.db.NewSelect().
		Model(&rows).
		Where("k.embedding IS NOT NULL").
		Where("k.embedding_dim = ?", len(query.Embedding)).
		Where("k.deleted_at IS NULL").
		Order("k.created_at DESC").
		Limit(vectorCandidatePool).
		Scan(ctx)
	if err != nil {
		p.log.Error("vector knowledge search failed", logger.Error(err))
		return nil, p.mapError(err)
	}

	var items []dataprovider.KnowledgeItem
	for i := range rows {
		item, err := rows[i].toItem()
		if err != nil {
			p.log.Warn("skipping knowledge row with malformed embedding",
				logger.Error(err), slog.String("id", rows[i].ID))
			continue
		}
		score := mathutil.Cosine(query.Embedding, item.Embedding)
		if query.Threshold > 0 && score < query.Threshold {
			continue
		}
		item.Score = score
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool { return items[i].Score > items[j].Score })
	if len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

// validateKnowledgeInput enforces the kind invariants: vector items need an
// embedding, label items need text or labels.
func validateKnowledgeInput(input dataprovider.KnowledgeInput) []dataprovider.FieldError {
	var fields []dataprovider.FieldError

	switch input.KnowledgeType {
	case dataprovider.KnowledgeLabel:
		if (input.Text == nil || *input.Text == "") && len(input.Labels) == 0 {
			fields = append(fields, dataprovider.FieldError{
				Field: "text", Message: "label items require text or labels",
			})
		}
	case dataprovider.KnowledgeVector:
		if len(input.Embedding) == 0 {
			fields = append(fields, dataprovider.FieldError{
				Field: "embedding", Message: "vector items require an embedding",
			})
		}
	case dataprovider.KnowledgeDocument, dataprovider.KnowledgeChunk:
		// No extra constraints beyond the knowledge type itself.
	default:
		fields = append(fields, dataprovider.FieldError{
			Field: "knowledgeType", Message: "must be label, document, chunk or vector",
		})
	}

	if len(input.Embedding) > 0 && (input.EmbeddingModel == nil || *input.EmbeddingModel == "") {
		fields = append(fields, dataprovider.FieldError{
			Field: "embeddingModel", Message: "is required when an embedding is set",
		})
	}

	return fields
}

func (p *Provider) CreateKnowledge(ctx context.Context, input dataprovider.KnowledgeInput) (string, error) {
	if fields := validateKnowledgeInput(input); len(fields) > 0 {
		return "", &dataprovider.ValidationError{Fields: fields}
	}

	labels := input.Labels
	if labels == nil {
		labels = []string{}
	}
	row := &knowledgeRow{
		KnowledgeType:  string(input.KnowledgeType),
		Text:           input.Text,
		EmbeddingModel: input.EmbeddingModel,
		SourceID:       input.SourceID,
		Labels:         labels,
		Metadata:       input.Metadata,
	}
	if len(input.Embedding) > 0 {
		literal := pgutils.FormatVector(input.Embedding)
		row.Embedding = &literal
		row.EmbeddingDim = len(input.Embedding)
	}

	if _, err := p.db.NewInsert().Model(row).Returning("*").Exec(ctx); err != nil {
		if pgutils.IsForeignKeyViolation(err) {
			return "", &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
				{Field: "sourceId", Message: "must reference an existing thing"},
			}}
		}
		p.log.Error("create knowledge failed", logger.Error(err))
		return "", p.mapError(err)
	}
	return row.ID, nil
}

func (p *Provider) LinkKnowledgeToThing(ctx context.Context, thingID, knowledgeID, role string) error {
	var fields []dataprovider.FieldError
	if thingID == "" {
		fields = append(fields, dataprovider.FieldError{Field: "thingId", Message: "is required"})
	}
	if knowledgeID == "" {
		fields = append(fields, dataprovider.FieldError{Field: "knowledgeId", Message: "is required"})
	}
	if len(fields) > 0 {
		return &dataprovider.ValidationError{Fields: fields}
	}

	link := &knowledgeLinkRow{
		ThingID:     thingID,
		KnowledgeID: knowledgeID,
		Role:        role,
	}
	_, err := p.db.NewInsert().
		Model(link).
		On("CONFLICT (thing_id, knowledge_id) DO UPDATE").
		Set("role = EXCLUDED.role").
		Exec(ctx)
	if err != nil {
		if pgutils.IsForeignKeyViolation(err) {
			return &dataprovider.ValidationError{Fields: []dataprovider.FieldError{
				{Field: "thingId/knowledgeId", Message: "must reference existing records"},
			}}
		}
		p.log.Error("link knowledge failed", logger.Error(err),
			slog.String("thingID", thingID), slog.String("knowledgeID", knowledgeID))
		return p.mapError(err)
	}
	return nil
}
