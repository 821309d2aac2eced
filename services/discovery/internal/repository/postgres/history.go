// Package postgres persists discovery data in PostgreSQL.
package postgres

import (
	"context"
	"fmt"

	"github.com/atul950/NearBuy-ed/pkg/database"
	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

const insertSearchSQL = `
	INSERT INTO search_history (id, user_id, location, query, category, city, result_count, searched_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const listSearchesSQL = `
	SELECT id, user_id, location, query, category, city, result_count, searched_at
	FROM search_history
	WHERE user_id = $1
	ORDER BY searched_at DESC
	LIMIT $2`

const deleteSearchesSQL = `DELETE FROM search_history WHERE user_id = $1`

// HistoryRepository stores the searches shoppers apply.
type HistoryRepository struct {
	pool   database.DBTX
	tracer database.QueryTracer
}

// NewHistoryRepository creates a PostgreSQL-backed search history repository.
func NewHistoryRepository(pool database.DBTX, tracer database.QueryTracer) *HistoryRepository {
	return &HistoryRepository{pool: pool, tracer: tracer}
}

// Record inserts one search.
func (r *HistoryRepository) Record(ctx context.Context, rec *domain.SearchRecord) (err error) {
	if rec.UserID == "" {
		return apperrors.InvalidInput("search record requires a user")
	}

	ctx, end := r.tracer.Trace(ctx, "InsertSearch", insertSearchSQL)
	defer func() { end(err) }()

	_, err = r.pool.Exec(ctx, insertSearchSQL,
		rec.ID,
		rec.UserID,
		rec.Location,
		rec.Query,
		rec.Category,
		rec.City,
		rec.ResultCount,
		rec.SearchedAt,
	)
	if err != nil {
		return fmt.Errorf("insert search record: %w", err)
	}
	return nil
}

// ListByUser returns the most recent searches of userID, newest first.
// A non-positive limit uses the default; larger limits are capped.
func (r *HistoryRepository) ListByUser(ctx context.Context, userID string, limit int) (records []domain.SearchRecord, err error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	ctx, end := r.tracer.Trace(ctx, "ListSearches", listSearchesSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, listSearchesSQL, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list search records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.SearchRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&rec.Location,
			&rec.Query,
			&rec.Category,
			&rec.City,
			&rec.ResultCount,
			&rec.SearchedAt,
		); err != nil {
			return nil, fmt.Errorf("scan search record: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate search records: %w", err)
	}

	if records == nil {
		records = []domain.SearchRecord{}
	}
	return records, nil
}

// DeleteByUser removes every search of userID and reports how many were
// removed.
func (r *HistoryRepository) DeleteByUser(ctx context.Context, userID string) (deleted int64, err error) {
	ctx, end := r.tracer.Trace(ctx, "DeleteSearches", deleteSearchesSQL)
	defer func() { end(err) }()

	tag, err := r.pool.Exec(ctx, deleteSearchesSQL, userID)
	if err != nil {
		return 0, fmt.Errorf("delete search records: %w", err)
	}
	return tag.RowsAffected(), nil
}
