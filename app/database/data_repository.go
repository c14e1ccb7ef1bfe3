package database

import (
	"database/sql"
	"fmt"
)

var _ DataRepository = (*SQLDataRepository)(nil)

// SQLDataRepository implements DataRepository over SQLite.
type SQLDataRepository struct {
	db *DB
}

func NewDataRepository(db *DB) *SQLDataRepository {
	return &SQLDataRepository{db: db}
}

// InsertIfAbsent appends a record unless its content hash already exists.
// The unique index on content_hash makes the check-and-insert atomic: of two
// jobs racing on the same content exactly one insert wins. Returns the new
// row id and whether the row was inserted.
func (r *SQLDataRepository) InsertIfAbsent(item CollectedData) (int64, bool, error) {
	result, err := r.db.Exec(`
		INSERT INTO collected_data (
			source_id, title, content, url, published_date, collected_at,
			content_hash, metadata_json, processed,
			http_ok, has_content, duplicate, normalized,
			semantic_consistency, outlier_score, trust_score, quality_score,
			created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (content_hash) DO NOTHING
	`, item.SourceID, item.Title, item.Content, item.URL, item.PublishedDate,
		item.CollectedAt, item.ContentHash, item.MetadataJSON, item.Processed,
		item.HTTPOk, item.HasContent, item.Duplicate, item.Normalized,
		item.SemanticConsistency, item.OutlierScore, item.TrustScore, item.QualityScore,
		item.CreatedAt)
	if err != nil {
		return 0, false, fmt.Errorf("failed to insert collected data: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return 0, false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("failed to read insert id: %w", err)
	}

	return id, true, nil
}

// HashExists reports whether a record with the given content hash is stored.
// It is a fast pre-check only; InsertIfAbsent is the authority under
// concurrency.
func (r *SQLDataRepository) HashExists(contentHash string) (bool, error) {
	var id int64
	err := r.db.QueryRow(`SELECT id FROM collected_data WHERE content_hash = ? LIMIT 1`, contentHash).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check content hash: %w", err)
	}
	return true, nil
}

const dataColumns = `
	id, source_id, title, content, url, published_date, collected_at,
	content_hash, metadata_json, processed,
	http_ok, has_content, duplicate, normalized,
	semantic_consistency, outlier_score, trust_score, quality_score,
	created_at`

// GetData returns stored records, newest first, optionally restricted to one
// source.
func (r *SQLDataRepository) GetData(sourceID string, limit, offset int) ([]CollectedData, error) {
	query := `SELECT ` + dataColumns + ` FROM collected_data`
	args := []any{}

	if sourceID != "" {
		query += ` WHERE source_id = ?`
		args = append(args, sourceID)
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get collected data: %w", err)
	}
	defer rows.Close()

	var items []CollectedData
	for rows.Next() {
		item, err := scanCollectedData(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating data rows: %w", err)
	}

	return items, nil
}

func scanCollectedData(rows *sql.Rows) (CollectedData, error) {
	var item CollectedData
	var httpOK sql.NullBool

	err := rows.Scan(
		&item.ID, &item.SourceID, &item.Title, &item.Content, &item.URL,
		&item.PublishedDate, &item.CollectedAt,
		&item.ContentHash, &item.MetadataJSON, &item.Processed,
		&httpOK, &item.HasContent, &item.Duplicate, &item.Normalized,
		&item.SemanticConsistency, &item.OutlierScore, &item.TrustScore, &item.QualityScore,
		&item.CreatedAt,
	)
	if err != nil {
		return CollectedData{}, fmt.Errorf("failed to scan data row: %w", err)
	}

	if httpOK.Valid {
		item.HTTPOk = &httpOK.Bool
	}

	return item, nil
}

func (r *SQLDataRepository) GetDataCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM collected_data`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get data count: %w", err)
	}
	return count, nil
}

func (r *SQLDataRepository) GetDataCountBySource(sourceID string) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM collected_data WHERE source_id = ?`, sourceID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get data count for source: %w", err)
	}
	return count, nil
}

func (r *SQLDataRepository) GetStats() (DataStats, error) {
	var stats DataStats
	err := r.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN processed THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(quality_score), 0)
		FROM collected_data
	`).Scan(&stats.Total, &stats.Processed, &stats.AvgQuality)
	if err != nil {
		return DataStats{}, fmt.Errorf("failed to get data stats: %w", err)
	}
	return stats, nil
}

// MarkProcessed flips the processed flag; the only post-creation mutation on
// collected data.
func (r *SQLDataRepository) MarkProcessed(id int64) error {
	result, err := r.db.Exec(`UPDATE collected_data SET processed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark record processed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("record %d not found", id)
	}

	return nil
}
