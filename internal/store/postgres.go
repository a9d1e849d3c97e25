// Package store persists the host-owned cache file (§6: rows, clusters,
// auditFindings keyed by a host-chosen cacheId) to Postgres, adapted
// from the teacher's forensics persistence layer to a much simpler
// single-table JSONB shape — this engine itself never serializes
// anything; the host calls this adapter around it.
package store

import (
	"context"
	"encoding/json"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/juju/errors"

	"github.com/malzubairisfd-blip/Beneficiary-Insight/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS cache_files (
	cache_id       TEXT PRIMARY KEY,
	rows           JSONB NOT NULL,
	clusters       JSONB NOT NULL,
	audit_findings JSONB,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS shadow_comparisons (
	id          BIGSERIAL PRIMARY KEY,
	cache_id    TEXT NOT NULL,
	result      JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Store wraps a pgx connection pool for cache-file persistence.
type Store struct {
	pool *pgxpool.Pool
}

// Connect opens the pool and verifies connectivity.
func Connect(ctx context.Context, connStr string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, errors.Annotate(err, "unable to connect to database")
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, errors.Annotate(err, "ping failed")
	}
	log.Println("Successfully connected to PostgreSQL for beneficiary cache storage")
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the cache_files and shadow_comparisons tables if absent.
func (s *Store) InitSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return errors.Annotate(err, "failed to execute schema migration")
	}
	return nil
}

// SaveCacheFile upserts a cache file under cacheID.
func (s *Store) SaveCacheFile(ctx context.Context, cacheID string, cf models.CacheFile) error {
	rows, err := json.Marshal(cf.Rows)
	if err != nil {
		return errors.Annotate(err, "failed to marshal rows")
	}
	clusters, err := json.Marshal(cf.Clusters)
	if err != nil {
		return errors.Annotate(err, "failed to marshal clusters")
	}
	findings, err := json.Marshal(cf.AuditFindings)
	if err != nil {
		return errors.Annotate(err, "failed to marshal audit findings")
	}

	const upsert = `
		INSERT INTO cache_files (cache_id, rows, clusters, audit_findings, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (cache_id) DO UPDATE
		SET rows = EXCLUDED.rows, clusters = EXCLUDED.clusters,
		    audit_findings = EXCLUDED.audit_findings, updated_at = NOW();
	`
	_, err = s.pool.Exec(ctx, upsert, cacheID, rows, clusters, findings)
	if err != nil {
		return errors.Annotatef(err, "failed to upsert cache file %q", cacheID)
	}
	return nil
}

// LoadCacheFile fetches a previously saved cache file.
func (s *Store) LoadCacheFile(ctx context.Context, cacheID string) (models.CacheFile, error) {
	const query = `SELECT rows, clusters, audit_findings FROM cache_files WHERE cache_id = $1`

	var rows, clusters, findings []byte
	err := s.pool.QueryRow(ctx, query, cacheID).Scan(&rows, &clusters, &findings)
	if err != nil {
		return models.CacheFile{}, errors.Annotatef(err, "failed to load cache file %q", cacheID)
	}

	var cf models.CacheFile
	if err := json.Unmarshal(rows, &cf.Rows); err != nil {
		return models.CacheFile{}, errors.Annotate(err, "failed to unmarshal rows")
	}
	if err := json.Unmarshal(clusters, &cf.Clusters); err != nil {
		return models.CacheFile{}, errors.Annotate(err, "failed to unmarshal clusters")
	}
	if findings != nil {
		if err := json.Unmarshal(findings, &cf.AuditFindings); err != nil {
			return models.CacheFile{}, errors.Annotate(err, "failed to unmarshal audit findings")
		}
	}
	return cf, nil
}

// SaveAuditFindings persists the findings a standalone re-audit pass
// produced for an existing cache file, without touching rows/clusters.
func (s *Store) SaveAuditFindings(ctx context.Context, cacheID string, findings []models.Finding) error {
	encoded, err := json.Marshal(findings)
	if err != nil {
		return errors.Annotate(err, "failed to marshal audit findings")
	}
	const update = `UPDATE cache_files SET audit_findings = $2, updated_at = NOW() WHERE cache_id = $1`
	tag, err := s.pool.Exec(ctx, update, cacheID, encoded)
	if err != nil {
		return errors.Annotatef(err, "failed to persist audit findings for %q", cacheID)
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFoundf("cache file %q", cacheID)
	}
	return nil
}

// SaveShadowComparison records a production-vs-candidate comparison
// under cacheID so the host can show divergence trends over time. The
// result type is left opaque (any) since it lives in internal/shadow,
// which depends on this package and not the other way around.
func (s *Store) SaveShadowComparison(ctx context.Context, cacheID string, result any) error {
	encoded, err := json.Marshal(result)
	if err != nil {
		return errors.Annotate(err, "failed to marshal shadow comparison")
	}
	const insert = `INSERT INTO shadow_comparisons (cache_id, result, created_at) VALUES ($1, $2, NOW())`
	if _, err := s.pool.Exec(ctx, insert, cacheID, encoded); err != nil {
		return errors.Annotatef(err, "failed to persist shadow comparison for %q", cacheID)
	}
	return nil
}

// ListCacheIDs returns every known cache id, most recently updated first.
func (s *Store) ListCacheIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `SELECT cache_id FROM cache_files ORDER BY updated_at DESC`)
	if err != nil {
		return nil, errors.Annotate(err, "failed to list cache ids")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
