// Package sqlitevec provides a SQLite-backed matcher using sqlite-vec.
// At startup it indexes the flat embedding catalogs into vec0 virtual
// tables and serves KNN queries from there. The brute-force matcher stays
// the default; this backend exists for very large catalogs where a full
// scan per request stops being free.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/matcher"
	"github.com/figmatch/figmatch/pkg/parts"
)

// SQLiteVecMatcher implements matcher.Matcher using SQLite with sqlite-vec.
type SQLiteVecMatcher struct {
	db     *sql.DB
	logger *zap.Logger
}

// Config holds configuration for the SQLite vec matcher.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory index.
	DBPath string
}

// NewSQLiteVecMatcher creates a matcher backed by sqlite-vec, indexing every
// category's catalog from the given store.
func NewSQLiteVecMatcher(c Config, catalogs *catalog.Store, logger *zap.Logger) (*SQLiteVecMatcher, error) {
	// enable connection to have sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// A :memory: database exists per connection; keep the pool at one so
	// queries see the tables the constructor indexed.
	db.SetMaxOpenConns(1)

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite-vec not available: %w", err)
	}

	m := &SQLiteVecMatcher{
		db:     db,
		logger: logger,
	}

	for _, category := range parts.Order {
		cat, err := catalogs.Load(category)
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := m.index(cat); err != nil {
			db.Close()
			return nil, fmt.Errorf("indexing %s catalog: %w", category, err)
		}
	}

	logger.Info("sqlite-vec matcher initialized",
		zap.String("db_path", c.DBPath),
		zap.String("vec_version", vecVersion),
	)

	return m, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// index writes one category's catalog into a fresh pair of tables: a
// filename mapping table and a vec0 virtual table sharing rowids.
func (m *SQLiteVecMatcher) index(cat *catalog.Catalog) error {
	mapTable := fmt.Sprintf("parts_%s", cat.Category)
	vecTable := fmt.Sprintf("vec_%s", cat.Category)

	if _, err := m.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, mapTable)); err != nil {
		return fmt.Errorf("dropping mapping table: %w", err)
	}
	if _, err := m.db.Exec(fmt.Sprintf(`DROP TABLE IF EXISTS %s`, vecTable)); err != nil {
		return fmt.Errorf("dropping vec0 table: %w", err)
	}

	// vec0 virtual tables use integer rowids, so the mapping table carries
	// the catalog filename for each rowid. Rowids follow catalog order.
	createMap := fmt.Sprintf(`
		CREATE TABLE %s (
			rowid INTEGER PRIMARY KEY,
			filename TEXT NOT NULL
		)
	`, mapTable)
	if _, err := m.db.Exec(createMap); err != nil {
		return fmt.Errorf("creating mapping table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE %s USING vec0(embedding float[%d])`,
		vecTable, cat.Dimensions(),
	)
	if _, err := m.db.Exec(createVec); err != nil {
		return fmt.Errorf("creating vec0 table: %w", err)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for i, emb := range cat.Embeddings {
		rowID := int64(i + 1)

		if _, err := tx.Exec(
			fmt.Sprintf(`INSERT INTO %s(rowid, filename) VALUES (?, ?)`, mapTable),
			rowID, cat.Filenames[i],
		); err != nil {
			return fmt.Errorf("inserting filename %s: %w", cat.Filenames[i], err)
		}

		if _, err := tx.Exec(
			fmt.Sprintf(`INSERT INTO %s(rowid, embedding) VALUES (?, ?)`, vecTable),
			rowID, serializeFloat32(emb),
		); err != nil {
			return fmt.Errorf("inserting embedding %s: %w", cat.Filenames[i], err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	m.logger.Debug("indexed catalog into sqlite-vec",
		zap.String("category", string(cat.Category)),
		zap.Int("entries", cat.Len()),
	)

	return nil
}

// Match finds the k entries most similar to query, best first.
//
// vec0 KNN ranks by L2 distance; on unit vectors that ordering is the
// cosine ordering, and the cosine score is recovered exactly as
// 1 - d^2/2. Ties between equal distances keep rowid (catalog) order.
func (m *SQLiteVecMatcher) Match(ctx context.Context, category parts.Category, query []float32, k int) ([]matcher.Match, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: got %d", matcher.ErrInvalidK, k)
	}

	mapTable := fmt.Sprintf("parts_%s", category)
	vecTable := fmt.Sprintf("vec_%s", category)

	rows, err := m.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			p.filename,
			ve.distance
		FROM %s ve
		INNER JOIN %s p ON p.rowid = ve.rowid
		WHERE ve.embedding MATCH ?
			AND ve.k = ?
		ORDER BY ve.distance, ve.rowid
	`, vecTable, mapTable), serializeFloat32(query), k)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var matches []matcher.Match
	for rows.Next() {
		var filename string
		var distance float64
		if err := rows.Scan(&filename, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		matches = append(matches, matcher.Match{
			Filename: filename,
			Score:    float32(1.0 - distance*distance/2.0),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	if len(matches) == 0 {
		return nil, fmt.Errorf("%w: %s", matcher.ErrEmptyCatalog, category)
	}

	return matches, nil
}

// Close releases resources held by the matcher.
func (m *SQLiteVecMatcher) Close() error {
	return m.db.Close()
}

// Ensure SQLiteVecMatcher implements matcher.Matcher
var _ matcher.Matcher = (*SQLiteVecMatcher)(nil)
