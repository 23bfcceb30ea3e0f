package sqlite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/contentsync/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/contentsync/internal/core/domain"
	"github.com/custodia-labs/contentsync/internal/core/ports/driven"
)

// Store is a unified SQLite-based storage that provides access to the
// content store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.contentsync/data/content.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".contentsync", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "content.db")

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// EntityStore returns an EntityStore interface backed by this store.
func (s *Store) EntityStore() driven.EntityStore {
	return &entityStore{store: s}
}

// FocalPoint returns a FocalPoint interface backed by this store.
func (s *Store) FocalPoint() driven.FocalPoint {
	return &focalPointStore{store: s}
}

// migrate runs all pending migrations. Every applied version is recorded
// in schema_migrations in the same transaction as its statements.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	upFiles, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, statements string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(statements); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Entity Store ====================

// entityStore implements driven.EntityStore.
// Ids are assigned per entity type, counting from 1.
type entityStore struct {
	store *Store
}

var _ driven.EntityStore = (*entityStore)(nil)

const entityColumns = "entity_type, id, uuid, bundle, base, fields"

// Load retrieves an entity by its store id.
func (s *entityStore) Load(ctx context.Context, entityType, id string) (*domain.Entity, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE entity_type = ? AND id = ?", entityType, n)
	return scanEntity(row)
}

// LoadMultiple retrieves several entities of one type, in the order of ids.
func (s *entityStore) LoadMultiple(ctx context.Context, entityType string, ids []string) ([]*domain.Entity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	args := []any{entityType}
	var marks []string
	for _, id := range ids {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			continue
		}
		args = append(args, n)
		marks = append(marks, "?")
	}
	if len(marks) == 0 {
		return nil, nil
	}

	found, err := s.query(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE entity_type = ? AND id IN ("+strings.Join(marks, ", ")+")",
		args...)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*domain.Entity, len(found))
	for _, e := range found {
		byID[e.ID] = e
	}
	result := make([]*domain.Entity, 0, len(ids))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			result = append(result, e)
		}
	}
	return result, nil
}

// LoadByUUID retrieves an entity by uuid.
func (s *entityStore) LoadByUUID(ctx context.Context, entityType, uuid string) (*domain.Entity, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+entityColumns+" FROM entities WHERE entity_type = ? AND uuid = ?", entityType, uuid)
	return scanEntity(row)
}

// LoadByProperties returns entities whose base fields equal all given
// values, compared as text.
func (s *entityStore) LoadByProperties(ctx context.Context, entityType string, props map[string]any) ([]*domain.Entity, error) {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := "SELECT " + entityColumns + " FROM entities WHERE entity_type = ?"
	args := []any{entityType}
	for _, k := range keys {
		query += " AND CAST(json_extract(base, ?) AS TEXT) = ?"
		args = append(args, jsonPath(k), domain.AsString(props[k]))
	}
	return s.query(ctx, query+" ORDER BY id", args...)
}

// List returns all entities of a type, ordered by id.
func (s *entityStore) List(ctx context.Context, entityType string) ([]*domain.Entity, error) {
	return s.query(ctx, "SELECT "+entityColumns+" FROM entities WHERE entity_type = ? ORDER BY id", entityType)
}

// Save creates or updates an entity.
func (s *entityStore) Save(ctx context.Context, entity *domain.Entity) error {
	if entity.UUID == "" || entity.EntityType == "" {
		return fmt.Errorf("save entity: uuid and entity type required: %w", domain.ErrInvalidInput)
	}

	baseJSON, err := json.Marshal(nonNilBase(entity.Base))
	if err != nil {
		return fmt.Errorf("marshalling base fields of %s: %w", entity.Key(), err)
	}
	fieldsJSON, err := json.Marshal(nonNilFields(entity.Fields))
	if err != nil {
		return fmt.Errorf("marshalling fields of %s: %w", entity.Key(), err)
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var owner sql.NullInt64
	err = tx.QueryRowContext(ctx, "SELECT id FROM entities WHERE entity_type = ? AND uuid = ?",
		entity.EntityType, entity.UUID).Scan(&owner)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking uuid of %s: %w", entity.Key(), err)
	}

	now := time.Now().UTC()
	if entity.IsNew() {
		if owner.Valid {
			return fmt.Errorf("save %s: %w", entity.Key(), domain.ErrAlreadyExists)
		}
		var next int64
		if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(id), 0) + 1 FROM entities WHERE entity_type = ?",
			entity.EntityType).Scan(&next); err != nil {
			return fmt.Errorf("allocating id for %s: %w", entity.Key(), err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO entities (entity_type, id, uuid, bundle, base, fields, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, entity.EntityType, next, entity.UUID, entity.Bundle, string(baseJSON), string(fieldsJSON), now, now); err != nil {
			return fmt.Errorf("saving %s: %w", entity.Key(), err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing %s: %w", entity.Key(), err)
		}
		entity.ID = strconv.FormatInt(next, 10)
		return nil
	}

	id, err := strconv.ParseInt(entity.ID, 10, 64)
	if err != nil {
		return fmt.Errorf("save %s: id %q is not numeric: %w", entity.Key(), entity.ID, domain.ErrInvalidInput)
	}
	if owner.Valid && owner.Int64 != id {
		return fmt.Errorf("save %s: uuid owned by id %d: %w", entity.Key(), owner.Int64, domain.ErrAlreadyExists)
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO entities (entity_type, id, uuid, bundle, base, fields, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, id) DO UPDATE SET
			uuid = excluded.uuid,
			bundle = excluded.bundle,
			base = excluded.base,
			fields = excluded.fields,
			updated_at = excluded.updated_at
	`, entity.EntityType, id, entity.UUID, entity.Bundle, string(baseJSON), string(fieldsJSON), now, now); err != nil {
		return fmt.Errorf("saving %s: %w", entity.Key(), err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing %s: %w", entity.Key(), err)
	}
	return nil
}

// Delete removes an entity.
func (s *entityStore) Delete(ctx context.Context, entityType, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return domain.ErrNotFound
	}
	res, err := s.store.db.ExecContext(ctx, "DELETE FROM entities WHERE entity_type = ? AND id = ?", entityType, n)
	if err != nil {
		return fmt.Errorf("deleting entity: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *entityStore) query(ctx context.Context, query string, args ...any) ([]*domain.Entity, error) {
	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []*domain.Entity //nolint:prealloc // size unknown from query
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entities: %w", err)
	}
	return entities, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntity(row scanner) (*domain.Entity, error) {
	var e domain.Entity
	var id int64
	var baseJSON, fieldsJSON string
	if err := row.Scan(&e.EntityType, &id, &e.UUID, &e.Bundle, &baseJSON, &fieldsJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning entity: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)

	var base map[string]any
	if err := decodeJSON(baseJSON, &base); err != nil {
		return nil, fmt.Errorf("unmarshaling base fields of %s: %w", e.Key(), err)
	}
	e.Base = nonNilBase(normalizeMap(base))

	var fields map[string][]map[string]any
	if err := decodeJSON(fieldsJSON, &fields); err != nil {
		return nil, fmt.Errorf("unmarshaling fields of %s: %w", e.Key(), err)
	}
	e.Fields = make(map[string]domain.FieldItems, len(fields))
	for name, items := range fields {
		out := make(domain.FieldItems, len(items))
		for i, item := range items {
			out[i] = normalizeMap(item)
		}
		e.Fields[name] = out
	}
	return &e, nil
}

// decodeJSON keeps integers as integers.
func decodeJSON(data string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	return dec.Decode(v)
}

// normalizeMap replaces json.Number values with int or float64.
func normalizeMap(m map[string]any) map[string]any {
	for k, v := range m {
		m[k] = normalizeValue(v)
	}
	return m
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		f, _ := val.Float64()
		return f
	case map[string]any:
		return normalizeMap(val)
	case []any:
		for i := range val {
			val[i] = normalizeValue(val[i])
		}
		return val
	default:
		return val
	}
}

func nonNilBase(base map[string]any) map[string]any {
	if base == nil {
		return map[string]any{}
	}
	return base
}

func nonNilFields(fields map[string]domain.FieldItems) map[string]domain.FieldItems {
	if fields == nil {
		return map[string]domain.FieldItems{}
	}
	return fields
}

// jsonPath quotes a base field name as a JSON path.
func jsonPath(key string) string {
	return `$."` + strings.ReplaceAll(key, `"`, `\"`) + `"`
}

// ==================== Focal Point Store ====================

// focalPointStore implements driven.FocalPoint. Crops are keyed by file uuid.
type focalPointStore struct {
	store *Store
}

var _ driven.FocalPoint = (*focalPointStore)(nil)

// Crop returns the crop of an image file.
func (s *focalPointStore) Crop(ctx context.Context, file *domain.Entity) (domain.Crop, bool, error) {
	var c domain.Crop
	err := s.store.db.QueryRowContext(ctx,
		"SELECT x, y, width, height FROM crops WHERE file_uuid = ?", file.UUID).
		Scan(&c.X, &c.Y, &c.Width, &c.Height)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Crop{}, false, nil
	}
	if err != nil {
		return domain.Crop{}, false, fmt.Errorf("scanning crop: %w", err)
	}
	return c, true, nil
}

// SaveCrop stores the crop of a saved image file.
func (s *focalPointStore) SaveCrop(ctx context.Context, file *domain.Entity, crop domain.Crop) error {
	if file.IsNew() {
		return fmt.Errorf("save crop of %s: file is not saved: %w", file.Key(), domain.ErrInvalidInput)
	}
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO crops (file_uuid, x, y, width, height, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(file_uuid) DO UPDATE SET
			x = excluded.x,
			y = excluded.y,
			width = excluded.width,
			height = excluded.height,
			updated_at = excluded.updated_at
	`, file.UUID, crop.X, crop.Y, crop.Width, crop.Height, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving crop: %w", err)
	}
	return nil
}
