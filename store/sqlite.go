// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

//go:build sqlite

package store

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	ls "github.com/db47h/logicsim"
)

// SQLiteStore is a Store backed by a SQLite database.
//
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore returns a new store using the database file at path. Use
// ":memory:" for a private in-memory database.
//
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

// Init implements Store. It opens the database and creates the tables if
// needed.
//
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return errors.Wrap(err, "open "+s.path)
	}
	// a second connection to ":memory:" would open a different database
	db.SetMaxOpenConns(1)
	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return errors.Wrap(err, "ping "+s.path)
	}
	if err = createTables(ctx, db); err != nil {
		_ = db.Close()
		return errors.Wrap(err, "create tables")
	}
	s.db = db
	return nil
}

// Save implements Store.
//
func (s *SQLiteStore) Save(ctx context.Context, r Record) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := Encode(r)
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO checkpoints (id, name, created, sim_time, schema_version, codec_version, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			created = excluded.created,
			sim_time = excluded.sim_time,
			schema_version = excluded.schema_version,
			codec_version = excluded.codec_version,
			payload = excluded.payload
	`, r.ID, r.Name, r.Created.UnixNano(), int64(r.Snapshot.Time), r.SchemaVersion, r.CodecVersion, payload)
	return errors.Wrap(err, "save "+r.ID)
}

// Load implements Store.
//
func (s *SQLiteStore) Load(ctx context.Context, id string) (Record, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Record{}, false, err
	}
	var payload []byte
	err = db.QueryRowContext(ctx, `SELECT payload FROM checkpoints WHERE id = ?`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, errors.Wrap(err, "load "+id)
	}
	r, err := Decode(payload)
	if err != nil {
		return Record{}, false, errors.Wrap(err, "decode checkpoint "+id)
	}
	return r, true, nil
}

// List implements Store.
//
func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `SELECT id, name, created, sim_time FROM checkpoints ORDER BY created, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list checkpoints")
	}
	defer rows.Close()

	var l []Info
	for rows.Next() {
		var (
			i       Info
			created int64
			simTime int64
		)
		if err = rows.Scan(&i.ID, &i.Name, &created, &simTime); err != nil {
			return nil, errors.Wrap(err, "list checkpoints")
		}
		i.Created = time.Unix(0, created).UTC()
		i.Time = ls.Time(simTime)
		l = append(l, i)
	}
	return l, errors.Wrap(rows.Err(), "list checkpoints")
}

// Delete implements Store.
//
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	_, err = db.ExecContext(ctx, `DELETE FROM checkpoints WHERE id = ?`, id)
	return errors.Wrap(err, "delete "+id)
}

// Close closes the database.
//
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS checkpoints (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			created INTEGER NOT NULL,
			sim_time INTEGER NOT NULL,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		);
	`)
	return err
}
