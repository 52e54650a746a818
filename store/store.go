// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package store persists circuit snapshots as versioned checkpoint records.
//
// Two backends are available: an in-memory store, and a SQLite store enabled
// with the sqlite build tag.
//
package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	ls "github.com/db47h/logicsim"
)

// A Record is a named, versioned circuit snapshot.
//
type Record struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Created       time.Time    `json:"created"`
	SchemaVersion int          `json:"schema_version"`
	CodecVersion  int          `json:"codec_version"`
	Snapshot      *ls.Snapshot `json:"snapshot"`
}

// NewRecord wraps s into a new record with a random ID and the current
// versions.
//
func NewRecord(name string, s *ls.Snapshot) Record {
	return Record{
		ID:            uuid.NewString(),
		Name:          name,
		Created:       time.Now().UTC(),
		SchemaVersion: CurrentSchemaVersion,
		CodecVersion:  CurrentCodecVersion,
		Snapshot:      s,
	}
}

// Info describes a stored record without its payload.
//
type Info struct {
	ID      string
	Name    string
	Created time.Time
	Time    ls.Time // simulated time of the snapshot
}

// Store defines the checkpoint persistence operations.
//
type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, r Record) error
	Load(ctx context.Context, id string) (Record, bool, error)
	// List returns all records, oldest first.
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, id string) error
}

// CloseIfSupported closes s if it implements io.Closer.
//
func CloseIfSupported(s Store) error {
	c, ok := s.(interface{ Close() error })
	if !ok {
		return nil
	}
	return c.Close()
}
