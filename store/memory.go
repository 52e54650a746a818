// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// MemoryStore is a Store keeping encoded records in memory. Records are
// encoded on Save and decoded on Load so that callers never share buffers
// with the store.
//
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string][]byte
	infos   map[string]Info
}

// NewMemoryStore returns a new, uninitialized MemoryStore.
//
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Init implements Store. It clears any existing record.
//
func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string][]byte)
	s.infos = make(map[string]Info)
	return nil
}

// Save implements Store.
//
func (s *MemoryStore) Save(_ context.Context, r Record) error {
	payload, err := Encode(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.records == nil {
		return errors.New("store is not initialized")
	}
	s.records[r.ID] = payload
	s.infos[r.ID] = Info{ID: r.ID, Name: r.Name, Created: r.Created, Time: r.Snapshot.Time}
	return nil
}

// Load implements Store.
//
func (s *MemoryStore) Load(_ context.Context, id string) (Record, bool, error) {
	s.mu.RLock()
	payload, ok := s.records[id]
	s.mu.RUnlock()

	if !ok {
		return Record{}, false, nil
	}
	r, err := Decode(payload)
	if err != nil {
		return Record{}, false, err
	}
	return r, true, nil
}

// List implements Store.
//
func (s *MemoryStore) List(_ context.Context) ([]Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l := make([]Info, 0, len(s.infos))
	for _, i := range s.infos {
		l = append(l, i)
	}
	sortInfos(l)
	return l, nil
}

// Delete implements Store.
//
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	delete(s.infos, id)
	return nil
}

func sortInfos(l []Info) {
	sort.Slice(l, func(i, j int) bool {
		if !l[i].Created.Equal(l[j].Created) {
			return l[i].Created.Before(l[j].Created)
		}
		return l[i].ID < l[j].ID
	})
}
