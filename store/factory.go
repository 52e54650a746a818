// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package store

import "github.com/pkg/errors"

// NewStore returns a store of the given kind: "memory" (the default) or
// "sqlite". The path is only used by the sqlite backend.
//
func NewStore(kind, path string) (Store, error) {
	switch kind {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		return newSQLiteStore(path)
	default:
		return nil, errors.Errorf("unsupported store backend: %s", kind)
	}
}
