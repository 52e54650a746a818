// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package store

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Record format versions.
//
const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

// ErrVersionMismatch is returned when decoding a record written with another
// schema or codec version.
//
var ErrVersionMismatch = errors.New("record version mismatch")

// Encode returns the serialized form of r.
//
func Encode(r Record) ([]byte, error) {
	if r.Snapshot == nil {
		return nil, errors.New("record " + r.ID + " has no snapshot")
	}
	return json.Marshal(r)
}

// Decode decodes a record and checks its versions.
//
func Decode(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, errors.Wrap(err, "decode record")
	}
	if err := checkVersion(r); err != nil {
		return Record{}, err
	}
	return r, nil
}

func checkVersion(r Record) error {
	if r.SchemaVersion != CurrentSchemaVersion || r.CodecVersion != CurrentCodecVersion {
		return errors.Wrapf(ErrVersionMismatch, "record %s: schema %d, codec %d", r.ID, r.SchemaVersion, r.CodecVersion)
	}
	return nil
}
