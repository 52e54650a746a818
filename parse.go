// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Constant net names. A port connected to one of these reads a constant value
// of the port's width (all zeros or all ones).
//
const (
	NetFalse = "false"
	NetTrue  = "true"
)

// A Connection connects a part's port to a net of the containing circuit or
// chip.
//
type Connection struct {
	Port string
	Net  string
}

type scanner struct {
	in  string
	pos int
}

func (s *scanner) skipSpace() {
	for s.pos < len(s.in) {
		r, n := utf8.DecodeRuneInString(s.in[s.pos:])
		if !unicode.IsSpace(r) {
			return
		}
		s.pos += n
	}
}

func (s *scanner) eof() bool {
	s.skipSpace()
	return s.pos >= len(s.in)
}

func (s *scanner) peek() byte {
	s.skipSpace()
	if s.pos >= len(s.in) {
		return 0
	}
	return s.in[s.pos]
}

func isIdentRune(r rune, first bool) bool {
	if unicode.IsLetter(r) || r == '_' {
		return true
	}
	if first {
		return false
	}
	return unicode.IsDigit(r) || r == '.' || r == '/'
}

func (s *scanner) ident() (string, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.in) {
		r, n := utf8.DecodeRuneInString(s.in[s.pos:])
		if !isIdentRune(r, s.pos == start) {
			break
		}
		s.pos += n
	}
	if s.pos == start {
		return "", s.errorf("expected name")
	}
	return s.in[start:s.pos], nil
}

func (s *scanner) int() (int, error) {
	s.skipSpace()
	start := s.pos
	for s.pos < len(s.in) && '0' <= s.in[s.pos] && s.in[s.pos] <= '9' {
		s.pos++
	}
	if s.pos == start {
		return 0, s.errorf("integer value expected")
	}
	return strconv.Atoi(s.in[start:s.pos])
}

func (s *scanner) expect(c byte) error {
	if s.peek() != c {
		return s.errorf("expected " + strconv.QuoteRune(rune(c)))
	}
	s.pos++
	return nil
}

func (s *scanner) errorf(msg string) error {
	return errors.Errorf("in %q at pos %d: %s", s.in, s.pos+1, msg)
}

// parseIOspec parses a port specification like "a[8], b, sel".
//
func parseIOspec(spec string) ([]Port, error) {
	var out []Port
	s := &scanner{in: spec}
	seen := make(map[string]bool)
	for !s.eof() {
		name, err := s.ident()
		if err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, s.errorf("duplicate port name " + name)
		}
		seen[name] = true
		width := 1
		if s.peek() == '[' {
			s.pos++
			if width, err = s.int(); err != nil {
				return nil, err
			}
			if width < 1 || width > MaxWidth {
				return nil, s.errorf("invalid port width " + strconv.Itoa(width))
			}
			if err = s.expect(']'); err != nil {
				return nil, err
			}
		}
		out = append(out, Port{Name: name, Width: width})
		if s.eof() {
			break
		}
		if err = s.expect(','); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ParseConnections parses a connection configuration string of the form
// "port=net, port=net". A port may appear only once.
//
func ParseConnections(c string) ([]Connection, error) {
	var conns []Connection
	s := &scanner{in: c}
	seen := make(map[string]bool)
	for !s.eof() {
		port, err := s.ident()
		if err != nil {
			return nil, err
		}
		if seen[port] {
			return nil, s.errorf("port " + port + " connected more than once")
		}
		seen[port] = true
		if err = s.expect('='); err != nil {
			return nil, err
		}
		net, err := s.ident()
		if err != nil {
			return nil, err
		}
		conns = append(conns, Connection{Port: port, Net: net})
		if s.eof() {
			break
		}
		if err = s.expect(','); err != nil {
			return nil, err
		}
	}
	return conns, nil
}

// connString is the inverse of ParseConnections.
func connString(cs []Connection) string {
	var b strings.Builder
	for _, c := range cs {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.Port)
		b.WriteByte('=')
		b.WriteString(c.Net)
	}
	return b.String()
}
