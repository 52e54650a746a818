// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package logicsim

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var pinType = reflect.TypeOf(Pin(0))

type pinField struct {
	index int
	name  string
}

// MakePart wraps a Component implemented by a struct type into a combinational
// part. Ports are identified by field tags on fields of type Pin.
//
// The field tag must be `hw:"in"`, `hw:"out"`, `hw:"clk"` or `hw:"inout"` to
// identify the port direction. By default, the port name is the field name in
// lowercase and its width is 1. A specific port name and width can be forced
// by adding them in the tag: `hw:"in,sel"` or `hw:"out,,8"`.
//
// Every instance of the part gets a new zero struct with its Pin fields set.
// The part name is the struct type name in upper case and its delay is 1.
//
// MakePart panics if t is not a struct or pointer to struct, or if a tag is
// malformed.
//
func MakePart(t Component) *PartSpec {
	typ := reflect.TypeOf(t)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}
	if k := typ.Kind(); k != reflect.Struct {
		panic(errors.Errorf("unsupported type %q for %q", k, typ.Name()))
	}
	if !reflect.PointerTo(typ).Implements(reflect.TypeOf((*Component)(nil)).Elem()) {
		panic(errors.Errorf("*%s does not implement Component", typ.Name()))
	}

	sp := &PartSpec{
		Name:  strings.ToUpper(typ.Name()),
		Delay: 1,
	}
	var fields []pinField
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		if f.Type != pinType {
			panic(errors.Errorf("unsupported type %q for field %q in %q", f.Type, f.Name, typ.Name()))
		}
		pt := Port{Name: strings.ToLower(f.Name), Width: 1}
		tv := strings.Split(tag, ",")
		if len(tv) > 3 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		switch tv[0] {
		case "in":
			pt.Dir = Input
		case "out":
			pt.Dir = Output
		case "clk":
			pt.Dir = Clock
		case "inout":
			pt.Dir = InOut
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) > 1 && tv[1] != "" {
			pt.Name = tv[1]
		}
		if len(tv) > 2 && tv[2] != "" {
			w, err := strconv.Atoi(tv[2])
			if err != nil || w < 1 || w > 64 {
				panic(errors.Errorf("invalid width in tag %q for field %q in %q", tag, f.Name, typ.Name()))
			}
			pt.Width = w
		}
		sp.Ports = append(sp.Ports, pt)
		fields = append(fields, pinField{i, pt.Name})
	}
	sp.Mount = mountPart(typ, fields)
	if err := sp.check(); err != nil {
		panic(err)
	}
	return sp
}

func mountPart(typ reflect.Type, fields []pinField) MountFn {
	return func(s *Socket) Component {
		v := reflect.New(typ)
		e := v.Elem()
		for _, f := range fields {
			e.Field(f.index).SetInt(int64(s.Pin(f.name)))
		}
		return v.Interface().(Component)
	}
}
