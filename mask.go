package xenv

import (
	"fmt"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/sxwebdev/xenv/parse"
	"github.com/sxwebdev/xenv/schema"
)

// MaskToken replaces the value of secret fields in rendered output.
const MaskToken = "***"

// Mask renders v as Type{Field: value, ...} with every secret field replaced
// by MaskToken. v itself is never modified.
func Mask(v any) string {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "nil"
		}
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return "nil"
	}

	if rv.Kind() != reflect.Struct {
		return fmt.Sprint(rv.Interface())
	}

	s, err := schema.Describe(rv.Type())
	if err != nil {
		return invalidSchema(rv.Type())
	}

	var b strings.Builder
	maskStruct(&b, s, addressable(rv))

	return b.String()
}

// Redacted wraps a configuration value for printing and logging with secrets
// masked.
type Redacted struct {
	v any
}

// Masked wraps v. The result implements fmt.Stringer and slog.LogValuer.
func Masked(v any) Redacted {
	return Redacted{v: v}
}

func (r Redacted) String() string {
	return Mask(r.v)
}

// LogValue renders the configuration as a group with one attribute per field.
func (r Redacted) LogValue() slog.Value {
	rv := reflect.ValueOf(r.v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return slog.StringValue("nil")
		}
		rv = rv.Elem()
	}

	if !rv.IsValid() {
		return slog.StringValue("nil")
	}

	if rv.Kind() != reflect.Struct {
		return slog.AnyValue(rv.Interface())
	}

	s, err := schema.Describe(rv.Type())
	if err != nil {
		return slog.StringValue(invalidSchema(rv.Type()))
	}

	return logStruct(s, addressable(rv))
}

func maskStruct(b *strings.Builder, s *schema.Struct, v reflect.Value) {
	b.WriteString(typeName(s.Type))
	b.WriteByte('{')

	for i := range s.Fields {
		f := &s.Fields[i]
		if i > 0 {
			b.WriteString(", ")
		}

		b.WriteString(f.Name)
		b.WriteString(": ")

		if f.Secret {
			b.WriteString(strconv.Quote(MaskToken))
			continue
		}

		maskField(b, f, v.Field(f.Index))
	}

	b.WriteByte('}')
}

func maskField(b *strings.Builder, f *schema.Field, v reflect.Value) {
	if f.Kind.Optional() {
		if v.IsNil() {
			b.WriteString("nil")
			return
		}
		v = v.Elem()
	}

	switch {
	case f.Kind.IsNested():
		maskStruct(b, f.Nested, v)
	case f.Kind.IsArray():
		b.WriteByte('[')
		for i := range v.Len() {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(formatScalar(v.Index(i)))
		}
		b.WriteByte(']')
	default:
		b.WriteString(formatScalar(v))
	}
}

func logStruct(s *schema.Struct, v reflect.Value) slog.Value {
	attrs := make([]slog.Attr, 0, len(s.Fields))

	for i := range s.Fields {
		f := &s.Fields[i]
		fv := v.Field(f.Index)

		switch {
		case f.Secret:
			attrs = append(attrs, slog.String(f.Name, MaskToken))
		case f.Kind.Optional() && fv.IsNil():
			attrs = append(attrs, slog.Any(f.Name, nil))
		case f.Kind.IsNested():
			if f.Kind.Optional() {
				fv = fv.Elem()
			}
			attrs = append(attrs, slog.Attr{Key: f.Name, Value: logStruct(f.Nested, fv)})
		case f.Kind.IsArray():
			var b strings.Builder
			maskField(&b, f, fv)
			attrs = append(attrs, slog.String(f.Name, b.String()))
		default:
			if f.Kind.Optional() {
				fv = fv.Elem()
			}
			attrs = append(attrs, slog.Attr{Key: f.Name, Value: logScalar(fv)})
		}
	}

	return slog.GroupValue(attrs...)
}

func logScalar(v reflect.Value) slog.Value {
	if v.Kind() == reflect.String {
		return slog.StringValue(v.String())
	}

	switch v.Kind() {
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if _, ok := v.Interface().(fmt.Stringer); !ok {
			return slog.AnyValue(v.Interface())
		}
	}

	return slog.StringValue(formatScalar(v))
}

// formatScalar quotes strings and byte slices and prints everything else the
// way fmt does, preferring a String method on the pointer receiver.
func formatScalar(v reflect.Value) string {
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}

	if !v.CanInterface() {
		return v.String()
	}

	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}

	switch {
	case v.Kind() == reflect.String:
		return strconv.Quote(v.String())
	case parse.IsBytes(v.Type()):
		return strconv.Quote(string(v.Bytes()))
	}

	return fmt.Sprint(v.Interface())
}

// invalidSchema renders a struct whose fields cannot be described.
func invalidSchema(t reflect.Type) string {
	return typeName(t) + "{<invalid schema>}"
}

func typeName(t reflect.Type) string {
	if t.Name() != "" {
		return t.Name()
	}

	return "struct"
}

// addressable returns an addressable copy of v.
func addressable(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		return v
	}

	cp := reflect.New(v.Type()).Elem()
	cp.Set(v)

	return cp
}
