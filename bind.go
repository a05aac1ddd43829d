package xenv

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/sxwebdev/xenv/naming"
	"github.com/sxwebdev/xenv/parse"
	"github.com/sxwebdev/xenv/schema"
)

// Origins reported in debug records.
const (
	originTest          = "test"
	originSource        = "source"
	originDefault       = "default"
	originAbsent        = "absent"
	originNested        = "nested"
	originNestedDefault = "nested-default"
)

// bindStruct resolves every field of s into out, which must be a settable
// zero value of s.Type.
func (l *Loader) bindStruct(s *schema.Struct, policy naming.Policy, out reflect.Value) error {
	defaults := newTemplate(s.Type, false)

	var tests reflect.Value
	if l.opts.testMode {
		tests = newTemplate(s.Type, true)
	}

	var errs []error

	for i := range s.Fields {
		f := &s.Fields[i]
		dst := out.Field(f.Index)

		var err error
		if f.Kind.IsNested() {
			err = l.bindNested(f, dst, defaults, tests)
		} else {
			err = l.bindField(s, f, f.Key(policy), dst, defaults, tests)
		}

		if err == nil {
			continue
		}

		var schemaErr *schema.Error
		if !l.opts.allErrors || errors.As(err, &schemaErr) {
			return err
		}

		if multi, ok := err.(*MultipleError); ok {
			errs = append(errs, multi.Errors...)
		} else {
			errs = append(errs, err)
		}
	}

	switch len(errs) {
	case 0:
	case 1:
		return errs[0]
	default:
		return &MultipleError{Errors: errs}
	}

	return validateStruct(out)
}

// bindNested loads a nested struct with its own naming policy and falls back
// to the field's default when the nested load fails.
func (l *Loader) bindNested(f *schema.Field, dst, defaults, tests reflect.Value) error {
	if typed, ok := typedAt(tests, f); ok {
		l.trace(f.Name, originTest)
		dst.Set(typed)
		return nil
	}

	nested := reflect.New(f.Elem).Elem()

	err := l.bindStruct(f.Nested, f.Nested.Policy, nested)
	if err == nil {
		l.trace(f.Name, originNested)
		setValue(dst, nested, f.Kind.Optional())
		return nil
	}

	var schemaErr *schema.Error
	if errors.As(err, &schemaErr) {
		return err
	}

	if typed, ok := typedAt(defaults, f); ok {
		l.trace(f.Name, originNestedDefault)
		dst.Set(typed)
		return nil
	}

	if f.Default.Set {
		l.trace(f.Name, originNestedDefault)
		def := reflect.New(f.Elem)
		if d, ok := def.Interface().(schema.Defaulter); ok {
			d.SetDefaults()
		}
		setValue(dst, def.Elem(), f.Kind.Optional())
		return nil
	}

	if f.Kind.Optional() {
		l.trace(f.Name, originAbsent)
		return nil
	}

	return err
}

// bindField resolves a scalar or array field through the priority chain:
// test override, source, default, absence.
func (l *Loader) bindField(s *schema.Struct, f *schema.Field, key string, dst, defaults, tests reflect.Value) error {
	fn, err := l.parserFor(s, f)
	if err != nil {
		return err
	}

	raw, typed, origin := l.resolve(f, key, defaults, tests)
	l.trace(key, origin)

	if origin == originAbsent {
		if f.Kind.Optional() {
			return nil
		}
		return &NotFoundError{Key: key}
	}

	if typed.IsValid() {
		if err := l.checkTyped(s, f, key, typed); err != nil {
			return err
		}
		dst.Set(typed)
		return nil
	}

	var v reflect.Value
	if f.Kind.IsArray() {
		v, err = l.parseArray(s, f, key, raw, fn)
	} else {
		v, err = l.parseOne(s, f, key, raw, fn)
	}
	if err != nil {
		return err
	}

	setValue(dst, v, f.Kind.Optional())

	return nil
}

// resolve returns either a raw string or a typed template value, and where
// it came from.
func (l *Loader) resolve(f *schema.Field, key string, defaults, tests reflect.Value) (string, reflect.Value, string) {
	if l.opts.testMode {
		if f.Test.Set {
			if f.Test.Raw == "" {
				return "", flagValue(f), originTest
			}
			return f.Test.Raw, reflect.Value{}, originTest
		}
		if typed, ok := typedAt(tests, f); ok {
			return "", typed, originTest
		}
	}

	if raw, ok := l.opts.source.Lookup(key); ok {
		return raw, reflect.Value{}, originSource
	}

	if f.Default.Set {
		if f.Default.Raw == "" {
			return "", flagValue(f), originDefault
		}
		return f.Default.Raw, reflect.Value{}, originDefault
	}

	if typed, ok := typedAt(defaults, f); ok {
		return "", typed, originDefault
	}

	return "", reflect.Value{}, originAbsent
}

func (l *Loader) parserFor(s *schema.Struct, f *schema.Field) (parse.Func, error) {
	if f.Parser != "" {
		p, ok := l.opts.parsers[f.Parser]
		if !ok {
			return nil, &schema.Error{Type: s.Type, Field: f.Name, Err: fmt.Errorf("unknown parser %q", f.Parser)}
		}
		if p.typ != f.Elem {
			return nil, &schema.Error{
				Type:  s.Type,
				Field: f.Name,
				Err:   fmt.Errorf("parser %q produces %s, field needs %s", f.Parser, p.typ, f.Elem),
			}
		}
		return p.fn, nil
	}

	if p, ok := l.opts.typeParsers[f.Elem]; ok {
		return p.fn, nil
	}

	if f.Canonical != nil {
		return f.Canonical, nil
	}

	return nil, &schema.Error{Type: s.Type, Field: f.Name, Err: fmt.Errorf("no parser for type %s", f.Elem)}
}

// parseArray splits raw on the separator and parses every trimmed token.
func (l *Loader) parseArray(s *schema.Struct, f *schema.Field, key, raw string, fn parse.Func) (reflect.Value, error) {
	sliceType := f.Type
	if f.Kind.Optional() {
		sliceType = f.Type.Elem()
	}

	tokens := strings.Split(raw, f.Separator)
	out := reflect.MakeSlice(sliceType, 0, len(tokens))

	for _, token := range tokens {
		v, err := l.parseOne(s, f, key, strings.TrimSpace(token), fn)
		if err != nil {
			return reflect.Value{}, err
		}
		out = reflect.Append(out, v)
	}

	return out, nil
}

// parseOne parses and validates a single value of type f.Elem.
func (l *Loader) parseOne(s *schema.Struct, f *schema.Field, key, raw string, fn parse.Func) (reflect.Value, error) {
	shown := shownValue(f, raw)

	parsed, err := fn(raw)
	if err != nil {
		return reflect.Value{}, &ParseError{Key: key, Value: shown, ExpectedType: f.Elem.String(), Err: err}
	}

	v := reflect.ValueOf(parsed)
	switch {
	case !v.IsValid():
		return reflect.Value{}, &ParseError{Key: key, Value: shown, ExpectedType: f.Elem.String(),
			Err: errors.New("parser returned nil")}
	case v.Type().AssignableTo(f.Elem):
	case v.Type().ConvertibleTo(f.Elem):
		v = v.Convert(f.Elem)
	default:
		return reflect.Value{}, &ParseError{Key: key, Value: shown, ExpectedType: f.Elem.String(),
			Err: fmt.Errorf("parser returned %s", v.Type())}
	}

	if err := l.checkValue(s, f, key, shown, v.Interface()); err != nil {
		return reflect.Value{}, err
	}

	return v, nil
}

// checkTyped validates a template value, element by element for arrays.
func (l *Loader) checkTyped(s *schema.Struct, f *schema.Field, key string, typed reflect.Value) error {
	if len(f.Checks) == 0 && f.Rules == "" {
		return nil
	}

	v := typed
	if f.Kind.Optional() {
		v = v.Elem()
	}

	if !f.Kind.IsArray() {
		return l.checkValue(s, f, key, shownValue(f, fmt.Sprint(v.Interface())), v.Interface())
	}

	for i := range v.Len() {
		elem := v.Index(i).Interface()
		if err := l.checkValue(s, f, key, shownValue(f, fmt.Sprint(elem)), elem); err != nil {
			return err
		}
	}

	return nil
}

func (l *Loader) trace(key, origin string) {
	l.opts.logger.Debug("xenv: resolved", slog.String("key", key), slog.String("origin", origin))
}

// newTemplate returns a fresh value of t prepared by SetDefaults, or by
// SetTestDefaults when test is set. The result is invalid when t has no such
// method.
func newTemplate(t reflect.Type, test bool) reflect.Value {
	v := reflect.New(t)

	if test {
		d, ok := v.Interface().(schema.TestDefaulter)
		if !ok {
			return reflect.Value{}
		}
		d.SetTestDefaults()
	} else {
		d, ok := v.Interface().(schema.Defaulter)
		if !ok {
			return reflect.Value{}
		}
		d.SetDefaults()
	}

	return v.Elem()
}

// flagValue is the value of a bare default or test tag: the zero value of
// the field, allocated for pointer fields.
func flagValue(f *schema.Field) reflect.Value {
	if f.Kind.Optional() {
		return reflect.New(f.Type.Elem())
	}

	return reflect.Zero(f.Type)
}

// typedAt returns the template value of f when it is set.
func typedAt(tmpl reflect.Value, f *schema.Field) (reflect.Value, bool) {
	if !tmpl.IsValid() {
		return reflect.Value{}, false
	}

	v := tmpl.Field(f.Index)
	if v.IsZero() {
		return reflect.Value{}, false
	}

	return v, true
}

func setValue(dst, v reflect.Value, optional bool) {
	if !optional {
		dst.Set(v)
		return
	}

	ptr := reflect.New(dst.Type().Elem())
	ptr.Elem().Set(v)
	dst.Set(ptr)
}

func shownValue(f *schema.Field, raw string) string {
	if f.Secret {
		return MaskToken
	}

	return raw
}
