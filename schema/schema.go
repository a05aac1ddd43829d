// Package schema compiles struct types into immutable binding descriptors.
//
// A descriptor lists the bindable fields of a struct in declaration order
// together with the options read from their tags:
//
//	type Config struct {
//	    URL      string        `env:"CORE_DB_URL"`
//	    Timeout  time.Duration `default:"5s"`
//	    Tags     []string      `sep:","`
//	    Password string        `secret:""`
//	    Backend  *Backend      `default:""`
//	}
//
// Descriptors are cached per type and safe for concurrent use.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/sxwebdev/xenv/naming"
	"github.com/sxwebdev/xenv/parse"
)

// Tag keys read from struct fields.
const (
	TagEnv      = "env"
	TagDefault  = "default"
	TagTest     = "test"
	TagSep      = "sep"
	TagParser   = "parser"
	TagCheck    = "check"
	TagValidate = "validate"
	TagSecret   = "secret"
	TagUsage    = "usage"
	TagExample  = "example"
)

// ErrUnexpectedType is returned when a type is not a struct.
var ErrUnexpectedType = errors.New("unexpected type, expecting a struct")

// Namer is implemented by struct types that declare their own naming policy.
type Namer interface {
	EnvNaming() naming.Policy
}

// Defaulter is implemented by struct types that compute typed defaults.
// Every non-zero field left by SetDefaults is a default for that field.
type Defaulter interface {
	SetDefaults()
}

// TestDefaulter is the test mode counterpart of Defaulter.
type TestDefaulter interface {
	SetTestDefaults()
}

// Literal is a raw string read from a tag.
type Literal struct {
	Raw string
	Set bool
}

// Struct describes a bindable struct type.
type Struct struct {
	Type   reflect.Type
	Policy naming.Policy
	Fields []Field
}

// Field describes one bindable field.
type Field struct {
	// Name is the Go identifier of the field.
	Name  string
	Index int
	// Type is the declared type, Elem the type a raw value parses into: the
	// scalar itself, the slice element or the nested struct.
	Type reflect.Type
	Elem reflect.Type
	Kind Kind

	Explicit    string
	HasExplicit bool

	Default   Literal
	Test      Literal
	Separator string
	Parser    string
	Checks    []string
	Rules     string
	Secret    bool
	Usage     string
	Example   string

	// Canonical is the type's own parser, nil when the type has none.
	Canonical parse.Func
	Nested    *Struct
}

// Key resolves the settings key of the field under policy p.
func (f *Field) Key(p naming.Policy) string {
	return p.Key(f.Name, f.Explicit, f.HasExplicit)
}

// Error reports a struct declaration that cannot be bound.
type Error struct {
	Type  reflect.Type
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("xenv: schema of %s: %v", e.Type, e.Err)
	}

	return fmt.Sprintf("xenv: schema of %s: field %s: %v", e.Type, e.Field, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var cache sync.Map // reflect.Type -> *Struct

// Of describes the struct type of v, which may be a struct or a pointer to one.
func Of(v any) (*Struct, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil {
		return nil, ErrUnexpectedType
	}

	return Describe(t)
}

// Describe returns the descriptor of struct type t.
func Describe(t reflect.Type) (*Struct, error) {
	return describe(t, map[reflect.Type]bool{})
}

func describe(t reflect.Type, visiting map[reflect.Type]bool) (*Struct, error) {
	if t.Kind() != reflect.Struct {
		return nil, &Error{Type: t, Err: ErrUnexpectedType}
	}

	if s, ok := cache.Load(t); ok {
		return s.(*Struct), nil
	}

	if visiting[t] {
		return nil, &Error{Type: t, Err: errors.New("recursive nesting")}
	}
	visiting[t] = true
	defer delete(visiting, t)

	s := &Struct{
		Type:   t,
		Policy: policyOf(t),
		Fields: make([]Field, 0, t.NumField()),
	}

	for i := range t.NumField() {
		sf := t.Field(i)

		// skip if field is not exported
		if !sf.IsExported() {
			continue
		}

		if name, ok := sf.Tag.Lookup(TagEnv); ok && name == "-" {
			continue
		}

		f, err := describeField(sf, i, visiting)
		if err != nil {
			var schemaErr *Error
			if errors.As(err, &schemaErr) {
				return nil, err
			}
			return nil, &Error{Type: t, Field: sf.Name, Err: err}
		}

		s.Fields = append(s.Fields, f)
	}

	actual, _ := cache.LoadOrStore(t, s)

	return actual.(*Struct), nil
}

func describeField(sf reflect.StructField, index int, visiting map[reflect.Type]bool) (Field, error) {
	f := Field{
		Name:  sf.Name,
		Index: index,
		Type:  sf.Type,
	}

	tag := sf.Tag

	f.Explicit, f.HasExplicit = tag.Lookup(TagEnv)
	if f.Explicit == "" {
		f.HasExplicit = false
	}
	f.Default.Raw, f.Default.Set = tag.Lookup(TagDefault)
	f.Test.Raw, f.Test.Set = tag.Lookup(TagTest)
	f.Parser = tag.Get(TagParser)
	f.Rules = tag.Get(TagValidate)
	f.Usage = tag.Get(TagUsage)
	f.Example = tag.Get(TagExample)
	_, f.Secret = tag.Lookup(TagSecret)

	if checks := tag.Get(TagCheck); checks != "" {
		for _, name := range strings.Split(checks, ",") {
			if name = strings.TrimSpace(name); name != "" {
				f.Checks = append(f.Checks, name)
			}
		}
	}

	sep, hasSep := tag.Lookup(TagSep)

	kind, elem, err := classify(sf.Type, f.Parser != "")
	if err != nil {
		return f, err
	}
	f.Kind, f.Elem = kind, elem

	switch {
	case kind.IsArray():
		if !hasSep || sep == "" {
			return f, errors.New("slice fields require a non-empty sep tag")
		}
		f.Separator = sep
	case hasSep:
		return f, errors.New("sep tag is only valid on slice fields")
	}

	if kind.IsNested() {
		if f.HasExplicit {
			return f, errors.New("env tag is not supported on nested fields, use EnvNaming")
		}
		if f.Test.Set {
			return f, errors.New("test tag is not supported on nested fields, use SetTestDefaults")
		}
		if f.Parser != "" || len(f.Checks) > 0 || f.Rules != "" {
			return f, errors.New("parser and validator tags are not supported on nested fields")
		}

		nested, err := describe(elem, visiting)
		if err != nil {
			return f, err
		}
		f.Nested = nested

		return f, nil
	}

	if canonical, err := parse.For(elem); err == nil {
		f.Canonical = canonical
	}

	return f, nil
}

func classify(t reflect.Type, hasParser bool) (Kind, reflect.Type, error) {
	optional := false
	if t.Kind() == reflect.Pointer {
		optional = true
		t = t.Elem()
		if t.Kind() == reflect.Pointer {
			return 0, nil, errors.New("pointer to pointer is not supported")
		}
	}

	var kind Kind
	elem := t

	switch {
	case t.Kind() == reflect.Slice && !parse.IsBytes(t) && !parse.Unmarshaler(t):
		kind = Array
		elem = t.Elem()
		if elem.Kind() == reflect.Pointer ||
			(elem.Kind() == reflect.Struct && !hasParser && !parse.Unmarshaler(elem)) {
			return 0, nil, fmt.Errorf("slice elements of type %s are not supported", elem)
		}
	case t.Kind() == reflect.Struct && !hasParser && !parse.Unmarshaler(t):
		kind = Nested
	default:
		kind = Scalar
	}

	if optional {
		kind++
	}

	return kind, elem, nil
}

func policyOf(t reflect.Type) naming.Policy {
	if namer, ok := reflect.New(t).Interface().(Namer); ok {
		return namer.EnvNaming()
	}

	return naming.Policy{}
}
