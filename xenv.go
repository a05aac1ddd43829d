package xenv

import (
	"log/slog"
	"reflect"

	"github.com/sxwebdev/xenv/naming"
	"github.com/sxwebdev/xenv/schema"
)

// Naming is the naming policy a struct declares through EnvNaming.
type Naming = naming.Policy

// Loader binds struct types to a settings source. It is immutable and safe
// for concurrent use while its source is not mutated.
type Loader struct {
	opts options
}

// New returns a Loader configured by opts.
func New(opts ...Option) *Loader {
	return &Loader{opts: newOptions(opts)}
}

// Load populates a fresh T from the settings source.
func Load[T any](opts ...Option) (T, error) {
	var v T
	if err := New(opts...).Load(&v); err != nil {
		var zero T
		return zero, err
	}

	return v, nil
}

// LoadInto populates the struct ptr points to. On failure ptr is left
// untouched.
func LoadInto(ptr any, opts ...Option) error {
	return New(opts...).Load(ptr)
}

// Load populates the struct ptr points to. Every field is resolved into a
// fresh value that replaces *ptr only when the whole load succeeds.
func (l *Loader) Load(ptr any) error {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return ErrInvalidTarget
	}

	s, err := schema.Describe(rv.Elem().Type())
	if err != nil {
		return err
	}

	l.opts.logger.Debug("xenv: loading", slog.String("type", s.Type.String()), slog.Bool("test_mode", l.opts.testMode))

	fresh := reflect.New(s.Type).Elem()
	if err := l.bindStruct(s, l.opts.rootPolicy(s.Policy), fresh); err != nil {
		return err
	}

	rv.Elem().Set(fresh)

	return nil
}
