package xenv

import (
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/sxwebdev/xenv/naming"
	"github.com/sxwebdev/xenv/parse"
	"github.com/sxwebdev/xenv/source"
)

type Option func(*options)

type options struct {
	source source.Source

	// testMode makes test tags and SetTestDefaults win over every other value.
	testMode bool
	// allErrors collects every field failure instead of stopping at the first.
	allErrors bool

	// overrides of the root struct naming policy
	prefix *string
	suffix *string
	rename *naming.Rule

	parsers     map[string]typedParser
	typeParsers map[reflect.Type]typedParser
	validators  map[string]ValidatorFunc
	validate    *validator.Validate

	logger *slog.Logger
}

type typedParser struct {
	typ reflect.Type
	fn  parse.Func
}

func newOptions(opts []Option) options {
	o := options{
		parsers:     make(map[string]typedParser),
		typeParsers: make(map[reflect.Type]typedParser),
		validators:  make(map[string]ValidatorFunc),
	}

	for _, opt := range opts {
		opt(&o)
	}

	if o.source == nil {
		o.source = source.Env()
	}

	if o.logger == nil {
		o.logger = slog.New(slog.DiscardHandler)
	}

	return o
}

// WithSource sets the settings source. Defaults to the process environment.
func WithSource(src source.Source) Option {
	return func(o *options) {
		o.source = src
	}
}

// WithTestMode enables test overrides.
func WithTestMode(enabled bool) Option {
	return func(o *options) {
		o.testMode = enabled
	}
}

// WithAllErrors reports every failing field in a MultipleError.
func WithAllErrors() Option {
	return func(o *options) {
		o.allErrors = true
	}
}

// WithPrefix overrides the key prefix of the root struct.
func WithPrefix(prefix string) Option {
	return func(o *options) {
		o.prefix = &prefix
	}
}

// WithSuffix overrides the key suffix of the root struct.
func WithSuffix(suffix string) Option {
	return func(o *options) {
		o.suffix = &suffix
	}
}

// WithRenameRule overrides the rename rule of the root struct.
func WithRenameRule(rule naming.Rule) Option {
	return func(o *options) {
		o.rename = &rule
	}
}

// WithParser registers a parser selected by the `parser:"name"` tag.
func WithParser[T any](name string, fn func(raw string) (T, error)) Option {
	return func(o *options) {
		o.parsers[name] = newTypedParser(fn)
	}
}

// WithTypeParser registers the parser of every field of type T (or array
// element of type T) without a parser tag.
func WithTypeParser[T any](fn func(raw string) (T, error)) Option {
	return func(o *options) {
		p := newTypedParser(fn)
		o.typeParsers[p.typ] = p
	}
}

// WithValidator registers a validator selected by the `check:"name"` tag.
func WithValidator(name string, fn ValidatorFunc) Option {
	return func(o *options) {
		o.validators[name] = fn
	}
}

// WithValidate sets the validator instance used for `validate` tag rules.
func WithValidate(v *validator.Validate) Option {
	return func(o *options) {
		o.validate = v
	}
}

// WithLogger sets the logger receiving debug records about resolved keys.
// Values are never logged.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func (o *options) rootPolicy(p naming.Policy) naming.Policy {
	if o.prefix != nil {
		p.Prefix = *o.prefix
	}
	if o.suffix != nil {
		p.Suffix = *o.suffix
	}
	if o.rename != nil {
		p.Rename = *o.rename
	}

	return p
}

func newTypedParser[T any](fn func(raw string) (T, error)) typedParser {
	return typedParser{
		typ: reflect.TypeFor[T](),
		fn: func(raw string) (any, error) {
			v, err := fn(raw)
			if err != nil {
				return nil, err
			}
			return v, nil
		},
	}
}
