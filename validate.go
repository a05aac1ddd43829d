package xenv

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/sxwebdev/xenv/schema"
)

// ValidatorFunc checks a parsed value. For arrays it receives every element.
type ValidatorFunc func(v any) error

// Validator adapts a typed check to a ValidatorFunc.
func Validator[T any](fn func(T) error) ValidatorFunc {
	return func(v any) error {
		tv, ok := v.(T)
		if !ok {
			var zero T
			return fmt.Errorf("validator expects %T, got %T", zero, v)
		}
		return fn(tv)
	}
}

// validate is implemented by structs checking themselves once assembled.
type validate interface {
	Validate() error
}

var defaultValidate = sync.OnceValue(func() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
})

// checkValue runs the named validators of f, then its validate rules.
func (l *Loader) checkValue(s *schema.Struct, f *schema.Field, key, shown string, v any) error {
	for _, name := range f.Checks {
		fn, ok := l.opts.validators[name]
		if !ok {
			return &schema.Error{Type: s.Type, Field: f.Name, Err: fmt.Errorf("unknown validator %q", name)}
		}

		if err := fn(v); err != nil {
			return &ValidationError{Key: key, Value: shown, Message: err.Error(), Err: err}
		}
	}

	if f.Rules == "" {
		return nil
	}

	vv := l.opts.validate
	if vv == nil {
		vv = defaultValidate()
	}

	if err := vv.Var(v, f.Rules); err != nil {
		var invalid *validator.InvalidValidationError
		if errors.As(err, &invalid) {
			return &schema.Error{Type: s.Type, Field: f.Name, Err: err}
		}
		return &ValidationError{Key: key, Value: shown, Message: ruleMessage(err), Err: err}
	}

	return nil
}

func ruleMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("failed on the '%s' rule", rule))
	}

	return strings.Join(msgs, ", ")
}

// validateStruct calls the Validate method of an assembled struct.
func validateStruct(v reflect.Value) error {
	target, ok := v.Addr().Interface().(validate)
	if !ok {
		return nil
	}

	if err := target.Validate(); err != nil {
		return &StructValidationError{Type: v.Type(), Err: err}
	}

	return nil
}
