package xenv_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/go-cmp/cmp"

	"github.com/sxwebdev/xenv"
	"github.com/sxwebdev/xenv/schema"
	"github.com/sxwebdev/xenv/source"
)

var errOdd = errors.New("must be even")

func even(v int) error {
	if v%2 != 0 {
		return errOdd
	}
	return nil
}

func TestValidatorTags(t *testing.T) {
	type Config struct {
		Workers int    `check:"even"`
		Ports   []int  `sep:"," check:"even" validate:"gte=80"`
		Email   string `validate:"required,email"`
	}

	opts := []xenv.Option{xenv.WithValidator("even", xenv.Validator(even))}

	cfg, err := xenv.Load[Config](append(opts, xenv.WithSource(source.Map{
		"WORKERS": "4",
		"PORTS":   "80,8080",
		"EMAIL":   "ops@example.com",
	}))...)
	if err != nil {
		t.Fatal(err)
	}

	expected := Config{Workers: 4, Ports: []int{80, 8080}, Email: "ops@example.com"}
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Error(diff)
	}

	tests := []struct {
		name    string
		src     source.Map
		key     string
		value   string
		message string
	}{
		{
			name:    "named validator",
			src:     source.Map{"WORKERS": "3", "PORTS": "80", "EMAIL": "ops@example.com"},
			key:     "WORKERS",
			value:   "3",
			message: "must be even",
		},
		{
			name:    "array element",
			src:     source.Map{"WORKERS": "2", "PORTS": "80, 81", "EMAIL": "ops@example.com"},
			key:     "PORTS",
			value:   "81",
			message: "must be even",
		},
		{
			name:    "validate rule",
			src:     source.Map{"WORKERS": "2", "PORTS": "80, 22", "EMAIL": "ops@example.com"},
			key:     "PORTS",
			value:   "22",
			message: "failed on the 'gte=80' rule",
		},
		{
			name:    "empty value is present and validated",
			src:     source.Map{"WORKERS": "2", "PORTS": "80", "EMAIL": ""},
			key:     "EMAIL",
			value:   "",
			message: "failed on the 'required' rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := xenv.Load[Config](append(opts, xenv.WithSource(tt.src))...)

			var validationErr *xenv.ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}

			if validationErr.Key != tt.key || validationErr.Value != tt.value || validationErr.Message != tt.message {
				t.Errorf("unexpected error: %+v", validationErr)
			}

			expected := fmt.Sprintf("validation failed for environment variable '%s' with value '%s': %s",
				tt.key, tt.value, tt.message)
			if err.Error() != expected {
				t.Errorf("expected %q, got %q", expected, err.Error())
			}
		})
	}
}

func TestValidatorErrorsUnwrap(t *testing.T) {
	type Config struct {
		Workers int `check:"even"`
	}

	_, err := xenv.Load[Config](
		xenv.WithSource(source.Map{"WORKERS": "1"}),
		xenv.WithValidator("even", xenv.Validator(even)),
	)
	if !errors.Is(err, errOdd) {
		t.Errorf("expected errOdd in chain, got %v", err)
	}
}

func TestValidatorTypeMismatch(t *testing.T) {
	type Config struct {
		Name string `check:"even"`
	}

	_, err := xenv.Load[Config](
		xenv.WithSource(source.Map{"NAME": "x"}),
		xenv.WithValidator("even", xenv.Validator(even)),
	)

	var validationErr *xenv.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if !strings.Contains(validationErr.Message, "validator expects int") {
		t.Errorf("unexpected message %q", validationErr.Message)
	}
}

func TestUnknownValidator(t *testing.T) {
	type Config struct {
		Name string `check:"missing"`
	}

	_, err := xenv.Load[Config](xenv.WithSource(source.Map{"NAME": "x"}))

	var schemaErr *schema.Error
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *schema.Error, got %v", err)
	}
}

func TestCustomValidateInstance(t *testing.T) {
	type Config struct {
		Region string `validate:"region"`
	}

	v := validator.New()
	if err := v.RegisterValidation("region", func(fl validator.FieldLevel) bool {
		return strings.HasPrefix(fl.Field().String(), "eu-")
	}); err != nil {
		t.Fatal(err)
	}

	_, err := xenv.Load[Config](xenv.WithSource(source.Map{"REGION": "us-east-1"}), xenv.WithValidate(v))

	var validationErr *xenv.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}

	cfg, err := xenv.Load[Config](xenv.WithSource(source.Map{"REGION": "eu-west-1"}), xenv.WithValidate(v))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Region != "eu-west-1" {
		t.Errorf("unexpected region %q", cfg.Region)
	}
}

type pool struct {
	Min int `default:"1"`
	Max int `default:"10"`
}

func (p pool) Validate() error {
	if p.Min > p.Max {
		return fmt.Errorf("min %d exceeds max %d", p.Min, p.Max)
	}
	return nil
}

func TestStructValidate(t *testing.T) {
	type Config struct {
		Pool pool
	}

	_, err := xenv.Load[Config](xenv.WithSource(source.Map{"MIN": "20"}))

	var structErr *xenv.StructValidationError
	if !errors.As(err, &structErr) {
		t.Fatalf("expected *StructValidationError, got %v", err)
	}
	if !strings.Contains(err.Error(), "min 20 exceeds max 10") {
		t.Errorf("unexpected message %q", err)
	}

	cfg, err := xenv.Load[Config](xenv.WithSource(source.Map{}))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(pool{Min: 1, Max: 10}, cfg.Pool); diff != "" {
		t.Error(diff)
	}
}

func TestValidatesTypedDefaults(t *testing.T) {
	_, err := xenv.Load[withOddDefault](
		xenv.WithSource(source.Map{}),
		xenv.WithValidator("even", xenv.Validator(even)),
	)

	var validationErr *xenv.ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if validationErr.Value != "3" {
		t.Errorf("expected value 3, got %q", validationErr.Value)
	}
}

type withOddDefault struct {
	Workers int `check:"even"`
}

func (c *withOddDefault) SetDefaults() {
	c.Workers = 3
}
