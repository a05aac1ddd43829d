package schema_test

import (
	"errors"
	"net"
	"net/netip"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sxwebdev/xenv/naming"
	"github.com/sxwebdev/xenv/schema"
)

type backend struct {
	IP   netip.AddrPort
	Kind uint8 `default:"0"`
}

func (backend) EnvNaming() naming.Policy {
	return naming.Policy{Prefix: "BACKEND_"}
}

type kebabConfig struct {
	URL string
}

func (*kebabConfig) EnvNaming() naming.Policy {
	return naming.Policy{Rename: naming.Kebab, Prefix: "db-"}
}

func TestDescribe(t *testing.T) {
	type Config struct {
		URL      string        `env:"CORE_DB_URL" usage:"database url" example:"postgres://localhost"`
		Timeout  time.Duration `default:"5s" test:"1s"`
		Tags     []string      `sep:","`
		Ports    *[]uint16     `sep:";"`
		Password string        `secret:"" validate:"min=8" check:"strong, nonempty"`
		IP       net.IP
		Raw      []byte
		Level    *string
		Backend  *backend `default:""`
		Primary  backend
		Skipped  string `env:"-"`
		private  string
	}

	s, err := schema.Describe(reflect.TypeOf(Config{}))
	if err != nil {
		t.Fatal(err)
	}

	var names []string
	var kinds []schema.Kind
	for _, f := range s.Fields {
		names = append(names, f.Name)
		kinds = append(kinds, f.Kind)
	}

	expectedNames := []string{"URL", "Timeout", "Tags", "Ports", "Password", "IP", "Raw", "Level", "Backend", "Primary"}
	if diff := cmp.Diff(expectedNames, names); diff != "" {
		t.Errorf("field names mismatch (-want +got):\n%s", diff)
	}

	expectedKinds := []schema.Kind{
		schema.Scalar, schema.Scalar, schema.Array, schema.OptionalArray, schema.Scalar,
		schema.Scalar, schema.Scalar, schema.OptionalScalar, schema.OptionalNested, schema.Nested,
	}
	if diff := cmp.Diff(expectedKinds, kinds); diff != "" {
		t.Errorf("field kinds mismatch (-want +got):\n%s", diff)
	}

	url := s.Fields[0]
	if !url.HasExplicit || url.Key(s.Policy) != "CORE_DB_URL" {
		t.Errorf("expected explicit key CORE_DB_URL, got %q", url.Key(s.Policy))
	}
	if url.Usage != "database url" || url.Example != "postgres://localhost" {
		t.Errorf("unexpected documentation tags: %q %q", url.Usage, url.Example)
	}

	timeout := s.Fields[1]
	if diff := cmp.Diff(schema.Literal{Raw: "5s", Set: true}, timeout.Default); diff != "" {
		t.Error(diff)
	}
	if diff := cmp.Diff(schema.Literal{Raw: "1s", Set: true}, timeout.Test); diff != "" {
		t.Error(diff)
	}
	if timeout.Key(s.Policy) != "TIMEOUT" {
		t.Errorf("expected TIMEOUT, got %s", timeout.Key(s.Policy))
	}

	ports := s.Fields[3]
	if ports.Separator != ";" || ports.Elem != reflect.TypeOf(uint16(0)) {
		t.Errorf("unexpected array descriptor: sep %q elem %v", ports.Separator, ports.Elem)
	}
	if ports.Canonical == nil {
		t.Error("expected canonical parser for uint16 elements")
	}

	password := s.Fields[4]
	if !password.Secret {
		t.Error("expected Password to be secret")
	}
	if diff := cmp.Diff([]string{"strong", "nonempty"}, password.Checks); diff != "" {
		t.Error(diff)
	}
	if password.Rules != "min=8" {
		t.Errorf("expected validate rules, got %q", password.Rules)
	}

	b := s.Fields[8]
	if !b.Default.Set {
		t.Error("expected default flag on Backend")
	}
	if b.Nested == nil || b.Nested.Policy.Prefix != "BACKEND_" {
		t.Fatalf("expected nested descriptor with BACKEND_ prefix, got %+v", b.Nested)
	}
	if key := b.Nested.Fields[0].Key(b.Nested.Policy); key != "BACKEND_IP" {
		t.Errorf("expected BACKEND_IP, got %s", key)
	}
}

func TestDescribeIsCached(t *testing.T) {
	type Config struct {
		A string
	}

	first, err := schema.Of(&Config{})
	if err != nil {
		t.Fatal(err)
	}

	second, err := schema.Of(Config{})
	if err != nil {
		t.Fatal(err)
	}

	if first != second {
		t.Error("expected the same descriptor for repeated calls")
	}
}

func TestDescribePointerReceiverPolicy(t *testing.T) {
	s, err := schema.Describe(reflect.TypeOf(kebabConfig{}))
	if err != nil {
		t.Fatal(err)
	}

	if key := s.Fields[0].Key(s.Policy); key != "db-url" {
		t.Errorf("expected db-url, got %s", key)
	}
}

func TestDescribeErrors(t *testing.T) {
	type recursive struct {
		Next *recursive
	}

	tests := []struct {
		name  string
		typ   reflect.Type
		field string
	}{
		{
			name:  "slice without separator",
			typ:   reflect.TypeOf(struct{ Tags []string }{}),
			field: "Tags",
		},
		{
			name:  "separator on scalar",
			typ:   reflect.TypeOf(struct{ Name string `sep:","` }{}),
			field: "Name",
		},
		{
			name:  "pointer to pointer",
			typ:   reflect.TypeOf(struct{ Name **string }{}),
			field: "Name",
		},
		{
			name:  "test tag on nested",
			typ:   reflect.TypeOf(struct{ B backend `test:"x"` }{}),
			field: "B",
		},
		{
			name:  "env tag on nested",
			typ:   reflect.TypeOf(struct{ B backend `env:"CUSTOM"` }{}),
			field: "B",
		},
		{
			name:  "env tag on optional nested",
			typ:   reflect.TypeOf(struct{ B *backend `env:"CUSTOM"` }{}),
			field: "B",
		},
		{
			name:  "struct slice elements",
			typ:   reflect.TypeOf(struct{ B []backend `sep:","` }{}),
			field: "B",
		},
		{
			name: "recursive nesting",
			typ:  reflect.TypeOf(recursive{}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Describe(tt.typ)
			var schemaErr *schema.Error
			if !errors.As(err, &schemaErr) {
				t.Fatalf("expected *schema.Error, got %v", err)
			}
			if schemaErr.Field != tt.field {
				t.Errorf("expected field %q, got %q (%v)", tt.field, schemaErr.Field, err)
			}
		})
	}
}

func TestOfRejectsNonStruct(t *testing.T) {
	_, err := schema.Of(42)
	if !errors.Is(err, schema.ErrUnexpectedType) {
		t.Fatalf("expected ErrUnexpectedType, got %v", err)
	}
}

func TestKindString(t *testing.T) {
	if schema.OptionalNested.String() != "optional nested" {
		t.Errorf("unexpected kind name %q", schema.OptionalNested.String())
	}
	if !schema.OptionalArray.Optional() || !schema.OptionalArray.IsArray() {
		t.Error("expected OptionalArray to be optional and an array")
	}
	if schema.Nested.Optional() {
		t.Error("Nested is required")
	}
}
