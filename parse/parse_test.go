package parse

import (
	"errors"
	"net"
	"net/netip"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

type level string

func TestForCoversCommonTypes(t *testing.T) {
	check := func(expected any, raw string) {
		t.Helper()
		fn, err := For(reflect.TypeOf(expected))
		if err != nil {
			t.Fatalf("For(%T) error: %v", expected, err)
		}
		got, err := fn(raw)
		if err != nil {
			t.Fatalf("parse %q as %T: %v", raw, expected, err)
		}
		if !reflect.DeepEqual(got, expected) {
			t.Fatalf("expected %v (%T), got %v (%T)", expected, expected, got, got)
		}
	}

	check("mysql://example", "mysql://example")
	check(level("debug"), "debug")
	check(true, "true")
	check(int64(-42), "-42")
	check(uint8(5), "5")
	check(uint16(8080), "8080")
	check(float32(3.5), "3.5")
	check(5*time.Second, "5s")
	check([]byte("abc"), "abc")
	check(complex128(1+2i), "1+2i")
	check(netip.MustParseAddrPort("127.0.0.1:80"), "127.0.0.1:80")
	check(net.ParseIP("10.0.0.1"), "10.0.0.1")
}

func TestForTime(t *testing.T) {
	fn, err := For(reflect.TypeOf(time.Time{}))
	if err != nil {
		t.Fatalf("For(time.Time) error: %v", err)
	}

	got, err := fn("2024-01-02T03:04:05Z")
	if err != nil {
		t.Fatalf("parse time: %v", err)
	}

	expected := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	if !got.(time.Time).Equal(expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestForURL(t *testing.T) {
	fn, err := For(reflect.TypeOf(url.URL{}))
	if err != nil {
		t.Fatalf("For(url.URL) error: %v", err)
	}

	got, err := fn("https://api.example.com/v1")
	if err != nil {
		t.Fatalf("parse url: %v", err)
	}

	u := got.(url.URL)
	if diff := cmp.Diff("https://api.example.com/v1", u.String()); diff != "" {
		t.Error(diff)
	}
}

func TestForRejectsOverflowAndGarbage(t *testing.T) {
	tests := []struct {
		target any
		raw    string
	}{
		{uint8(0), "2000"},
		{uint16(0), "not_a_number"},
		{int(0), "1.5"},
		{false, "maybe"},
		{time.Duration(0), "5 parsecs"},
		{netip.AddrPort{}, "localhost"},
	}

	for _, tt := range tests {
		fn, err := For(reflect.TypeOf(tt.target))
		if err != nil {
			t.Fatalf("For(%T) error: %v", tt.target, err)
		}
		if _, err := fn(tt.raw); err == nil {
			t.Errorf("expected %q to fail as %T", tt.raw, tt.target)
		}
	}
}

func TestForUnsupported(t *testing.T) {
	_, err := For(reflect.TypeOf(map[string]string{}))
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
}

func TestUnmarshaler(t *testing.T) {
	if !Unmarshaler(reflect.TypeOf(netip.AddrPort{})) {
		t.Error("expected netip.AddrPort to be an unmarshaler")
	}
	if !Unmarshaler(reflect.TypeOf(url.URL{})) {
		t.Error("expected url.URL to be an unmarshaler")
	}
	if Unmarshaler(reflect.TypeOf(struct{ A int }{})) {
		t.Error("plain struct is not an unmarshaler")
	}
}
