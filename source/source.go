// Package source provides the flat key/value settings sources xenv reads from.
//
// A source is consulted with an exact key and reports whether the key is
// present. An empty value is still a present value.
package source

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/joho/godotenv"
)

// Source is a read-only key/value lookup.
type Source interface {
	Lookup(key string) (string, bool)
}

// Func adapts a lookup function to Source.
type Func func(key string) (string, bool)

func (fn Func) Lookup(key string) (string, bool) {
	return fn(key)
}

// Env returns the process environment as a Source.
func Env() Source {
	return Func(os.LookupEnv)
}

// Map is an immutable in-memory snapshot.
type Map map[string]string

func (m Map) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Keys returns the keys of the snapshot in sorted order.
func (m Map) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

// Chain consults its sources in order and returns the first hit.
type Chain []Source

func (c Chain) Lookup(key string) (string, bool) {
	for _, s := range c {
		if s == nil {
			continue
		}
		if v, ok := s.Lookup(key); ok {
			return v, true
		}
	}

	return "", false
}

// DotEnv reads the given .env files into a snapshot. Later files override
// earlier ones. Without paths it reads ".env" from the working directory.
func DotEnv(paths ...string) (Map, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	m := make(Map)
	for _, path := range paths {
		values, err := godotenv.Read(path)
		if err != nil {
			return nil, fmt.Errorf("source: read dotenv %s: %w", path, err)
		}
		maps.Copy(m, values)
	}

	return m, nil
}
