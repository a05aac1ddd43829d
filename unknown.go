package xenv

import (
	"github.com/sxwebdev/xenv/source"
)

// UnknownKeys returns, per document, the keys no field of v binds to.
// Documents without unknown keys are omitted.
func (l *Loader) UnknownKeys(v any, docs ...source.Document) (map[string][]string, error) {
	fields, err := l.fieldDocs(v)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		known[f.Key] = struct{}{}
	}

	unknown := make(map[string][]string)
	for _, doc := range docs {
		for _, key := range doc.Values.Keys() {
			if _, ok := known[key]; !ok {
				unknown[doc.Path] = append(unknown[doc.Path], key)
			}
		}
	}

	return unknown, nil
}

// CheckUnknownKeys fails with an *UnknownKeysError when a document holds keys
// no field of v binds to.
func CheckUnknownKeys(v any, docs []source.Document, opts ...Option) error {
	unknown, err := New(opts...).UnknownKeys(v, docs...)
	if err != nil {
		return err
	}

	if len(unknown) > 0 {
		return &UnknownKeysError{Keys: unknown}
	}

	return nil
}
