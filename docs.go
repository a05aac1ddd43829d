package xenv

import (
	"fmt"
	"reflect"

	"github.com/sxwebdev/xenv/naming"
	"github.com/sxwebdev/xenv/schema"
)

// fieldDoc is the documentation of one bindable leaf field.
type fieldDoc struct {
	Path     string
	Key      string
	Kind     schema.Kind
	Default  string
	Required bool
	Secret   bool
	Usage    string
	Example  string
}

// fieldDocs walks the schema of v and lists its leaf fields in declaration
// order, nested fields depth first.
func (l *Loader) fieldDocs(v any) ([]fieldDoc, error) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		return nil, ErrInvalidTarget
	}

	s, err := schema.Describe(t)
	if err != nil {
		return nil, err
	}

	var docs []fieldDoc
	collectDocs(&docs, s, l.opts.rootPolicy(s.Policy), "", true)

	return docs, nil
}

func collectDocs(docs *[]fieldDoc, s *schema.Struct, policy naming.Policy, prefix string, required bool) {
	defaults := newTemplate(s.Type, false)

	for i := range s.Fields {
		f := &s.Fields[i]
		path := prefix + f.Name
		typed, hasTyped := typedAt(defaults, f)

		if f.Kind.IsNested() {
			fieldRequired := required && !f.Kind.Optional() && !f.Default.Set && !hasTyped
			collectDocs(docs, f.Nested, f.Nested.Policy, path+".", fieldRequired)
			continue
		}

		doc := fieldDoc{
			Path:    path,
			Key:     f.Key(policy),
			Kind:    f.Kind,
			Secret:  f.Secret,
			Usage:   f.Usage,
			Example: f.Example,
		}

		switch {
		case f.Default.Set:
			doc.Default = f.Default.Raw
		case hasTyped:
			if f.Kind.Optional() {
				typed = typed.Elem()
			}
			doc.Default = fmt.Sprint(typed.Interface())
		}

		doc.Required = required && !f.Kind.Optional() && !f.Default.Set && !hasTyped

		if f.Secret {
			doc.Default = ""
		}

		*docs = append(*docs, doc)
	}
}
