package xenv

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
)

var usageHeaders = []string{"field", "key", "kind", "default", "secret", "usage"}

// Usage prints a table of the keys v binds to.
func Usage(v any, opts ...Option) (string, error) {
	return New(opts...).Usage(v)
}

// Usage prints a table of the keys v binds to under this loader's options.
func (l *Loader) Usage(v any) (string, error) {
	docs, err := l.fieldDocs(v)
	if err != nil {
		return "", err
	}

	buf := bytes.NewBuffer(nil)
	w := tabwriter.NewWriter(buf, 0, 0, 4, ' ', 0)
	fmt.Fprintf(w, "\nSupported Fields:\n")
	fmt.Fprintln(w, strings.ToUpper(strings.Join(usageHeaders, "\t")))

	dashes := make([]string, len(usageHeaders))
	for i, h := range usageHeaders {
		dashes[i] = strings.Repeat("-", max(len(h), 5))
	}
	fmt.Fprintln(w, strings.Join(dashes, "\t"))

	for _, d := range docs {
		secret := ""
		if d.Secret {
			secret = "✅"
		}

		fmt.Fprintln(w, strings.Join([]string{
			d.Path, d.Key, d.Kind.String(), d.Default, secret, d.Usage,
		}, "\t"))
	}

	if err := w.Flush(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
