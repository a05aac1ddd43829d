package xenv

import (
	"strings"
	"unicode/utf8"
)

const cellSeparator = "|"

// GenerateMarkdown renders the keys v binds to as a markdown table.
func GenerateMarkdown(v any, opts ...Option) (string, error) {
	return New(opts...).GenerateMarkdown(v)
}

// GenerateMarkdown renders the keys v binds to as a markdown table under this
// loader's options.
func (l *Loader) GenerateMarkdown(v any) (string, error) {
	docs, err := l.fieldDocs(v)
	if err != nil {
		return "", err
	}

	table := make([][]string, 0, len(docs)+1)
	table = append(table, []string{
		"**Name**", "**Required**", "**Secret**", "**Default value**", "**Usage**", "**Example**",
	})

	sizes := make([]int, len(table[0]))
	for i, cell := range table[0] {
		sizes[i] = utf8.RuneCountInString(cell) + 2
	}

	for _, d := range docs {
		row := []string{
			"`" + d.Key + "`",
			boolIcon(d.Required),
			boolIcon(d.Secret),
			codeBlock(d.Default),
			d.Usage,
			codeBlock(d.Example),
		}
		table = append(table, row)

		for i, item := range row {
			if size := utf8.RuneCountInString(item); size+2 > sizes[i] {
				sizes[i] = size + 2
			}
		}
	}

	var out strings.Builder
	for i, row := range table {
		_, _ = out.WriteString(cellSeparator)

		for j, cell := range row {
			size := utf8.RuneCountInString(" " + cell + " ")

			_, _ = out.WriteString(" " + cell + " ")
			_, _ = out.WriteString(strings.Repeat(" ", sizes[j]-size))

			if len(row)-1 != j {
				_, _ = out.WriteString(cellSeparator)
			}
		}

		if i == 0 {
			_, _ = out.WriteString(cellSeparator)
			_, _ = out.WriteRune('\n')

			_, _ = out.WriteString(cellSeparator)
			for j, size := range sizes {
				_, _ = out.WriteString(strings.Repeat("-", size))

				if len(sizes)-1 != j {
					_, _ = out.WriteString(cellSeparator)
				}
			}
		}

		_, _ = out.WriteString(cellSeparator)
		_, _ = out.WriteRune('\n')
	}

	return strings.TrimSpace(out.String()), nil
}

func boolIcon(value bool) string {
	if value {
		return "✅"
	}

	return " "
}

func codeBlock(val string) string {
	if val == "" {
		return val
	}

	return "`" + val + "`"
}
