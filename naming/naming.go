// Package naming turns struct field identifiers into settings keys.
package naming

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Rule is a case conversion applied to the words of a field identifier.
// The zero value is UpperSnake.
type Rule int

const (
	UpperSnake Rule = iota // SCREAMING_SNAKE_CASE
	Snake                  // snake_case
	Kebab                  // kebab-case
	UpperKebab             // SCREAMING-KEBAB-CASE
	Camel                  // camelCase
	Pascal                 // PascalCase
	Lower                  // lowercase
	Upper                  // UPPERCASE
)

var ruleNames = map[Rule]string{
	UpperSnake: "SCREAMING_SNAKE_CASE",
	Snake:      "snake_case",
	Kebab:      "kebab-case",
	UpperKebab: "SCREAMING-KEBAB-CASE",
	Camel:      "camelCase",
	Pascal:     "PascalCase",
	Lower:      "lowercase",
	Upper:      "UPPERCASE",
}

// ParseRule returns the rule registered under name, e.g. "kebab-case".
func ParseRule(name string) (Rule, error) {
	for rule, n := range ruleNames {
		if n == name {
			return rule, nil
		}
	}

	return UpperSnake, fmt.Errorf("naming: unknown rename rule %q", name)
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}

	return fmt.Sprintf("Rule(%d)", int(r))
}

// Apply converts ident to the rule's case.
func (r Rule) Apply(ident string) string {
	words := Words(ident)

	switch r {
	case Snake:
		return join(words, "_", strings.ToLower)
	case Kebab:
		return join(words, "-", strings.ToLower)
	case UpperKebab:
		return join(words, "-", strings.ToUpper)
	case Camel:
		for i, w := range words {
			if i == 0 {
				words[i] = strings.ToLower(w)
			} else {
				words[i] = title(w)
			}
		}
		return strings.Join(words, "")
	case Pascal:
		return join(words, "", title)
	case Lower:
		return join(words, "", strings.ToLower)
	case Upper:
		return join(words, "", strings.ToUpper)
	default:
		return join(words, "_", strings.ToUpper)
	}
}

// Policy is the naming policy a struct applies to its own fields.
type Policy struct {
	Rename Rule
	Prefix string
	Suffix string
}

// Key returns the settings key of the field ident. An explicit name is
// returned unchanged; otherwise the rule converts ident and the prefix and
// suffix are concatenated around the result.
func (p Policy) Key(ident, explicit string, hasExplicit bool) string {
	if hasExplicit {
		return explicit
	}

	return p.Prefix + p.Rename.Apply(ident) + p.Suffix
}

func join(words []string, sep string, conv func(string) string) string {
	for i, w := range words {
		words[i] = conv(w)
	}

	return strings.Join(words, sep)
}

func title(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}

	return string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
}
