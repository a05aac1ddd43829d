package schema

import "fmt"

// Kind is the binding shape of a field.
type Kind int

const (
	Scalar         Kind = iota // T
	OptionalScalar             // *T
	Array                      // []T with a separator
	OptionalArray              // *[]T with a separator
	Nested                     // struct S bound recursively
	OptionalNested             // *S
)

var kindNames = [...]string{
	Scalar:         "scalar",
	OptionalScalar: "optional scalar",
	Array:          "array",
	OptionalArray:  "optional array",
	Nested:         "nested",
	OptionalNested: "optional nested",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

// Optional reports whether an absent value resolves to nil instead of failing.
func (k Kind) Optional() bool {
	return k == OptionalScalar || k == OptionalArray || k == OptionalNested
}

func (k Kind) IsArray() bool {
	return k == Array || k == OptionalArray
}

func (k Kind) IsNested() bool {
	return k == Nested || k == OptionalNested
}
