// Package parse provides the canonical string parsers of the types xenv can bind.
package parse

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Func converts a raw settings value into a value of a fixed type.
type Func func(raw string) (any, error)

// ErrUnsupported is returned by For when a type has no canonical parser.
var ErrUnsupported = errors.New("parse: unsupported type")

var (
	textUnmarshalerType   = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
	binaryUnmarshalerType = reflect.TypeOf((*encoding.BinaryUnmarshaler)(nil)).Elem()
	durationType          = reflect.TypeOf(time.Duration(0))
	bytesType             = reflect.TypeOf([]byte(nil))
)

// Unmarshaler reports whether a pointer to t can decode itself from text,
// either as an encoding.TextUnmarshaler or an encoding.BinaryUnmarshaler.
func Unmarshaler(t reflect.Type) bool {
	ptr := reflect.PointerTo(t)
	return ptr.Implements(textUnmarshalerType) || ptr.Implements(binaryUnmarshalerType)
}

// For returns the canonical parser of t. The values it returns have exactly
// type t.
func For(t reflect.Type) (Func, error) {
	ptr := reflect.PointerTo(t)

	switch {
	case ptr.Implements(textUnmarshalerType):
		return func(raw string) (any, error) {
			dest := reflect.New(t)
			if err := dest.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return nil, err
			}
			return dest.Elem().Interface(), nil
		}, nil
	case ptr.Implements(binaryUnmarshalerType):
		return func(raw string) (any, error) {
			dest := reflect.New(t)
			if err := dest.Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary([]byte(raw)); err != nil {
				return nil, err
			}
			return dest.Elem().Interface(), nil
		}, nil
	case t == durationType:
		return func(raw string) (any, error) {
			d, err := time.ParseDuration(raw)
			if err != nil {
				return nil, err
			}
			return d, nil
		}, nil
	case t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8:
		return func(raw string) (any, error) {
			return reflect.ValueOf([]byte(raw)).Convert(t).Interface(), nil
		}, nil
	}

	switch t.Kind() {
	case reflect.String:
		return func(raw string) (any, error) {
			return reflect.ValueOf(raw).Convert(t).Interface(), nil
		}, nil
	case reflect.Bool:
		return func(raw string) (any, error) {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(v).Convert(t).Interface(), nil
		}, nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(raw string) (any, error) {
			v, err := strconv.ParseInt(raw, 10, t.Bits())
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(v).Convert(t).Interface(), nil
		}, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return func(raw string) (any, error) {
			v, err := strconv.ParseUint(raw, 10, t.Bits())
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(v).Convert(t).Interface(), nil
		}, nil
	case reflect.Float32, reflect.Float64:
		return func(raw string) (any, error) {
			v, err := strconv.ParseFloat(raw, t.Bits())
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(v).Convert(t).Interface(), nil
		}, nil
	case reflect.Complex64, reflect.Complex128:
		return func(raw string) (any, error) {
			v, err := strconv.ParseComplex(raw, t.Bits())
			if err != nil {
				return nil, err
			}
			return reflect.ValueOf(v).Convert(t).Interface(), nil
		}, nil
	}

	return nil, fmt.Errorf("%w %s", ErrUnsupported, t)
}

// IsBytes reports whether t is a byte slice, which binds as a single value.
func IsBytes(t reflect.Type) bool {
	return t == bytesType || (t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8)
}
