package ir

import (
	"reflect"
	"strconv"
	"time"

	"github.com/cockroachdb/apd/v3"
)

// Kind identifies the declared type of a queryable property.
type Kind int

const (
	// KindUnsupported marks a field whose type is outside the supported set.
	// Such fields are discoverable but cannot be filtered or sorted on.
	KindUnsupported Kind = iota
	KindString
	KindInt
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint16
	KindUint32
	KindUint64
	KindChar
	KindBool
	KindFloat32
	KindFloat64
	KindDecimal
	KindTime
	KindDuration
)

// Char is a single-character property type. Go has no distinct character
// type (rune aliases int32), so records declare Char to opt in.
type Char rune

var (
	charType     = reflect.TypeOf(Char(0))
	timeType     = reflect.TypeOf(time.Time{})
	durationType = reflect.TypeOf(time.Duration(0))
	decimalType  = reflect.TypeOf(apd.Decimal{})
)

// KindOf maps a Go type to its property kind.
// Exact types are checked before the reflect.Kind fallback so that
// time.Duration is not mistaken for int64.
func KindOf(t reflect.Type) Kind {
	switch t {
	case charType:
		return KindChar
	case timeType:
		return KindTime
	case durationType:
		return KindDuration
	case decimalType:
		return KindDecimal
	}

	switch t.Kind() {
	case reflect.String:
		return KindString
	case reflect.Int:
		return KindInt
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Bool:
		return KindBool
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	default:
		return KindUnsupported
	}
}

// String returns the human-readable type name used in error messages.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindInt16:
		return "short integer"
	case KindInt32:
		return "32-bit integer"
	case KindInt64:
		return "long integer"
	case KindUint:
		return "unsigned integer"
	case KindUint16:
		return "unsigned short integer"
	case KindUint32:
		return "unsigned 32-bit integer"
	case KindUint64:
		return "unsigned long integer"
	case KindChar:
		return "character"
	case KindBool:
		return "boolean"
	case KindFloat32:
		return "float"
	case KindFloat64:
		return "double"
	case KindDecimal:
		return "decimal"
	case KindTime:
		return "date-time"
	case KindDuration:
		return "time-span"
	default:
		return "unsupported"
	}
}

// Supported reports whether values of this kind can be parsed and compared.
func (k Kind) Supported() bool {
	return k != KindUnsupported
}

// bitSize returns the integer or float width parsed for the kind.
func (k Kind) bitSize() int {
	switch k {
	case KindInt, KindUint:
		return strconv.IntSize
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32, KindFloat32:
		return 32
	default:
		return 64
	}
}
