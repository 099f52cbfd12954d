package ir

import (
	"cmp"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/apd/v3"
	"github.com/spf13/cast"
)

// Parse converts a raw clause literal into the canonical value for the kind.
//
// String literals pass through unchanged (no trimming, no unescaping).
// Every other kind uses its canonical text parser. Failures return a
// *QueryError with code ErrCodeInvalidValue naming the expected type and the
// literal; KindUnsupported always fails with ErrCodeUnsupportedPropertyType.
func (k Kind) Parse(raw string) (any, error) {
	switch k {
	case KindString:
		return raw, nil
	case KindInt, KindInt16, KindInt32, KindInt64:
		n, err := strconv.ParseInt(raw, 10, k.bitSize())
		if err != nil {
			return nil, NewInvalidValueError(k, raw)
		}
		return n, nil
	case KindUint, KindUint16, KindUint32, KindUint64:
		n, err := strconv.ParseUint(raw, 10, k.bitSize())
		if err != nil {
			return nil, NewInvalidValueError(k, raw)
		}
		return n, nil
	case KindChar:
		r, size := utf8.DecodeRuneInString(raw)
		if size == 0 || size != len(raw) || r == utf8.RuneError {
			return nil, NewInvalidValueError(k, raw)
		}
		return r, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, NewInvalidValueError(k, raw)
		}
		return b, nil
	case KindFloat32, KindFloat64:
		f, err := strconv.ParseFloat(raw, k.bitSize())
		if err != nil {
			return nil, NewInvalidValueError(k, raw)
		}
		return f, nil
	case KindDecimal:
		d, _, err := apd.NewFromString(raw)
		if err != nil || d.Form != apd.Finite {
			return nil, NewInvalidValueError(k, raw)
		}
		return d, nil
	case KindTime:
		t, err := cast.ToTimeE(raw)
		if err != nil {
			return nil, NewInvalidValueError(k, raw)
		}
		return t, nil
	case KindDuration:
		d, err := parseDuration(raw)
		if err != nil {
			return nil, NewInvalidValueError(k, raw)
		}
		return d, nil
	default:
		return nil, NewUnsupportedPropertyTypeError("", k)
	}
}

// Format renders a canonical value back into clause-literal text.
// Parse(Format(v)) compares equal to v for every supported kind.
func (k Kind) Format(v any) string {
	switch k {
	case KindString:
		return v.(string)
	case KindInt, KindInt16, KindInt32, KindInt64:
		return strconv.FormatInt(v.(int64), 10)
	case KindUint, KindUint16, KindUint32, KindUint64:
		return strconv.FormatUint(v.(uint64), 10)
	case KindChar:
		return string(v.(rune))
	case KindBool:
		return strconv.FormatBool(v.(bool))
	case KindFloat32, KindFloat64:
		return strconv.FormatFloat(v.(float64), 'g', -1, k.bitSize())
	case KindDecimal:
		return v.(*apd.Decimal).String()
	case KindTime:
		return v.(time.Time).Format(time.RFC3339Nano)
	case KindDuration:
		return v.(time.Duration).String()
	default:
		return ""
	}
}

// Compare orders two canonical values of the kind.
// Strings compare by bytes, booleans order false before true, times compare
// as instants and decimals by numeric value (1.0 equals 1.00).
func (k Kind) Compare(a, b any) int {
	switch k {
	case KindString:
		return strings.Compare(a.(string), b.(string))
	case KindInt, KindInt16, KindInt32, KindInt64:
		return cmp.Compare(a.(int64), b.(int64))
	case KindUint, KindUint16, KindUint32, KindUint64:
		return cmp.Compare(a.(uint64), b.(uint64))
	case KindChar:
		return cmp.Compare(a.(rune), b.(rune))
	case KindBool:
		return compareBool(a.(bool), b.(bool))
	case KindFloat32, KindFloat64:
		return cmp.Compare(a.(float64), b.(float64))
	case KindDecimal:
		return a.(*apd.Decimal).Cmp(b.(*apd.Decimal))
	case KindTime:
		return a.(time.Time).Compare(b.(time.Time))
	case KindDuration:
		return cmp.Compare(a.(time.Duration), b.(time.Duration))
	default:
		return 0
	}
}

// Canonical reads a field value into the kind's canonical representation.
func (k Kind) Canonical(v reflect.Value) any {
	switch k {
	case KindString:
		return v.String()
	case KindInt, KindInt16, KindInt32, KindInt64:
		return v.Int()
	case KindUint, KindUint16, KindUint32, KindUint64:
		return v.Uint()
	case KindChar:
		return rune(v.Int())
	case KindBool:
		return v.Bool()
	case KindFloat32, KindFloat64:
		return v.Float()
	case KindDecimal:
		d := v.Interface().(apd.Decimal)
		return &d
	case KindTime:
		return v.Interface().(time.Time)
	case KindDuration:
		return time.Duration(v.Int())
	default:
		return v.Interface()
	}
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// parseDuration accepts Go duration syntax ("1h30m") and the clock form
// "[-][d.]hh:mm[:ss[.fffffff]]". A bare integer is a whole number of days.
func parseDuration(s string) (time.Duration, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}

	sign := time.Duration(1)
	if strings.HasPrefix(s, "-") {
		sign = -1
		s = s[1:]
	}

	colon := strings.IndexByte(s, ':')
	if colon < 0 {
		days, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, err
		}
		return sign * time.Duration(days) * 24 * time.Hour, nil
	}

	var total time.Duration
	clock := s
	if dot := strings.IndexByte(s[:colon], '.'); dot >= 0 {
		days, err := strconv.ParseUint(s[:dot], 10, 16)
		if err != nil {
			return 0, err
		}
		total = time.Duration(days) * 24 * time.Hour
		clock = s[dot+1:]
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, strconv.ErrSyntax
	}
	hours, err := parseClockField(parts[0], 23)
	if err != nil {
		return 0, err
	}
	minutes, err := parseClockField(parts[1], 59)
	if err != nil {
		return 0, err
	}
	total += time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute

	if len(parts) == 3 {
		secs, frac, hasFrac := strings.Cut(parts[2], ".")
		seconds, err := parseClockField(secs, 59)
		if err != nil {
			return 0, err
		}
		total += time.Duration(seconds) * time.Second
		if hasFrac {
			if frac == "" || len(frac) > 7 {
				return 0, strconv.ErrSyntax
			}
			nanos, err := strconv.ParseUint(frac+strings.Repeat("0", 9-len(frac)), 10, 64)
			if err != nil {
				return 0, err
			}
			total += time.Duration(nanos)
		}
	}

	return sign * total, nil
}

func parseClockField(s string, max uint64) (uint64, error) {
	if s == "" {
		return 0, strconv.ErrSyntax
	}
	n, err := strconv.ParseUint(s, 10, 8)
	if err != nil {
		return 0, err
	}
	if n > max {
		return 0, strconv.ErrRange
	}
	return n, nil
}
