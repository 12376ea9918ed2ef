package rdf

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"
)

// canonicalJSON renders a decoded JSON value using the JSON Canonicalization
// Scheme (RFC 8785). It is the lexical form of rdf:JSON literals.
func canonicalJSON(value any) (string, error) {
	var b strings.Builder
	if err := writeCanonicalJSON(&b, value); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCanonicalJSON(b *strings.Builder, value any) error {
	switch v := value.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(v))
	case string:
		writeJSONString(b, v)
	case float64:
		s, err := numberToJSON(v)
		if err != nil {
			return err
		}
		b.WriteString(s)
	case int:
		return writeCanonicalJSON(b, float64(v))
	case int64:
		return writeCanonicalJSON(b, float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return fmt.Errorf("jsonld: invalid JSON number %q: %w", v, err)
		}
		return writeCanonicalJSON(b, f)
	case []any:
		b.WriteByte('[')
		for i, item := range v {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonicalJSON(b, item); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		// Members are ordered by UTF-16 code units, not bytes.
		slices.SortFunc(keys, func(a, c string) int {
			return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(c)))
		})
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			writeJSONString(b, k)
			b.WriteByte(':')
			if err := writeCanonicalJSON(b, v[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	default:
		return fmt.Errorf("jsonld: unsupported JSON value %T", value)
	}
	return nil
}

func writeJSONString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
}

const invalidPattern uint64 = 0x7ff0000000000000

// numberToJSON formats a float the way ECMAScript's Number.prototype.toString does.
func numberToJSON(ieeeF64 float64) (string, error) {
	ieeeU64 := math.Float64bits(ieeeF64)
	if (ieeeU64 & invalidPattern) == invalidPattern {
		return "null", fmt.Errorf("jsonld: invalid JSON number %v", ieeeF64)
	}
	if ieeeF64 == 0 {
		return "0", nil
	}
	sign := ""
	if ieeeF64 < 0 {
		ieeeF64 = -ieeeF64
		sign = "-"
	}
	format := byte('e')
	if ieeeF64 < 1e+21 && ieeeF64 >= 1e-6 {
		format = 'f'
	}
	es6Formatted := strconv.FormatFloat(ieeeF64, format, -1, 64)
	exponent := strings.IndexByte(es6Formatted, 'e')
	if exponent > 0 {
		gform := strconv.FormatFloat(ieeeF64, 'g', 17, 64)
		if len(gform) == len(es6Formatted) {
			es6Formatted = gform
		}
		if es6Formatted[exponent+2] == '0' {
			es6Formatted = es6Formatted[:exponent+2] + es6Formatted[exponent+3:]
		}
	} else if strings.IndexByte(es6Formatted, '.') < 0 && len(es6Formatted) >= 12 {
		i := len(es6Formatted)
		for es6Formatted[i-1] == '0' {
			i--
		}
		if i != len(es6Formatted) {
			fix := strconv.FormatFloat(ieeeF64, 'f', 0, 64)
			if fix[i] >= '5' {
				es6Formatted = fix[:i-1] + string(fix[i-1]+1) + es6Formatted[i:]
			}
		}
	}
	return sign + es6Formatted, nil
}
