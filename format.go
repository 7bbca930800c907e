// Copyright (c) 2014 Alex Kalyvitis

package mustache

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatValue applies a named transform or printf-style spec to value,
// optionally HTML-escaping the result. A nil value always formats to "".
//
// Named specs: raw/html (no escaping), encode (force escaping),
// allcaps/caps/upper, lower, capitalize. Anything else is treated as a
// printf-style spec; a leading "$" formats the remainder and re-prepends a
// literal "$" (so "$.2f" yields "$5.00" rather than attempting to format
// the literal rune '$').
func FormatValue(value interface{}, spec string, escapeHTML bool) string {
	if value == nil {
		return ""
	}

	var s string
	if spec == "" {
		s = fmt.Sprint(value)
	} else {
		switch spec {
		case "raw", "html":
			s = fmt.Sprint(value)
			escapeHTML = false
		case "encode":
			s = fmt.Sprint(value)
			escapeHTML = true
		case "allcaps", "caps", "upper":
			s = strings.ToUpper(fmt.Sprint(value))
		case "lower":
			s = strings.ToLower(fmt.Sprint(value))
		case "capitalize":
			s = capitalize(fmt.Sprint(value))
		default:
			s = printfFormat(value, spec)
		}
	}

	if escapeHTML {
		s = escapeHTMLString(s)
	}
	return s
}

// capitalize uppercases the first character and any character immediately
// following whitespace.
func capitalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := true
	for _, r := range s {
		if prevSpace {
			b.WriteRune(unicode.ToUpper(r))
		} else {
			b.WriteRune(r)
		}
		prevSpace = unicode.IsSpace(r)
	}
	return b.String()
}

// printfFormat applies a printf-style spec to value. A leading "$" formats
// the remainder of the spec and re-prepends a literal dollar sign; a
// trailing "%" spec (e.g. ".0%") multiplies the value by 100 before
// appending a literal percent sign.
func printfFormat(value interface{}, spec string) string {
	dollar := false
	if strings.HasPrefix(spec, "$") {
		dollar = true
		spec = spec[1:]
	}
	if strings.HasSuffix(spec, "%") {
		verb := spec[:len(spec)-1]
		if f, ok := toFloat(value); ok {
			out := fmt.Sprintf("%"+verb+"f", f*100) + "%"
			if dollar {
				return "$" + out
			}
			return out
		}
	}
	out := fmt.Sprintf("%"+spec, coerceForVerb(value, spec))
	if dollar {
		return "$" + out
	}
	return out
}

// coerceForVerb converts value to float64 when spec ends in a float verb
// (e/E/f/F/g/G) and value isn't already a float, so an int-valued binding
// formatted with e.g. ".2f" renders "5.00" rather than fmt's
// "%!f(int=5)".
func coerceForVerb(value interface{}, spec string) interface{} {
	if spec == "" {
		return value
	}
	switch spec[len(spec)-1] {
	case 'e', 'E', 'f', 'F', 'g', 'G':
		if f, ok := toFloat(value); ok {
			return f
		}
	}
	return value
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	default:
		return 0, false
	}
}

// escapeHTMLString replaces &, <, >, ", ' with their entities in that order,
// matching the fixed escape set spec.md requires (distinct from the
// teacher's mustache-spec-compatible &apos;/&quot; pairing).
func escapeHTMLString(s string) string {
	if !strings.ContainsAny(s, `&<>"'`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		case '\'':
			b.WriteString("&#39;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// joinGrammatically joins items the English way: "", "A", "A and B", or
// "A, B, and C".
func joinGrammatically(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		last := items[len(items)-1]
		return strings.Join(items[:len(items)-1], ", ") + ", and " + last
	}
}
