// Copyright (c) 2014 Alex Kalyvitis

package mustache

import "reflect"

// Directive identifies the fixed set of symbols that can prefix, embed in,
// or suffix a tag's inner text. The zero value (directiveNone) means "plain
// value tag".
type Directive int

const (
	directiveNone Directive = iota
	DirectiveComment
	DirectiveList
	DirectiveListSection
	DirectiveSectionInc
	DirectiveSectionExc
	DirectiveSectionEnd
	DirectivePartial
	DirectiveRootPartial
)

func (d Directive) String() string {
	switch d {
	case DirectiveComment:
		return "comment"
	case DirectiveList:
		return "list"
	case DirectiveListSection:
		return "list_section"
	case DirectiveSectionInc:
		return "section_inc"
	case DirectiveSectionExc:
		return "section_exc"
	case DirectiveSectionEnd:
		return "section_end"
	case DirectivePartial:
		return "partial"
	case DirectiveRootPartial:
		return "root_partial"
	default:
		return "value"
	}
}

// Kind classifies a bound value. Ordinals form a total order where richer
// values compare greater: UNDEFINED < NULL < VALUE < ARRAY < OBJECT <
// FUNCTION. Code in this package switches on Kind values and does not
// compare them by ordinal.
type Kind int

const (
	KindUndefined Kind = iota - 1
	KindNull
	KindValue
	KindArray
	KindObject
	KindFunction
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindValue:
		return "value"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// kindOf classifies value the way the Domain needs to: nil is NULL, a
// callable is FUNCTION, a non-string sequence is ARRAY, a map or struct is
// OBJECT, anything else is VALUE. Grounded on lookup.go's reflect.Kind
// switch, but widened to the richer Kind set this engine needs.
func kindOf(value interface{}) Kind {
	if value == nil {
		return KindNull
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return KindNull
		}
		return kindOf(rv.Elem().Interface())
	case reflect.Func:
		return KindFunction
	case reflect.Slice, reflect.Array:
		return KindArray
	case reflect.Map, reflect.Struct:
		return KindObject
	default:
		return KindValue
	}
}

// isArray reports whether value is an ordered sequence that is not a string.
func isArray(value interface{}) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}
