// Copyright (c) 2014 Alex Kalyvitis

package mustache

import (
	"fmt"
	"strings"
)

// Node is the sum type for everything that can live in a parsed template
// tree: *RootNode, TextNode, *TagNode, *SectionNode, *PartialNode. The
// renderer type-switches over these rather than calling a virtual "render"
// method, since phase 1 and phase 2 of the render need to treat the same
// node differently depending on what's already resolvable.
type Node interface {
	fmt.Stringer
	node()
}

// RootNode holds the top-level ordered sequence of a template (or a
// section's inner body).
type RootNode struct {
	Inner []Node
}

func (n *RootNode) node() {}
func (n *RootNode) String() string {
	return fmt.Sprintf("[root: %d nodes]", len(n.Inner))
}

// TextNode is a literal run of template text.
type TextNode string

func (n TextNode) node() {}
func (n TextNode) String() string {
	return fmt.Sprintf("[text: %q]", string(n))
}

// PassToFunctionNode is the right-hand side of a "->" directive: the
// callable to invoke, optionally restricted to the current context.
type PassToFunctionNode struct {
	Raw       string
	Key       string
	KeySplit  []string
	InContext bool
}

func (n *PassToFunctionNode) node() {}
func (n *PassToFunctionNode) String() string {
	return fmt.Sprintf("[func: %q incontext: %t]", n.Key, n.InContext)
}

// TagNode is a value (or LIST) tag: {{key}}, {{&key}}, {{key::fmt}}, {{key->fn}}.
type TagNode struct {
	Raw       string
	Key       string
	KeySplit  []string
	InContext bool
	Func      *PassToFunctionNode
	Format    string
	Escape    bool
	Directive Directive // directiveNone (VALUE) or DirectiveList
}

func (n *TagNode) node() {}
func (n *TagNode) String() string {
	return fmt.Sprintf("[tag: %q list: %t format: %q escape: %t]", n.Key, n.Directive == DirectiveList, n.Format, n.Escape)
}

// SectionNode is an inclusive/exclusive/list block.
type SectionNode struct {
	Raw       string
	Key       string
	KeySplit  []string
	InContext bool
	Func      *PassToFunctionNode
	Inclusive bool // true for # and &#
	List      bool // true for &#
	Inner     []Node
}

func (n *SectionNode) node() {}
func (n *SectionNode) String() string {
	return fmt.Sprintf("[section: %q inclusive: %t list: %t elems: %d]", n.Key, n.Inclusive, n.List, len(n.Inner))
}

// PartialNode is a named sub-template reference.
type PartialNode struct {
	Raw       string
	Key       string
	KeySplit  []string
	InContext bool // true by default; false when the key ends in the root-partial marker
}

func (n *PartialNode) node() {}
func (n *PartialNode) String() string {
	return fmt.Sprintf("[partial: %q incontext: %t]", n.Key, n.InContext)
}

// rawTag is the intermediate result of classifying one {{...}} span before
// the parser decides whether it becomes a TagNode, the open half of a
// SectionNode, a SectionNode close, or a PartialNode.
type rawTag struct {
	raw       string
	key       string
	directive Directive
	inContext bool
	fn        *PassToFunctionNode
	format    string
	escape    bool
}

// parseTagContent classifies the trimmed inner text of one {{...}} span,
// applying the precedence rules of spec.md §4.C. Grounded on
// lib/nodes.py's TagNode.__init__.
func parseTagContent(raw string) (*rawTag, error) {
	inner := strings.TrimSpace(raw)
	if inner == "" || strings.HasPrefix(inner, "!") {
		return &rawTag{raw: raw, directive: DirectiveComment}, nil
	}

	t := &rawTag{raw: raw}

	switch {
	case strings.HasPrefix(inner, "&#"):
		t.directive = DirectiveListSection
		inner = inner[2:]
	case strings.HasPrefix(inner, "#"):
		t.directive = DirectiveSectionInc
		inner = inner[1:]
	case strings.HasPrefix(inner, "^"):
		t.directive = DirectiveSectionExc
		inner = inner[1:]
	case strings.HasPrefix(inner, "/"):
		t.directive = DirectiveSectionEnd
		inner = inner[1:]
	case strings.HasPrefix(inner, ">"):
		t.directive = DirectivePartial
		inner = inner[1:]
	case strings.HasPrefix(inner, "&"):
		t.directive = DirectiveList
		inner = inner[1:]
	default:
		t.directive = directiveNone
	}

	// root-scoped partial: trailing '^' on a partial key
	if t.directive == DirectivePartial && strings.HasSuffix(inner, "^") {
		t.directive = DirectiveRootPartial
		inner = inner[:len(inner)-1]
		if inner == "" {
			return nil, &ParseError{Raw: raw, Msg: "empty partial tag"}
		}
	}

	// in-context shortcut
	if strings.HasPrefix(inner, ".") {
		t.inContext = true
		inner = inner[1:]
	}

	if t.directive == DirectivePartial && t.inContext {
		return nil, &ParseError{Raw: raw, Msg: "partial tag cannot be paired with in-context directive"}
	}

	// pass-to-function split on first "->"
	if strings.Contains(inner, "->") {
		if strings.Count(inner, "->") > 1 {
			return nil, &ParseError{Raw: raw, Msg: "multiple pass-to-function directives"}
		}
		parts := strings.SplitN(inner, "->", 2)
		if (parts[0] == "" && !t.inContext) || parts[1] == "" {
			return nil, &ParseError{Raw: raw, Msg: "malformed pass-to-function directive"}
		}
		inner = parts[0]
		fnRaw := parts[1]

		// format directive applies to the function side when one is present
		fnRaw, format, err := splitFormat(raw, fnRaw, t.inContext)
		if err != nil {
			return nil, err
		}
		fnRaw, escape := splitEscape(fnRaw)
		if format != "" && strings.HasSuffix(format, ";") {
			escape = true
			format = format[:len(format)-1]
		}
		t.format = format
		t.escape = escape

		fn, err := newPassToFunction(raw, fnRaw)
		if err != nil {
			return nil, err
		}
		t.fn = fn
	} else {
		var format string
		var err error
		inner, format, err = splitFormat(raw, inner, t.inContext)
		if err != nil {
			return nil, err
		}
		var escape bool
		inner, escape = splitEscape(inner)
		if format != "" && strings.HasSuffix(format, ";") {
			escape = true
			format = format[:len(format)-1]
		}
		t.format = format
		t.escape = escape
	}

	inner = strings.TrimSpace(inner)
	if inner == "" && !t.inContext {
		return nil, &ParseError{Raw: raw, Msg: "empty tag evaluation"}
	}
	t.key = inner

	if t.directive == DirectivePartial {
		if t.format != "" {
			return nil, &ParseError{Raw: raw, Msg: "partial tag cannot be paired with format directive"}
		}
		if t.escape {
			return nil, &ParseError{Raw: raw, Msg: "partial tag cannot be paired with escape directive"}
		}
		if t.fn != nil {
			return nil, &ParseError{Raw: raw, Msg: "partial tag cannot be paired with pass-to-function directive"}
		}
	}
	if t.directive == DirectiveSectionInc || t.directive == DirectiveSectionExc || t.directive == DirectiveListSection {
		if t.format != "" {
			return nil, &ParseError{Raw: raw, Msg: "section tag cannot be paired with format directive"}
		}
		if t.escape {
			return nil, &ParseError{Raw: raw, Msg: "section tag cannot be paired with escape directive"}
		}
	}

	return t, nil
}

// splitFormat splits target on the first "::". A leading or trailing "::"
// with an empty side is treated as part of the name (not a format
// directive) unless the empty leading side is covered by the tag's
// in-context marker.
func splitFormat(raw, target string, inContext bool) (key, format string, err error) {
	if !strings.Contains(target, "::") {
		return target, "", nil
	}
	parts := strings.SplitN(target, "::", 2)
	if (parts[0] == "" && !inContext) || parts[1] == "" {
		return target, "", nil
	}
	if strings.Contains(parts[1], "::") {
		return "", "", &ParseError{Raw: raw, Msg: "multiple format directives"}
	}
	return parts[0], parts[1], nil
}

// splitEscape strips a trailing ';' escape marker.
func splitEscape(target string) (string, bool) {
	if strings.HasSuffix(target, ";") {
		return target[:len(target)-1], true
	}
	return target, false
}

// newPassToFunction builds the function-side node from the (already
// format/escape-stripped) right side of a "->" split.
func newPassToFunction(raw, key string) (*PassToFunctionNode, error) {
	n := &PassToFunctionNode{Raw: raw}
	if strings.HasPrefix(key, ".") {
		n.InContext = true
		key = key[1:]
	}
	if key == "" && !n.InContext {
		return nil, &ParseError{Raw: raw, Msg: "empty pass-to-function evaluation"}
	}
	n.Key = key
	n.KeySplit = splitKey(key)
	return n, nil
}

func splitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}

// toTagNode converts a classified rawTag into a plain value/list TagNode.
// Only called for directives directiveNone and DirectiveList.
func (t *rawTag) toTagNode() *TagNode {
	return &TagNode{
		Raw:       t.raw,
		Key:       t.key,
		KeySplit:  splitKey(t.key),
		InContext: t.inContext,
		Func:      t.fn,
		Format:    t.format,
		Escape:    t.escape,
		Directive: t.directive,
	}
}

// toSectionOpen converts a classified rawTag into the open half of a
// SectionNode. Only called for DirectiveSectionInc, DirectiveSectionExc,
// and DirectiveListSection.
func (t *rawTag) toSectionOpen() *SectionNode {
	return &SectionNode{
		Raw:       t.raw,
		Key:       t.key,
		KeySplit:  splitKey(t.key),
		InContext: t.inContext,
		Func:      t.fn,
		Inclusive: t.directive == DirectiveSectionInc || t.directive == DirectiveListSection,
		List:      t.directive == DirectiveListSection,
	}
}

// toPartialNode converts a classified rawTag into a PartialNode. Only
// called for DirectivePartial and DirectiveRootPartial.
func (t *rawTag) toPartialNode() *PartialNode {
	return &PartialNode{
		Raw:       t.raw,
		Key:       t.key,
		KeySplit:  splitKey(t.key),
		InContext: t.directive != DirectiveRootPartial,
	}
}
