// Copyright (c) 2014 Alex Kalyvitis

package mustache

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// renderOptions carries the knobs set by Option funcs through a single
// render call, plus the partials available to it. It is immutable once a
// render starts.
type renderOptions struct {
	errorOnFuncFailure bool
	evalZeroAsTrue     bool
	escapeAll          bool
	errorOnMissingTags bool
	partials           map[string]*RootNode
}

// errorHandlerFor spawns the handler threaded through evalf for one tag's
// raw text: suppress-and-log by default, or propagate when the engine was
// built with ErrorOnFuncFailure.
func (o *renderOptions) errorHandlerFor(raw string) errorHandler {
	return func(key string, err error) (interface{}, error) {
		cf := &CallableFailure{Key: key, Err: err}
		if o.errorOnFuncFailure {
			return nil, cf
		}
		logger.Warnf("templatize: %s (at %q)", cf, raw)
		return "", nil
	}
}

// missingErr reports a render-time lookup failure per the
// ErrorOnMissingTags option: nil means "suppress to empty string".
func (o *renderOptions) missingErr(key string) error {
	if o.errorOnMissingTags {
		return &MissingBindingError{Key: key}
	}
	return nil
}

// fragKind distinguishes the three variants of the "rendered fragment"
// shape used to carry a partially-processed tree from phase 1 into
// phase 2: a literal string already resolved, a tag that couldn't be
// resolved yet, or a section whose domain is still repeating or
// unresolved (and so must be re-walked later with dynamic frames).
type fragKind int

const (
	fragLiteral fragKind = iota
	fragPendingTag
	fragPendingSection
)

type fragment struct {
	kind    fragKind
	text    string
	tag     *TagNode
	section *SectionNode
	base    *Domain // domain in effect where resolution was deferred
}

// renderTree runs both phases over nodes against domain, the entry point
// used for a template's top-level body and for every partial.
func renderTree(nodes []Node, domain *Domain, opts *renderOptions) (string, error) {
	frags, err := renderPhase1(nodes, domain, opts)
	if err != nil {
		return "", err
	}
	return renderPhase2(frags, domain, nil, opts)
}

// renderPhase1 walks nodes outside-in: text and partials resolve
// immediately, plain tags and non-repeating visible sections resolve as
// far as the current domain allows, and anything that needs a dynamic
// per-iteration frame is deferred into the returned fragment list. Like
// the teacher's sectionNode.render, a failing child doesn't abort its
// siblings: every node is attempted and their errors collected into one
// ErrorSlice.
func renderPhase1(nodes []Node, domain *Domain, opts *renderOptions) ([]fragment, error) {
	out := make([]fragment, 0, len(nodes))
	var errs ErrorSlice
	for _, node := range nodes {
		switch n := node.(type) {
		case TextNode:
			out = append(out, fragment{kind: fragLiteral, text: string(n)})
		case *PartialNode:
			s, err := renderPartialNode(n, domain, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, fragment{kind: fragLiteral, text: s})
		case *TagNode:
			f, err := renderTagPhase1(n, domain, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, f)
		case *SectionNode:
			fs, err := renderSectionPhase1(n, domain, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, fs...)
		}
	}
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

func renderPartialNode(n *PartialNode, domain *Domain, opts *renderOptions) (string, error) {
	tmpl, ok := opts.partials[n.Key]
	if !ok {
		if err := opts.missingErr(n.Key); err != nil {
			return "", &MissingPartial{Key: n.Key}
		}
		logger.Warnf("templatize: missing partial %q", n.Key)
		return "", nil
	}
	base := domain
	if !n.InContext {
		base = domain.root
	}
	return renderTree(tmpl.Inner, base, opts)
}

func renderTagPhase1(n *TagNode, domain *Domain, opts *renderOptions) (fragment, error) {
	onErr := opts.errorHandlerFor(n.Raw)
	sub, err := resolveNodeDomain(n.Key, n.KeySplit, n.InContext, n.Func, n.Raw, domain, nil, onErr)
	if err != nil {
		return fragment{}, err
	}
	if sub == nil {
		return fragment{kind: fragPendingTag, tag: n, base: domain}, nil
	}
	s, err := formatTagValue(n, sub, opts, onErr)
	if err != nil {
		return fragment{}, err
	}
	return fragment{kind: fragLiteral, text: s}, nil
}

// renderSectionPhase1 resolves a section header against domain. A
// repeating or still-unresolved result defers the whole section, body
// untouched, to phase 2. Otherwise the display predicate decides whether
// its (already-resolvable) body is walked now and spliced inline.
func renderSectionPhase1(n *SectionNode, domain *Domain, opts *renderOptions) ([]fragment, error) {
	onErr := opts.errorHandlerFor(n.Raw)
	sub, err := resolveNodeDomain(n.Key, n.KeySplit, n.InContext, n.Func, n.Raw, domain, nil, onErr)
	if err != nil {
		return nil, err
	}
	if sub == nil || sub.isRepeating {
		return []fragment{{kind: fragPendingSection, section: n, base: domain}}, nil
	}
	visible, err := displayPredicate(n.Inclusive, sub, opts, onErr)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, nil
	}
	return renderPhase1(n.Inner, sub, opts)
}

// renderPhase2 walks the phase-1 fragment list, resolving anything left
// pending against base augmented by the active stack of dynamic frames.
// Errors are collected across siblings rather than aborting the walk, as
// in renderPhase1.
func renderPhase2(frags []fragment, domain *Domain, frames []*Domain, opts *renderOptions) (string, error) {
	var b strings.Builder
	var errs ErrorSlice
	for _, f := range frags {
		switch f.kind {
		case fragLiteral:
			b.WriteString(f.text)
		case fragPendingTag:
			s, err := renderTagPhase2(f.tag, f.base, frames, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			b.WriteString(s)
		case fragPendingSection:
			s, err := renderSectionPhase2(f.section, f.base, frames, opts)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			b.WriteString(s)
		}
	}
	if len(errs) > 0 {
		return "", errs
	}
	return b.String(), nil
}

func renderTagPhase2(n *TagNode, base *Domain, frames []*Domain, opts *renderOptions) (string, error) {
	onErr := opts.errorHandlerFor(n.Raw)
	sub, err := resolveNodeDomain(n.Key, n.KeySplit, n.InContext, n.Func, n.Raw, base, frames, onErr)
	if err != nil {
		return "", err
	}
	if sub == nil {
		if err := opts.missingErr(n.Key); err != nil {
			return "", err
		}
		return FormatValue(nil, n.Format, resolveEscape(n, opts)), nil
	}
	return formatTagValue(n, sub, opts, onErr)
}

// renderSectionPhase2 resolves a deferred section's domain with dynamic
// frames in play, then either iterates it (repeating) or renders its body
// once (non-repeating, subject to the display predicate).
func renderSectionPhase2(n *SectionNode, base *Domain, frames []*Domain, opts *renderOptions) (string, error) {
	onErr := opts.errorHandlerFor(n.Raw)
	sub, err := resolveNodeDomain(n.Key, n.KeySplit, n.InContext, n.Func, n.Raw, base, frames, onErr)
	if err != nil {
		return "", err
	}
	if sub == nil {
		if err := opts.missingErr(n.Key); err != nil {
			return "", err
		}
		return "", nil
	}
	if sub.isRepeating {
		count := sub.dynamic.length()
		pieces := make([]string, 0, count)
		for i := 0; i < count; i++ {
			iter, err := sub.dynamic.get(i, onErr)
			if err != nil {
				return "", err
			}
			// Each element is display-gated on its own truthiness
			// (always as though inclusive, regardless of n.Inclusive) so a
			// falsy element - "", nil, false, 0 - contributes nothing,
			// rather than rendering the section body against it.
			visible, err := displayPredicate(true, iter, opts, onErr)
			if err != nil {
				return "", err
			}
			if !visible {
				continue
			}
			innerFrames := append(append([]*Domain(nil), frames...), iter)
			innerFrags, err := renderPhase1(n.Inner, iter, opts)
			if err != nil {
				return "", err
			}
			s, err := renderPhase2(innerFrags, iter, innerFrames, opts)
			if err != nil {
				return "", err
			}
			pieces = append(pieces, s)
		}
		if n.List {
			return joinGrammatically(pieces), nil
		}
		return strings.Join(pieces, ""), nil
	}
	visible, err := displayPredicate(n.Inclusive, sub, opts, onErr)
	if err != nil {
		return "", err
	}
	if !visible {
		return "", nil
	}
	innerFrags, err := renderPhase1(n.Inner, sub, opts)
	if err != nil {
		return "", err
	}
	return renderPhase2(innerFrags, sub, frames, opts)
}

// resolveNodeDomain resolves a Tag or Section's target, dispatching to the
// pass-to-function path when one is attached.
func resolveNodeDomain(key string, keysplit []string, inContext bool, fn *PassToFunctionNode, raw string, base *Domain, frames []*Domain, onErr errorHandler) (*Domain, error) {
	if fn != nil {
		return resolvePassToFunction(raw, key, keysplit, inContext, fn, base, frames, onErr)
	}
	return resolveTarget(key, keysplit, inContext, base, frames, onErr)
}

// resolveTarget is plain domain resolution, augmented with the active
// dynamic frame stack and the "naked tag inside an unresolved repeating
// domain" deferral.
func resolveTarget(key string, keysplit []string, inContext bool, base *Domain, frames []*Domain, onErr errorHandler) (*Domain, error) {
	if key == "" && inContext && base.isRepeating && len(frames) == 0 {
		return nil, nil
	}
	return searchWithFrames(key, keysplit, inContext, base, frames, onErr)
}

// searchWithFrames checks the active dynamic frames (innermost first)
// before falling back to base. An in-context tag resolved while at least
// one frame is active always means "relative to the innermost frame";
// an absolute key checks each frame's namespace in turn.
func searchWithFrames(key string, keysplit []string, inContext bool, base *Domain, frames []*Domain, onErr errorHandler) (*Domain, error) {
	if inContext {
		if len(frames) > 0 {
			return frames[len(frames)-1].search(key, keysplit, inContext, onErr)
		}
		return base.search(key, keysplit, inContext, onErr)
	}
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].inContext(key) {
			return frames[i].search(key, keysplit, inContext, onErr)
		}
	}
	return base.search(key, keysplit, inContext, onErr)
}

// resolvePassToFunction implements the "->" operator: resolve the
// left-hand key and the function separately (both dynamic-frame aware),
// invoke the function with the key's value as `this`, and re-root a fresh
// Domain over the result at the key's own fullkey, so that nested
// pass-to-function applications and iteration both see it consistently.
func resolvePassToFunction(raw, key string, keysplit []string, inContext bool, fn *PassToFunctionNode, base *Domain, frames []*Domain, onErr errorHandler) (*Domain, error) {
	keyDomain, err := resolveTarget(key, keysplit, inContext, base, frames, onErr)
	if err != nil {
		return nil, err
	}
	funcDomain, err := resolveTarget(fn.Key, fn.KeySplit, fn.InContext, base, frames, onErr)
	if err != nil {
		return nil, err
	}
	if keyDomain == nil || funcDomain == nil {
		return nil, nil
	}
	thisVal, err := keyDomain.value(onErr)
	if err != nil {
		return nil, err
	}
	fnVal, err := funcDomain.rawCallable(onErr)
	if err != nil {
		return nil, err
	}
	if !isCallable(fnVal) {
		return nil, &BindingError{Raw: raw, Msg: "pass-to-function target is not callable"}
	}
	var rootData interface{}
	if base.root != nil {
		rootData = base.root.data
	}
	result, err := evalf(fnVal, thisVal, rootData, raw, onErr)
	if err != nil {
		return nil, err
	}
	// A fresh, cache-disconnected Domain at the key's own fullkey: reusing
	// the shared cache would keep resolving "n" back to its pre-reroot
	// value for anything nested under this result (see the self-matching
	// fullkey check at the top of searchInternal).
	reroot := newDomain(result, keyDomain.fullkey, keyDomain.parent)
	reroot.cache = make(map[string]*Domain)
	return reroot, nil
}

// formatTagValue renders a resolved tag: LIST directives join
// grammatically; other ARRAY-kind values join with ", "; OBJECT-kind
// values marshal to JSON first; everything else goes straight through
// FormatValue.
func formatTagValue(n *TagNode, sub *Domain, opts *renderOptions, onErr errorHandler) (string, error) {
	val, err := sub.value(onErr)
	if err != nil {
		return "", err
	}
	escape := resolveEscape(n, opts)
	if n.Directive == DirectiveList {
		return joinGrammatically(listItems(val, n.Format, escape)), nil
	}
	switch sub.kind {
	case KindArray:
		return strings.Join(listItems(val, n.Format, escape), ", "), nil
	case KindObject:
		encoded, err := json.Marshal(val)
		if err != nil {
			return "", fmt.Errorf("encoding %q: %w", n.Raw, err)
		}
		return FormatValue(string(encoded), n.Format, escape), nil
	default:
		return FormatValue(val, n.Format, escape), nil
	}
}

// listItems renders each element of an array value with FormatValue. A
// non-array value (e.g. a LIST tag over a scalar) is treated as a
// one-item list.
func listItems(val interface{}, format string, escape bool) []string {
	if !isArray(val) {
		return []string{FormatValue(val, format, escape)}
	}
	rv := reflect.ValueOf(val)
	items := make([]string, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = FormatValue(rv.Index(i).Interface(), format, escape)
	}
	return items
}

func resolveEscape(n *TagNode, opts *renderOptions) bool {
	if n.Escape {
		return true
	}
	return opts.escapeAll
}

// displayPredicate computes section visibility: truthiness of the
// resolved value, with an OBJECT-kind "_display" key overriding it
// outright when present.
func displayPredicate(inclusive bool, sub *Domain, opts *renderOptions, onErr errorHandler) (bool, error) {
	val, err := sub.value(onErr)
	if err != nil {
		return false, err
	}
	truthy := isTruthy(val, sub.kind, opts.evalZeroAsTrue)
	if sub.kind == KindObject {
		if override, ok := lookupKey(val, "_display"); ok {
			truthy = isTruthy(override, kindOf(override), opts.evalZeroAsTrue)
		}
	}
	return inclusive == truthy, nil
}

// isTruthy: strings are trimmed then tested, zero is only truthy under
// evalZeroAsTrue, and an empty array is still truthy by design (it can
// mark a section "present" even over zero items).
func isTruthy(val interface{}, kind Kind, evalZeroAsTrue bool) bool {
	switch kind {
	case KindNull, KindUndefined:
		return false
	case KindArray:
		return true
	case KindValue:
		switch v := val.(type) {
		case string:
			return strings.TrimSpace(v) != ""
		case bool:
			return v
		default:
			if f, ok := toFloat(val); ok {
				if f == 0 {
					return evalZeroAsTrue
				}
				return true
			}
			return val != nil
		}
	default:
		return val != nil
	}
}
