// Copyright (c) 2014 Alex Kalyvitis

package mustache

import "fmt"

// Option configures a Template at Make time, or layers additional
// behavior on top of it for a single Render call. Check out Dave
// Cheney's talk on functional options: http://bit.ly/1x9WWPi.
type Option func(*Template)

// Delimiters sets the tag delimiters a template is parsed with. Only
// meaningful when passed to Make, before the template body is scanned;
// applying it at Render time has no effect on an already-parsed tree.
func Delimiters(start, end string) Option {
	return func(t *Template) {
		t.startDelim = start
		t.endDelim = end
	}
}

// Partials registers named sub-templates available to `{{>name}}` and
// `{{>name^}}` tags. Each value is either a raw template string (parsed
// with the delimiters in effect at the point this option runs) or an
// already-built *Template.
func Partials(partials map[string]interface{}) Option {
	return func(t *Template) {
		for name, v := range partials {
			t.addPartial(name, v)
		}
	}
}

// ErrorOnFuncFailure makes a failing bound callable propagate its error
// out of Render instead of being suppressed (logged, substituted with "").
func ErrorOnFuncFailure() Option {
	return func(t *Template) { t.opts.errorOnFuncFailure = true }
}

// EvalZeroAsTrue makes the numeric value 0 count as truthy for section
// display purposes.
func EvalZeroAsTrue() Option {
	return func(t *Template) { t.opts.evalZeroAsTrue = true }
}

// EscapeAll HTML-escapes every tag's output by default, as though each
// carried a trailing ";" escape marker.
func EscapeAll() Option {
	return func(t *Template) { t.opts.escapeAll = true }
}

// ErrorOnMissingTags makes an unresolvable key or missing partial
// propagate an error out of Render instead of rendering as "".
func ErrorOnMissingTags() Option {
	return func(t *Template) { t.opts.errorOnMissingTags = true }
}

// Template is a parsed node tree plus the render-time configuration built
// up from its constructing Options.
type Template struct {
	startDelim string
	endDelim   string
	root       *RootNode
	opts       renderOptions
	partialErr error
}

// Make parses template and applies options, producing a Template ready
// to Render. Options are applied in order, so Delimiters must precede
// any Partials entries that should be parsed with the new delimiters.
func Make(template string, options ...Option) (*Template, error) {
	t := &Template{
		startDelim: "{{",
		endDelim:   "}}",
		opts:       renderOptions{partials: make(map[string]*RootNode)},
	}
	for _, opt := range options {
		opt(t)
	}
	if t.partialErr != nil {
		return nil, t.partialErr
	}
	root, err := parseTemplate(template, t.startDelim, t.endDelim)
	if err != nil {
		return nil, err
	}
	t.root = root
	return t, nil
}

// addPartial parses (or unwraps) one Partials() entry into t.opts.partials.
func (t *Template) addPartial(name string, v interface{}) {
	switch p := v.(type) {
	case string:
		root, err := parseTemplate(p, t.startDelim, t.endDelim)
		if err != nil {
			t.partialErr = err
			return
		}
		t.opts.partials[name] = root
	case *Template:
		t.opts.partials[name] = p.root
	default:
		t.partialErr = &ParseError{Msg: fmt.Sprintf("partial %q: unsupported value type %T", name, v)}
	}
}

// clone returns a shallow copy of t with its own partials map, so
// Render-time options never mutate the Template they were called on.
func (t *Template) clone() *Template {
	partials := make(map[string]*RootNode, len(t.opts.partials))
	for k, v := range t.opts.partials {
		partials[k] = v
	}
	c := &Template{
		startDelim: t.startDelim,
		endDelim:   t.endDelim,
		root:       t.root,
		opts:       t.opts,
	}
	c.opts.partials = partials
	return c
}

// Render walks the template's node tree against bindings and returns the
// output string. Additional options layer on top of (without mutating)
// the Template's own configuration for this call only.
func (t *Template) Render(bindings interface{}, options ...Option) (string, error) {
	rt := t
	if len(options) > 0 {
		rt = t.clone()
		for _, opt := range options {
			opt(rt)
		}
		if rt.partialErr != nil {
			return "", rt.partialErr
		}
	}
	root := newDomain(bindings, "", nil)
	if d, ok := bindings.(*Domain); ok {
		root = d.reroot()
	}
	return renderTree(rt.root.Inner, root, &rt.opts)
}

// Render is the one-shot convenience form: Make(template, options...)
// followed by Render(bindings). The options are applied once, at Make.
func Render(template string, bindings interface{}, options ...Option) (string, error) {
	t, err := Make(template, options...)
	if err != nil {
		return "", err
	}
	return t.Render(bindings)
}
