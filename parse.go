// Copyright (c) 2014 Alex Kalyvitis

package mustache

import "fmt"

// parseTemplate scans src for leftDelim/rightDelim-bounded tags and
// assembles the resulting Node tree, balancing section opens against
// their closes. Grounded on the teacher's token-driven parser, but
// simplified since tag classification now happens entirely in node.go's
// parseTagContent rather than in the lexer's token set.
func parseTemplate(src, leftDelim, rightDelim string) (*RootNode, error) {
	lex := newLexer(src, leftDelim, rightDelim)
	root := &RootNode{}
	var stack []*SectionNode

	appendNode := func(n Node) {
		if len(stack) == 0 {
			root.Inner = append(root.Inner, n)
			return
		}
		top := stack[len(stack)-1]
		top.Inner = append(top.Inner, n)
	}

	for {
		tok := lex.token()
		switch tok.typ {
		case tokenError:
			return nil, &ParseError{Msg: tok.val}

		case tokenEOF:
			if len(stack) > 0 {
				return nil, &ParseError{Raw: stack[len(stack)-1].Raw, Msg: "unclosed section"}
			}
			return root, nil

		case tokenText:
			if tok.val != "" {
				appendNode(TextNode(tok.val))
			}

		case tokenLeftDelim:
			contentTok := lex.token()
			if contentTok.typ == tokenError {
				return nil, &ParseError{Msg: contentTok.val}
			}
			if rd := lex.token(); rd.typ == tokenError {
				return nil, &ParseError{Msg: rd.val}
			}

			rt, err := parseTagContent(contentTok.val)
			if err != nil {
				return nil, err
			}

			switch rt.directive {
			case DirectiveComment:
				// discarded

			case DirectiveSectionInc, DirectiveSectionExc, DirectiveListSection:
				sec := rt.toSectionOpen()
				appendNode(sec)
				stack = append(stack, sec)

			case DirectiveSectionEnd:
				if len(stack) == 0 {
					return nil, &ParseError{Raw: rt.raw, Msg: "unmatched section close"}
				}
				top := stack[len(stack)-1]
				if top.Key != rt.key {
					return nil, &ParseError{Raw: rt.raw, Msg: fmt.Sprintf("section close %q does not match open %q", rt.key, top.Key)}
				}
				stack = stack[:len(stack)-1]

			case DirectivePartial, DirectiveRootPartial:
				appendNode(rt.toPartialNode())

			default:
				appendNode(rt.toTagNode())
			}
		}
	}
}
