// Copyright (c) 2014 Alex Kalyvitis
// Portions Copyright (c) 2011 The Go Authors

package mustache

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// token represents a token or text string returned from the scanner.
type token struct {
	typ  tokenType
	val  string
	line int
	col  int
}

func (i token) String() string {
	return fmt.Sprintf("%s:%q", i.typ, i.val)
}

// tokenType identifies the type of lex tokens. Classification of a tag's
// inner text (section/partial/format/etc.) happens entirely in node.go's
// parseTagContent; the lexer only needs to find delimiters and hand over
// the raw span between them.
type tokenType int

const (
	tokenError tokenType = iota // error occurred; value is text of error
	tokenEOF
	tokenLeftDelim  // {{
	tokenRightDelim // }}
	tokenText       // plain text, including any "!{{...}}"-escaped span
	tokenTagContent // raw, untrimmed text between the delimiters
)

var tokenName = map[tokenType]string{
	tokenError:      "t_error",
	tokenEOF:        "t_eof",
	tokenLeftDelim:  "t_left_delim",
	tokenRightDelim: "t_right_delim",
	tokenText:       "t_text",
	tokenTagContent: "t_tag_content",
}

func (i tokenType) String() string {
	s := tokenName[i]
	if s == "" {
		return fmt.Sprintf("t_unknown_%d", int(i))
	}
	return s
}

const eof = -1

// stateFn represents the state of the scanner as a function that returns
// the next state.
type stateFn func(*lexer) stateFn

// lexer holds the state of the scanner.
type lexer struct {
	input      string     // the string being scanned.
	leftDelim  string      // start of a tag.
	rightDelim string      // end of a tag.
	state      stateFn     // the next lexing function to enter.
	pos        int         // current position in the input.
	start      int         // start position of this token.
	width      int         // width of last rune read from input.
	tokens     chan token  // channel of scanned tokens.
}

// next returns the next rune in the input.
func (l *lexer) next() (r rune) {
	if l.pos >= len(l.input) {
		l.width = 0
		return eof
	}
	r, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return r
}

// seek advances the pointer by n bytes.
func (l *lexer) seek(n int) {
	l.pos += n
}

// emit passes a token back to the client.
func (l *lexer) emit(t tokenType) {
	l.tokens <- token{t, l.input[l.start:l.pos], l.lineNum(), l.columnNum()}
	l.start = l.pos
}

// ignore skips over the pending input before this point.
func (l *lexer) ignore() {
	l.start = l.pos
}

// lineNum reports which line we're on.
func (l *lexer) lineNum() int {
	return 1 + strings.Count(l.input[:l.pos], "\n")
}

// columnNum reports the character of the current line we're on.
func (l *lexer) columnNum() int {
	if lf := strings.LastIndex(l.input[:l.pos], "\n"); lf != -1 {
		return len(l.input[lf+1 : l.pos])
	}
	return len(l.input[:l.pos])
}

// errorf emits an error token and terminates the scan.
func (l *lexer) errorf(format string, args ...interface{}) stateFn {
	l.tokens <- token{tokenError, fmt.Sprintf(format, args...), l.lineNum(), l.columnNum()}
	return nil
}

// token returns the next token from the input, running the state machine
// until one is emitted.
func (l *lexer) token() token {
	for {
		select {
		case tok := <-l.tokens:
			return tok
		default:
			l.state = l.state(l)
		}
	}
}

// newLexer creates a new scanner for the input string.
func newLexer(input, left, right string) *lexer {
	l := &lexer{
		input:      input,
		leftDelim:  left,
		rightDelim: right,
		tokens:     make(chan token, 2),
	}
	l.state = stateText
	return l
}

// stateText scans until an opening delimiter. A delimiter immediately
// preceded by "!" is an escape: the "!" is dropped and the whole
// "{{...}}" span (up through its matching close) is emitted as literal
// text instead of being handed to the parser as a tag.
//
// Each return emits at most two tokens, matching the token buffer's
// capacity: a run of several escaped spans in a row is handled one span
// per call, re-entering stateText rather than looping internally, so the
// buffered channel this lexer uses as a single-producer queue never has
// to hold more than it can.
func stateText(l *lexer) stateFn {
	for {
		rest := l.input[l.pos:]
		if strings.HasPrefix(rest, "!"+l.leftDelim) {
			if l.pos > l.start {
				l.emit(tokenText)
				return stateText
			}
			l.seek(1)
			l.ignore()
			end := strings.Index(l.input[l.pos:], l.rightDelim)
			if end < 0 {
				l.seek(len(l.input) - l.pos)
				l.emit(tokenText)
				l.emit(tokenEOF)
				return nil
			}
			l.seek(end + len(l.rightDelim))
			l.emit(tokenText)
			return stateText
		}
		if strings.HasPrefix(rest, l.leftDelim) {
			if l.pos > l.start {
				l.emit(tokenText)
			}
			return stateLeftDelim
		}
		if l.next() == eof {
			break
		}
	}
	if l.pos > l.start {
		l.emit(tokenText)
	}
	l.emit(tokenEOF)
	return nil
}

// stateLeftDelim scans the left delimiter, which is known to be present.
func stateLeftDelim(l *lexer) stateFn {
	l.seek(len(l.leftDelim))
	l.emit(tokenLeftDelim)
	return stateTagContent
}

// stateTagContent captures everything up to the next right delimiter,
// untrimmed and unclassified.
func stateTagContent(l *lexer) stateFn {
	end := strings.Index(l.input[l.pos:], l.rightDelim)
	if end < 0 {
		return l.errorf("unclosed tag")
	}
	l.seek(end)
	l.emit(tokenTagContent)
	return stateRightDelim
}

// stateRightDelim scans the right delimiter, which is known to be present.
func stateRightDelim(l *lexer) stateFn {
	l.seek(len(l.rightDelim))
	l.emit(tokenRightDelim)
	return stateText
}
