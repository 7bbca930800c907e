// Copyright (c) 2014 Alex Kalyvitis

package mustache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name   string
		value  interface{}
		spec   string
		escape bool
		want   string
	}{
		{"nil always empty", nil, "upper", true, ""},
		{"no spec", "bob belcher", "", false, "bob belcher"},
		{"raw skips escaping", "<b>x</b>", "raw", true, "<b>x</b>"},
		{"encode forces escaping", "<b>", "encode", false, "&lt;b&gt;"},
		{"allcaps", "bob", "allcaps", false, "BOB"},
		{"lower", "BOB", "lower", false, "bob"},
		{"capitalize", "bob belcher", "capitalize", false, "Bob Belcher"},
		{"printf spec", 3.14159, ".2f", false, "3.14"},
		{"dollar-prefixed printf", 5.0, "$.2f", false, "$5.00"},
		{"printf spec coerces int to float", 5, ".2f", false, "5.00"},
		{"dollar-prefixed printf coerces int to float", 5, "$.2f", false, "$5.00"},
		{"percent suffix", 0.5, ".0%", false, "50%"},
		{"dollar and percent", 0.5, "$.0%", false, "$50%"},
		{"escape applies after formatting", "<i>", "", true, "&lt;i&gt;"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			require.Equal(t, c.want, FormatValue(c.value, c.spec, c.escape))
		})
	}
}

func TestEscapeHTMLString(t *testing.T) {
	require.Equal(t, "plain text", escapeHTMLString("plain text"))
	require.Equal(t, "&amp;&lt;&gt;&quot;&#39;", escapeHTMLString(`&<>"'`))
}

func TestCapitalize(t *testing.T) {
	require.Equal(t, "", capitalize(""))
	require.Equal(t, "Bob", capitalize("bob"))
	require.Equal(t, "Bob Belcher", capitalize("bob belcher"))
	require.Equal(t, "  Bob", capitalize("  bob"))
}

func TestJoinGrammatically(t *testing.T) {
	require.Equal(t, "", joinGrammatically(nil))
	require.Equal(t, "", joinGrammatically([]string{}))
	require.Equal(t, "A", joinGrammatically([]string{"A"}))
	require.Equal(t, "A and B", joinGrammatically([]string{"A", "B"}))
	require.Equal(t, "A, B, and C", joinGrammatically([]string{"A", "B", "C"}))
	require.Equal(t, "A, B, C, and D", joinGrammatically([]string{"A", "B", "C", "D"}))
}
