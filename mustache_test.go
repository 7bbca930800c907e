// Copyright (c) 2014 Alex Kalyvitis

package mustache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderBasic(t *testing.T) {
	out, err := Render("{{name.first}} is {{age}} years old.", map[string]interface{}{
		"age":  46,
		"name": map[string]interface{}{"first": "Bob"},
	})
	require.NoError(t, err)
	require.Equal(t, "Bob is 46 years old.", out)
}

func TestRenderCommentAndEscape(t *testing.T) {
	out, err := Render(
		"{{name.first}} is !{{age}} years old. {{! note }}",
		map[string]interface{}{"age": 46, "name": map[string]interface{}{"first": "Bob"}},
	)
	require.NoError(t, err)
	require.Equal(t, "Bob is {{age}} years old. ", out)
}

func TestRenderListAndFormatting(t *testing.T) {
	out, err := Render(
		"{{&name::capitalize}} sells {{&sells}} with {{&with}}.",
		map[string]interface{}{
			"name":  []string{"bob"},
			"sells": []string{"burgers", "sodas", "fries"},
			"with":  []string{"his wife", "kids"},
		},
	)
	require.NoError(t, err)
	require.Equal(t, "Bob sells burgers, sodas, and fries with his wife and kids.", out)
}

func TestRenderSectionAndInverted(t *testing.T) {
	out, err := Render(
		"Bob is {{#married}}married{{/married}}{{^haspets}}no pets{{/haspets}}",
		map[string]interface{}{"married": true, "haspets": false},
	)
	require.NoError(t, err)
	require.Equal(t, "Bob is marriedno pets", out)
}

func TestRenderRepeatingPassToFunction(t *testing.T) {
	increment := func(self, root interface{}) interface{} {
		n, _ := self.(int)
		return n + 1
	}
	out, err := Render(
		"{{#n->increment}}{{#n->increment}}{{n}}{{/n}}{{/n}} -- {{n}}",
		map[string]interface{}{"n": 1, "increment": increment},
	)
	require.NoError(t, err)
	require.Equal(t, "3 -- 1", out)
}

func TestRenderRerootingOverRepeatingSection(t *testing.T) {
	type person struct {
		First string
		Last  string
		Age   int
	}
	fullname := func(self, root interface{}) interface{} {
		p, _ := self.(person)
		return p.First + " " + p.Last
	}
	age := func(self, root interface{}) interface{} {
		p, _ := self.(person)
		return p.Age
	}
	bindings := map[string]interface{}{
		"main":     person{First: "Bob", Last: "Belcher"},
		"fullname": fullname,
		"age":      age,
		"children": []person{
			{First: "Tina", Last: "Belcher", Age: 13},
			{First: "Gene", Last: "Belcher", Age: 11},
			{First: "Louise", Last: "Belcher", Age: 9},
		},
	}
	out, err := Render(
		"{{main->fullname}}'s kids are:<br />{{#children}}{{children->fullname}} ({{children->age}} years old)<br />{{/children}}",
		bindings,
	)
	require.NoError(t, err)
	require.Equal(t, "Bob Belcher's kids are:<br />Tina Belcher (13 years old)<br />Gene Belcher (11 years old)<br />Louise Belcher (9 years old)<br />", out)
}

func TestRenderPlainTemplateIsIdentity(t *testing.T) {
	out, err := Render("just some text, no tags here", map[string]interface{}{})
	require.NoError(t, err)
	require.Equal(t, "just some text, no tags here", out)
}

func TestRenderMissingTagDefaultsToEmpty(t *testing.T) {
	out, err := Render("[{{missing}}]", map[string]interface{}{})
	require.NoError(t, err)
	require.Equal(t, "[]", out)
}

func TestRenderErrorOnMissingTags(t *testing.T) {
	_, err := Render("[{{missing}}]", map[string]interface{}{}, ErrorOnMissingTags())
	require.Error(t, err)
	var mb *MissingBindingError
	require.ErrorAs(t, err, &mb)
}

func TestRenderEscapeAll(t *testing.T) {
	out, err := Render("{{name}}", map[string]interface{}{"name": `<b>"Bob" & co</b>`}, EscapeAll())
	require.NoError(t, err)
	require.Equal(t, "&lt;b&gt;&quot;Bob&quot; &amp; co&lt;/b&gt;", out)
}

func TestRenderPartials(t *testing.T) {
	tmpl, err := Make("Hi, {{>greeting}}!", Partials(map[string]interface{}{
		"greeting": "{{name}}",
	}))
	require.NoError(t, err)
	out, err := tmpl.Render(map[string]interface{}{"name": "Bob"})
	require.NoError(t, err)
	require.Equal(t, "Hi, Bob!", out)
}

func TestRenderErrorOnFuncFailure(t *testing.T) {
	boom := func(self, root interface{}) interface{} {
		panic("boom")
	}
	_, err := Render("{{val->boom}}", map[string]interface{}{"val": 1, "boom": boom}, ErrorOnFuncFailure())
	require.Error(t, err)
	var cf *CallableFailure
	require.ErrorAs(t, err, &cf)
}

// alwaysSelf returns itself, so evalf must chain-call it up to
// overflowLimit-1 times and stop instead of looping forever.
func alwaysSelf(self, root interface{}) interface{} {
	return alwaysSelf
}

func TestRenderCallableChainOverflowStopsAtCap(t *testing.T) {
	_, err := Render("[{{n}}]", map[string]interface{}{"n": alwaysSelf})
	require.NoError(t, err)
}

func TestRenderZeroIsFalsyByDefault(t *testing.T) {
	out, err := Render("{{#n}}present{{/n}}{{^n}}absent{{/n}}", map[string]interface{}{"n": 0})
	require.NoError(t, err)
	require.Equal(t, "absent", out)
}

func TestRenderEvalZeroAsTrue(t *testing.T) {
	out, err := Render("{{#n}}present{{/n}}{{^n}}absent{{/n}}", map[string]interface{}{"n": 0}, EvalZeroAsTrue())
	require.NoError(t, err)
	require.Equal(t, "present", out)
}

// A section over an ARRAY kind always iterates, inclusive or not: an empty
// array produces zero pieces from either {{#items}} or {{^items}}.
func TestRenderEmptyArraySectionProducesNoPieces(t *testing.T) {
	out, err := Render("[{{#items}}present{{/items}}{{^items}}absent{{/items}}]", map[string]interface{}{
		"items": []string{},
	})
	require.NoError(t, err)
	require.Equal(t, "[]", out)
}

// A falsy element ("", nil, false, 0) contributes no piece at all, even
// though the slice has 7 entries.
func TestRenderRepeatingSectionSkipsFalsyElements(t *testing.T) {
	out, err := Render(
		"{{#children}}Child: {{children}}<br />{{/children}}",
		map[string]interface{}{"children": []interface{}{"Tina", "Gene", "Louise", "", nil, false, 0}},
	)
	require.NoError(t, err)
	require.Equal(t, "Child: Tina<br />Child: Gene<br />Child: Louise<br />", out)
}

func TestRenderNonRepeatingSectionUsesDisplayPredicate(t *testing.T) {
	out, err := Render("{{#flag}}present{{/flag}}{{^flag}}absent{{/flag}}", map[string]interface{}{
		"flag": false,
	})
	require.NoError(t, err)
	require.Equal(t, "absent", out)
}

func TestRenderDisplayOverrideOnObject(t *testing.T) {
	out, err := Render("{{#obj}}present{{/obj}}{{^obj}}absent{{/obj}}", map[string]interface{}{
		"obj": map[string]interface{}{"_display": false, "name": "hidden"},
	})
	require.NoError(t, err)
	require.Equal(t, "absent", out)
}
