// Copyright (c) 2014 Alex Kalyvitis

package mustache

import "fmt"

func ExampleRender() {
	out, err := Render("{{&name::capitalize}} runs {{shop}}.", map[string]interface{}{
		"name": "bob",
		"shop": "a burger restaurant",
	})
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out)
	// Output: Bob runs a burger restaurant.
}

func ExampleRender_section() {
	out, err := Render(
		"{{#kids}}{{.}} {{/kids}}",
		map[string]interface{}{"kids": []string{"Tina", "Gene", "Louise"}},
	)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(out)
	// Output: Tina Gene Louise
}
