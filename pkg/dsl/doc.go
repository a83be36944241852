/*
Package dsl provides a fluent builder for constructing flow graphs in Go.

It lets developers define conversation flows with type-checked code
instead of external YAML files, which is handy for dynamically generated
flows, unit tests and IDE autocompletion.

Example usage:

	b := dsl.New()

	b.Add("start").Start().Go("hello")
	b.Add("hello").Message("Welcome!").Go("ask_name")
	b.Add("ask_name").Question("What is your name?", "$name").Go("bye")
	b.Add("bye").End("Goodbye, {{name}}!")

	graph, err := b.Build()
	// ... pass graph to flowengine.NewFromGraph(...)
*/
package dsl
