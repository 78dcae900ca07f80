// Package markup is a small HTML node tree and its server-side renderer.
//
// Handlers may return a *Node instead of a string; the response pipeline
// detects it and renders it to HTML before the layout runs.
//
//	page := markup.Main(
//	    markup.H1("Users"),
//	    markup.Ul(markup.Class("list"),
//	        markup.Li("Ada"),
//	        markup.Li("Grace"),
//	    ),
//	)
//	res.Send(page)
//
// Text children are escaped. Raw inserts HTML verbatim and must never be
// fed user input.
package markup
