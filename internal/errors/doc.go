// Package errors provides structured, coded errors for fsroute.
//
// Every error raised while building the route table or loading configuration
// carries:
//   - A stable code (e.g. "E100") that maps to a registered message
//   - The category the failure belongs to (compile, config, cli)
//   - The path of the file or folder involved, when there is one
//   - An optional suggestion on how to fix it
//
// # Error Codes
//
//	E100-E119  compile: loading modules and walking the route tree
//	E140-E149  config: reading and validating configuration
//	E160-E169  cli: command-line usage
//
// # Usage
//
//	err := errors.New("E102").
//	    WithPath("users/layout.go").
//	    WithDetail("Layout has type int").
//	    WithSuggestion("Export func Layout(page string, r *http.Request) string")
//
//	fmt.Fprint(os.Stderr, err.Format())
//	// ERROR E102: Malformed route module
//	//
//	//   users/layout.go
//	//
//	//   Layout has type int
//	//
//	//   Hint: Export func Layout(page string, r *http.Request) string
//
// Values satisfy the standard error interface and unwrap to the underlying
// cause, so errors.Is and errors.As from the standard library work on them.
package errors
