package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category Category
	Message  string
	Detail   string
}

// registry maps error codes to their templates.
var registry = map[string]Template{
	// ============================================
	// Compile Errors (E100-E119)
	// ============================================

	"E100": {
		Category: CategoryCompile,
		Message:  "Failed to load route module",
		Detail:   "The module loader returned an error for this file. The route table cannot be built without it.",
	},
	"E101": {
		Category: CategoryCompile,
		Message:  "Route module not registered",
		Detail:   "The file exists in the routes directory but no module was registered for it. Regenerate the registry with `fsroute gen`.",
	},
	"E102": {
		Category: CategoryCompile,
		Message:  "Malformed route module",
		Detail:   "The module's exports do not have the shape expected for its file name.",
	},
	"E103": {
		Category: CategoryCompile,
		Message:  "Failed to read routes directory",
	},
	"E104": {
		Category: CategoryCompile,
		Message:  "Duplicate route",
		Detail:   "Two modules resolve to the same method and URL pattern.",
	},
	"E105": {
		Category: CategoryCompile,
		Message:  "Failed to scan route source",
		Detail:   "The Go source file could not be parsed.",
	},

	// ============================================
	// Config Errors (E140-E149)
	// ============================================

	"E140": {
		Category: CategoryConfig,
		Message:  "Failed to read configuration file",
	},
	"E141": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},
	"E142": {
		Category: CategoryConfig,
		Message:  "Unsupported configuration format",
		Detail:   "Configuration files must end in .yaml, .yml, .toml or .json.",
	},

	// ============================================
	// CLI Errors (E160-E169)
	// ============================================

	"E160": {
		Category: CategoryCLI,
		Message:  "Routes directory not found",
	},
	"E161": {
		Category: CategoryCLI,
		Message:  "No route modules linked",
		Detail:   "Go cannot import route files at run time. Serving and listing routes need a binary built with the registry that `fsroute gen` writes.",
	},
	"E162": {
		Category: CategoryCLI,
		Message:  "Go module not found",
		Detail:   "No go.mod was found in the routes directory or any parent, so the import path of the route packages is unknown.",
	},
}

// Register adds or overrides an error template. It is meant to be called
// from init functions.
func Register(code string, template Template) {
	registry[code] = template
}

// Codes returns every registered code in ascending order.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Lookup returns the template registered for code.
func Lookup(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}
