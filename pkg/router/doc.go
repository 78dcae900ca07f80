// Package router compiles a routes directory into an immutable route table.
//
// # Conventions
//
// Each folder of the routes directory is one URL segment. Inside a folder
// three file names are meaningful:
//
//	page.go    the page served at the folder's URI
//	layout.go  the layout wrapping pages in this folder and below
//	api.go     endpoints served under <folder URI>/api/
//
// Other files are ignored, and so are folders named "api", since that
// segment is reserved for endpoints:
//
//	app/
//	├── layout.go        → wraps every page
//	├── page.go          → GET /
//	├── api.go           → /api/...
//	└── users/
//	    ├── page.go      → GET /users
//	    └── api.go       → POST /users/api/add
//
// # Loading
//
// Go cannot import a file at runtime, so Compile asks a loader.Loader for
// the exports of every recognized file. The Scanner and Generate produce a
// loader.Registry from source, which is what `fsroute gen` writes:
//
//	table, err := router.Compile(os.DirFS("app"), routes.Modules())
//	if err != nil {
//	    return err
//	}
//	r := chi.NewRouter()
//	table.Mount(r)
//
// Compilation either yields a complete table or fails with an
// *errors.Error (codes E100 to E104); a partial table is never returned.
// Handlers of an unsupported shape are logged and skipped.
package router
