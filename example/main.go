// Command example serves the demo routes under ./app.
//
//	go run ./example serve --dev
//
// After adding or removing route files, regenerate the registry:
//
//	go run ./cmd/fsroute gen --dir example/app
package main

import "github.com/vango-dev/fsroute/pkg/cli"

func main() {
	cli.Execute(Modules())
}
