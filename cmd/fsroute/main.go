// Command fsroute generates route registries and explains error codes.
//
// Serving needs the application's route code linked in, so apps call
// cli.Execute(Modules()) from their own main package instead.
package main

import "github.com/vango-dev/fsroute/pkg/cli"

func main() {
	cli.Execute(nil)
}
