// Package cli implements the fsroute command line.
//
// The generic binary (cmd/fsroute) only knows the commands that need no
// route code: gen, version and explain. An application links its route
// modules into its own main and gets serve and routes as well:
//
//	func main() {
//	    cli.Execute(Modules())
//	}
//
// where Modules is the registry written by `fsroute gen`.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute"
	"github.com/vango-dev/fsroute/internal/config"
	fserrors "github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/loader"
)

// Version information set at build time.
var (
	version = fsroute.Version
	commit  = "none"
	date    = "unknown"
)

// NewRootCommand builds the command tree. modules may be nil, in which case
// serve and routes report E161.
func NewRootCommand(modules loader.Loader) *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "fsroute",
		Short: "Convention-based HTTP routing from a directory tree",
		Long: `fsroute turns a directory of route modules into an HTTP server.

Every folder is a URL segment. A folder may hold:

  page.go     the page served at the folder's URL
  layout.go   a wrapper applied to text pages at and below the folder
  api.go      endpoints served under <folder>/api/...

Run "fsroute gen" after adding or removing route files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $FSROUTE_CONFIG or ./fsroute.{yaml,toml,json})")

	load := func() (*config.Config, error) {
		return config.Load(configPath)
	}

	rootCmd.AddCommand(
		serveCmd(modules, load),
		routesCmd(modules, load),
		genCmd(load),
		explainCmd(),
		versionCmd(),
	)
	return rootCmd
}

// Execute runs the command line and exits the process on failure.
func Execute(modules loader.Loader) {
	if err := NewRootCommand(modules).Execute(); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

func printError(w io.Writer, err error) {
	var fe *fserrors.Error
	if errors.As(err, &fe) {
		fserrors.Fprint(w, fe)
		if fe.Code != "" {
			fmt.Fprintf(w, "  See: %s\n\n", fserrors.Link(fe.Code))
		}
		return
	}
	fmt.Fprintf(w, "\033[31mError:\033[0m %s\n", err)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

func noModules() error {
	return fserrors.New("E161").
		WithSuggestion("Run `fsroute gen`, then start your app's main package, which calls cli.Execute(Modules())")
}
