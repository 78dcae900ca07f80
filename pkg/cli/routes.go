package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/config"
	"github.com/vango-dev/fsroute/internal/logging"
	"github.com/vango-dev/fsroute/pkg/loader"
	"github.com/vango-dev/fsroute/pkg/router"
)

func routesCmd(modules loader.Loader, load func() (*config.Config, error)) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print the compiled route table",
		Long: `Compile the routes directory and print every route in registration
order: method, URL pattern, kind, execution model, whether a layout applies,
and the source file.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modules == nil {
				return noModules()
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.Routes.Dir
			}
			if err := checkRoutesDir(dir); err != nil {
				return err
			}

			table, err := router.Compile(os.DirFS(dir), modules, router.WithLogger(logging.Discard()))
			if err != nil {
				return err
			}
			printRoutes(cmd.OutOrStdout(), table.Routes())
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Routes directory (default: routes.dir from config)")

	return cmd
}

func printRoutes(w io.Writer, routes []router.Route) {
	if len(routes) == 0 {
		warn(w, "No routes found")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATTERN\tKIND\tMODEL\tLAYOUT\tSOURCE")
	for _, r := range routes {
		layout := "-"
		if r.Layout {
			layout = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", r.Method, r.Pattern, r.Kind, r.Model, layout, r.Source)
	}
	tw.Flush()
	fmt.Fprintf(w, "\n%d %s\n", len(routes), plural(len(routes), "route"))
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return strings.TrimSuffix(word, "s") + "s"
}
