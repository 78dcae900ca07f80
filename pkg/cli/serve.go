package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute"
	"github.com/vango-dev/fsroute/internal/config"
	fserrors "github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/internal/logging"
	"github.com/vango-dev/fsroute/pkg/loader"
)

type serveFlags struct {
	host string
	port int
	dir  string
	dev  bool
}

func serveCmd(modules loader.Loader, load func() (*config.Config, error)) *cobra.Command {
	var flags serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Compile the routes and start the HTTP server",
		Long: `Compile the routes directory and serve it until interrupted.

Flags override the config file and environment (APP_HOST, APP_PORT,
ROUTES_DIR, APP_ENV). SIGINT and SIGTERM trigger a graceful shutdown.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if modules == nil {
				return noModules()
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			flags.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := checkRoutesDir(cfg.Routes.Dir); err != nil {
				return err
			}

			logger := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app, err := fsroute.New(ctx, cfg, modules, fsroute.WithLogger(logger))
			if err != nil {
				return err
			}
			return app.Run(ctx)
		},
	}

	cmd.Flags().StringVar(&flags.host, "host", "", "Listen host")
	cmd.Flags().IntVarP(&flags.port, "port", "p", 0, "Listen port")
	cmd.Flags().StringVarP(&flags.dir, "dir", "d", "", "Routes directory")
	cmd.Flags().BoolVar(&flags.dev, "dev", false, "Development mode (honours the dev IP header, disables asset caching)")

	return cmd
}

func (f serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = f.host
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = f.port
	}
	if cmd.Flags().Changed("dir") {
		cfg.Routes.Dir = f.dir
	}
	if f.dev {
		cfg.Env = config.EnvDevelopment
	}
}

func checkRoutesDir(dir string) error {
	fi, err := os.Stat(dir)
	if err == nil && fi.IsDir() {
		return nil
	}
	e := fserrors.New("E160").
		WithPath(dir).
		WithSuggestion("Set routes.dir in the config file, ROUTES_DIR, or pass --dir")
	if err != nil {
		e = e.Wrap(err)
	}
	return e
}
