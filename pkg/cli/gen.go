package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vango-dev/fsroute/internal/config"
	fserrors "github.com/vango-dev/fsroute/internal/errors"
	"github.com/vango-dev/fsroute/pkg/router"
)

// DefaultGenOutput is the file gen writes next to the routes directory.
const DefaultGenOutput = "routes_gen.go"

type genOptions struct {
	dir    string
	output string
	pkg    string
}

func genCmd(load func() (*config.Config, error)) *cobra.Command {
	var opts genOptions

	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate the route module registry",
		Long: `Scan the routes directory and write routes_gen.go.

The generated file declares

  func Modules() *loader.Registry

registering every page.go, layout.go and api.go under its path relative to
the routes directory. It is written next to the routes directory (in its
parent package) because a package cannot import itself.

The output is deterministic: running gen twice without changing the routes
produces identical files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.dir == "" {
				cfg, err := load()
				if err != nil {
					return err
				}
				opts.dir = cfg.Routes.Dir
			}
			return runGen(cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dir, "dir", "d", "", "Routes directory (default: routes.dir from config)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file (default: <parent of dir>/routes_gen.go)")
	cmd.Flags().StringVar(&opts.pkg, "package", "main", "Package name of the generated file")

	return cmd
}

func runGen(w io.Writer, opts genOptions) error {
	if err := checkRoutesDir(opts.dir); err != nil {
		return err
	}
	absDir, err := filepath.Abs(opts.dir)
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = filepath.Join(filepath.Dir(absDir), DefaultGenOutput)
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return err
	}
	if filepath.Dir(absOut) == absDir {
		return fmt.Errorf("output %s is inside the routes root; the root package cannot import itself", output)
	}

	modRoot, modPath, err := findModule(absDir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(modRoot, absDir)
	if err != nil {
		return err
	}
	importBase := path.Join(modPath, filepath.ToSlash(rel))

	info(w, "Scanning %s...", opts.dir)
	files, err := router.NewScanner(os.DirFS(absDir)).Scan()
	if err != nil {
		return err
	}
	info(w, "Found %d route %s", len(files), plural(len(files), "file"))

	code, err := router.Generate(files, importBase, opts.pkg)
	if err != nil {
		return err
	}

	if existing, err := os.ReadFile(absOut); err == nil && bytes.Equal(existing, code) {
		success(w, "%s is up to date", output)
		return nil
	}
	if err := os.WriteFile(absOut, code, 0o644); err != nil {
		return err
	}
	success(w, "Generated %s", output)
	return nil
}

// findModule walks up from dir to the nearest go.mod and returns its
// directory and module path.
func findModule(dir string) (string, string, error) {
	for d := dir; ; {
		data, err := os.ReadFile(filepath.Join(d, "go.mod"))
		if err == nil {
			modPath := modulePath(data)
			if modPath == "" {
				return "", "", fserrors.New("E162").
					WithPath(filepath.Join(d, "go.mod")).
					WithDetail("go.mod has no module directive.")
			}
			return d, modPath, nil
		}
		parent := filepath.Dir(d)
		if parent == d {
			return "", "", fserrors.New("E162").
				WithPath(dir).
				WithSuggestion("Run `go mod init` in your project root")
		}
		d = parent
	}
}

// modulePath returns the path from a go.mod module directive.
func modulePath(gomod []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(gomod))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if rest, ok := strings.CutPrefix(line, "module"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
			return strings.Trim(strings.TrimSpace(rest), `"`)
		}
	}
	return ""
}
