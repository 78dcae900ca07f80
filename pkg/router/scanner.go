package router

import (
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"path"
	"sort"
	"strings"

	fserrors "github.com/vango-dev/fsroute/internal/errors"
)

// Export names the compiler reads from a route module.
const (
	ExportPage    = "Page"
	ExportMethod  = "Method"
	ExportAPI     = "API"
	ExportLayout  = "Layout"
	ExportDefault = "Default"
)

// exportsByRole lists the exports that matter for each file name.
var exportsByRole = map[string][]string{
	basePage:   {ExportPage, ExportMethod, ExportDefault},
	baseLayout: {ExportLayout, ExportDefault},
	baseAPI:    {ExportAPI, ExportDefault},
}

// ScannedFile describes one route source file.
type ScannedFile struct {
	// Path is relative to the routes root, e.g. "users/api.go".
	Path string

	// Dir is the folder of Path, "." for the root.
	Dir string

	// Role is "page", "layout" or "api".
	Role string

	// Package is the Go package name declared by the file.
	Package string

	// Exports lists the relevant top-level identifiers the file declares,
	// in the order of exportsByRole.
	Exports []string
}

// Has reports whether the file declares name.
func (f ScannedFile) Has(name string) bool {
	for _, e := range f.Exports {
		if e == name {
			return true
		}
	}
	return false
}

// Scanner finds route files under a routes root and reports their exports
// by parsing them. It walks folders the same way Compile does.
type Scanner struct {
	fsys fs.FS
}

// NewScanner creates a scanner over fsys.
func NewScanner(fsys fs.FS) *Scanner {
	return &Scanner{fsys: fsys}
}

// Scan returns the route files in lexical path order.
func (s *Scanner) Scan() ([]ScannedFile, error) {
	var files []ScannedFile
	if err := s.scanDir(".", &files); err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}

func (s *Scanner) scanDir(dir string, files *[]ScannedFile) error {
	entries, err := fs.ReadDir(s.fsys, dir)
	if err != nil {
		return fserrors.New("E103").WithPath(dir).Wrap(err)
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			if strings.EqualFold(name, baseAPI) {
				continue
			}
			if err := s.scanDir(path.Join(dir, name), files); err != nil {
				return err
			}
			continue
		}
		if path.Ext(name) != ".go" {
			continue
		}

		role := strings.TrimSuffix(name, ".go")
		if _, ok := exportsByRole[role]; !ok {
			continue
		}

		rel := path.Join(dir, name)
		f, err := s.scanFile(rel, role)
		if err != nil {
			return err
		}
		*files = append(*files, f)
	}
	return nil
}

// scanFile parses a Go file and extracts its route exports.
func (s *Scanner) scanFile(rel, role string) (ScannedFile, error) {
	src, err := fs.ReadFile(s.fsys, rel)
	if err != nil {
		return ScannedFile{}, fserrors.New("E105").WithPath(rel).Wrap(err)
	}

	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, rel, src, parser.SkipObjectResolution)
	if err != nil {
		return ScannedFile{}, fserrors.New("E105").WithPath(rel).Wrap(err)
	}
	if f.Name.Name == "main" {
		return ScannedFile{}, fserrors.New("E105").
			WithPath(rel).
			WithDetail("Route files cannot be in package main, because the generated registry has to import them.")
	}

	declared := make(map[string]bool)
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			// Methods are never exports of the module.
			if d.Recv == nil && d.Name != nil {
				declared[d.Name.Name] = true
			}
		case *ast.GenDecl:
			// Page and API values may be declared as var, Method as const.
			if d.Tok != token.VAR && d.Tok != token.CONST {
				continue
			}
			for _, spec := range d.Specs {
				vs, ok := spec.(*ast.ValueSpec)
				if !ok {
					continue
				}
				for _, ident := range vs.Names {
					declared[ident.Name] = true
				}
			}
		}
	}

	out := ScannedFile{
		Path:    rel,
		Dir:     path.Dir(rel),
		Role:    role,
		Package: f.Name.Name,
	}
	for _, name := range exportsByRole[role] {
		if declared[name] {
			out.Exports = append(out.Exports, name)
		}
	}
	return out, nil
}
