package router

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"
	"go/types"
	"sort"
	"strconv"
	"strings"
)

// GeneratedHeader starts every file written by Generate.
const GeneratedHeader = "// Code generated by fsroute gen. DO NOT EDIT."

const loaderImport = "github.com/vango-dev/fsroute/pkg/loader"

// Generate writes a Go file for package pkg declaring
//
//	func Modules() *loader.Registry
//
// which registers every scanned file under its relative path. importBase is
// the import path of the routes root; folders are imported below it. The
// output is gofmt'd and deterministic.
func Generate(files []ScannedFile, importBase, pkg string) ([]byte, error) {
	if importBase == "" {
		return nil, fmt.Errorf("router: generate: empty import path")
	}
	if !token.IsIdentifier(pkg) {
		return nil, fmt.Errorf("router: generate: invalid package name %q", pkg)
	}

	sorted := make([]ScannedFile, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Path < sorted[j].Path })

	// One import per folder that contributes at least one export.
	aliases := make(map[string]string)
	used := map[string]bool{"loader": true, "reg": true}
	var dirs []string
	for _, f := range sorted {
		if len(f.Exports) == 0 {
			continue
		}
		if _, ok := aliases[f.Dir]; ok {
			continue
		}
		alias := importAlias(f.Dir, used)
		aliases[f.Dir] = alias
		used[alias] = true
		dirs = append(dirs, f.Dir)
	}
	sort.Slice(dirs, func(i, j int) bool { return importPath(importBase, dirs[i]) < importPath(importBase, dirs[j]) })

	var b bytes.Buffer
	b.WriteString(GeneratedHeader + "\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkg)
	b.WriteString("import (\n")
	fmt.Fprintf(&b, "\t%q\n", loaderImport)
	if len(dirs) > 0 {
		b.WriteString("\n")
	}
	for _, dir := range dirs {
		fmt.Fprintf(&b, "\t%s %q\n", aliases[dir], importPath(importBase, dir))
	}
	b.WriteString(")\n\n")

	b.WriteString("// Modules returns a registry holding every route module.\n")
	b.WriteString("func Modules() *loader.Registry {\n")
	b.WriteString("\treg := loader.NewRegistry()\n")
	for _, f := range sorted {
		fields := make([]string, 0, len(f.Exports))
		for _, name := range f.Exports {
			fields = append(fields, fmt.Sprintf("%s: %s.%s", name, aliases[f.Dir], name))
		}
		fmt.Fprintf(&b, "\treg.MustRegister(%s, loader.Exports{%s})\n", strconv.Quote(f.Path), strings.Join(fields, ", "))
	}
	b.WriteString("\treturn reg\n}\n")

	out, err := format.Source(b.Bytes())
	if err != nil {
		return nil, fmt.Errorf("router: generate: %w", err)
	}
	return out, nil
}

func importPath(base, dir string) string {
	if dir == "." {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + dir
}

// importAlias derives a unique identifier from a folder path.
func importAlias(dir string, used map[string]bool) string {
	alias := "root"
	if dir != "." {
		var b strings.Builder
		for _, r := range strings.ToLower(dir) {
			switch {
			case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
			default:
				b.WriteByte('_')
			}
		}
		alias = strings.Trim(b.String(), "_")
		if alias == "" || (alias[0] >= '0' && alias[0] <= '9') {
			alias = "r" + alias
		}
	}
	// Keywords and predeclared names such as "error" get a trailing underscore.
	if token.IsKeyword(alias) || types.Universe.Lookup(alias) != nil {
		alias += "_"
	}

	candidate := alias
	for i := 2; used[candidate]; i++ {
		candidate = alias + strconv.Itoa(i)
	}
	return candidate
}
