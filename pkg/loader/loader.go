// Package loader resolves route files to the values they export.
//
// Go cannot import a package by file path at runtime, so route modules are
// compiled into the binary and registered under their path relative to the
// routes directory. `fsroute gen` writes that registration code; tests and
// small programs can call Register directly.
//
//	reg := loader.NewRegistry()
//	reg.MustRegister("page.go", loader.Exports{Page: home.Page})
//	reg.MustRegister("users/api.go", loader.Exports{API: users.API})
package loader

import (
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrUnsupportedExtension is returned for files the loader cannot load.
	// Callers skip such files.
	ErrUnsupportedExtension = errors.New("loader: unsupported extension")

	// ErrNotRegistered is returned for a supported file with no module.
	ErrNotRegistered = errors.New("loader: module not registered")

	// ErrDuplicate is returned when a path is registered twice.
	ErrDuplicate = errors.New("loader: module already registered")
)

// Extensions lists the source extensions route modules may use.
var Extensions = []string{".go"}

// Supported reports whether name has a recognized extension.
func Supported(name string) bool {
	ext := path.Ext(name)
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Exports are the values a route module exposes. Which fields matter depends
// on the file: page files use Page (or Default) and Method, api files use API
// (or Default), layout files use Layout (or Default).
type Exports struct {
	Page    any
	Method  string
	API     any
	Layout  any
	Default any
}

// Endpoint is one API route declared by an api module. An api module exports
// an Endpoint, a *Endpoint or a []Endpoint.
type Endpoint struct {
	// Path is relative to "<folder>/api", e.g. "/add" or "/update/:id".
	Path string

	// Method defaults to GET.
	Method string

	// Handler is any value the handler classifier accepts.
	Handler any
}

// Loader returns the exports of the module at a slash-separated path relative
// to the routes root.
type Loader interface {
	Load(path string) (Exports, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string) (Exports, error)

// Load implements Loader.
func (f LoaderFunc) Load(path string) (Exports, error) { return f(path) }

// Registry is an in-memory Loader keyed by relative file path. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Exports
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]Exports)}
}

// Register adds the module at p.
func (r *Registry) Register(p string, e Exports) error {
	key := cleanPath(p)
	if !Supported(key) {
		return fmt.Errorf("%w: %s", ErrUnsupportedExtension, p)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.modules[key]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	r.modules[key] = e
	return nil
}

// MustRegister is like Register but panics on error. Intended for generated
// init code.
func (r *Registry) MustRegister(p string, e Exports) {
	if err := r.Register(p, e); err != nil {
		panic(err)
	}
}

// Load implements Loader.
func (r *Registry) Load(p string) (Exports, error) {
	key := cleanPath(p)
	if !Supported(key) {
		return Exports{}, fmt.Errorf("%w: %s", ErrUnsupportedExtension, p)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.modules[key]
	if !ok {
		return Exports{}, fmt.Errorf("%w: %s", ErrNotRegistered, key)
	}
	return e, nil
}

// Paths returns the registered paths in lexical order.
func (r *Registry) Paths() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.modules))
	for p := range r.modules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of registered modules.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.modules)
}

func cleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
