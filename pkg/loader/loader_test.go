package loader

import (
	"errors"
	"reflect"
	"testing"
)

func TestSupported(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"page.go", true},
		{"users/api.go", true},
		{"layout.tsx", false},
		{"README.md", false},
		{"page", false},
	}
	for _, tt := range tests {
		if got := Supported(tt.name); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRegistryLoad(t *testing.T) {
	reg := NewRegistry()
	page := func() {}
	reg.MustRegister("users/page.go", Exports{Page: page, Method: "post"})

	tests := []struct {
		name    string
		path    string
		wantErr error
	}{
		{"exact", "users/page.go", nil},
		{"leading slash", "/users/page.go", nil},
		{"dot segments", "./users/../users/page.go", nil},
		{"backslashes", `users\page.go`, nil},
		{"missing", "orders/page.go", ErrNotRegistered},
		{"unsupported", "users/page.ts", ErrUnsupportedExtension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := reg.Load(tt.path)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Load(%q) error = %v, want %v", tt.path, err, tt.wantErr)
			}
			if err == nil && e.Method != "post" {
				t.Errorf("Load(%q).Method = %q", tt.path, e.Method)
			}
		})
	}
}

func TestRegistryRegister(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register("page.go", Exports{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register("/page.go", Exports{}); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Register error = %v, want ErrDuplicate", err)
	}
	if err := reg.Register("page.js", Exports{}); !errors.Is(err, ErrUnsupportedExtension) {
		t.Errorf("Register(.js) error = %v, want ErrUnsupportedExtension", err)
	}

	reg.MustRegister("b/api.go", Exports{})
	reg.MustRegister("a/layout.go", Exports{})

	want := []string{"a/layout.go", "b/api.go", "page.go"}
	if got := reg.Paths(); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
	if reg.Len() != 3 {
		t.Errorf("Len() = %d, want 3", reg.Len())
	}
}

func TestMustRegisterPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustRegister should panic on duplicate")
		}
	}()
	reg := NewRegistry()
	reg.MustRegister("page.go", Exports{})
	reg.MustRegister("page.go", Exports{})
}

func TestLoaderFunc(t *testing.T) {
	var l Loader = LoaderFunc(func(p string) (Exports, error) {
		return Exports{Method: p}, nil
	})
	e, _ := l.Load("x.go")
	if e.Method != "x.go" {
		t.Errorf("LoaderFunc passed %q", e.Method)
	}
}
