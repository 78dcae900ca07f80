package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io/fs"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "load failure",
			code:    "E100",
			wantMsg: "Failed to load route module",
			wantCat: CategoryCompile,
		},
		{
			name:    "malformed module",
			code:    "E102",
			wantMsg: "Malformed route module",
			wantCat: CategoryCompile,
		},
		{
			name:    "config error",
			code:    "E141",
			wantMsg: "Invalid configuration value",
			wantCat: CategoryConfig,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("E103").WithPath("users").Wrap(fs.ErrPermission)

	got := err.Error()
	want := "E103: Failed to read routes directory (users): permission denied"
	if got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestUnwrapAndIs(t *testing.T) {
	err := fmt.Errorf("compile: %w", New("E100").WithPath("page.go").Wrap(fs.ErrNotExist))

	if !stderrors.Is(err, fs.ErrNotExist) {
		t.Error("errors.Is should reach the wrapped cause")
	}
	if !stderrors.Is(err, New("E100")) {
		t.Error("errors.Is should match on code")
	}
	if stderrors.Is(err, New("E101")) {
		t.Error("errors.Is should not match a different code")
	}

	var e *Error
	if !stderrors.As(err, &e) {
		t.Fatal("errors.As should find *Error")
	}
	if e.Path != "page.go" {
		t.Errorf("Path = %q, want %q", e.Path, "page.go")
	}
	if Code(err) != "E100" {
		t.Errorf("Code() = %q, want E100", Code(err))
	}
}

func TestFromError(t *testing.T) {
	if FromError(nil, "E100") != nil {
		t.Error("FromError(nil) should be nil")
	}

	orig := New("E102")
	if got := FromError(fmt.Errorf("wrapped: %w", orig), "E100"); got != orig {
		t.Error("FromError should return the existing *Error")
	}

	plain := stderrors.New("boom")
	got := FromError(plain, "E100")
	if got.Code != "E100" || got.Wrapped != plain {
		t.Errorf("FromError(plain) = %+v", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E102").
		WithPath("users/layout.go").
		WithDetail("Layout has type int").
		WithSuggestion("Export a layout function")

	out := err.Format()
	for _, want := range []string{
		"ERROR E102: Malformed route module",
		"users/layout.go",
		"Layout has type int",
		"Hint: Export a layout function",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}

	if got := err.FormatCompact(); got != "users/layout.go: E102: Malformed route module" {
		t.Errorf("FormatCompact() = %q", got)
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, stderrors.New("plain failure"))
	if !strings.Contains(buf.String(), "ERROR: plain failure") {
		t.Errorf("Fprint(plain) = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, New("E160").WithPath("app"))
	if !strings.Contains(buf.String(), "E160: Routes directory not found") {
		t.Errorf("Fprint(*Error) = %q", buf.String())
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, l := range lines {
		if len(l) > 10 {
			t.Errorf("line %q exceeds width", l)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("wrapText(\"\") should be nil")
	}
}

func TestCodes(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("no codes registered")
	}
	for i := 1; i < len(codes); i++ {
		if codes[i-1] >= codes[i] {
			t.Fatalf("codes not sorted: %v", codes)
		}
	}
	for _, code := range codes {
		tmpl, ok := Lookup(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("%s: incomplete template %+v", code, tmpl)
		}
	}
}
