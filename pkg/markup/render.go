package markup

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sort"
)

var (
	// ErrInvalidName is returned for a tag or attribute name that cannot be
	// written as HTML.
	ErrInvalidName = errors.New("markup: invalid name")

	// ErrUnknownKind is returned for a node whose Kind is not defined.
	ErrUnknownKind = errors.New("markup: unknown node kind")

	// ErrNotMarkup is returned by Render for values that are not markup.
	ErrNotMarkup = errors.New("markup: value is not a markup node")
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Development only.
	Pretty bool

	// Indent is the per-level indentation in pretty mode. Defaults to two spaces.
	Indent string
}

// Renderer renders node trees to HTML. It holds no per-render state and is
// safe for concurrent use.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a new Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// Accepts reports whether v is a value Render understands.
func (r *Renderer) Accepts(v any) bool {
	switch v.(type) {
	case *Node, Node, Component:
		return true
	}
	return false
}

// Render renders a *Node, Node or Component to a string. Panics raised by
// components are returned as errors.
func (r *Renderer) Render(v any) (out string, err error) {
	var node *Node
	switch n := v.(type) {
	case *Node:
		node = n
	case Node:
		node = &n
	case Component:
		node = &Node{Kind: KindComponent, Comp: n}
	default:
		return "", fmt.Errorf("%w: %T", ErrNotMarkup, v)
	}

	defer func() {
		if p := recover(); p != nil {
			out = ""
			err = fmt.Errorf("markup: component panicked: %v", p)
		}
	}()
	return r.RenderToString(node)
}

// RenderToString renders a node tree to an HTML string.
func (r *Renderer) RenderToString(node *Node) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, node); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams a node tree to w.
func (r *Renderer) RenderToWriter(w io.Writer, node *Node) error {
	return r.renderNode(w, node, 0)
}

func (r *Renderer) renderNode(w io.Writer, node *Node, depth int) error {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case KindElement:
		return r.renderElement(w, node, depth)
	case KindText:
		_, err := io.WriteString(w, escapeHTML(node.Text))
		return err
	case KindRaw:
		_, err := io.WriteString(w, node.Text)
		return err
	case KindFragment:
		for _, child := range node.Children {
			if err := r.renderNode(w, child, depth); err != nil {
				return err
			}
		}
		return nil
	case KindComponent:
		if node.Comp == nil {
			return nil
		}
		return r.renderNode(w, node.Comp.Render(), depth)
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, node.Kind)
	}
}

func (r *Renderer) renderElement(w io.Writer, node *Node, depth int) error {
	tag := node.Tag
	if !validName(tag) {
		return fmt.Errorf("%w: tag %q", ErrInvalidName, tag)
	}

	if r.config.Pretty && depth > 0 {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "<"+tag); err != nil {
		return err
	}
	if err := r.renderAttrs(w, node.Attrs); err != nil {
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}

	if voidElements[tag] {
		if r.config.Pretty {
			io.WriteString(w, "\n")
		}
		return nil
	}

	block := r.config.Pretty && len(node.Children) > 0
	if block {
		io.WriteString(w, "\n")
	}
	for _, child := range node.Children {
		if err := r.renderNode(w, child, depth+1); err != nil {
			return err
		}
	}
	if block {
		r.writeIndent(w, depth)
	}

	if _, err := io.WriteString(w, "</"+tag+">"); err != nil {
		return err
	}
	if r.config.Pretty {
		io.WriteString(w, "\n")
	}
	return nil
}

func (r *Renderer) renderAttrs(w io.Writer, attrs Attrs) error {
	if len(attrs) == 0 {
		return nil
	}

	// Sorted for deterministic output.
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if !validName(key) {
			return fmt.Errorf("%w: attribute %q", ErrInvalidName, key)
		}
		value := attrs[key]

		if booleanAttrs[key] {
			if b, ok := value.(bool); ok {
				if b {
					if _, err := io.WriteString(w, " "+key); err != nil {
						return err
					}
				}
				continue
			}
		}

		if value == nil {
			continue
		}
		if _, err := fmt.Fprintf(w, ` %s="%s"`, key, escapeAttr(attrString(value))); err != nil {
			return err
		}
	}
	return nil
}

func attrString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(v)
	}
}

func (r *Renderer) writeIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, r.config.Indent)
	}
}
