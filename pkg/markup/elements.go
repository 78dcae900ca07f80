package markup

import "fmt"

// El creates an element. Arguments can be nil, Attr, []Attr, *Node, []*Node,
// Component, string (escaped text) or fmt.Stringer.
func El(tag string, args ...any) *Node {
	node := &Node{
		Kind:  KindElement,
		Tag:   tag,
		Attrs: make(Attrs),
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			if v.Key != "" {
				node.Attrs[v.Key] = v.Value
			}
		case []Attr:
			for _, a := range v {
				if a.Key != "" {
					node.Attrs[a.Key] = a.Value
				}
			}
		default:
			node.Children = appendChild(node.Children, arg)
		}
	}
	return node
}

func appendChild(children []*Node, child any) []*Node {
	switch v := child.(type) {
	case *Node:
		if v != nil {
			children = append(children, v)
		}
	case []*Node:
		for _, c := range v {
			if c != nil {
				children = append(children, c)
			}
		}
	case string:
		children = append(children, Text(v))
	case Component:
		children = append(children, &Node{Kind: KindComponent, Comp: v})
	case fmt.Stringer:
		children = append(children, Text(v.String()))
	}
	return children
}

// Text creates an escaped text node.
func Text(content string) *Node {
	return &Node{Kind: KindText, Text: content}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *Node {
	return Text(fmt.Sprintf(format, args...))
}

// Raw creates an unescaped HTML node.
func Raw(html string) *Node {
	return &Node{Kind: KindRaw, Text: html}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *Node {
	node := &Node{Kind: KindFragment}
	for _, c := range children {
		node.Children = appendChild(node.Children, c)
	}
	return node
}

// If returns node when cond holds, nil otherwise.
func If(cond bool, node *Node) *Node {
	if cond {
		return node
	}
	return nil
}

// Doctype returns the HTML5 doctype declaration.
func Doctype() *Node { return Raw("<!DOCTYPE html>") }

func Html(args ...any) *Node    { return El("html", args...) }
func Head(args ...any) *Node    { return El("head", args...) }
func Body(args ...any) *Node    { return El("body", args...) }
func Title(args ...any) *Node   { return El("title", args...) }
func Meta(args ...any) *Node    { return El("meta", args...) }
func Link(args ...any) *Node    { return El("link", args...) }
func Style(args ...any) *Node   { return El("style", args...) }
func Script(args ...any) *Node  { return El("script", args...) }
func Main(args ...any) *Node    { return El("main", args...) }
func Header(args ...any) *Node  { return El("header", args...) }
func Footer(args ...any) *Node  { return El("footer", args...) }
func Nav(args ...any) *Node     { return El("nav", args...) }
func Section(args ...any) *Node { return El("section", args...) }
func Div(args ...any) *Node     { return El("div", args...) }
func Span(args ...any) *Node    { return El("span", args...) }
func H1(args ...any) *Node      { return El("h1", args...) }
func H2(args ...any) *Node      { return El("h2", args...) }
func H3(args ...any) *Node      { return El("h3", args...) }
func P(args ...any) *Node       { return El("p", args...) }
func A(args ...any) *Node       { return El("a", args...) }
func Ul(args ...any) *Node      { return El("ul", args...) }
func Li(args ...any) *Node      { return El("li", args...) }
func Pre(args ...any) *Node     { return El("pre", args...) }
func Code(args ...any) *Node    { return El("code", args...) }
func Strong(args ...any) *Node  { return El("strong", args...) }
func Br() *Node                 { return El("br") }

// Attribute helpers.

func AttrOf(key string, value any) Attr { return Attr{Key: key, Value: value} }
func Class(v string) Attr               { return Attr{Key: "class", Value: v} }
func ID(v string) Attr                  { return Attr{Key: "id", Value: v} }
func Href(v string) Attr                { return Attr{Key: "href", Value: v} }
func Lang(v string) Attr                { return Attr{Key: "lang", Value: v} }
func Charset(v string) Attr             { return Attr{Key: "charset", Value: v} }
func Name(v string) Attr                { return Attr{Key: "name", Value: v} }
func Content(v string) Attr             { return Attr{Key: "content", Value: v} }
func Rel(v string) Attr                 { return Attr{Key: "rel", Value: v} }
func Src(v string) Attr                 { return Attr{Key: "src", Value: v} }
