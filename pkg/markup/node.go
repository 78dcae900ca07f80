package markup

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <p>, etc.
	KindText                  // Escaped text
	KindFragment              // Children without a wrapper
	KindComponent             // Deferred subtree
	KindRaw                   // Unescaped HTML
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// Node is one node of a markup tree.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    Attrs
	Children []*Node
	Text     string    // KindText and KindRaw
	Comp     Component // KindComponent
}

// Attrs holds element attributes.
type Attrs map[string]any

// Attr is a single attribute.
type Attr struct {
	Key   string
	Value any
}

// Component is anything that can produce a subtree at render time.
type Component interface {
	Render() *Node
}

// ComponentFunc adapts a function to Component.
type ComponentFunc func() *Node

// Render implements Component.
func (f ComponentFunc) Render() *Node {
	return f()
}
