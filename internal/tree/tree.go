// Package tree defines the declarative tree consumed by the reconciler.
package tree

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// TokenKind tells entity nodes apart from marker pseudo-nodes.
type TokenKind int

const (
	TokenEntity TokenKind = iota
	TokenChildrenSlot
	TokenInput
	TokenAttach
)

// Cardinality of a children-slot marker.
type Cardinality int

const (
	// One binds the first contextual child only.
	One Cardinality = iota
	// Many binds every contextual child, in order.
	Many
)

// TypeToken identifies what a node stands for.
type TypeToken struct {
	Kind   TokenKind
	Module string
	Name   string
}

func (t TypeToken) String() string {
	switch t.Kind {
	case TokenChildrenSlot:
		return "<children>"
	case TokenInput:
		return "<input>"
	case TokenAttach:
		return "<attach>"
	default:
		return t.Module + "/" + t.Name
	}
}

// Node is a declarative tree node. For markers, Key names the property and
// Value holds the bound value.
type Node struct {
	Type     TypeToken
	ID       string // pins the scope id when set
	Key      string
	Props    map[string]cty.Value
	Value    cty.Value
	Slot     Cardinality
	Children []*Node
}

// Entity returns an entity node for module/name.
func Entity(module, name string, children ...*Node) *Node {
	return &Node{Type: TypeToken{Kind: TokenEntity, Module: module, Name: name}, Children: children}
}

// Input returns an Input-marker binding key to v.
func Input(key string, v cty.Value) *Node {
	return &Node{Type: TypeToken{Kind: TokenInput}, Key: key, Value: v}
}

// Attach returns an Attach-marker binding key to v.
func Attach(key string, v cty.Value) *Node {
	return &Node{Type: TypeToken{Kind: TokenAttach}, Key: key, Value: v}
}

// Slot returns a children-slot marker.
func Slot(c Cardinality) *Node {
	return &Node{Type: TypeToken{Kind: TokenChildrenSlot}, Slot: c}
}

// WithID pins the node's scope id.
func (n *Node) WithID(id string) *Node {
	n.ID = id
	return n
}

// WithKey sets the element key.
func (n *Node) WithKey(key string) *Node {
	n.Key = key
	return n
}

// WithProp sets an ordinary prop.
func (n *Node) WithProp(name string, v cty.Value) *Node {
	if n.Props == nil {
		n.Props = make(map[string]cty.Value)
	}
	n.Props[name] = v
	return n
}

// IsMarker reports whether n is a marker pseudo-node.
func (n *Node) IsMarker() bool {
	return n.Type.Kind != TokenEntity
}

// Validate checks the structural shape of the subtree.
func (n *Node) Validate() error {
	switch n.Type.Kind {
	case TokenEntity:
		if n.Type.Module == "" || n.Type.Name == "" {
			return fmt.Errorf("entity node requires module and name, got %q", n.Type)
		}
	case TokenInput, TokenAttach:
		if n.Key == "" {
			return fmt.Errorf("%s marker requires a key", n.Type)
		}
		if len(n.Children) > 0 {
			return fmt.Errorf("%s marker %q cannot have children", n.Type, n.Key)
		}
	case TokenChildrenSlot:
		if len(n.Children) > 0 {
			return fmt.Errorf("children slot cannot have children")
		}
	default:
		return fmt.Errorf("unknown token kind %d", int(n.Type.Kind))
	}
	for _, c := range n.Children {
		if c == nil {
			return fmt.Errorf("%s has a nil child", n.Type)
		}
		if err := c.Validate(); err != nil {
			return err
		}
	}
	return nil
}
