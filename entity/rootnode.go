package entity

import (
	"fmt"

	"github.com/gopattern/patternset/internal/reader"
)

// RootNode is the entry point into the node prefix tree for one
// component; matching starts at NodeOffset when detecting a value for
// ComponentIndex.
type RootNode struct {
	Index          int
	ComponentIndex int32
	NodeOffset     int32

	res Resolver
}

func (n RootNode) Component() (*Component, error) {
	return n.res.Component(int(n.ComponentIndex))
}

func (n RootNode) Node() (Node, error) {
	return n.res.Node(int(n.NodeOffset))
}

// RootNodeFactory builds RootNode records; the layout is identical
// across versions.
type RootNodeFactory struct{}

func (RootNodeFactory) Create(res Resolver, index int, r reader.Reader) (RootNode, error) {
	component, err := r.ReadInt32()
	if err != nil {
		return RootNode{}, fmt.Errorf("entity: read root node %d component index: %w", index, err)
	}
	offset, err := r.ReadInt32()
	if err != nil {
		return RootNode{}, fmt.Errorf("entity: read root node %d node offset: %w", index, err)
	}
	return RootNode{Index: index, ComponentIndex: component, NodeOffset: offset, res: res}, nil
}

func (RootNodeFactory) Length() (int, error) {
	return 8, nil
}
