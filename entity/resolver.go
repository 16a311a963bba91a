package entity

// Resolver is the narrow set of cross-reference lookups an entity needs
// from the dataset that owns it. It is implemented by the root Dataset
// type; entity never imports that package, so the dependency runs in
// one direction only (design note 9).
type Resolver interface {
	String(offset int) (AsciiString, error)
	Component(index int) (*Component, error)
	Map(index int) (Map, error)
	Property(index int) (Property, error)
	Value(index int) (Value, error)
	Profile(offset int) (Profile, error)
	Node(offset int) (Node, error)
	SignatureNodeOffset(index int) (uint32, error)
	NodeRankedSignatureIndex(index int) (uint32, error)
	RankedSignatureIndex(index int) (uint32, error)
}
