package mount

// Topology is the tagged variant spec.md calls MountTopology: either a
// NativeTopology (discovered Inventory) or a UserDefinedTopology (operator
// declares both directories explicitly). Go has no sum type, so this is modeled
// as a closed interface with exactly two implementations.
type Topology interface {
	isTopology()
}

// NativeTopology searches across a discovered mount Inventory.
type NativeTopology struct {
	Mounts Inventory
}

func (NativeTopology) isTopology() {}

// UserDefinedTopology is used when the operator explicitly declares both the
// snapshot root directory and the live directory it corresponds to (e.g. when
// the CLI is given --snap-dir/--local-dir, bypassing mount discovery entirely).
type UserDefinedTopology struct {
	SnapDir  string
	LocalDir string
}

func (UserDefinedTopology) isTopology() {}
