package content

// Node type constants as stored in the node_type column.
const (
	TypeChapter      = "chapter"
	TypeVerse        = "verse"
	TypeWord         = "word"
	TypeWordInstance = "word_instance"
	TypeKnowledge    = "knowledge"
)

// Edge type constants as stored in the edge_type column.
const (
	EdgeDependency = "dependency"
	EdgeKnowledge  = "knowledge"
)

// Distribution kinds for the propagation multiplier.
const (
	DistConst  = "const"
	DistNormal = "normal"
	DistBeta   = "beta"
)

// Node is a row in the nodes table. ID is volatile across content versions;
// Ukey is the stable identity. Axis is empty for plain content nodes.
type Node struct {
	ID         int64
	Ukey       string
	NodeType   string
	BaseNodeID *int64
	Axis       string
	Importance float64
	Seq        int64
}

// Edge is a row in the edges table. Both endpoints are internal ids of the
// same content version. Distribution describes how a propagation multiplier
// is sampled for this edge.
type Edge struct {
	SourceID int64
	TargetID int64
	EdgeType string
	Dist     Distribution
}

// Distribution parameterizes the propagation multiplier sample:
// const → P1; normal → clamp(N(P1, P2), 0, ∞); beta → Beta(P1, P2).
type Distribution struct {
	Kind string
	P1   float64
	P2   float64
}

// GoalNode binds one node into a goal's scope with a priority.
type GoalNode struct {
	NodeID   int64
	Priority float64
}
