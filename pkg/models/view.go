package models

// NodeView is the observer's wire representation of a hypergraph node.
type NodeView struct {
	Label uint64 `json:"label"`
}

// EdgeView is the observer's wire representation of a hypergraph edge:
// its source and sink label sets, flattened from the internal Edge
// type for JSON transport.
type EdgeView struct {
	Label  uint64   `json:"label"`
	Source []uint64 `json:"source"`
	Sink   []uint64 `json:"sink"`
}

// WorldView is one united partition class: a representative label and
// every member label currently coupled to it.
type WorldView struct {
	Representative uint64   `json:"representative"`
	Members        []uint64 `json:"members"`
}

// HealthStatus is the observer's liveness response.
type HealthStatus struct {
	Status string `json:"status"`
	Engine string `json:"engine"`
}
