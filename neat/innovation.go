package neat

import (
	"fmt"
	"sync"
)

// InnovationType distinguishes the two structural mutations.
type InnovationType int

const (
	NewLinkInnovation InnovationType = iota // A connection between existing nodes.
	NewNodeInnovation                       // A gene split by a new hidden node.
)

// String returns the innovation type name.
func (t InnovationType) String() string {
	if t == NewNodeInnovation {
		return "new_node"
	}
	return "new_link"
}

// Innovation records one structural mutation. A new link uses ID and Weight;
// a node split uses NewNode, ID (in->new), ID2 (new->out) and OldID, the
// innovation of the split gene.
type Innovation struct {
	Type    InnovationType
	InNode  NodeGene
	OutNode NodeGene
	NewNode NodeGene
	ID      int
	ID2     int
	Weight  float64
	OldID   int
}

// String returns a string representation of the Innovation.
func (in Innovation) String() string {
	if in.Type == NewNodeInnovation {
		return fmt.Sprintf("Innovation(%s %d -> [%d] -> %d, IDs: %d/%d, Split: %d)",
			in.Type, in.InNode.ID, in.NewNode.ID, in.OutNode.ID, in.ID, in.ID2, in.OldID)
	}
	return fmt.Sprintf("Innovation(%s %d -> %d, ID: %d, Weight: %.3f)",
		in.Type, in.InNode.ID, in.OutNode.ID, in.ID, in.Weight)
}

// InnovationRegistry deduplicates structural mutations within one epoch so
// that every genome making the same change gets the same innovation ids.
// The record list is cleared each epoch; the id counters are not.
type InnovationRegistry struct {
	mu         sync.Mutex
	records    []Innovation
	currentID  int
	nodeIDBase int
}

// NewInnovationRegistry creates a registry whose next innovation id is last+1.
func NewInnovationRegistry(last int) *InnovationRegistry {
	return &InnovationRegistry{currentID: last}
}

// NextID returns a fresh innovation id.
func (r *InnovationRegistry) NextID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentID++
	return r.currentID
}

// CurrentID returns the last innovation id handed out.
func (r *InnovationRegistry) CurrentID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.currentID
}

// SetCurrentID resets the innovation counter so the next id is value+1.
func (r *InnovationRegistry) SetCurrentID(value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentID = value
}

// NextNodeID returns a fresh hidden node id, never below floor.
func (r *InnovationRegistry) NextNodeID(floor int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nextNodeID(floor)
}

func (r *InnovationRegistry) nextNodeID(floor int) int {
	id := max(r.nodeIDBase+1, floor)
	r.nodeIDBase = id
	return id
}

// CurrentNodeID returns the last node id handed out.
func (r *InnovationRegistry) CurrentNodeID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodeIDBase
}

// SetCurrentNodeID resets the node counter so the next node id is value+1.
func (r *InnovationRegistry) SetCurrentNodeID(value int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nodeIDBase = value
}

// ResolveLink returns the new-link innovation for in->out, creating it with
// a fresh id and newWeight() when this epoch has not seen it yet.
func (r *InnovationRegistry) ResolveLink(in, out NodeGene, newWeight func() float64) (Innovation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Type == NewLinkInnovation && rec.InNode.ID == in.ID && rec.OutNode.ID == out.ID {
			return rec, false
		}
	}
	r.currentID++
	rec := Innovation{
		Type:    NewLinkInnovation,
		InNode:  in,
		OutNode: out,
		ID:      r.currentID,
		Weight:  newWeight(),
	}
	r.records = append(r.records, rec)
	return rec, true
}

// ResolveNode returns the node-split innovation for the gene oldID
// connecting in->out, creating it when this epoch has not seen it yet. A new
// hidden node id is at least minNodeID.
func (r *InnovationRegistry) ResolveNode(in, out NodeGene, oldID, minNodeID int) (Innovation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if rec.Type == NewNodeInnovation && rec.InNode.ID == in.ID && rec.OutNode.ID == out.ID && rec.OldID == oldID {
			return rec, false
		}
	}
	rec := Innovation{
		Type:    NewNodeInnovation,
		InNode:  in,
		OutNode: out,
		NewNode: NewNodeGene(r.nextNodeID(minNodeID), HiddenNode),
		OldID:   oldID,
	}
	r.currentID++
	rec.ID = r.currentID
	r.currentID++
	rec.ID2 = r.currentID
	r.records = append(r.records, rec)
	return rec, true
}

// Innovations returns a copy of this epoch's records.
func (r *InnovationRegistry) Innovations() []Innovation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Innovation, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the number of records in this epoch.
func (r *InnovationRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// Clear drops this epoch's records.
func (r *InnovationRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
