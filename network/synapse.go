package network

import "fmt"

// Synapse is a directed weighted edge from a parent neuron to a child neuron.
//
// The synapse does not own its endpoints. Both neurons belong to the layers of
// the network that created the synapse; the synapse only refers to them.
type Synapse struct {
	id     Id
	weight Weight
	parent *Neuron
	child  *Neuron
}

// NewSynapse creates a synapse between parent and child.
func NewSynapse(id Id, parent, child *Neuron, weight Weight) *Synapse {
	return &Synapse{
		id:     id,
		weight: weight,
		parent: parent,
		child:  child,
	}
}

// ID returns the synapse id.
func (s *Synapse) ID() Id { return s.id }

// Weight returns the current weight.
func (s *Synapse) Weight() Weight { return s.weight }

// SetWeight replaces the current weight.
func (s *Synapse) SetWeight(w Weight) { s.weight = w }

// Parent returns the neuron this synapse reads from.
func (s *Synapse) Parent() *Neuron { return s.parent }

// Child returns the neuron this synapse feeds.
func (s *Synapse) Child() *Neuron { return s.child }

// SetParent re-points the synapse to a different parent neuron. Neither the
// old nor the new neuron is modified.
func (s *Synapse) SetParent(n *Neuron) { s.parent = n }

// SetChild re-points the synapse to a different child neuron. Neither the old
// nor the new neuron is modified.
func (s *Synapse) SetChild(n *Neuron) { s.child = n }

// String returns a string representation of the Synapse.
func (s *Synapse) String() string {
	return fmt.Sprintf("Synapse(ID: %d, %d->%d, Weight: %.4f)",
		s.id, s.parent.ID(), s.child.ID(), s.weight)
}

// copyDetached returns a copy of the synapse whose endpoints are copies too,
// so nothing reachable from it aliases the network's neurons.
func (s *Synapse) copyDetached() *Synapse {
	return &Synapse{
		id:     s.id,
		weight: s.weight,
		parent: s.parent.Copy(),
		child:  s.child.Copy(),
	}
}
