package network

import "fmt"

// Layer is an ordered sequence of neurons with a fixed capacity.
//
// Neurons are allocated one by one and never move, so the pointers held by
// synapses stay valid for the lifetime of the network.
type Layer struct {
	name     string
	capacity int
	neurons  []*Neuron
}

func newLayer(name string) *Layer {
	return &Layer{name: name}
}

// Name returns the layer name ("input", "hidden" or "output").
func (l *Layer) Name() string { return l.name }

// Capacity returns the reserved number of neurons, 0 if the layer was never sized.
func (l *Layer) Capacity() int { return l.capacity }

// Len returns the number of neurons currently in the layer.
func (l *Layer) Len() int { return len(l.neurons) }

// IsSized reports whether a capacity has been reserved.
func (l *Layer) IsSized() bool { return l.capacity > 0 }

// IsFull reports whether every reserved slot holds a neuron.
func (l *Layer) IsFull() bool { return l.capacity > 0 && len(l.neurons) == l.capacity }

// Neuron returns the neuron at position i.
func (l *Layer) Neuron(i int) *Neuron { return l.neurons[i] }

// Neurons returns the neurons of the layer in order. The slice must not be modified.
func (l *Layer) Neurons() []*Neuron { return l.neurons }

// reserve fixes the capacity of an empty layer.
func (l *Layer) reserve(size int) error {
	if size <= 0 {
		return fmt.Errorf("%w: %s layer size must be positive, got %d", ErrInvalidArgument, l.name, size)
	}
	if len(l.neurons) > 0 {
		return fmt.Errorf("%w: %s layer already holds %d neurons and cannot be resized", ErrState, l.name, len(l.neurons))
	}
	l.capacity = size
	l.neurons = make([]*Neuron, 0, size)
	return nil
}

// add appends n, checking the reserved capacity first.
func (l *Layer) add(n *Neuron) error {
	if !l.IsSized() {
		return fmt.Errorf("%w: %s layer must be sized before neurons are added", ErrState, l.name)
	}
	if len(l.neurons) >= l.capacity {
		return fmt.Errorf("%w: %s layer capacity %d exceeded", ErrInvalidArgument, l.name, l.capacity)
	}
	l.neurons = append(l.neurons, n)
	return nil
}
