package network

import (
	"fmt"
	"log/slog"
)

// Base owns the three layers of the network and the synapse map, and knows
// how to size, populate and wire them. It holds no weights logic; that lives
// in ExclusiveOrNetwork.
//
// Base has no rollback: when an operation fails the network stays as it was
// at the point of failure and the caller has to start the configuration over.
type Base struct {
	inputLayer  *Layer
	hiddenLayer *Layer
	outputLayer *Layer

	synapses *SynapseMap
	neurons  map[Id]*Neuron // every neuron of the network, by id

	neuronID  Id // next neuron id
	synapseID Id // next synapse id

	// wiredInto records, per child layer, the parent layer already connected to it.
	wiredInto map[*Layer]*Layer

	state  State
	logger *slog.Logger
}

// NewBase creates an unconfigured network.
func NewBase() *Base {
	b := &Base{}
	b.reset()
	return b
}

func (b *Base) reset() {
	b.inputLayer = newLayer("input")
	b.hiddenLayer = newLayer("hidden")
	b.outputLayer = newLayer("output")
	b.synapses = NewSynapseMap()
	b.neurons = make(map[Id]*Neuron)
	b.wiredInto = make(map[*Layer]*Layer)
	b.neuronID = 0
	b.synapseID = 0
	b.state = Unconfigured
	if b.logger == nil {
		b.logger = slog.Default()
	}
}

// --- Sizing ---

// SetNumberOfNeuronsInInputLayer reserves room for size input neurons.
func (b *Base) SetNumberOfNeuronsInInputLayer(size int) error {
	return b.sizeLayer(b.inputLayer, size)
}

// SetNumberOfNeuronsInSingleHiddenLayer reserves room for size hidden neurons.
func (b *Base) SetNumberOfNeuronsInSingleHiddenLayer(size int) error {
	return b.sizeLayer(b.hiddenLayer, size)
}

// SetNumberOfNeuronsInOutputLayer reserves room for size output neurons.
func (b *Base) SetNumberOfNeuronsInOutputLayer(size int) error {
	return b.sizeLayer(b.outputLayer, size)
}

func (b *Base) sizeLayer(l *Layer, size int) error {
	if err := l.reserve(size); err != nil {
		return err
	}
	if b.inputLayer.IsSized() && b.hiddenLayer.IsSized() && b.outputLayer.IsSized() && b.state == Unconfigured {
		b.state = Sized
	}
	return nil
}

// --- Accessors ---

// InputLayer returns the input layer.
func (b *Base) InputLayer() *Layer { return b.inputLayer }

// HiddenLayer returns the single hidden layer.
func (b *Base) HiddenLayer() *Layer { return b.hiddenLayer }

// OutputLayer returns the output layer.
func (b *Base) OutputLayer() *Layer { return b.outputLayer }

// State returns the lifecycle stage of the network.
func (b *Base) State() State { return b.state }

// NeuronByID looks a neuron up by its id.
func (b *Base) NeuronByID(id Id) (*Neuron, bool) {
	n, ok := b.neurons[id]
	return n, ok
}

// SynapseCapacity returns the number of synapses the sized layers will hold
// once fully connected.
func (b *Base) SynapseCapacity() int {
	in, hidden, out := b.inputLayer.Capacity(), b.hiddenLayer.Capacity(), b.outputLayer.Capacity()
	return in*hidden + hidden*out
}

// GetSynapses returns a read-only snapshot of the synapse map. The snapshot is
// detached from the network: changing it has no effect on training.
func (b *Base) GetSynapses() *SynapseMap {
	return b.synapses.Clone()
}

// IsConnected reports whether both edge layers have been wired.
func (b *Base) IsConnected() bool {
	return b.wiredInto[b.hiddenLayer] != nil && b.wiredInto[b.outputLayer] != nil
}

// --- Population ---

// mintNeuron creates a neuron with the next id and registers it.
func (b *Base) mintNeuron(value Value) *Neuron {
	n := newNeuron(b.neuronID, value)
	b.neuronID++
	b.neurons[n.ID()] = n
	return n
}

// fill appends one new neuron per value to l. Capacity is checked for the
// whole batch before any neuron is created.
func (b *Base) fill(l *Layer, values []Value) ([]*Neuron, error) {
	if !l.IsSized() {
		return nil, fmt.Errorf("%w: %s layer must be sized before it is populated", ErrState, l.Name())
	}
	if b.wiredInto[l] != nil || b.isParentWired(l) {
		return nil, fmt.Errorf("%w: %s layer is already connected", ErrState, l.Name())
	}
	if free := l.Capacity() - l.Len(); len(values) > free {
		return nil, fmt.Errorf("%w: %d values do not fit the %s layer (%d of %d slots free)",
			ErrInvalidArgument, len(values), l.Name(), free, l.Capacity())
	}
	created := make([]*Neuron, 0, len(values))
	for _, v := range values {
		n := b.mintNeuron(v)
		if err := l.add(n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}
	return created, nil
}

func (b *Base) isParentWired(l *Layer) bool {
	for _, parent := range b.wiredInto {
		if parent == l {
			return true
		}
	}
	return false
}

// SetInputValues appends one input neuron per value. Input neurons pass their
// value through unactivated.
func (b *Base) SetInputValues(values []Value) error {
	if len(values) == 0 {
		return fmt.Errorf("failed to set input values: %w: no values given", ErrInvalidArgument)
	}
	created, err := b.fill(b.inputLayer, values)
	if err != nil {
		return fmt.Errorf("failed to set input values: %w", err)
	}
	for _, n := range created {
		n.ActivationResult = n.Value
	}
	return nil
}

// SetTargetOutputValues writes values[i] to the output target of output
// neuron i. An empty output layer is populated first, with fresh ids and a
// value of 0.
func (b *Base) SetTargetOutputValues(values []Value) error {
	if len(values) == 0 {
		return fmt.Errorf("failed to set target output values: %w: no values given", ErrInvalidArgument)
	}
	if b.outputLayer.Len() == 0 {
		if _, err := b.fill(b.outputLayer, make([]Value, len(values))); err != nil {
			return fmt.Errorf("failed to set target output values: %w", err)
		}
	}
	if len(values) != b.outputLayer.Len() {
		return fmt.Errorf("failed to set target output values: %w: got %d targets for %d output neurons",
			ErrInvalidArgument, len(values), b.outputLayer.Len())
	}
	for i, v := range values {
		b.outputLayer.Neuron(i).OutputTarget = v
	}
	return nil
}

// CreateNeuronsInLayer fills every free slot of the hidden or output layer
// with a fresh neuron of value 0.
func (b *Base) CreateNeuronsInLayer(l *Layer) error {
	if l != b.hiddenLayer && l != b.outputLayer {
		return fmt.Errorf("%w: neurons can only be created in the hidden or output layer", ErrInvalidArgument)
	}
	if !l.IsSized() {
		return fmt.Errorf("%w: %s layer must be sized before neurons are created", ErrState, l.Name())
	}
	_, err := b.fill(l, make([]Value, l.Capacity()-l.Len()))
	return err
}

// --- Wiring ---

// ConnectLayers creates one synapse for every (parent, child) neuron pair,
// iterating parents in the outer loop, and inserts it keyed by the parent's id.
// Weights start at 0.
func (b *Base) ConnectLayers(parent, child *Layer) error {
	if parent == nil || child == nil {
		return fmt.Errorf("%w: cannot connect a nil layer", ErrInvalidArgument)
	}
	valid := (parent == b.inputLayer && child == b.hiddenLayer) ||
		(parent == b.hiddenLayer && child == b.outputLayer)
	if !valid {
		return fmt.Errorf("%w: cannot connect %s layer to %s layer", ErrInvalidArgument, parent.Name(), child.Name())
	}
	if b.wiredInto[child] != nil {
		return fmt.Errorf("%w: %s layer is already connected to %s layer", ErrState, parent.Name(), child.Name())
	}
	for _, l := range []*Layer{parent, child} {
		if !l.IsFull() {
			return fmt.Errorf("%w: %s layer holds %d of %d neurons and cannot be connected",
				ErrState, l.Name(), l.Len(), l.Capacity())
		}
	}

	for _, p := range parent.Neurons() {
		for _, c := range child.Neurons() {
			b.synapses.Insert(NewSynapse(b.synapseID, p, c, 0.0))
			b.synapseID++
		}
	}
	b.wiredInto[child] = parent

	b.logger.Debug("layers connected",
		"parent", parent.Name(), "child", child.Name(),
		"synapses", parent.Len()*child.Len())
	return nil
}

// ConnectNetwork wires input to hidden, then hidden to output.
func (b *Base) ConnectNetwork() error {
	if b.IsConnected() {
		return fmt.Errorf("%w: network is already connected", ErrState)
	}
	if err := b.ConnectLayers(b.inputLayer, b.hiddenLayer); err != nil {
		return fmt.Errorf("failed to connect input to hidden layer: %w", err)
	}
	if err := b.ConnectLayers(b.hiddenLayer, b.outputLayer); err != nil {
		return fmt.Errorf("failed to connect hidden to output layer: %w", err)
	}
	b.state = Populated
	return nil
}

// CreateNetwork populates every layer and wires the network. All layers must
// already be sized, and the value counts must match the reserved capacities.
func (b *Base) CreateNetwork(inputValues, outputTargets []Value) error {
	for _, l := range []*Layer{b.inputLayer, b.hiddenLayer, b.outputLayer} {
		if !l.IsSized() {
			return fmt.Errorf("failed to create network: %w: %s layer was not sized", ErrState, l.Name())
		}
		if l.Len() > 0 {
			return fmt.Errorf("failed to create network: %w: %s layer is already populated", ErrState, l.Name())
		}
	}
	if len(inputValues) != b.inputLayer.Capacity() {
		return fmt.Errorf("failed to create network: %w: got %d input values for %d input neurons",
			ErrInvalidArgument, len(inputValues), b.inputLayer.Capacity())
	}
	if len(outputTargets) != b.outputLayer.Capacity() {
		return fmt.Errorf("failed to create network: %w: got %d output targets for %d output neurons",
			ErrInvalidArgument, len(outputTargets), b.outputLayer.Capacity())
	}

	if err := b.SetInputValues(inputValues); err != nil {
		return err
	}
	if err := b.CreateNeuronsInLayer(b.hiddenLayer); err != nil {
		return err
	}
	if err := b.CreateNeuronsInLayer(b.outputLayer); err != nil {
		return err
	}
	if err := b.SetTargetOutputValues(outputTargets); err != nil {
		return err
	}
	return b.ConnectNetwork()
}

// UpdateExample replaces the input values and output targets of a connected
// network in place. No neuron is created and no id changes.
func (b *Base) UpdateExample(inputValues, outputTargets []Value) error {
	if !b.IsConnected() {
		return fmt.Errorf("%w: network must be connected before examples are updated", ErrState)
	}
	if len(inputValues) != b.inputLayer.Len() {
		return fmt.Errorf("%w: got %d input values for %d input neurons",
			ErrInvalidArgument, len(inputValues), b.inputLayer.Len())
	}
	if len(outputTargets) != b.outputLayer.Len() {
		return fmt.Errorf("%w: got %d output targets for %d output neurons",
			ErrInvalidArgument, len(outputTargets), b.outputLayer.Len())
	}
	for i, v := range inputValues {
		n := b.inputLayer.Neuron(i)
		n.Value = v
		n.ActivationResult = v
	}
	for i, t := range outputTargets {
		b.outputLayer.Neuron(i).OutputTarget = t
	}
	return nil
}
