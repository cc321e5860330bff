package network

import "fmt"

// Id identifies a neuron or a synapse. Neuron and synapse ids are drawn from
// independent counters and are never reused within one network.
type Id = uint64

// Value is the scalar state carried by a neuron.
type Value = float64

// Weight is the trainable scalar carried by a synapse.
type Weight = float64

// NeuralNetworkArchitecture describes the size of each layer and the
// activation function used by the hidden and output neurons.
// Only a single hidden layer is supported.
type NeuralNetworkArchitecture struct {
	InputLayerSize         int
	SingleHiddenLayerSize  int
	OutputLayerSize        int
	ActivationFunctionType ActivationFunctionType
}

// SynapseCapacity returns the number of synapses a fully connected network
// with this architecture holds.
func (a NeuralNetworkArchitecture) SynapseCapacity() int {
	return a.InputLayerSize*a.SingleHiddenLayerSize + a.SingleHiddenLayerSize*a.OutputLayerSize
}

// String returns a string representation of the architecture.
func (a NeuralNetworkArchitecture) String() string {
	return fmt.Sprintf("Architecture(%d-%d-%d, Activation: %s)",
		a.InputLayerSize, a.SingleHiddenLayerSize, a.OutputLayerSize, a.ActivationFunctionType)
}

// --------------------------- Neuron ---------------------------

// Neuron is one node of the network.
type Neuron struct {
	id               Id
	Value            Value // Input value, or the weighted sum of the parents after forward propagation
	ActivationResult Value // Activation function applied to Value; what downstream synapses read
	OutputTarget     Value // Desired activation, only meaningful in the output layer
}

// newNeuron creates a neuron with the given id and raw value.
func newNeuron(id Id, value Value) *Neuron {
	return &Neuron{id: id, Value: value}
}

// ID returns the neuron's immutable id.
func (n *Neuron) ID() Id {
	return n.id
}

// String returns a string representation of the Neuron.
func (n *Neuron) String() string {
	return fmt.Sprintf("Neuron(ID: %d, Value: %.4f, Activation: %.4f, Target: %.4f)",
		n.id, n.Value, n.ActivationResult, n.OutputTarget)
}

// Copy returns a detached copy of the neuron with the same id.
func (n *Neuron) Copy() *Neuron {
	c := *n
	return &c
}
