package network

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// ExclusiveOrNetwork adds weights, forward propagation and training to Base.
//
// Every instance owns its random source; it is never shared, so a seeded
// network always draws the same initial weights. An ExclusiveOrNetwork is not
// safe for concurrent use.
type ExclusiveOrNetwork struct {
	*Base

	id                     uuid.UUID
	activationFunctionType ActivationFunctionType
	activation             ActivationFunction

	seed       uint64
	weightDist distuv.Uniform

	epochs int // backward passes run over the lifetime of the network
}

// Option configures an ExclusiveOrNetwork.
type Option func(*ExclusiveOrNetwork)

// WithSeed makes weight initialization reproducible.
func WithSeed(seed uint64) Option {
	return func(n *ExclusiveOrNetwork) { n.seed = seed }
}

// WithLogger sets the logger used for training progress and layer dumps.
func WithLogger(logger *slog.Logger) Option {
	return func(n *ExclusiveOrNetwork) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithID overrides the generated network id, used when restoring checkpoints.
func WithID(id uuid.UUID) Option {
	return func(n *ExclusiveOrNetwork) { n.id = id }
}

// NewExclusiveOrNetwork creates an unconfigured network. Without WithSeed the
// random source is seeded from the clock.
func NewExclusiveOrNetwork(opts ...Option) *ExclusiveOrNetwork {
	n := &ExclusiveOrNetwork{
		Base: NewBase(),
		id:   uuid.New(),
		seed: uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(n)
	}
	n.weightDist = distuv.Uniform{Min: 0.0, Max: 1.0, Src: rand.NewSource(n.seed)}
	n.logger = n.logger.With("network", n.id.String())
	return n
}

// ID returns the network's instance id.
func (n *ExclusiveOrNetwork) ID() uuid.UUID { return n.id }

// Seed returns the seed of the weight source.
func (n *ExclusiveOrNetwork) Seed() uint64 { return n.seed }

// Epochs returns the number of backward passes run so far.
func (n *ExclusiveOrNetwork) Epochs() int { return n.epochs }

// ActivationFunctionType returns the configured activation type.
func (n *ExclusiveOrNetwork) ActivationFunctionType() ActivationFunctionType {
	return n.activationFunctionType
}

// Architecture returns the architecture the network was defined with.
func (n *ExclusiveOrNetwork) Architecture() NeuralNetworkArchitecture {
	return NeuralNetworkArchitecture{
		InputLayerSize:         n.inputLayer.Capacity(),
		SingleHiddenLayerSize:  n.hiddenLayer.Capacity(),
		OutputLayerSize:        n.outputLayer.Capacity(),
		ActivationFunctionType: n.activationFunctionType,
	}
}

// SetActivationFunctionType selects the activation function. Unknown is rejected.
func (n *ExclusiveOrNetwork) SetActivationFunctionType(t ActivationFunctionType) error {
	fn, err := GetActivation(t)
	if err != nil {
		return err
	}
	n.activationFunctionType = t
	n.activation = fn
	return nil
}

// DefineNeuralNetworkArchitecture sizes the layers from arch, selects the
// activation function and builds the network from the given values.
//
// On failure the network is returned to the unconfigured state so the whole
// definition can be retried with corrected arguments.
func (n *ExclusiveOrNetwork) DefineNeuralNetworkArchitecture(arch NeuralNetworkArchitecture, inputValues, outputTargets []Value) error {
	if n.state != Unconfigured {
		return fmt.Errorf("%w: architecture already defined (state %s)", ErrState, n.state)
	}
	if err := n.defineArchitecture(arch, inputValues, outputTargets); err != nil {
		n.reset()
		n.activationFunctionType = Unknown
		n.activation = ActivationFunction{}
		return fmt.Errorf("failed to define architecture %s: %w", arch, err)
	}
	n.logger.Info("network defined",
		"architecture", arch.String(),
		"neurons", len(n.neurons),
		"synapses", n.synapses.Len())
	return nil
}

func (n *ExclusiveOrNetwork) defineArchitecture(arch NeuralNetworkArchitecture, inputValues, outputTargets []Value) error {
	if err := n.SetActivationFunctionType(arch.ActivationFunctionType); err != nil {
		return err
	}
	if err := n.SetNumberOfNeuronsInInputLayer(arch.InputLayerSize); err != nil {
		return err
	}
	if err := n.SetNumberOfNeuronsInSingleHiddenLayer(arch.SingleHiddenLayerSize); err != nil {
		return err
	}
	if err := n.SetNumberOfNeuronsInOutputLayer(arch.OutputLayerSize); err != nil {
		return err
	}
	return n.CreateNetwork(inputValues, outputTargets)
}

// CalculateInitialValues gives every synapse a weight drawn uniformly from [0, 1).
func (n *ExclusiveOrNetwork) CalculateInitialValues() error {
	if !n.IsConnected() {
		return fmt.Errorf("%w: weights can only be initialized on a connected network (state %s)", ErrState, n.state)
	}
	n.synapses.Each(func(s *Synapse) {
		s.SetWeight(n.weightDist.Rand())
	})
	n.state = WeightsInitialized
	n.logger.Debug("initial weights assigned", "synapses", n.synapses.Len(), "seed", n.seed)
	return nil
}

// ApplyActivationFunction evaluates the configured activation function at x.
func (n *ExclusiveOrNetwork) ApplyActivationFunction(x float64) (float64, error) {
	if n.activation.Activate == nil {
		return 0, fmt.Errorf("%w: activation function type %s cannot be applied", ErrInvalidArgument, n.activationFunctionType)
	}
	return n.activation.Activate(x), nil
}

// CalculateNeuronValues sets the raw value of a child neuron to the weighted
// sum of its parents' activation results. All synapses must feed the same child.
func (n *ExclusiveOrNetwork) CalculateNeuronValues(synapses []*Synapse) error {
	if len(synapses) == 0 {
		return fmt.Errorf("%w: no synapses to aggregate", ErrInvalidArgument)
	}
	child := synapses[0].Child()
	inputs := make([]float64, len(synapses))
	weights := make([]float64, len(synapses))
	for i, s := range synapses {
		if s.Child().ID() != child.ID() {
			return fmt.Errorf("%w: synapse %d feeds neuron %d, expected neuron %d",
				ErrInvalidArgument, s.ID(), s.Child().ID(), child.ID())
		}
		inputs[i] = s.Parent().ActivationResult
		weights[i] = s.Weight()
	}
	child.Value = weightedSum(inputs, weights)
	return nil
}

// ApplyActivationFunctionOnNeuronsValue stores f(neuron.Value) as the neuron's
// activation result.
func (n *ExclusiveOrNetwork) ApplyActivationFunctionOnNeuronsValue(neuron *Neuron) error {
	y, err := n.ApplyActivationFunction(neuron.Value)
	if err != nil {
		return fmt.Errorf("failed to activate neuron %d: %w", neuron.ID(), err)
	}
	neuron.ActivationResult = y
	return nil
}

// ForwardPropagate computes the hidden layer and then the output layer.
func (n *ExclusiveOrNetwork) ForwardPropagate() error {
	if !n.state.hasWeights() {
		return fmt.Errorf("%w: weights must be initialized before propagation (state %s)", ErrState, n.state)
	}
	for _, l := range []*Layer{n.hiddenLayer, n.outputLayer} {
		for _, neuron := range l.Neurons() {
			if err := n.CalculateNeuronValues(n.synapses.Incoming(neuron.ID())); err != nil {
				return fmt.Errorf("failed to calculate %s neuron %d: %w", l.Name(), neuron.ID(), err)
			}
			if err := n.ApplyActivationFunctionOnNeuronsValue(neuron); err != nil {
				return err
			}
		}
	}
	return nil
}

// BackPropagate moves every weight one gradient step towards the output
// targets, using the neuron values of the last forward pass. Hidden deltas
// are computed from the weights as they were before this step.
func (n *ExclusiveOrNetwork) BackPropagate(learningRate float64) error {
	if !n.state.hasWeights() {
		return fmt.Errorf("%w: weights must be initialized before propagation (state %s)", ErrState, n.state)
	}
	deltas := make(map[Id]float64, n.hiddenLayer.Len()+n.outputLayer.Len())

	for _, o := range n.outputLayer.Neurons() {
		errorTerm := o.OutputTarget - o.ActivationResult
		deltas[o.ID()] = errorTerm * n.activation.Derivative(o.Value, o.ActivationResult)
	}
	for _, h := range n.hiddenLayer.Neurons() {
		downstream := 0.0
		for _, s := range n.synapses.Find(h.ID()) {
			downstream += s.Weight() * deltas[s.Child().ID()]
		}
		deltas[h.ID()] = downstream * n.activation.Derivative(h.Value, h.ActivationResult)
	}

	n.synapses.Each(func(s *Synapse) {
		s.SetWeight(s.Weight() + learningRate*deltas[s.Child().ID()]*s.Parent().ActivationResult)
	})
	return nil
}

// TotalError returns the mean squared error between the output targets and
// the output activations of the last forward pass.
func (n *ExclusiveOrNetwork) TotalError() float64 {
	targets := make([]float64, n.outputLayer.Len())
	outputs := make([]float64, n.outputLayer.Len())
	for i, o := range n.outputLayer.Neurons() {
		targets[i] = o.OutputTarget
		outputs[i] = o.ActivationResult
	}
	return MeanSquaredError(targets, outputs)
}

// Outputs returns the activation results of the output layer.
func (n *ExclusiveOrNetwork) Outputs() []Value {
	out := make([]Value, n.outputLayer.Len())
	for i, o := range n.outputLayer.Neurons() {
		out[i] = o.ActivationResult
	}
	return out
}
