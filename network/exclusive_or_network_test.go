package network

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var smallArchitecture = NeuralNetworkArchitecture{
	InputLayerSize:         2,
	SingleHiddenLayerSize:  3,
	OutputLayerSize:        1,
	ActivationFunctionType: Sigmoid,
}

// initializedNetwork returns a seeded network with random weights.
func initializedNetwork(t *testing.T, arch NeuralNetworkArchitecture, inputs, targets []Value) *ExclusiveOrNetwork {
	t.Helper()
	n := NewExclusiveOrNetwork(WithSeed(1), WithLogger(quietLogger()))
	require.NoError(t, n.DefineNeuralNetworkArchitecture(arch, inputs, targets))
	require.NoError(t, n.CalculateInitialValues())
	return n
}

func TestDefineNeuralNetworkArchitecture(t *testing.T) {
	arch := NeuralNetworkArchitecture{
		InputLayerSize:         4,
		SingleHiddenLayerSize:  5,
		OutputLayerSize:        2,
		ActivationFunctionType: Sigmoid,
	}
	n := NewExclusiveOrNetwork(WithLogger(quietLogger()))
	require.NoError(t, n.DefineNeuralNetworkArchitecture(arch, defaultInputValues, []Value{1, 0}))

	assert.Equal(t, Populated, n.State())
	assert.Equal(t, arch, n.Architecture())
	assert.Equal(t, arch.SynapseCapacity(), n.GetSynapses().Len())
	assert.Equal(t, 30, n.GetSynapses().Len())

	assert.ErrorIs(t, n.DefineNeuralNetworkArchitecture(arch, defaultInputValues, []Value{1, 0}), ErrState)
}

func TestDefineNeuralNetworkArchitecture_FailureResets(t *testing.T) {
	tests := []struct {
		name    string
		arch    NeuralNetworkArchitecture
		inputs  []Value
		targets []Value
		wantErr error
	}{
		{
			name:    "unknown activation",
			arch:    NeuralNetworkArchitecture{InputLayerSize: 2, SingleHiddenLayerSize: 2, OutputLayerSize: 1},
			inputs:  []Value{1, 2},
			targets: []Value{1},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "zero hidden size",
			arch:    NeuralNetworkArchitecture{InputLayerSize: 2, OutputLayerSize: 1, ActivationFunctionType: Sigmoid},
			inputs:  []Value{1, 2},
			targets: []Value{1},
			wantErr: ErrInvalidArgument,
		},
		{
			name:    "input count mismatch",
			arch:    smallArchitecture,
			inputs:  []Value{1, 2, 3},
			targets: []Value{1},
			wantErr: ErrInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := NewExclusiveOrNetwork(WithLogger(quietLogger()))
			err := n.DefineNeuralNetworkArchitecture(tt.arch, tt.inputs, tt.targets)
			require.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, Unconfigured, n.State())
			assert.Equal(t, Unknown, n.ActivationFunctionType())
			assert.False(t, n.InputLayer().IsSized())

			// A corrected retry succeeds from scratch.
			require.NoError(t, n.DefineNeuralNetworkArchitecture(smallArchitecture, []Value{1, 0}, []Value{1}))
			assert.Equal(t, Id(0), n.InputLayer().Neuron(0).ID())
		})
	}
}

func TestCalculateInitialValues_WeightsInUnitInterval(t *testing.T) {
	arch := NeuralNetworkArchitecture{
		InputLayerSize:         8,
		SingleHiddenLayerSize:  16,
		OutputLayerSize:        4,
		ActivationFunctionType: Tanh,
	}
	inputs := make([]Value, 8)
	n := initializedNetwork(t, arch, inputs, make([]Value, 4))
	assert.Equal(t, WeightsInitialized, n.State())

	distinct := map[Weight]bool{}
	for _, s := range n.GetSynapses().All() {
		w := s.Weight()
		assert.GreaterOrEqual(t, w, 0.0)
		assert.Less(t, w, 1.0)
		distinct[w] = true
	}
	assert.Greater(t, len(distinct), 1, "weights should not all be equal")
}

func TestCalculateInitialValues_SeedIsReproducible(t *testing.T) {
	weights := func(seed uint64) []Weight {
		n := NewExclusiveOrNetwork(WithSeed(seed), WithLogger(quietLogger()))
		require.NoError(t, n.DefineNeuralNetworkArchitecture(smallArchitecture, []Value{1, 0}, []Value{1}))
		require.NoError(t, n.CalculateInitialValues())
		var ws []Weight
		for _, s := range n.GetSynapses().All() {
			ws = append(ws, s.Weight())
		}
		return ws
	}
	assert.Equal(t, weights(11), weights(11))
	assert.NotEqual(t, weights(11), weights(12))
}

func TestCalculateInitialValues_RequiresConnectedNetwork(t *testing.T) {
	n := NewExclusiveOrNetwork(WithLogger(quietLogger()))
	assert.ErrorIs(t, n.CalculateInitialValues(), ErrState)
}

func TestApplyActivationFunction(t *testing.T) {
	n := NewExclusiveOrNetwork(WithLogger(quietLogger()))
	_, err := n.ApplyActivationFunction(0.5)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, n.SetActivationFunctionType(Unknown), ErrInvalidArgument)

	require.NoError(t, n.SetActivationFunctionType(Sigmoid))
	y, err := n.ApplyActivationFunction(0)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, y, 1e-12)
}

func TestCalculateNeuronValues_WeightedSum(t *testing.T) {
	n := initializedNetwork(t, smallArchitecture, []Value{2, 3}, []Value{1})
	h := n.HiddenLayer().Neuron(0)
	incoming := n.synapses.Incoming(h.ID())
	require.Len(t, incoming, 2)
	incoming[0].SetWeight(0.5)
	incoming[1].SetWeight(0.25)

	require.NoError(t, n.CalculateNeuronValues(incoming))
	assert.InDelta(t, 2*0.5+3*0.25, h.Value, 1e-12)

	require.NoError(t, n.ApplyActivationFunctionOnNeuronsValue(h))
	assert.InDelta(t, 1/(1+math.Exp(-1.75)), h.ActivationResult, 1e-12)
}

func TestCalculateNeuronValues_Errors(t *testing.T) {
	n := initializedNetwork(t, smallArchitecture, []Value{2, 3}, []Value{1})
	assert.ErrorIs(t, n.CalculateNeuronValues(nil), ErrInvalidArgument)

	mixed := []*Synapse{
		n.synapses.Incoming(n.HiddenLayer().Neuron(0).ID())[0],
		n.synapses.Incoming(n.HiddenLayer().Neuron(1).ID())[0],
	}
	assert.ErrorIs(t, n.CalculateNeuronValues(mixed), ErrInvalidArgument)
}

func TestForwardPropagate(t *testing.T) {
	n := initializedNetwork(t, smallArchitecture, []Value{1, 0.5}, []Value{1})
	require.NoError(t, n.ForwardPropagate())

	act := ActivationFunctions[Sigmoid].Activate
	var hidden []float64
	for _, h := range n.HiddenLayer().Neurons() {
		sum := 0.0
		for _, s := range n.synapses.Incoming(h.ID()) {
			sum += s.Parent().Value * s.Weight()
		}
		assert.InDelta(t, sum, h.Value, 1e-12)
		assert.InDelta(t, act(sum), h.ActivationResult, 1e-12)
		hidden = append(hidden, h.ActivationResult)
	}

	o := n.OutputLayer().Neuron(0)
	sum := 0.0
	for i, s := range n.synapses.Incoming(o.ID()) {
		sum += hidden[i] * s.Weight()
	}
	assert.InDelta(t, act(sum), o.ActivationResult, 1e-12)
	assert.Equal(t, []Value{o.ActivationResult}, n.Outputs())
}

func TestForwardPropagate_RequiresWeights(t *testing.T) {
	n := NewExclusiveOrNetwork(WithLogger(quietLogger()))
	require.NoError(t, n.DefineNeuralNetworkArchitecture(smallArchitecture, []Value{1, 0}, []Value{1}))
	assert.ErrorIs(t, n.ForwardPropagate(), ErrState)
	assert.ErrorIs(t, n.BackPropagate(0.1), ErrState)
}

// TestBackPropagate_MatchesNumericalGradient checks each weight update against
// -lr * dE/dw with E = ½Σ(target - output)², estimated by central differences.
func TestBackPropagate_MatchesNumericalGradient(t *testing.T) {
	for _, act := range []ActivationFunctionType{Sigmoid, Tanh} {
		t.Run(act.String(), func(t *testing.T) {
			arch := NeuralNetworkArchitecture{
				InputLayerSize:         3,
				SingleHiddenLayerSize:  4,
				OutputLayerSize:        2,
				ActivationFunctionType: act,
			}
			n := initializedNetwork(t, arch, []Value{0.3, -0.7, 1}, []Value{0.9, 0.1})
			const lr, h = 1.0, 1e-6

			halfSquaredError := func() float64 {
				require.NoError(t, n.ForwardPropagate())
				return n.TotalError() * float64(n.OutputLayer().Len()) / 2
			}

			synapses := n.synapses.All()
			before := make([]Weight, len(synapses))
			want := make([]Weight, len(synapses))
			for i, s := range synapses {
				w := s.Weight()
				before[i] = w
				s.SetWeight(w + h)
				plus := halfSquaredError()
				s.SetWeight(w - h)
				minus := halfSquaredError()
				s.SetWeight(w)
				want[i] = -lr * (plus - minus) / (2 * h)
			}

			require.NoError(t, n.ForwardPropagate())
			require.NoError(t, n.BackPropagate(lr))
			for i, s := range synapses {
				assert.InDelta(t, want[i], s.Weight()-before[i], 1e-6, "synapse %d", s.ID())
			}
		})
	}
}

func TestBackPropagate_ReducesError(t *testing.T) {
	n := initializedNetwork(t, smallArchitecture, []Value{1, 0}, []Value{0.2})
	require.NoError(t, n.ForwardPropagate())
	before := n.TotalError()

	require.NoError(t, n.BackPropagate(0.1))
	require.NoError(t, n.ForwardPropagate())
	assert.Less(t, n.TotalError(), before)
}

func TestTrain_ConvergesOnSingleExample(t *testing.T) {
	n := initializedNetwork(t, smallArchitecture, []Value{1, 0}, []Value{0.8})
	cfg := TrainingConfig{LearningRate: 0.5, MaxEpochs: 50000, ErrorThreshold: 1e-6}

	result, err := n.Train(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, Converged, result.State)
	assert.Equal(t, Converged, n.State())
	assert.LessOrEqual(t, result.Loss, 1e-6)
	assert.Equal(t, result.Epochs, n.Epochs())
	assert.InDelta(t, 0.8, n.OutputLayer().Neuron(0).ActivationResult, 1e-3)
}

func TestTrain_StopsExternally(t *testing.T) {
	t.Run("max epochs", func(t *testing.T) {
		n := initializedNetwork(t, smallArchitecture, []Value{1, 0}, []Value{0.8})
		result, err := n.Train(TrainingConfig{LearningRate: 0.01, MaxEpochs: 3}, nil)
		require.NoError(t, err)
		assert.Equal(t, StoppedExternally, result.State)
		assert.Equal(t, 3, result.Epochs)
	})
	t.Run("stop func", func(t *testing.T) {
		n := initializedNetwork(t, smallArchitecture, []Value{1, 0}, []Value{0.8})
		var seen []int
		stop := func(epoch int, loss float64) bool {
			seen = append(seen, epoch)
			return epoch == 5
		}
		result, err := n.Train(TrainingConfig{LearningRate: 0.01, MaxEpochs: 100}, stop)
		require.NoError(t, err)
		assert.Equal(t, StoppedExternally, result.State)
		assert.Equal(t, 5, result.Epochs)
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, seen)
	})
}

func TestTrain_Errors(t *testing.T) {
	n := NewExclusiveOrNetwork(WithLogger(quietLogger()))
	require.NoError(t, n.DefineNeuralNetworkArchitecture(smallArchitecture, []Value{1, 0}, []Value{1}))

	_, err := n.Train(DefaultTrainingConfig(), nil)
	assert.ErrorIs(t, err, ErrState, "weights not initialized")

	require.NoError(t, n.CalculateInitialValues())
	_, err = n.Train(TrainingConfig{LearningRate: 0, MaxEpochs: 10}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = n.Train(TrainingConfig{LearningRate: 0.1, MaxEpochs: 0}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestTrainExamples_LearnsXOR(t *testing.T) {
	arch := NeuralNetworkArchitecture{
		InputLayerSize:         3, // third input is a constant bias
		SingleHiddenLayerSize:  4,
		OutputLayerSize:        1,
		ActivationFunctionType: Sigmoid,
	}
	examples := []Example{
		{Inputs: []Value{0, 0, 1}, Targets: []Value{0}},
		{Inputs: []Value{0, 1, 1}, Targets: []Value{1}},
		{Inputs: []Value{1, 0, 1}, Targets: []Value{1}},
		{Inputs: []Value{1, 1, 1}, Targets: []Value{0}},
	}
	n := initializedNetwork(t, arch, examples[0].Inputs, examples[0].Targets)
	require.NoError(t, n.ForwardPropagate())

	var start float64
	for _, ex := range examples {
		require.NoError(t, n.UpdateExample(ex.Inputs, ex.Targets))
		require.NoError(t, n.ForwardPropagate())
		start += n.TotalError()
	}
	start /= float64(len(examples))

	result, err := n.TrainExamples(examples, TrainingConfig{LearningRate: 0.5, MaxEpochs: 2000}, nil)
	require.NoError(t, err)
	assert.Equal(t, 2000, result.Epochs)
	assert.Less(t, result.Loss, start, "training must reduce the mean error")

	_, err = n.TrainExamples(nil, DefaultTrainingConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = n.TrainExamples([]Example{{Inputs: []Value{1}, Targets: []Value{0}}}, DefaultTrainingConfig(), nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestPrintNeuralNetworkData(t *testing.T) {
	var buf bytes.Buffer
	n := NewExclusiveOrNetwork(WithSeed(3), WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
	require.NoError(t, n.DefineNeuralNetworkArchitecture(smallArchitecture, []Value{1, 0}, []Value{1}))
	require.NoError(t, n.CalculateInitialValues())
	require.NoError(t, n.ForwardPropagate())
	buf.Reset()

	n.PrintNeuralNetworkData()
	out := buf.String()
	assert.Contains(t, out, "layer=input")
	assert.Contains(t, out, "layer=hidden")
	assert.Contains(t, out, "layer=output")
	assert.Contains(t, out, "target=1")
	assert.Contains(t, out, "network="+n.ID().String())
	assert.Equal(t, 1+2+3+1, bytes.Count(buf.Bytes(), []byte("\n")))
}
