package network

import (
	"fmt"
	"log/slog"
)

// TrainingConfig holds the learning rate and the stopping policy of the train loop.
type TrainingConfig struct {
	LearningRate   float64 `ini:"learning_rate"`
	MaxEpochs      int     `ini:"max_epochs"`
	ErrorThreshold float64 `ini:"error_threshold"` // Converged once the mean squared error is at or below this
	LogInterval    int     `ini:"log_interval"`    // Epochs between progress records; 0 disables them
}

// DefaultTrainingConfig returns the settings used when none are configured.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		LearningRate:   0.5,
		MaxEpochs:      10000,
		ErrorThreshold: 1e-4,
		LogInterval:    1000,
	}
}

// Validate checks that the training settings can drive the loop.
func (c TrainingConfig) Validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("%w: learning_rate must be positive, got %g", ErrInvalidArgument, c.LearningRate)
	}
	if c.MaxEpochs <= 0 {
		return fmt.Errorf("%w: max_epochs must be positive, got %d", ErrInvalidArgument, c.MaxEpochs)
	}
	if c.ErrorThreshold < 0 {
		return fmt.Errorf("%w: error_threshold cannot be negative, got %g", ErrInvalidArgument, c.ErrorThreshold)
	}
	if c.LogInterval < 0 {
		return fmt.Errorf("%w: log_interval cannot be negative, got %d", ErrInvalidArgument, c.LogInterval)
	}
	return nil
}

// StopFunc is consulted once per epoch with the number of epochs run so far
// and the current loss. Returning true stops training.
type StopFunc func(epoch int, loss float64) bool

// TrainingResult summarizes one call to Train or TrainExamples.
type TrainingResult struct {
	Epochs int     // backward passes run during the call
	Loss   float64 // mean squared error after the last forward pass
	State  State   // Converged or StoppedExternally
}

// Example is one (inputs, targets) training pair.
type Example struct {
	Inputs  []Value
	Targets []Value
}

// Train alternates forward and backward propagation on the current example
// until the loss reaches cfg.ErrorThreshold, cfg.MaxEpochs backward passes
// have run, or stop returns true. stop may be nil.
func (n *ExclusiveOrNetwork) Train(cfg TrainingConfig, stop StopFunc) (*TrainingResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !n.state.hasWeights() {
		return nil, fmt.Errorf("%w: weights must be initialized before training (state %s)", ErrState, n.state)
	}
	n.state = Training

	if err := n.ForwardPropagate(); err != nil {
		return nil, err
	}
	loss := n.TotalError()
	epochs := 0
	for {
		if loss <= cfg.ErrorThreshold {
			n.state = Converged
			break
		}
		if epochs >= cfg.MaxEpochs || (stop != nil && stop(epochs, loss)) {
			n.state = StoppedExternally
			break
		}
		if err := n.BackPropagate(cfg.LearningRate); err != nil {
			return nil, err
		}
		if err := n.ForwardPropagate(); err != nil {
			return nil, err
		}
		epochs++
		n.epochs++
		loss = n.TotalError()
		if cfg.LogInterval > 0 && epochs%cfg.LogInterval == 0 {
			n.logger.Debug("training progress", "epoch", epochs, "loss", loss)
		}
	}

	n.logger.Info("training finished", "epochs", epochs, "loss", loss, "state", n.state.String())
	return &TrainingResult{Epochs: epochs, Loss: loss, State: n.state}, nil
}

// TrainExamples runs the train loop over a data set one example at a time:
// each epoch makes one forward and one backward pass per example, in order.
// The loss compared with cfg.ErrorThreshold is the mean of the per-example
// losses from a forward-only sweep over the data set, taken before the first
// epoch and again after each one.
func (n *ExclusiveOrNetwork) TrainExamples(examples []Example, cfg TrainingConfig, stop StopFunc) (*TrainingResult, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		return nil, fmt.Errorf("%w: no training examples given", ErrInvalidArgument)
	}
	if !n.state.hasWeights() {
		return nil, fmt.Errorf("%w: weights must be initialized before training (state %s)", ErrState, n.state)
	}
	n.state = Training

	losses := make([]float64, len(examples))
	epochLoss := func() error {
		for i, ex := range examples {
			if err := n.UpdateExample(ex.Inputs, ex.Targets); err != nil {
				return fmt.Errorf("example %d: %w", i, err)
			}
			if err := n.ForwardPropagate(); err != nil {
				return err
			}
			losses[i] = n.TotalError()
		}
		return nil
	}

	if err := epochLoss(); err != nil {
		return nil, err
	}
	loss := Mean(losses)
	epochs := 0
	for {
		if loss <= cfg.ErrorThreshold {
			n.state = Converged
			break
		}
		if epochs >= cfg.MaxEpochs || (stop != nil && stop(epochs, loss)) {
			n.state = StoppedExternally
			break
		}
		for i, ex := range examples {
			if err := n.UpdateExample(ex.Inputs, ex.Targets); err != nil {
				return nil, fmt.Errorf("example %d: %w", i, err)
			}
			if err := n.ForwardPropagate(); err != nil {
				return nil, err
			}
			if err := n.BackPropagate(cfg.LearningRate); err != nil {
				return nil, err
			}
		}
		epochs++
		n.epochs++
		if err := epochLoss(); err != nil {
			return nil, err
		}
		loss = Mean(losses)
		if cfg.LogInterval > 0 && epochs%cfg.LogInterval == 0 {
			n.logger.Debug("training progress", "epoch", epochs, "loss", loss, "examples", len(examples))
		}
	}

	n.logger.Info("training finished",
		"epochs", epochs, "loss", loss, "examples", len(examples), "state", n.state.String())
	return &TrainingResult{Epochs: epochs, Loss: loss, State: n.state}, nil
}

// PrintNeuralNetworkData logs every neuron of every layer.
func (n *ExclusiveOrNetwork) PrintNeuralNetworkData() {
	n.logger.Info("network data",
		"state", n.state.String(),
		"activation", n.activationFunctionType.String(),
		"synapses", n.synapses.Len())
	for _, l := range []*Layer{n.inputLayer, n.hiddenLayer, n.outputLayer} {
		n.PrintLayerData(l)
	}
}

// PrintLayerData logs one record per neuron of l.
func (n *ExclusiveOrNetwork) PrintLayerData(l *Layer) {
	for _, neuron := range l.Neurons() {
		attrs := []any{
			slog.String("layer", l.Name()),
			slog.Uint64("id", neuron.ID()),
			slog.Float64("value", neuron.Value),
			slog.Float64("activation", neuron.ActivationResult),
		}
		if l == n.outputLayer {
			attrs = append(attrs, slog.Float64("target", neuron.OutputTarget))
		}
		n.logger.Info("neuron", attrs...)
	}
}
