package network

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// CheckpointData is the part of a network written to a checkpoint file.
// Neurons are not saved: they are rebuilt from the configuration, and since
// ids are assigned deterministically the synapse ids line up again.
type CheckpointData struct {
	NetworkID    string
	Architecture NeuralNetworkArchitecture
	Weights      map[Id]Weight // synapse id -> weight
	Epochs       int
	Seed         uint64
}

// Checkpoint captures the current weights of the network.
func (n *ExclusiveOrNetwork) Checkpoint() (*CheckpointData, error) {
	if !n.state.hasWeights() {
		return nil, fmt.Errorf("%w: cannot checkpoint a network without weights (state %s)", ErrState, n.state)
	}
	weights := make(map[Id]Weight, n.synapses.Len())
	n.synapses.Each(func(s *Synapse) { weights[s.ID()] = s.Weight() })
	return &CheckpointData{
		NetworkID:    n.id.String(),
		Architecture: n.Architecture(),
		Weights:      weights,
		Epochs:       n.epochs,
		Seed:         n.seed,
	}, nil
}

// RestoreCheckpoint overwrites the weights of a connected network with the
// saved ones. The architecture and the synapse ids must match exactly.
func (n *ExclusiveOrNetwork) RestoreCheckpoint(data *CheckpointData) error {
	if !n.IsConnected() {
		return fmt.Errorf("%w: network must be connected before a checkpoint is restored", ErrState)
	}
	if data.Architecture != n.Architecture() {
		return fmt.Errorf("%w: checkpoint architecture %s does not match network %s",
			ErrInvalidArgument, data.Architecture, n.Architecture())
	}
	if len(data.Weights) != n.synapses.Len() {
		return fmt.Errorf("%w: checkpoint holds %d weights, network has %d synapses",
			ErrInvalidArgument, len(data.Weights), n.synapses.Len())
	}
	for _, s := range n.synapses.All() {
		if _, ok := data.Weights[s.ID()]; !ok {
			return fmt.Errorf("%w: checkpoint has no weight for synapse %d", ErrInvalidArgument, s.ID())
		}
	}
	n.synapses.Each(func(s *Synapse) { s.SetWeight(data.Weights[s.ID()]) })
	n.epochs = data.Epochs
	n.state = WeightsInitialized
	return nil
}

// SaveCheckpoint saves the network weights to a file.
// Uses gzip compression for smaller file size.
func (n *ExclusiveOrNetwork) SaveCheckpoint(filePath string) error {
	data, err := n.Checkpoint()
	if err != nil {
		return err
	}

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint file '%s': %w", filePath, err)
	}
	defer file.Close()

	gzWriter := gzip.NewWriter(file)
	if err := gob.NewEncoder(gzWriter).Encode(data); err != nil {
		gzWriter.Close()
		return fmt.Errorf("failed to encode network data: %w", err)
	}
	if err := gzWriter.Close(); err != nil {
		return fmt.Errorf("failed to flush checkpoint file '%s': %w", filePath, err)
	}

	n.logger.Info("checkpoint saved", "path", filePath, "epochs", n.epochs)
	return nil
}

// ReadCheckpoint decodes a checkpoint file without building a network.
func ReadCheckpoint(checkpointPath string) (*CheckpointData, error) {
	file, err := os.Open(checkpointPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open checkpoint file '%s': %w", checkpointPath, err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for checkpoint: %w", err)
	}
	defer gzReader.Close()

	data := &CheckpointData{}
	if err := gob.NewDecoder(gzReader).Decode(data); err != nil {
		return nil, fmt.Errorf("failed to decode network data from checkpoint: %w", err)
	}
	return data, nil
}

// LoadCheckpoint rebuilds a network from its configuration file and restores
// the weights saved in checkpointPath.
func LoadCheckpoint(checkpointPath string, configPath string, opts ...Option) (*ExclusiveOrNetwork, error) {
	// 1. Load the configuration first.
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config '%s' for checkpoint: %w", configPath, err)
	}

	// 2. Decode the saved data.
	data, err := ReadCheckpoint(checkpointPath)
	if err != nil {
		return nil, err
	}

	// 3. Rebuild the network under its saved identity and restore the weights.
	id, err := uuid.Parse(data.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse network id in checkpoint: %w", err)
	}
	opts = append([]Option{WithID(id), WithSeed(data.Seed)}, opts...)
	net, err := config.NewNetwork(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild network for checkpoint: %w", err)
	}
	if err := net.RestoreCheckpoint(data); err != nil {
		return nil, fmt.Errorf("failed to restore checkpoint '%s': %w", checkpointPath, err)
	}

	net.logger.Info("checkpoint loaded", "path", checkpointPath, "epochs", net.epochs)
	return net, nil
}
