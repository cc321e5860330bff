package network

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// Config stores everything needed to build, seed and train a network.
type Config struct {
	Architecture ArchitectureConfig
	Training     TrainingConfig
	Data         DataConfig
	Seed         uint64 // 0 means seed from the clock
}

// ArchitectureConfig holds the [Architecture] section.
type ArchitectureConfig struct {
	InputLayerSize         int    `ini:"input_layer_size"`
	SingleHiddenLayerSize  int    `ini:"single_hidden_layer_size"`
	OutputLayerSize        int    `ini:"output_layer_layer_size"`
	ActivationFunctionType string `ini:"activation_function_type"` // e.g., "sigmoid", "tanh"
}

// DataConfig holds the [Data] section. Values are space-separated; with
// several examples they are listed row by row.
type DataConfig struct {
	InputValues   []float64 `ini:"input_values" delim:" "`
	OutputTargets []float64 `ini:"output_targets" delim:" "`
	Examples      int       `ini:"examples"` // Number of rows in the lists above, default 1
}

// NeuralNetworkArchitecture converts the section into the typed architecture.
func (ac ArchitectureConfig) NeuralNetworkArchitecture() (NeuralNetworkArchitecture, error) {
	t, err := ParseActivationFunctionType(ac.ActivationFunctionType)
	if err != nil {
		return NeuralNetworkArchitecture{}, err
	}
	return NeuralNetworkArchitecture{
		InputLayerSize:         ac.InputLayerSize,
		SingleHiddenLayerSize:  ac.SingleHiddenLayerSize,
		OutputLayerSize:        ac.OutputLayerSize,
		ActivationFunctionType: t,
	}, nil
}

// ExampleSet splits the data lists into one Example per row.
func (c *Config) ExampleSet() []Example {
	in, out := c.Architecture.InputLayerSize, c.Architecture.OutputLayerSize
	examples := make([]Example, c.Data.Examples)
	for i := range examples {
		examples[i] = Example{
			Inputs:  c.Data.InputValues[i*in : (i+1)*in],
			Targets: c.Data.OutputTargets[i*out : (i+1)*out],
		}
	}
	return examples
}

// LoadConfig loads configuration parameters from an INI file.
func LoadConfig(filePath string) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true, // Allow # comments starting with # or ;
		UnescapeValueCommentSymbols: true, // If # or ; appear in value, treat as value
	}, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}
	return parseConfig(cfg)
}

// LoadConfigData loads configuration parameters from INI text.
func LoadConfigData(data []byte) (*Config, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:         true,
		UnescapeValueCommentSymbols: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return parseConfig(cfg)
}

func parseConfig(cfg *ini.File) (*Config, error) {
	config := &Config{Training: DefaultTrainingConfig()}

	// Values that fail to parse are reported, never replaced by defaults.
	if err := cfg.Section("Architecture").StrictMapTo(&config.Architecture); err != nil {
		return nil, fmt.Errorf("config error: [Architecture] section: %w", err)
	}
	if err := cfg.Section("Training").StrictMapTo(&config.Training); err != nil {
		return nil, fmt.Errorf("config error: [Training] section: %w", err)
	}
	if err := cfg.Section("Data").StrictMapTo(&config.Data); err != nil {
		return nil, fmt.Errorf("config error: [Data] section: %w", err)
	}
	// uint64 is read separately so a negative seed is reported instead of wrapped.
	if key, err := cfg.Section("Training").GetKey("seed"); err == nil {
		seed, err := key.Uint64()
		if err != nil {
			return nil, fmt.Errorf("config error: seed must be a non-negative integer: %w", err)
		}
		config.Seed = seed
	}

	config.Architecture.ActivationFunctionType = cleanIniString(config.Architecture.ActivationFunctionType)
	if config.Architecture.ActivationFunctionType == "" {
		config.Architecture.ActivationFunctionType = "sigmoid"
	}
	if config.Data.Examples == 0 {
		config.Data.Examples = 1
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks sizes, training settings and that the data lists match the layers.
func (c *Config) Validate() error {
	arch := c.Architecture
	if arch.InputLayerSize <= 0 {
		return fmt.Errorf("config error: input_layer_size must be positive")
	}
	if arch.SingleHiddenLayerSize <= 0 {
		return fmt.Errorf("config error: single_hidden_layer_size must be positive")
	}
	if arch.OutputLayerSize <= 0 {
		return fmt.Errorf("config error: output_layer_layer_size must be positive")
	}
	if _, err := ParseActivationFunctionType(arch.ActivationFunctionType); err != nil {
		return fmt.Errorf("config error: invalid activation_function_type '%s'", arch.ActivationFunctionType)
	}
	if err := c.Training.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if c.Data.Examples <= 0 {
		return fmt.Errorf("config error: examples must be positive")
	}
	if want := c.Data.Examples * arch.InputLayerSize; len(c.Data.InputValues) != want {
		return fmt.Errorf("config error: input_values has %d values, expected %d (%d examples x %d inputs)",
			len(c.Data.InputValues), want, c.Data.Examples, arch.InputLayerSize)
	}
	if want := c.Data.Examples * arch.OutputLayerSize; len(c.Data.OutputTargets) != want {
		return fmt.Errorf("config error: output_targets has %d values, expected %d (%d examples x %d outputs)",
			len(c.Data.OutputTargets), want, c.Data.Examples, arch.OutputLayerSize)
	}
	return nil
}

// NewNetwork validates the configuration and builds a network from it: the
// first example populates the layers and the weights are initialized.
func (c *Config) NewNetwork(opts ...Option) (*ExclusiveOrNetwork, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	arch, err := c.Architecture.NeuralNetworkArchitecture()
	if err != nil {
		return nil, err
	}
	if c.Seed != 0 {
		opts = append([]Option{WithSeed(c.Seed)}, opts...)
	}
	net := NewExclusiveOrNetwork(opts...)
	first := c.ExampleSet()[0]
	if err := net.DefineNeuralNetworkArchitecture(arch, first.Inputs, first.Targets); err != nil {
		return nil, err
	}
	if err := net.CalculateInitialValues(); err != nil {
		return nil, err
	}
	return net, nil
}

// cleanIniString removes inline comments and trims whitespace from a string read from INI.
func cleanIniString(s string) string {
	// Remove comments starting with # or ;
	if idx := strings.IndexAny(s, "#;"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
