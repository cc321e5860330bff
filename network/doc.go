// Package network builds and trains a small fully connected feed-forward neural
// network with exactly one hidden layer.
//
// The network is modelled as explicit graph objects rather than matrices: every
// Neuron carries an integer id and its scalar state, and every Synapse is a
// weighted edge between a parent and a child neuron. Synapses are indexed by
// their parent's id in a SynapseMap, which is the only structure used to
// discover connectivity.
//
// Basic usage:
//
//	net := network.NewExclusiveOrNetwork(network.WithSeed(42))
//
//	arch := network.NeuralNetworkArchitecture{
//		InputLayerSize:         2,
//		SingleHiddenLayerSize:  3,
//		OutputLayerSize:        1,
//		ActivationFunctionType: network.Sigmoid,
//	}
//	if err := net.DefineNeuralNetworkArchitecture(arch, []float64{1, 0}, []float64{1}); err != nil {
//		log.Fatalf("Error defining network: %v", err)
//	}
//	if err := net.CalculateInitialValues(); err != nil {
//		log.Fatalf("Error initializing weights: %v", err)
//	}
//
//	result, err := net.Train(network.DefaultTrainingConfig(), nil)
//	if err != nil {
//		log.Fatalf("Error training network: %v", err)
//	}
//	fmt.Printf("Finished after %d epochs with loss %.6f\n", result.Epochs, result.Loss)
package network
