// Package nn evaluates trained networks on new inputs without touching the
// network they were built from.
package nn

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/baldhumanity/xornet-go/network"
)

// Source is what CreateFeedForwardNetwork reads from a trained network.
// *network.ExclusiveOrNetwork satisfies it.
type Source interface {
	GetSynapses() *network.SynapseMap
	InputLayer() *network.Layer
	OutputLayer() *network.Layer
	ActivationFunctionType() network.ActivationFunctionType
}

// connection is a weighted edge copied out of the source network.
type connection struct {
	From   network.Id
	To     network.Id
	Weight network.Weight
}

// neuralNode represents a non-input node during network activation.
type neuralNode struct {
	Key    network.Id
	Inputs []connection // Incoming connections, in synapse map order
}

// FeedForwardNetwork is a frozen copy of a network's weights that can be
// activated on arbitrary inputs.
type FeedForwardNetwork struct {
	InputKeys     []network.Id               // Input neuron ids, in layer order
	OutputKeys    []network.Id               // Output neuron ids, in layer order
	NodeEvalOrder []network.Id               // Topologically sorted non-input ids
	Nodes         map[network.Id]neuralNode  // Non-input node data by id
	Activation    network.ActivationFunction // Applied to every non-input node
}

// CreateFeedForwardNetwork copies the synapses and activation function of src
// and works out an evaluation order with a topological sort.
func CreateFeedForwardNetwork(src Source) (*FeedForwardNetwork, error) {
	act, err := network.GetActivation(src.ActivationFunctionType())
	if err != nil {
		return nil, fmt.Errorf("failed to get activation function for network: %w", err)
	}
	synapses := src.GetSynapses()
	if synapses.Len() == 0 {
		return nil, fmt.Errorf("cannot create FeedForwardNetwork from a network without synapses")
	}

	inputKeys := layerKeys(src.InputLayer())
	outputKeys := layerKeys(src.OutputLayer())

	nodes := make(map[network.Id]neuralNode)
	graph := make(map[network.Id][]network.Id) // node -> children
	inDegree := make(map[network.Id]int)
	nodeKeys := make(map[network.Id]bool)

	for _, ik := range inputKeys {
		nodeKeys[ik] = true
	}
	synapses.Each(func(s *network.Synapse) {
		from, to := s.Parent().ID(), s.Child().ID()
		node := nodes[to]
		node.Key = to
		node.Inputs = append(node.Inputs, connection{From: from, To: to, Weight: s.Weight()})
		nodes[to] = node

		graph[from] = append(graph[from], to)
		inDegree[to]++
		nodeKeys[from] = true
		nodeKeys[to] = true
	})

	// Kahn's algorithm, kept sorted for a deterministic order
	queue := []network.Id{}
	for nk := range nodeKeys {
		if inDegree[nk] == 0 {
			queue = append(queue, nk)
		}
	}
	sortIds(queue)

	evalOrder := []network.Id{}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		evalOrder = append(evalOrder, u)

		for _, v := range graph[u] {
			inDegree[v]--
			if inDegree[v] == 0 {
				queue = append(queue, v)
			}
		}
		sortIds(queue)
	}
	if len(evalOrder) != len(nodeKeys) {
		return nil, fmt.Errorf("failed topological sort: cycle detected (expected %d nodes, got %d)", len(nodeKeys), len(evalOrder))
	}

	inputKeySet := make(map[network.Id]bool, len(inputKeys))
	for _, ik := range inputKeys {
		inputKeySet[ik] = true
	}
	filteredEvalOrder := []network.Id{}
	for _, nk := range evalOrder {
		if inputKeySet[nk] {
			continue
		}
		if _, ok := nodes[nk]; !ok {
			return nil, fmt.Errorf("node %d has no incoming synapses and is not an input", nk)
		}
		filteredEvalOrder = append(filteredEvalOrder, nk)
	}

	return &FeedForwardNetwork{
		InputKeys:     inputKeys,
		OutputKeys:    outputKeys,
		NodeEvalOrder: filteredEvalOrder,
		Nodes:         nodes,
		Activation:    act,
	}, nil
}

// Activate computes the network's output for a given slice of input values.
// The input slice must match the number of input nodes.
func (net *FeedForwardNetwork) Activate(inputs []float64) ([]float64, error) {
	if len(inputs) != len(net.InputKeys) {
		return nil, fmt.Errorf("mismatch between input count (%d) and network input nodes (%d)", len(inputs), len(net.InputKeys))
	}

	nodeValues := make(map[network.Id]float64, len(net.InputKeys)+len(net.NodeEvalOrder))
	for i, ik := range net.InputKeys {
		nodeValues[ik] = inputs[i]
	}

	var values, weights []float64
	for _, nodeKey := range net.NodeEvalOrder {
		node := net.Nodes[nodeKey]
		values, weights = values[:0], weights[:0]
		for _, c := range node.Inputs {
			values = append(values, nodeValues[c.From])
			weights = append(weights, c.Weight)
		}
		nodeValues[nodeKey] = net.Activation.Activate(floats.Dot(values, weights))
	}

	outputs := make([]float64, len(net.OutputKeys))
	for i, ok := range net.OutputKeys {
		outputs[i] = nodeValues[ok]
	}
	return outputs, nil
}

func layerKeys(l *network.Layer) []network.Id {
	keys := make([]network.Id, l.Len())
	for i, n := range l.Neurons() {
		keys[i] = n.ID()
	}
	return keys
}

func sortIds(ids []network.Id) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
