package network

import (
	"fmt"
	"math"
	"strings"
)

// ActivationFunctionType selects the activation function of a network.
// The zero value is Unknown, which cannot be evaluated.
type ActivationFunctionType int

const (
	Unknown ActivationFunctionType = iota
	Sigmoid
	Tanh
	ReLU
	Identity
)

// ActivationFunction pairs an activation with its derivative. The derivative
// receives both the raw value x and the activated value y = Activate(x), so
// functions like sigmoid can be differentiated from their output alone.
type ActivationFunction struct {
	Name       string
	Activate   func(x float64) float64
	Derivative func(x, y float64) float64
}

// ActivationFunctions maps every usable type to its implementation.
var ActivationFunctions = map[ActivationFunctionType]ActivationFunction{
	Sigmoid:  {Name: "sigmoid", Activate: sigmoid, Derivative: sigmoidDerivative},
	Tanh:     {Name: "tanh", Activate: math.Tanh, Derivative: tanhDerivative},
	ReLU:     {Name: "relu", Activate: relu, Derivative: reluDerivative},
	Identity: {Name: "identity", Activate: identity, Derivative: identityDerivative},
}

// activationNames maps configuration names to types.
var activationNames = map[string]ActivationFunctionType{
	"sigmoid":  Sigmoid,
	"logistic": Sigmoid, // Alias for sigmoid
	"tanh":     Tanh,
	"relu":     ReLU,
	"identity": Identity,
	"linear":   Identity, // Alias for identity
}

// ParseActivationFunctionType resolves a configuration name such as "sigmoid".
func ParseActivationFunctionType(name string) (ActivationFunctionType, error) {
	if t, ok := activationNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return t, nil
	}
	return Unknown, fmt.Errorf("%w: unknown activation function: %q", ErrInvalidArgument, name)
}

// GetActivation retrieves the implementation of t.
func GetActivation(t ActivationFunctionType) (ActivationFunction, error) {
	if fn, ok := ActivationFunctions[t]; ok {
		return fn, nil
	}
	return ActivationFunction{}, fmt.Errorf("%w: activation function type %s cannot be applied", ErrInvalidArgument, t)
}

// String returns the configuration name of t.
func (t ActivationFunctionType) String() string {
	if fn, ok := ActivationFunctions[t]; ok {
		return fn.Name
	}
	return "unknown"
}

// --- Activation Function Implementations ---

func sigmoid(x float64) float64 {
	// Exp overflows for very negative x; clamp like neat-python does.
	return 1.0 / (1.0 + math.Exp(-clamp(x, -60.0, 60.0)))
}

func sigmoidDerivative(_, y float64) float64 {
	return y * (1.0 - y)
}

func tanhDerivative(_, y float64) float64 {
	return 1.0 - y*y
}

func relu(x float64) float64 {
	return math.Max(0, x)
}

func reluDerivative(x, _ float64) float64 {
	if x > 0 {
		return 1.0
	}
	return 0.0
}

func identity(x float64) float64 {
	return x
}

func identityDerivative(_, _ float64) float64 {
	return 1.0
}
