package network

// State is the lifecycle stage of a network instance.
type State int

const (
	Unconfigured State = iota
	Sized
	Populated
	WeightsInitialized
	Training
	Converged
	StoppedExternally
)

var stateNames = map[State]string{
	Unconfigured:       "unconfigured",
	Sized:              "sized",
	Populated:          "populated",
	WeightsInitialized: "weights_initialized",
	Training:           "training",
	Converged:          "converged",
	StoppedExternally:  "stopped_externally",
}

// String returns the state name.
func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "invalid"
}

// hasWeights reports whether the weights have been initialized in this state.
func (s State) hasWeights() bool {
	return s >= WeightsInitialized
}
