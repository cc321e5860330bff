package network

import "sort"

// SynapseMap is a multimap from a parent neuron id to the synapses leaving it.
//
// Keys iterate in ascending order and the synapses of one key keep their
// insertion order. There is no reverse index from a child to its incoming
// synapses; Incoming scans the whole map.
type SynapseMap struct {
	keys     []Id // sorted ascending
	entries  map[Id][]*Synapse
	numLinks int
}

// NewSynapseMap creates an empty map.
func NewSynapseMap() *SynapseMap {
	return &SynapseMap{entries: make(map[Id][]*Synapse)}
}

// Insert adds s under the id of its parent neuron.
func (m *SynapseMap) Insert(s *Synapse) {
	key := s.Parent().ID()
	if _, exists := m.entries[key]; !exists {
		i := sort.Search(len(m.keys), func(i int) bool { return m.keys[i] >= key })
		m.keys = append(m.keys, 0)
		copy(m.keys[i+1:], m.keys[i:])
		m.keys[i] = key
	}
	m.entries[key] = append(m.entries[key], s)
	m.numLinks++
}

// Find returns the synapses whose parent is parentID, in insertion order.
// The returned slice must not be modified.
func (m *SynapseMap) Find(parentID Id) []*Synapse {
	return m.entries[parentID]
}

// Count returns the number of synapses leaving parentID.
func (m *SynapseMap) Count(parentID Id) int {
	return len(m.entries[parentID])
}

// Incoming returns every synapse whose child is childID, in map order.
func (m *SynapseMap) Incoming(childID Id) []*Synapse {
	var found []*Synapse
	m.Each(func(s *Synapse) {
		if s.Child().ID() == childID {
			found = append(found, s)
		}
	})
	return found
}

// Len returns the total number of synapses.
func (m *SynapseMap) Len() int {
	return m.numLinks
}

// Keys returns the parent ids present in the map in ascending order.
func (m *SynapseMap) Keys() []Id {
	keys := make([]Id, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Each calls fn for every synapse in map order.
func (m *SynapseMap) Each(fn func(s *Synapse)) {
	for _, key := range m.keys {
		for _, s := range m.entries[key] {
			fn(s)
		}
	}
}

// All returns every synapse in map order.
func (m *SynapseMap) All() []*Synapse {
	all := make([]*Synapse, 0, m.numLinks)
	m.Each(func(s *Synapse) { all = append(all, s) })
	return all
}

// Clone returns a detached copy of the map. Synapses and the neurons they
// point at are copied, so changes to the clone never reach the original.
func (m *SynapseMap) Clone() *SynapseMap {
	c := NewSynapseMap()
	m.Each(func(s *Synapse) { c.Insert(s.copyDetached()) })
	return c
}
