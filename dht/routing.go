package dht

import (
	"container/heap"
	"sync"

	"github.com/opd-ai/kadtopo/identity"
)

// KBucket implements a k-bucket for the Kademlia DHT.
type KBucket struct {
	nodes   []*Node
	maxSize int
	mu      sync.RWMutex
}

// NewKBucket creates a new k-bucket with the specified maximum size.
func NewKBucket(maxSize int) *KBucket {
	return &KBucket{
		nodes:   make([]*Node, 0, maxSize),
		maxSize: maxSize,
	}
}

// AddNode adds a node to the k-bucket if there is space or if it's better than an existing node.
func (kb *KBucket) AddNode(node *Node) bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	// Check if the node already exists
	for i, existingNode := range kb.nodes {
		if existingNode.ID.Equal(node.ID) {
			// Keep the existing entry and move it to the end (most recently seen)
			existingNode.Update(StatusGood)
			kb.nodes = append(kb.nodes[:i], kb.nodes[i+1:]...)
			kb.nodes = append(kb.nodes, existingNode)
			return true
		}
	}

	// If the bucket isn't full, add the node
	if len(kb.nodes) < kb.maxSize {
		node.Update(StatusGood)
		kb.nodes = append(kb.nodes, node)
		return true
	}

	// The bucket is full, check if we can replace a bad node
	for i, existingNode := range kb.nodes {
		if existingNode.Status == StatusBad {
			node.Update(StatusGood)
			kb.nodes[i] = node
			return true
		}
	}

	// Cannot add the node
	return false
}

// RemoveNode removes a node with the given ID from the k-bucket if it exists.
// Returns true if the node was found and removed, false otherwise.
func (kb *KBucket) RemoveNode(id identity.ID) bool {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	for i, node := range kb.nodes {
		if node.ID.Equal(id) {
			kb.nodes = append(kb.nodes[:i], kb.nodes[i+1:]...)
			return true
		}
	}

	return false
}

// GetNodes returns a copy of all nodes in the k-bucket.
func (kb *KBucket) GetNodes() []*Node {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	result := make([]*Node, len(kb.nodes))
	copy(result, kb.nodes)
	return result
}

// Len returns the number of nodes in the k-bucket.
func (kb *KBucket) Len() int {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return len(kb.nodes)
}

// RoutingTable manages k-buckets for the DHT routing.
// Bucket i holds the nodes whose distance to self has its highest set bit at
// position bits-1-i, so bucket 0 covers the far half of the space.
type RoutingTable struct {
	kBuckets []*KBucket
	selfID   identity.ID
	bits     int
	mu       sync.RWMutex
}

// NewRoutingTable creates a new DHT routing table with one bucket per ID bit.
func NewRoutingTable(selfID identity.ID, space identity.Space, maxBucketSize int) *RoutingTable {
	rt := &RoutingTable{
		kBuckets: make([]*KBucket, space.Bits()),
		selfID:   selfID,
		bits:     space.Bits(),
	}

	for i := range rt.kBuckets {
		rt.kBuckets[i] = NewKBucket(maxBucketSize)
	}

	return rt
}

// SelfID returns the ID the table is organised around.
func (rt *RoutingTable) SelfID() identity.ID {
	return rt.selfID
}

// AddNode adds a node to the appropriate k-bucket in the routing table.
func (rt *RoutingTable) AddNode(node *Node) bool {
	if node.ID.Equal(rt.selfID) {
		return false // Don't add ourselves
	}

	bucketIndex := rt.bucketIndex(node.DistanceTo(rt.selfID))

	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.kBuckets[bucketIndex].AddNode(node)
}

// RemoveNode removes the node with the given ID.
func (rt *RoutingTable) RemoveNode(id identity.ID) bool {
	bucketIndex := rt.bucketIndex(identity.Distance(id, rt.selfID))

	rt.mu.Lock()
	defer rt.mu.Unlock()

	return rt.kBuckets[bucketIndex].RemoveNode(id)
}

// Contains reports whether the table holds a node with the given ID.
func (rt *RoutingTable) Contains(id identity.ID) bool {
	if id.Equal(rt.selfID) {
		return false
	}
	bucketIndex := rt.bucketIndex(identity.Distance(id, rt.selfID))

	rt.mu.RLock()
	defer rt.mu.RUnlock()

	for _, node := range rt.kBuckets[bucketIndex].GetNodes() {
		if node.ID.Equal(id) {
			return true
		}
	}
	return false
}

// Size returns the number of nodes in the table.
func (rt *RoutingTable) Size() int {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	total := 0
	for _, bucket := range rt.kBuckets {
		total += bucket.Len()
	}
	return total
}

// nodeHeap implements heap.Interface for finding closest nodes efficiently.
// It's a max-heap based on distance, keeping the k closest nodes.
type nodeHeap struct {
	nodes     []*Node
	distances []identity.ID
	target    identity.ID
}

func (h *nodeHeap) Len() int { return len(h.nodes) }

func (h *nodeHeap) Less(i, j int) bool {
	// Max-heap: return true if i is farther than j
	return h.distances[j].Less(h.distances[i])
}

func (h *nodeHeap) Swap(i, j int) {
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.distances[i], h.distances[j] = h.distances[j], h.distances[i]
}

func (h *nodeHeap) Push(x interface{}) {
	item := x.(*Node)
	h.nodes = append(h.nodes, item)
	h.distances = append(h.distances, item.DistanceTo(h.target))
}

func (h *nodeHeap) Pop() interface{} {
	old := h.nodes
	n := len(old)
	item := old[n-1]
	h.nodes = old[0 : n-1]
	h.distances = h.distances[0 : n-1]
	return item
}

// FindClosestNodes finds the count closest nodes to the target, closest first.
// Distinct IDs always have distinct XOR distances to a target, so the order
// is fully determined by the table contents.
func (rt *RoutingTable) FindClosestNodes(target identity.ID, count int) []*Node {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	if count <= 0 {
		return []*Node{}
	}

	// Use a max-heap to maintain only the k closest nodes
	h := &nodeHeap{
		nodes:     make([]*Node, 0, count),
		distances: make([]identity.ID, 0, count),
		target:    target,
	}

	for _, bucket := range rt.kBuckets {
		for _, node := range bucket.GetNodes() {
			if len(h.nodes) < count {
				heap.Push(h, node)
				continue
			}
			// Heap is full, replace the farthest if this node is closer
			if node.DistanceTo(target).Less(h.distances[0]) {
				heap.Pop(h)
				heap.Push(h, node)
			}
		}
	}

	// Popping a max-heap yields farthest first; fill the result from the back.
	heapSize := h.Len()
	result := make([]*Node, heapSize)
	for i := heapSize - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(*Node)
	}

	return result
}

// GetAllNodes returns all nodes from all k-buckets in the routing table.
func (rt *RoutingTable) GetAllNodes() []*Node {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	var allNodes []*Node
	for _, bucket := range rt.kBuckets {
		allNodes = append(allNodes, bucket.GetNodes()...)
	}
	return allNodes
}

// bucketIndex determines which k-bucket a node belongs in based on distance:
// the position of the first set bit, counted from the most significant bit.
func (rt *RoutingTable) bucketIndex(distance identity.ID) int {
	if distance.IsZero() {
		return rt.bits - 1 // Default to last bucket if all zeros (shouldn't happen)
	}
	return rt.bits - distance.BitLen()
}
