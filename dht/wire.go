package dht

import (
	"errors"
	"sync"

	"github.com/opd-ai/kadtopo/identity"
	"github.com/sirupsen/logrus"
)

// ErrDrainLimit is reported when a single drain hits its message bound.
var ErrDrainLimit = errors.New("drain limit reached")

// PacketType identifies a simulated DHT message.
type PacketType uint8

const (
	// PacketGetNodes asks the recipient for the nodes it knows closest to Target
	PacketGetNodes PacketType = iota + 1
	// PacketSendNodes answers a get_nodes request
	PacketSendNodes
)

// String returns the packet type name.
func (t PacketType) String() string {
	switch t {
	case PacketGetNodes:
		return "get_nodes"
	case PacketSendNodes:
		return "send_nodes"
	default:
		return "unknown"
	}
}

// Packet is one message in flight on the simulated wire.
type Packet struct {
	Type   PacketType
	Sender *Node
	To     identity.ID
	Target identity.ID
	Nodes  []*Node
}

// WireStats counts messages handled by a wire.
type WireStats struct {
	Sent      uint64
	Delivered uint64
	Dropped   uint64
	GetNodes  uint64
	SendNodes uint64
}

// Wire is an in-process FIFO message substrate shared by all simulated nodes.
// Sending never delivers immediately; Process drains the queue.
type Wire struct {
	queue       []*Packet
	protocols   map[string]*Protocol
	maxPerDrain int
	stats       WireStats
	mu          sync.Mutex
}

// NewWire creates a wire. maxPerDrain bounds a single Process call; 0 means unbounded.
func NewWire(maxPerDrain int) *Wire {
	return &Wire{
		queue:       make([]*Packet, 0),
		protocols:   make(map[string]*Protocol),
		maxPerDrain: maxPerDrain,
	}
}

// Register attaches a protocol so packets addressed to its ID reach it.
func (w *Wire) Register(p *Protocol) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.protocols[p.Self().Key()] = p
}

// Send enqueues a packet for delivery during the next drain.
func (w *Wire) Send(packet *Packet) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.queue = append(w.queue, packet)
	w.stats.Sent++
	switch packet.Type {
	case PacketGetNodes:
		w.stats.GetNodes++
	case PacketSendNodes:
		w.stats.SendNodes++
	}
}

// Pending returns the number of queued packets.
func (w *Wire) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.queue)
}

// Stats returns a snapshot of the wire counters.
func (w *Wire) Stats() WireStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Process delivers queued packets in FIFO order, including packets queued by
// handlers during the drain, until the queue is empty. It returns the number
// of packets delivered. When the drain bound is hit the remaining packets are
// dropped so the simulation can continue.
func (w *Wire) Process() int {
	delivered := 0

	for {
		packet, recipient, ok := w.next()
		if !ok {
			break
		}

		if w.maxPerDrain > 0 && delivered >= w.maxPerDrain {
			dropped := w.dropAll() + 1
			logrus.WithFields(logrus.Fields{
				"function":  "Wire.Process",
				"delivered": delivered,
				"dropped":   dropped,
				"error":     ErrDrainLimit.Error(),
			}).Warn("Drain bound reached, dropping queued packets")
			break
		}

		if recipient == nil {
			w.countDropped()
			logrus.WithFields(logrus.Fields{
				"function": "Wire.Process",
				"type":     packet.Type.String(),
				"to":       packet.To.String(),
			}).Debug("Dropping packet for unknown recipient")
			continue
		}

		if err := recipient.HandlePacket(packet); err != nil {
			logrus.WithFields(logrus.Fields{
				"function": "Wire.Process",
				"type":     packet.Type.String(),
				"to":       packet.To.String(),
				"error":    err.Error(),
			}).Debug("Packet handler failed")
		}
		delivered++
		w.countDelivered()
	}

	return delivered
}

func (w *Wire) next() (*Packet, *Protocol, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.queue) == 0 {
		return nil, nil, false
	}
	packet := w.queue[0]
	w.queue[0] = nil
	w.queue = w.queue[1:]
	return packet, w.protocols[packet.To.Key()], true
}

func (w *Wire) dropAll() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(w.queue)
	w.queue = w.queue[:0]
	w.stats.Dropped += uint64(n) + 1
	return n
}

func (w *Wire) countDelivered() {
	w.mu.Lock()
	w.stats.Delivered++
	w.mu.Unlock()
}

func (w *Wire) countDropped() {
	w.mu.Lock()
	w.stats.Dropped++
	w.mu.Unlock()
}
