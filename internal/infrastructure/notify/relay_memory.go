package notify

import (
	"context"
	"sync"

	"github.com/hostly/ordercore/internal/domain/order"
	"go.uber.org/zap"
)

// MemoryNetwork connects MemoryRelays living in one process. A single-instance
// deployment uses it as a loopback.
type MemoryNetwork struct {
	mu     sync.RWMutex
	relays map[*MemoryRelay]struct{}
}

func NewMemoryNetwork() *MemoryNetwork {
	return &MemoryNetwork{relays: make(map[*MemoryRelay]struct{})}
}

// Join returns a relay for the instance with the given id
func (n *MemoryNetwork) Join(instance string, logger *zap.Logger) *MemoryRelay {
	r := &MemoryRelay{network: n, instance: instance, logger: logger}
	n.mu.Lock()
	n.relays[r] = struct{}{}
	n.mu.Unlock()
	return r
}

func (n *MemoryNetwork) leave(r *MemoryRelay) {
	n.mu.Lock()
	delete(n.relays, r)
	n.mu.Unlock()
}

// MemoryRelay is a Relay over a MemoryNetwork. Payloads go through the same
// encoding as the networked relays.
type MemoryRelay struct {
	network  *MemoryNetwork
	instance string
	logger   *zap.Logger

	mu sync.RWMutex
	fn func(order.ChangeEvent)
}

func (r *MemoryRelay) Publish(_ context.Context, event order.ChangeEvent) error {
	data, err := encodeRelayed(event)
	if err != nil {
		return err
	}
	r.network.mu.RLock()
	defer r.network.mu.RUnlock()
	for peer := range r.network.relays {
		peer.receive(data)
	}
	return nil
}

func (r *MemoryRelay) Listen(_ context.Context, fn func(order.ChangeEvent)) error {
	r.mu.Lock()
	r.fn = fn
	r.mu.Unlock()
	return nil
}

func (r *MemoryRelay) receive(data []byte) {
	r.mu.RLock()
	fn := r.fn
	r.mu.RUnlock()
	if fn == nil {
		return
	}
	if event, ok := decodeRelayed(data, r.instance, r.logger); ok {
		fn(event)
	}
}

func (r *MemoryRelay) Close() error {
	r.network.leave(r)
	return nil
}
