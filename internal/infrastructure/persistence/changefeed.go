package persistence

import (
	"context"
	"sync"

	"github.com/hostly/ordercore/internal/domain/order"
	"go.uber.org/zap"
)

// ChangeFeed fans committed row changes out to feed subscribers. Sends never
// block the writer; a subscriber that falls behind loses changes.
type ChangeFeed struct {
	mu     sync.Mutex
	subs   map[string]map[chan order.RowChange]struct{}
	buffer int
	logger *zap.Logger
}

// NewChangeFeed creates a feed with the given per-subscriber buffer
func NewChangeFeed(buffer int, logger *zap.Logger) *ChangeFeed {
	if buffer <= 0 {
		buffer = 64
	}
	return &ChangeFeed{
		subs:   make(map[string]map[chan order.RowChange]struct{}),
		buffer: buffer,
		logger: logger,
	}
}

// Subscribe registers a subscriber for table. The channel is closed when ctx ends.
func (f *ChangeFeed) Subscribe(ctx context.Context, table string) <-chan order.RowChange {
	ch := make(chan order.RowChange, f.buffer)

	f.mu.Lock()
	if f.subs[table] == nil {
		f.subs[table] = make(map[chan order.RowChange]struct{})
	}
	f.subs[table][ch] = struct{}{}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		delete(f.subs[table], ch)
		close(ch)
		f.mu.Unlock()
	}()
	return ch
}

// Emit delivers a change to every subscriber of its table
func (f *ChangeFeed) Emit(change order.RowChange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[change.Table] {
		select {
		case ch <- change:
		default:
			f.logger.Warn("Change feed subscriber lagging, dropping change",
				zap.String("table", change.Table),
				zap.String("event_type", string(change.Type)))
		}
	}
}
