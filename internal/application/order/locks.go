package order

import (
	"encoding/binary"
	"sync"

	"github.com/google/uuid"
)

const lockStripes = 64

// stripedLock serializes commit-and-publish per order so subscribers see an
// order's events in commit order. Orders sharing a stripe also serialize.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) lock(id uuid.UUID) func() {
	m := &l.stripes[binary.BigEndian.Uint32(id[12:])%lockStripes]
	m.Lock()
	return m.Unlock
}
