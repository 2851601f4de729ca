package notify

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/order"
	"go.uber.org/zap"
)

// PushPermission is the browser notification permission state of a session
type PushPermission int32

const (
	PushUnknown PushPermission = iota
	PushRequested
	PushGranted
	PushDenied
)

func (p PushPermission) String() string {
	switch p {
	case PushRequested:
		return "requested"
	case PushGranted:
		return "granted"
	case PushDenied:
		return "denied"
	default:
		return "unknown"
	}
}

// MessageKind names what a stream message carries
type MessageKind string

const (
	MessageOrderChanged      MessageKind = "order.changed"
	MessageAlert             MessageKind = "alert"
	MessagePushPermissionAsk MessageKind = "push.permission_request"
	MessagePush              MessageKind = "push"
)

// Message is one item written to a session's live stream
type Message struct {
	Kind  MessageKind        `json:"kind"`
	Event *order.ChangeEvent `json:"event,omitempty"`
	Cue   string             `json:"cue,omitempty"`
	Title string             `json:"title,omitempty"`
	Body  string             `json:"body,omitempty"`
}

var (
	errSessionClosed  = errors.New("session closed")
	errSessionBacklog = errors.New("session stream backlog full")
)

// Session is one attached client (a browser tab or a kitchen display)
type Session struct {
	id        string
	principal access.Principal
	out       chan Message
	muted     atomic.Bool
	push      atomic.Int32
	subs      []*Subscription
	closeOnce sync.Once
	closed    chan struct{}
}

func newSession(p access.Principal, buffer int) *Session {
	return &Session{
		id:        uuid.NewString(),
		principal: p,
		out:       make(chan Message, buffer),
		closed:    make(chan struct{}),
	}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) Principal() access.Principal { return s.principal }

// Messages is the outbound stream for the client
func (s *Session) Messages() <-chan Message { return s.out }

// Closed is closed once the session is detached
func (s *Session) Closed() <-chan struct{} { return s.closed }

func (s *Session) Muted() bool         { return s.muted.Load() }
func (s *Session) SetMuted(muted bool) { s.muted.Store(muted) }

func (s *Session) PushPermission() PushPermission {
	return PushPermission(s.push.Load())
}

// SetPushPermission records the client's answer to the permission prompt
func (s *Session) SetPushPermission(granted bool) {
	if granted {
		s.push.Store(int32(PushGranted))
		return
	}
	s.push.Store(int32(PushDenied))
}

// requestPush moves the session from unknown to requested. It reports true
// only for the caller that made the move.
func (s *Session) requestPush() bool {
	return s.push.CompareAndSwap(int32(PushUnknown), int32(PushRequested))
}

func (s *Session) send(msg Message) error {
	select {
	case <-s.closed:
		return errSessionClosed
	default:
	}
	select {
	case s.out <- msg:
		return nil
	default:
		return errSessionBacklog
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() { close(s.closed) })
}

type registration struct {
	sink   Sink
	filter Filter
}

// Hub owns attached sessions and their bus subscriptions
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	bus      *Bus
	buffer   int
	logger   *zap.Logger

	feed  Sink
	alert Sink
	push  Sink
}

// NewHub creates a hub registering session sinks on bus
func NewHub(bus *Bus, buffer int, logger *zap.Logger) *Hub {
	if buffer <= 0 {
		buffer = 64
	}
	h := &Hub{
		sessions: make(map[string]*Session),
		bus:      bus,
		buffer:   buffer,
		logger:   logger,
	}
	h.feed = NewSessionFeedSink(h)
	h.alert = NewAlertSink(h)
	h.push = NewPushSink(h)
	return h
}

// Attach opens a session for p and subscribes its feed, alert and push
// sinks. Alerts are only wired for front-of-house roles.
func (h *Hub) Attach(p access.Principal) (*Session, error) {
	s := newSession(p, h.buffer)
	sub := SubscriberContext{SessionID: s.id, UserID: p.UserID, Role: p.Role, TenantID: p.TenantID}

	h.mu.Lock()
	h.sessions[s.id] = s
	h.mu.Unlock()

	regs := []registration{{h.feed, Filter{}}, {h.push, Filter{}}}
	if p.Role.IsFrontOfHouse() {
		regs = append(regs, registration{h.alert, Filter{Roles: []access.Role{access.RoleStaff, access.RoleAdmin}}})
	}
	for _, r := range regs {
		subscription, err := h.bus.Subscribe(r.sink, sub, r.filter)
		if err != nil {
			h.Detach(s.id)
			return nil, err
		}
		s.subs = append(s.subs, subscription)
	}

	h.logger.Info("Session attached",
		zap.String("session_id", s.id),
		zap.String("role", string(p.Role)),
		zap.String("tenant_id", p.TenantID))
	return s, nil
}

// Detach unsubscribes and closes the session
func (h *Hub) Detach(id string) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if !ok {
		return
	}
	for _, sub := range s.subs {
		h.bus.Unsubscribe(sub)
	}
	s.close()
	h.logger.Info("Session detached", zap.String("session_id", id))
}

// Close detaches every session, ending their streams
func (h *Hub) Close() {
	h.mu.RLock()
	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	h.mu.RUnlock()
	for _, id := range ids {
		h.Detach(id)
	}
}

// Get returns an attached session
func (h *Hub) Get(id string) (*Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[id]
	return s, ok
}

// Len returns the number of attached sessions
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}
