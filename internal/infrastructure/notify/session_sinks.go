package notify

import (
	"context"
	"fmt"

	"github.com/hostly/ordercore/internal/domain/order"
)

// Alert cues, one per alerting event type
const (
	CueNewOrder         = "new_order"
	CueReadyForDelivery = "ready_for_delivery"
)

// AlertCue returns the audio cue for event, if it should alert at all
func AlertCue(event order.ChangeEvent) (string, bool) {
	if event.IsCreation() {
		return CueNewOrder, true
	}
	if event.NewStatus == order.StatusReadyForDelivery {
		return CueReadyForDelivery, true
	}
	return "", false
}

type sessionLookup interface {
	Get(id string) (*Session, bool)
}

// SessionFeedSink keeps every other open session of a deployment in sync
// with committed changes. The session that requested a change gets no echo.
type SessionFeedSink struct {
	sessions sessionLookup
}

func NewSessionFeedSink(sessions sessionLookup) *SessionFeedSink {
	return &SessionFeedSink{sessions: sessions}
}

func (s *SessionFeedSink) Name() string { return "session_feed" }

func (s *SessionFeedSink) Deliver(_ context.Context, event order.ChangeEvent, sub SubscriberContext) error {
	if event.OriginSession != "" && event.OriginSession == sub.SessionID {
		return nil
	}
	session, ok := s.sessions.Get(sub.SessionID)
	if !ok {
		return nil
	}
	return session.send(Message{Kind: MessageOrderChanged, Event: &event})
}

// AlertSink raises the in-app visual and audio alert
type AlertSink struct {
	sessions sessionLookup
}

func NewAlertSink(sessions sessionLookup) *AlertSink {
	return &AlertSink{sessions: sessions}
}

func (s *AlertSink) Name() string { return "alert" }

func (s *AlertSink) Deliver(_ context.Context, event order.ChangeEvent, sub SubscriberContext) error {
	cue, ok := AlertCue(event)
	if !ok {
		return nil
	}
	session, ok := s.sessions.Get(sub.SessionID)
	if !ok || session.Muted() {
		return nil
	}
	return session.send(Message{Kind: MessageAlert, Cue: cue, Event: &event})
}

// PushSink shows OS notifications. Permission is asked for once per session
// and a denial is final for that session.
type PushSink struct {
	sessions sessionLookup
}

func NewPushSink(sessions sessionLookup) *PushSink {
	return &PushSink{sessions: sessions}
}

func (s *PushSink) Name() string { return "push" }

func (s *PushSink) Deliver(_ context.Context, event order.ChangeEvent, sub SubscriberContext) error {
	cue, ok := AlertCue(event)
	if !ok {
		return nil
	}
	session, ok := s.sessions.Get(sub.SessionID)
	if !ok {
		return nil
	}
	switch session.PushPermission() {
	case PushUnknown:
		if session.requestPush() {
			return session.send(Message{Kind: MessagePushPermissionAsk})
		}
		return nil
	case PushGranted:
		return session.send(Message{
			Kind:  MessagePush,
			Cue:   cue,
			Title: pushTitle(cue),
			Body:  fmt.Sprintf("%s: %s", event.Snapshot.LocationID, event.Snapshot.ItemSummary),
		})
	default:
		return nil
	}
}

func pushTitle(cue string) string {
	if cue == CueNewOrder {
		return "New order"
	}
	return "Order ready for delivery"
}
