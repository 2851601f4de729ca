package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/infrastructure/notify"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// EventsHandler streams order changes to attached staff and partner clients
// over server-sent events.
type EventsHandler struct {
	BaseHandler
	hub       *notify.Hub
	heartbeat time.Duration
}

// NewEventsHandler creates an events handler
func NewEventsHandler(hub *notify.Hub, heartbeat time.Duration) *EventsHandler {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &EventsHandler{hub: hub, heartbeat: heartbeat}
}

// Stream attaches a session and writes its messages until the client leaves.
// The first event names the session id clients send back as X-Session-ID.
// The route requires orders:read, the same grant as listing orders.
// GET /api/v1/events/stream
func (h *EventsHandler) Stream(c *gin.Context) {
	p, ok := h.principal(c)
	if !ok {
		return
	}
	session, err := h.hub.Attach(p)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	defer h.hub.Detach(session.ID())

	ctx := logger.WithSessionID(c.Request.Context(), session.ID())
	log := logger.L(ctx)
	log.Info("Live stream attached")

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	c.SSEvent("session", sessionResponse(session))
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Live stream closed by client")
			return
		case <-session.Closed():
			return
		case msg := <-session.Messages():
			c.SSEvent(string(msg.Kind), msg)
			c.Writer.Flush()
		case now := <-ticker.C:
			c.SSEvent("heartbeat", now.UTC().Format(time.RFC3339))
			c.Writer.Flush()
		}
	}
}

// SetMuted toggles the audible alert of one of the caller's sessions
// POST /api/v1/events/sessions/:id/mute
func (h *EventsHandler) SetMuted(c *gin.Context) {
	session, ok := h.ownSession(c)
	if !ok {
		return
	}
	var req dto.MuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	session.SetMuted(req.Muted)
	h.Success(c, sessionResponse(session))
}

// SetPushPermission records the answer to the push permission prompt
// POST /api/v1/events/sessions/:id/push-permission
func (h *EventsHandler) SetPushPermission(c *gin.Context) {
	session, ok := h.ownSession(c)
	if !ok {
		return
	}
	var req dto.PushPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}
	session.SetPushPermission(req.Granted)
	logger.L(c.Request.Context()).Debug("Push permission recorded",
		zap.String("session_id", session.ID()),
		zap.Bool("granted", req.Granted))
	h.Success(c, sessionResponse(session))
}

// ownSession resolves :id to a session of the calling user. Sessions of
// other users are reported as not found.
func (h *EventsHandler) ownSession(c *gin.Context) (*notify.Session, bool) {
	p, ok := h.principal(c)
	if !ok {
		return nil, false
	}
	session, found := h.hub.Get(c.Param("id"))
	if !found || session.Principal().UserID != p.UserID {
		h.NotFound(c, "Session not found")
		return nil, false
	}
	return session, true
}

func sessionResponse(s *notify.Session) dto.SessionResponse {
	return dto.SessionResponse{
		ID:             s.ID(),
		Muted:          s.Muted(),
		PushPermission: s.PushPermission().String(),
	}
}
