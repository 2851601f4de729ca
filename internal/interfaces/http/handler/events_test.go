package handler_test

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/infrastructure/notify"
	"github.com/hostly/ordercore/internal/interfaces/http/dto"
	"github.com/hostly/ordercore/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sseEvent struct {
	name string
	data string
}

// openStream connects to the live stream and returns its events on a channel
func openStream(t *testing.T, srv *httptest.Server, token string) (<-chan sseEvent, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events/stream", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), "text/event-stream"), resp.Header.Get("Content-Type"))

	events := make(chan sseEvent, 32)
	go func() {
		defer resp.Body.Close()
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		var current sseEvent
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				current.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				current.data = strings.TrimPrefix(line, "data:")
			case line == "":
				if current.name != "" {
					events <- current
				}
				current = sseEvent{}
			}
		}
	}()
	return events, cancel
}

func nextEvent(t *testing.T, events <-chan sseEvent) sseEvent {
	t.Helper()
	select {
	case e, ok := <-events:
		require.True(t, ok, "stream closed")
		return e
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for stream event")
		return sseEvent{}
	}
}

// collect reads events until every wanted name was seen
func collect(t *testing.T, events <-chan sseEvent, want ...string) map[string]sseEvent {
	t.Helper()
	seen := make(map[string]sseEvent)
	for len(seen) < len(want) {
		e := nextEvent(t, events)
		for _, w := range want {
			if e.name == w {
				seen[w] = e
			}
		}
	}
	return seen
}

func TestEventsAPI_Stream(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.engine)
	t.Cleanup(srv.Close)

	staffToken := api.token(t, staff)
	events, cancel := openStream(t, srv, staffToken)

	first := nextEvent(t, events)
	require.Equal(t, "session", first.name)
	var session dto.SessionResponse
	require.NoError(t, json.Unmarshal([]byte(first.data), &session))
	require.NotEmpty(t, session.ID)
	assert.Equal(t, "unknown", session.PushPermission)
	require.Eventually(t, func() bool { return api.hub.Len() == 1 }, time.Second, 10*time.Millisecond)

	created := api.placeOrder(t, "card", api.houseDish)

	got := collect(t, events, string(notify.MessageOrderChanged), string(notify.MessageAlert), string(notify.MessagePushPermissionAsk))
	var msg notify.Message
	require.NoError(t, json.Unmarshal([]byte(got[string(notify.MessageOrderChanged)].data), &msg))
	require.NotNil(t, msg.Event)
	assert.Equal(t, created.ID, msg.Event.OrderID.String())
	assert.Equal(t, "pending", string(msg.Event.NewStatus))

	require.NoError(t, json.Unmarshal([]byte(got[string(notify.MessageAlert)].data), &msg))
	assert.Equal(t, notify.CueNewOrder, msg.Cue)

	t.Run("mute and push permission", func(t *testing.T) {
		status, resp := api.do(t, http.MethodPost, "/api/v1/events/sessions/"+session.ID+"/mute", staffToken, dto.MuteRequest{Muted: true})
		require.Equal(t, http.StatusOK, status)
		assert.True(t, decodeData[dto.SessionResponse](t, resp).Muted)

		status, resp = api.do(t, http.MethodPost, "/api/v1/events/sessions/"+session.ID+"/push-permission", staffToken, dto.PushPermissionRequest{Granted: true})
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, "granted", decodeData[dto.SessionResponse](t, resp).PushPermission)
	})

	t.Run("sessions of other users are not found", func(t *testing.T) {
		other := access.Principal{UserID: "staff-2", Role: access.RoleStaff}
		status, resp := api.do(t, http.MethodPost, "/api/v1/events/sessions/"+session.ID+"/mute", api.token(t, other), dto.MuteRequest{Muted: false})
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, dto.ErrCodeNotFound, resp.Error.Code)
	})

	t.Run("own transitions are not echoed to the origin session", func(t *testing.T) {
		status, _ := api.do(t, http.MethodPatch, "/api/v1/orders/"+created.ID+"/status", staffToken,
			dto.TransitionRequest{Status: "confirmed"}, "X-Session-ID", session.ID)
		require.Equal(t, http.StatusOK, status)

		// a second order proves the stream is still flowing; the first
		// order.changed seen afterwards must be for it
		second := api.placeOrder(t, "card", api.houseDish)
		for {
			e := nextEvent(t, events)
			if e.name != string(notify.MessageOrderChanged) {
				continue
			}
			var m notify.Message
			require.NoError(t, json.Unmarshal([]byte(e.data), &m))
			assert.Equal(t, second.ID, m.Event.OrderID.String())
			break
		}
	})

	cancel()
	require.Eventually(t, func() bool { return api.hub.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestEventsAPI_PartnerStreamIsScoped(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.engine)
	t.Cleanup(srv.Close)

	events, cancel := openStream(t, srv, api.token(t, rival))
	defer cancel()
	require.Equal(t, "session", nextEvent(t, events).name)

	api.placeOrder(t, "card", api.partnerDish)
	mine := api.placeOrder(t, "card", api.seedDish(t, &rival.TenantID, "Ramen", "9"))

	for {
		e := nextEvent(t, events)
		if e.name != string(notify.MessageOrderChanged) {
			continue
		}
		var m notify.Message
		require.NoError(t, json.Unmarshal([]byte(e.data), &m))
		assert.Equal(t, mine.ID, m.Event.OrderID.String(), "tenant-1 order leaked to tenant-2")
		break
	}
}

func TestEventsAPI_StreamRequiresOrdersRead(t *testing.T) {
	api := newTestAPI(t)
	srv := httptest.NewServer(api.engine)
	defer srv.Close()

	disabled := false
	status, _ := api.do(t, http.MethodPut, "/api/v1/users/"+staff.UserID+"/overrides", api.token(t, admin),
		dto.OverrideRequest{Module: "orders", Enabled: &disabled})
	require.Equal(t, http.StatusNoContent, status)

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/events/stream", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+api.token(t, staff))
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, 0, api.hub.Len())
}
