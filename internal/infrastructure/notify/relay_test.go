package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/domain/order"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var relaySubscriber = SubscriberContext{SessionID: "relay", Role: access.RoleAdmin}

// relayPair connects two buses through relays and returns a sink on each bus
func relayPair(t *testing.T, relayA, relayB Relay, busA, busB *Bus) (*capturingSink, *capturingSink) {
	t.Helper()
	ctx := context.Background()
	_, err := ConnectRelay(ctx, busA, relayA, relaySubscriber)
	require.NoError(t, err)
	_, err = ConnectRelay(ctx, busB, relayB, relaySubscriber)
	require.NoError(t, err)

	sinkA, sinkB := newCapturingSink("a"), newCapturingSink("b")
	_, err = busA.Subscribe(sinkA, SubscriberContext{Role: access.RoleStaff}, Filter{})
	require.NoError(t, err)
	_, err = busB.Subscribe(sinkB, SubscriberContext{Role: access.RoleStaff}, Filter{})
	require.NoError(t, err)
	return sinkA, sinkB
}

func assertRelayed(t *testing.T, busA *Bus, sinkA, sinkB *capturingSink) {
	t.Helper()
	e := creationEvent(nil)
	busA.Publish(context.Background(), e)

	local := sinkA.next(t)
	assert.False(t, local.Relayed)
	assert.Equal(t, busA.InstanceID(), local.Instance)

	remote := sinkB.next(t)
	assert.True(t, remote.Relayed)
	assert.Equal(t, e.ID, remote.ID)
	assert.Equal(t, busA.InstanceID(), remote.Instance)
	assert.True(t, remote.Snapshot.TotalAmount.Equal(e.Snapshot.TotalAmount))

	sinkA.none(t)
	sinkB.none(t)
}

func TestMemoryRelay(t *testing.T) {
	network := NewMemoryNetwork()
	busA := NewBus(zap.NewNop(), WithInstanceID("a"))
	busB := NewBus(zap.NewNop(), WithInstanceID("b"))
	defer closeBus(t, busA)
	defer closeBus(t, busB)

	relayA := network.Join("a", zap.NewNop())
	relayB := network.Join("b", zap.NewNop())
	sinkA, sinkB := relayPair(t, relayA, relayB, busA, busB)

	assertRelayed(t, busA, sinkA, sinkB)

	require.NoError(t, relayB.Close())
	busA.Publish(context.Background(), creationEvent(nil))
	sinkA.next(t)
	sinkB.none(t)
}

func TestDecodeRelayed(t *testing.T) {
	e := creationEvent(nil)
	e.Instance = "a"
	data, err := encodeRelayed(e)
	require.NoError(t, err)

	_, ok := decodeRelayed(data, "a", zap.NewNop())
	assert.False(t, ok, "own events are dropped")

	got, ok := decodeRelayed(data, "b", zap.NewNop())
	require.True(t, ok)
	assert.True(t, got.Relayed)
	assert.Nil(t, got.PreviousStatus)

	_, ok = decodeRelayed([]byte("{"), "b", zap.NewNop())
	assert.False(t, ok)
}

func TestBroadcastSink_OnlyLocalEvents(t *testing.T) {
	network := NewMemoryNetwork()
	var seen []order.ChangeEvent
	peer := network.Join("peer", zap.NewNop())
	require.NoError(t, peer.Listen(context.Background(), func(e order.ChangeEvent) { seen = append(seen, e) }))

	sink := NewBroadcastSink(network.Join("local", zap.NewNop()), "local")

	local := creationEvent(nil)
	local.Instance = "local"
	relayed := local
	relayed.Relayed = true
	foreign := local
	foreign.Instance = "other"

	for _, e := range []order.ChangeEvent{local, relayed, foreign} {
		require.NoError(t, sink.Deliver(context.Background(), e, SubscriberContext{}))
	}
	require.Len(t, seen, 1)
	assert.Equal(t, local.ID, seen[0].ID)
}

func TestRedisRelay(t *testing.T) {
	addr := os.Getenv("ORDERCORE_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("ORDERCORE_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	channel := "ordercore.test." + time.Now().Format("150405.000000")
	busA := NewBus(zap.NewNop(), WithInstanceID("a"))
	busB := NewBus(zap.NewNop(), WithInstanceID("b"))
	defer closeBus(t, busA)
	defer closeBus(t, busB)

	relayA := NewRedisRelay(client, channel, "a", zap.NewNop())
	relayB := NewRedisRelay(client, channel, "b", zap.NewNop())
	defer relayA.Close()
	defer relayB.Close()

	sinkA, sinkB := relayPair(t, relayA, relayB, busA, busB)
	assertRelayed(t, busA, sinkA, sinkB)
}

func TestNATSRelay(t *testing.T) {
	url := os.Getenv("ORDERCORE_TEST_NATS_URL")
	if url == "" {
		t.Skip("ORDERCORE_TEST_NATS_URL not set")
	}
	conn, err := nats.Connect(url)
	require.NoError(t, err)
	defer conn.Close()

	subject := "ordercore.test." + time.Now().Format("150405000000")
	busA := NewBus(zap.NewNop(), WithInstanceID("a"))
	busB := NewBus(zap.NewNop(), WithInstanceID("b"))
	defer closeBus(t, busA)
	defer closeBus(t, busB)

	relayA := NewNATSRelay(conn, subject, "a", zap.NewNop())
	relayB := NewNATSRelay(conn, subject, "b", zap.NewNop())
	defer relayA.Close()
	defer relayB.Close()

	sinkA, sinkB := relayPair(t, relayA, relayB, busA, busB)
	assertRelayed(t, busA, sinkA, sinkB)
}
