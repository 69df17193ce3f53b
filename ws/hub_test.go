package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID string) *Client {
	return &Client{UserID: userID, Send: make(chan []byte, 4)}
}

func TestPushToUser(t *testing.T) {
	hub := NewHub()
	c := newTestClient("u1")
	hub.Register(c)

	hub.PushToUser("u1", "notification", map[string]string{"title": "hi"})

	var env Envelope
	require.NoError(t, json.Unmarshal(<-c.Send, &env))
	assert.Equal(t, "notification", env.Event)

	// 不在线的用户静默丢弃
	hub.PushToUser("nobody", "notification", nil)
	assert.Equal(t, 1, hub.ClientCount())
}

func TestBroadcastReachesAllClients(t *testing.T) {
	hub := NewHub()
	a := newTestClient("a")
	b := newTestClient("b")
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast("item:created", map[string]string{"id": "x"})

	for _, c := range []*Client{a, b} {
		var env Envelope
		require.NoError(t, json.Unmarshal(<-c.Send, &env))
		assert.Equal(t, "item:created", env.Event)
	}
}

func TestReconnectReplacesOldClient(t *testing.T) {
	hub := NewHub()
	old := newTestClient("u1")
	hub.Register(old)

	fresh := newTestClient("u1")
	hub.Register(fresh)

	// 旧连接的 Send 被关掉
	_, open := <-old.Send
	assert.False(t, open)
	assert.Equal(t, 1, hub.ClientCount())

	hub.PushToUser("u1", "ping", nil)
	assert.Len(t, fresh.Send, 1)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()
	c := &Client{UserID: "slow", Send: make(chan []byte)} // 无缓冲，必然写不进去
	hub.Register(c)

	hub.PushToUser("slow", "ping", nil)
	assert.Equal(t, 0, hub.ClientCount())
}

func TestUnregisterOnlyRemovesSameClient(t *testing.T) {
	hub := NewHub()
	old := newTestClient("u1")
	hub.Register(old)
	fresh := newTestClient("u1")
	hub.Register(fresh)

	// 旧连接晚到的 Unregister 不能把新连接顶掉
	hub.Unregister(old)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(fresh)
	assert.Equal(t, 0, hub.ClientCount())
}
