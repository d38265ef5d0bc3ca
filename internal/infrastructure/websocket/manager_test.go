package websocket

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManagerTracksClientsPerUser(t *testing.T) {
	m := NewManager()
	a := NewClient("u1", nil)
	b := NewClient("u1", nil)
	c := NewClient("u2", nil)

	m.add(a)
	m.add(b)
	m.add(c)
	assert.Equal(t, 3, m.Count())

	assert.Equal(t, 2, m.SendToUser("u1", []byte(`{"type":"pong"}`)))
	assert.Equal(t, 0, m.SendToUser("nobody", []byte(`{}`)))
	assert.Len(t, a.send, 1)

	m.Rekey(b, "u2")
	assert.Equal(t, "u2", b.UserID)
	assert.Equal(t, 2, m.SendToUser("u2", []byte(`{}`)))

	m.remove(a)
	m.remove(a)
	assert.Equal(t, 2, m.Count())
}

func TestManagerJoinLeaveAfterStop(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	m.Start(ctx)

	a := NewClient("u1", nil)
	m.Join(a)
	assert.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)

	m.Leave(a)
	assert.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	b := NewClient("u2", nil)
	m.Join(b)
	m.Leave(b)

	select {
	case <-b.Done():
	case <-time.After(time.Second):
		t.Fatal("client joined after shutdown was not closed")
	}
}
