package http

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

func startManager(t *testing.T) *ConnectionManager {
	t.Helper()
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go cm.Run(ctx)
	return cm
}

func waitForCount(t *testing.T, cm *ConnectionManager, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return cm.Count() == n }, time.Second, 5*time.Millisecond)
}

func TestConnectionManager(t *testing.T) {
	t.Run("create new connection manager", func(t *testing.T) {
		cm := NewConnectionManager()
		assert.NotNil(t, cm.connections)
		assert.NotNil(t, cm.broadcast)
		assert.Zero(t, cm.Count())
	})

	t.Run("register and unregister connection", func(t *testing.T) {
		cm := startManager(t)

		send := make(chan ports.UpdateEvent, 1)
		require.True(t, cm.RegisterConnection(&Connection{ID: "test-conn", Send: send}))
		waitForCount(t, cm, 1)

		cm.Unregister("test-conn")
		waitForCount(t, cm, 0)

		_, open := <-send
		assert.False(t, open, "send channel should be closed on unregister")
	})

	t.Run("broadcast to connections", func(t *testing.T) {
		cm := startManager(t)

		receivers := make([]chan ports.UpdateEvent, 3)
		for i := range receivers {
			receivers[i] = make(chan ports.UpdateEvent, 1)
			cm.RegisterConnection(&Connection{ID: fmt.Sprintf("c%d", i), Send: receivers[i]})
		}
		waitForCount(t, cm, 3)

		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeNavigation, Timestamp: time.Now()})

		for i, receiver := range receivers {
			select {
			case received := <-receiver:
				assert.Equal(t, ports.EventTypeNavigation, received.Type)
			case <-time.After(time.Second):
				t.Errorf("connection %d did not receive event", i)
			}
		}
	})

	t.Run("skips the source connection", func(t *testing.T) {
		cm := startManager(t)

		sender := make(chan ports.UpdateEvent, 1)
		follower := make(chan ports.UpdateEvent, 1)
		cm.RegisterConnection(&Connection{ID: "sender", Send: sender})
		cm.RegisterConnection(&Connection{ID: "follower", Send: follower})
		waitForCount(t, cm, 2)

		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeNavigation, Source: "sender"})

		select {
		case ev := <-follower:
			assert.Equal(t, "sender", ev.Source)
		case <-time.After(time.Second):
			t.Fatal("follower did not receive event")
		}
		assert.Empty(t, sender)
	})

	t.Run("drops slow connections", func(t *testing.T) {
		cm := startManager(t)

		slow := make(chan ports.UpdateEvent) // unbuffered and never read
		cm.RegisterConnection(&Connection{ID: "slow", Send: slow})
		waitForCount(t, cm, 1)

		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeNavigation})
		waitForCount(t, cm, 0)
	})

	t.Run("close all connections", func(t *testing.T) {
		cm := startManager(t)

		for i := 0; i < 5; i++ {
			cm.RegisterConnection(&Connection{ID: fmt.Sprintf("c%d", i), Send: make(chan ports.UpdateEvent, 1)})
		}
		waitForCount(t, cm, 5)

		cm.CloseAll()
		assert.Zero(t, cm.Count())
	})

	t.Run("concurrent operations", func(t *testing.T) {
		cm := startManager(t)

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func(id int) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					connID := fmt.Sprintf("%d-%d", id, j)
					cm.RegisterConnection(&Connection{ID: connID, Send: make(chan ports.UpdateEvent, 1)})
					cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeNavigation, Timestamp: time.Now()})
					cm.Unregister(connID)
				}
			}(i)
		}
		wg.Wait()

		waitForCount(t, cm, 0)
	})
}

func TestConnectionManagerShutdown(t *testing.T) {
	cm := NewConnectionManager()
	ctx, cancel := context.WithCancel(context.Background())
	go cm.Run(ctx)

	cm.RegisterConnection(&Connection{ID: "test", Send: make(chan ports.UpdateEvent, 1)})
	waitForCount(t, cm, 1)

	cancel()
	waitForCount(t, cm, 0)

	done := make(chan struct{})
	go func() {
		cm.Broadcast(ports.UpdateEvent{Type: ports.EventTypeNavigation})
		cm.Unregister("test")
		assert.False(t, cm.RegisterConnection(&Connection{ID: "late", Send: make(chan ports.UpdateEvent, 1)}))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Error("manager calls hung after shutdown")
	}
}

func TestConnectionManagerSendTo(t *testing.T) {
	cm := startManager(t)

	target := make(chan ports.UpdateEvent, 1)
	other := make(chan ports.UpdateEvent, 1)
	cm.RegisterConnection(&Connection{ID: "target", Send: target})
	cm.RegisterConnection(&Connection{ID: "other", Send: other})
	waitForCount(t, cm, 2)

	cm.SendTo("target", ports.UpdateEvent{Type: ports.EventTypeError})
	cm.SendTo("missing", ports.UpdateEvent{Type: ports.EventTypeError})

	select {
	case ev := <-target:
		assert.Equal(t, ports.EventTypeError, ev.Type)
	case <-time.After(time.Second):
		t.Fatal("target did not receive event")
	}
	assert.Empty(t, other)
}
