package handlers

import (
	"errors"
	"sync"
	"testing"
	"time"

	"mdp-backend/models"

	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	mu      sync.Mutex
	written []models.WebSocketMessage
	fail    bool
	closed  bool
}

func (f *fakeConn) WriteJSON(v interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("broken pipe")
	}
	f.written = append(f.written, v.(models.WebSocketMessage))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.written)
}

func TestTargetClientType(t *testing.T) {
	assert.Equal(t, ClientTypeRobot, targetClientType(models.MessageTypeCommands))
	for _, msgType := range []string{
		models.MessageTypePlanUpdate,
		models.MessageTypePosition,
		models.MessageTypeSimulation,
		models.MessageTypeStatus,
		models.MessageTypeSystemInfo,
	} {
		assert.Equal(t, ClientTypeWeb, targetClientType(msgType), msgType)
	}
	assert.Empty(t, targetClientType("chat"))
}

func TestClientManager_BroadcastRouting(t *testing.T) {
	manager := NewClientManager()
	robot := &fakeConn{}
	web := &fakeConn{}
	manager.clients[robot] = &Client{Conn: robot, ClientType: ClientTypeRobot}
	manager.clients[web] = &Client{Conn: web, ClientType: ClientTypeWeb}

	manager.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypeCommands})
	manager.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypePosition})
	manager.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypePlanUpdate})
	manager.handleBroadcast(models.WebSocketMessage{Type: "unknown"})

	assert.Equal(t, 1, robot.count())
	assert.Equal(t, 2, web.count())
	assert.Equal(t, map[string]int{ClientTypeRobot: 1, ClientTypeWeb: 1}, manager.GetClientCount())
}

func TestClientManager_RemovesFailedClient(t *testing.T) {
	manager := NewClientManager()
	broken := &fakeConn{fail: true}
	healthy := &fakeConn{}
	manager.clients[broken] = &Client{Conn: broken, ClientType: ClientTypeWeb}
	manager.clients[healthy] = &Client{Conn: healthy, ClientType: ClientTypeWeb}

	manager.handleBroadcast(models.WebSocketMessage{Type: models.MessageTypeSimulation})

	assert.True(t, broken.closed)
	assert.False(t, healthy.closed)
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, map[string]int{ClientTypeRobot: 0, ClientTypeWeb: 1}, manager.GetClientCount())
}

func TestClientManager_Start(t *testing.T) {
	manager := NewClientManager()
	go manager.Start()

	robot := &fakeConn{}
	manager.register <- &Client{Conn: robot, ClientType: ClientTypeRobot}
	manager.BroadcastMessage(models.WebSocketMessage{Type: models.MessageTypeCommands})

	assert.Eventually(t, func() bool { return robot.count() == 1 }, time.Second, 5*time.Millisecond)

	manager.unregister <- robot
	assert.Eventually(t, func() bool {
		return manager.GetClientCount()[ClientTypeRobot] == 0
	}, time.Second, 5*time.Millisecond)
}
