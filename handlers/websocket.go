package handlers

import (
	"log"
	"sync"
	"time"

	"mdp-backend/models"

	"github.com/gofiber/websocket/v2"
)

// 클라이언트 종류
const (
	ClientTypeWeb   = "web"
	ClientTypeRobot = "robot"
)

// messageConn - 클라이언트 연결에서 필요한 기능
type messageConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

type Client struct {
	Conn       messageConn
	ClientType string // "robot" 또는 "web"
	Addr       string
}

// 클라이언트 관리자
type ClientManager struct {
	clients    map[messageConn]*Client
	broadcast  chan models.WebSocketMessage
	register   chan *Client
	unregister chan messageConn
	mutex      sync.RWMutex
}

// NewClientManager - 클라이언트 관리자 생성
func NewClientManager() *ClientManager {
	return &ClientManager{
		clients:    make(map[messageConn]*Client),
		broadcast:  make(chan models.WebSocketMessage, 100),
		register:   make(chan *Client),
		unregister: make(chan messageConn),
	}
}

// 전역 클라이언트 관리자
var Manager = NewClientManager()

// 클라이언트 관리 시작
func (manager *ClientManager) Start() {
	for {
		select {
		case client := <-manager.register:
			manager.mutex.Lock()
			manager.clients[client.Conn] = client
			manager.mutex.Unlock()
			log.Printf("클라이언트 등록: %s (%s)", client.ClientType, client.Addr)

		case conn := <-manager.unregister:
			manager.remove(conn)

		case message := <-manager.broadcast:
			manager.handleBroadcast(message)
		}
	}
}

func (manager *ClientManager) remove(conn messageConn) {
	manager.mutex.Lock()
	defer manager.mutex.Unlock()
	if client, ok := manager.clients[conn]; ok {
		delete(manager.clients, conn)
		_ = conn.Close()
		log.Printf("클라이언트 해제: %s (%s)", client.ClientType, client.Addr)
	}
}

// targetClientType - 메시지 타입별 전송 대상
func targetClientType(msgType string) string {
	switch msgType {
	case models.MessageTypeCommands:
		// Server → Robot
		return ClientTypeRobot
	case models.MessageTypePlanUpdate,
		models.MessageTypePosition,
		models.MessageTypeSimulation,
		models.MessageTypeStatus,
		models.MessageTypeSystemInfo:
		// Server/Robot → Web
		return ClientTypeWeb
	}
	return ""
}

func (manager *ClientManager) handleBroadcast(message models.WebSocketMessage) {
	target := targetClientType(message.Type)
	if target == "" {
		log.Printf("알 수 없는 메시지 타입: %s", message.Type)
		return
	}

	var failed []messageConn
	manager.mutex.RLock()
	for conn, client := range manager.clients {
		if client.ClientType != target {
			continue
		}
		if err := conn.WriteJSON(message); err != nil {
			log.Printf("전송 실패 (%s): %v", client.ClientType, err)
			failed = append(failed, conn)
		}
	}
	manager.mutex.RUnlock()

	for _, conn := range failed {
		manager.remove(conn)
	}
}

// 외부에서 호출할 수 있는 브로드캐스트 메서드
func (manager *ClientManager) BroadcastMessage(msg models.WebSocketMessage) {
	manager.broadcast <- msg
}

func (manager *ClientManager) GetClientCount() map[string]int {
	manager.mutex.RLock()
	defer manager.mutex.RUnlock()

	count := map[string]int{
		ClientTypeRobot: 0,
		ClientTypeWeb:   0,
	}

	for _, client := range manager.clients {
		count[client.ClientType]++
	}

	return count
}

// Robot WebSocket Handler - 로봇은 명령 목록을 받고 상태를 보고한다
func HandleRobotWebSocket(c *websocket.Conn) {
	client := &Client{
		Conn:       c,
		ClientType: ClientTypeRobot,
		Addr:       c.RemoteAddr().String(),
	}

	Manager.register <- client

	defer func() {
		Manager.unregister <- c
	}()

	for {
		var msg models.WebSocketMessage
		err := c.ReadJSON(&msg)
		if err != nil {
			log.Printf("로봇 메시지 읽기 오류: %v", err)
			break
		}

		// 타임스탬프 추가
		if msg.Timestamp == 0 {
			msg.Timestamp = time.Now().UnixMilli()
		}

		log.Printf("로봇 메시지: %s - %+v", msg.Type, msg.Data)

		// 상태 보고만 웹으로 중계
		if msg.Type == models.MessageTypeStatus {
			Manager.broadcast <- msg
		}
	}
}

// Web 클라이언트 WebSocket Handler - 계획/재생 메시지 수신 전용
func HandleWebClientWebSocket(c *websocket.Conn) {
	client := &Client{
		Conn:       c,
		ClientType: ClientTypeWeb,
		Addr:       c.RemoteAddr().String(),
	}

	Manager.register <- client

	defer func() {
		Manager.unregister <- c
	}()

	// 연결 확인 메시지 전송
	welcomeMsg := models.WebSocketMessage{
		Type: models.MessageTypeSystemInfo,
		Data: map[string]interface{}{
			"message":      "웹 클라이언트 연결됨",
			"connected_at": time.Now().Format(time.RFC3339),
		},
		Timestamp: time.Now().UnixMilli(),
	}
	_ = c.WriteJSON(welcomeMsg)

	for {
		var msg models.WebSocketMessage
		if err := c.ReadJSON(&msg); err != nil {
			log.Printf("웹 메시지 읽기 오류: %v", err)
			break
		}
		log.Printf("웹 메시지 무시: %s", msg.Type)
	}
}
