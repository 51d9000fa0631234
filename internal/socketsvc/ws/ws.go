package ws

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/bingovivo/live-services/internal/comm"
	"github.com/bingovivo/live-services/internal/socketsvc/broker"
)

// room remembers which event a socket joined and as whom, so a dropped
// connection can still be reported as a leave.
type room struct {
	eventId string
	userId  string
}

type Ws struct {
	connMap sync.Map // socketId -> *websocket.Conn
	roomMap sync.Map // socketId -> room
	Broker  *broker.Broker
}

func NewWs() *Ws {
	return &Ws{}
}

// handle socket message from web clients
func (s *Ws) SocketMessage(socketId string, message *comm.WSMessage) {
	switch message.Type {
	case "join-event":
		s.handleJoin(socketId, message)
	case "leave-event":
		s.roomMap.Delete(socketId)
		s.forward(socketId, message)
	case "heartbeat", "mark-number", "claim-bingo",
		"get-game-state", "get-roster", "get-card":
		s.forward(socketId, message)
	default:
		log.Warnf("unknown event received: %s", message.Type)
	}
}

// handleJoin records the socket's event room before forwarding, so
// per-event broadcasts can find it.
func (s *Ws) handleJoin(socketId string, msg *comm.WSMessage) {
	var req comm.JoinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error: malformed join-event payload %s", err)
		return
	}

	if req.EventID == "" || req.UserID == "" {
		log.Error("Invalid join-event payload: missing event or user id")
		return
	}

	s.StoreRoom(socketId, req.EventID, req.UserID)
	s.forward(socketId, msg)
}

// forward stamps the socket id on the message and hands it to the live
// game service over NATS.
func (s *Ws) forward(socketId string, msg *comm.WSMessage) {
	msg.SocketId = socketId

	bytes, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Failed to marshal WSMessage for NATS: %v", err)
		return
	}

	topic := "socket.service"
	if err := s.Broker.Publish(topic, bytes); err != nil {
		log.Errorf("Failed to publish to NATS topic %s: %v", topic, err)
	}
}

func (s *Ws) HandleDisconnect(socketId string) {
	if r, ok := s.getRoom(socketId); ok {
		// tell the game service the participant went offline
		data, _ := json.Marshal(comm.LeaveRequest{EventID: r.eventId, UserID: r.userId})
		s.forward(socketId, &comm.WSMessage{Type: "leave-event", Data: data})
	}
	s.connMap.Delete(socketId)
	s.roomMap.Delete(socketId)
}

func (s *Ws) StoreConnection(socketId string, conn *websocket.Conn) {
	s.connMap.Store(socketId, conn)
}

func (s *Ws) GetConnection(socketId string) (*websocket.Conn, bool) {
	conn, ok := s.connMap.Load(socketId)
	if !ok {
		return nil, false
	}
	return conn.(*websocket.Conn), true
}

func (s *Ws) StoreRoom(socketId, eventId, userId string) {
	s.roomMap.Store(socketId, room{eventId: eventId, userId: userId})
}

func (s *Ws) getRoom(socketId string) (room, bool) {
	r, ok := s.roomMap.Load(socketId)
	if !ok {
		return room{}, false
	}
	return r.(room), true
}

func (s *Ws) GetRoomSockets(eventId string) ([]string, bool) {
	var sockets []string
	found := false

	s.roomMap.Range(func(key, value interface{}) bool {
		if value.(room).eventId == eventId {
			sockets = append(sockets, key.(string))
			found = true
		}
		return true // continue iterating
	})

	return sockets, found
}
