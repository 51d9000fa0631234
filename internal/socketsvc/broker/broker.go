package broker

import (
	"encoding/json"

	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/bingovivo/live-services/internal/comm"
)

// Broker bridges NATS to the websocket clients: targeted responses go to
// one socket, per-event broadcasts fan out to every socket in the room.
type Broker struct {
	Conn           *nats.Conn
	GetConnection  func(string) (*websocket.Conn, bool)
	GetRoomSockets func(string) ([]string, bool)
}

func NewBroker(conn *nats.Conn, fncGetConnection func(string) (*websocket.Conn, bool), fncGetRoomSockets func(string) ([]string, bool)) *Broker {
	return &Broker{
		Conn:           conn,
		GetConnection:  fncGetConnection,
		GetRoomSockets: fncGetRoomSockets,
	}
}

// consume message from the game service
func (b *Broker) Subscribe(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessages)
	if err != nil {
		return nil, err
	}

	return sub, nil
}

// publish message to the game service
func (b *Broker) Publish(topic string, payload []byte) error {
	err := b.Conn.Publish(topic, payload)
	if err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
		return err
	}

	return nil
}

// handleMessages receives messages from the game service
func (b *Broker) handleMessages(msgNats *nats.Msg) {
	message := &comm.WSMessage{}
	err := json.Unmarshal(msgNats.Data, message)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	switch message.Type {
	case "join-event-response", "mark-number-response", "claim-bingo-response",
		"game-state-response", "roster-response", "get-card-response":
		b.sendMessage(message)
	case "game-state":
		b.broadcastToRoom(message, eventIDOf(message, "state broadcast"))
	case "roster":
		b.broadcastToRoom(message, eventIDOf(message, "roster broadcast"))
	default:
		log.Warnf("unknown message type: %s", message.Type)
	}
}

// eventIDOf pulls the routing event id out of a broadcast payload.
func eventIDOf(m *comm.WSMessage, what string) string {
	var routed struct {
		EventID string `json:"event_id"`
	}
	if err := json.Unmarshal(m.Data, &routed); err != nil {
		log.Errorf("malformed %s: %s", what, err)
		return ""
	}
	return routed.EventID
}

// broadcastToRoom writes the message to every socket in the event room, in
// arrival order so no subscriber sees calls out of sequence.
func (b *Broker) broadcastToRoom(m *comm.WSMessage, eventId string) {
	if eventId == "" {
		return
	}

	sockets, ok := b.GetRoomSockets(eventId)
	if !ok {
		return
	}

	for _, socketId := range sockets {
		if conn, ok := b.GetConnection(socketId); ok {
			if err := conn.WriteJSON(m); err != nil {
				log.Errorf("write to socket %s failed: %s", socketId, err)
			}
		}
	}
}

// send socket message to the web client
func (b *Broker) sendMessage(m *comm.WSMessage) {
	socketId := m.SocketId
	if conn, ok := b.GetConnection(socketId); ok {
		if err := conn.WriteJSON(m); err != nil {
			log.Println(err)
		}
	}
}
