package broker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	log "github.com/sirupsen/logrus"

	"github.com/bingovivo/live-services/internal/comm"
	"github.com/bingovivo/live-services/internal/livesvc/game"
	"github.com/bingovivo/live-services/internal/livesvc/presence"
	"github.com/bingovivo/live-services/internal/livesvc/service"
)

// Broker consumes player messages from the socket edge and drives the
// engine. Every session gets one hub subscription whose emissions are
// pumped back onto NATS as per-event game-state broadcasts.
type Broker struct {
	Conn         *nats.Conn
	Registry     *game.Registry
	ClaimService *service.ClaimService
	Presence     *presence.Store // may be nil when presence is disabled

	pumpMu sync.Mutex
	pumps  map[string]*game.Subscription // eventID -> hub subscription
}

func NewBroker(nc *nats.Conn, registry *game.Registry, claimService *service.ClaimService, pres *presence.Store) *Broker {
	return &Broker{
		Conn:         nc,
		Registry:     registry,
		ClaimService: claimService,
		Presence:     pres,
		pumps:        make(map[string]*game.Subscription),
	}
}

// handles message coming from socket
func (b *Broker) handleMessage(msgNat *nats.Msg) {
	msg := &comm.WSMessage{}
	err := json.Unmarshal(msgNat.Data, msg)
	if err != nil {
		log.Errorf("Error nats message %s", err)
		return
	}

	switch msg.Type {
	case "join-event":
		b.handleJoin(msg)
	case "leave-event":
		b.handleLeave(msg)
	case "heartbeat":
		b.handleHeartbeat(msg)
	case "mark-number":
		b.handleMark(msg)
	case "claim-bingo":
		b.handleClaim(msg)
	case "end-event":
		b.handleEnd(msg)
	case "get-game-state":
		b.handleGetState(msg)
	case "get-roster":
		b.handleGetRoster(msg)
	case "get-card":
		b.handleGetCard(msg)
	default:
		log.Warnf("unknown message type: %s", msg.Type)
	}
}

func (b *Broker) handleJoin(msg *comm.WSMessage) {
	var req comm.JoinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error unmarshalling join-event: %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	session, err := b.Registry.CreateSession(ctx, req.EventID)
	if err != nil {
		if errors.Is(err, game.ErrEventNotFound) {
			b.publish("join-event-response", comm.JoinResponse{Ok: false, Reason: "not-found"}, msg.SocketId)
			return
		}
		log.Errorf("Error creating session for event %s: %s", req.EventID, err)
		return
	}

	if err := session.Join(req.UserID, req.Name, req.Avatar); err != nil {
		b.publish("join-event-response", comm.JoinResponse{Ok: false, Reason: "not-active"}, msg.SocketId)
		return
	}

	if b.Presence != nil {
		if err := b.Presence.Touch(ctx, req.EventID, req.UserID); err != nil {
			log.Warnf("presence touch failed for %s/%s: %s", req.EventID, req.UserID, err)
		}
	}

	b.ensurePump(req.EventID, session)

	// late joiners catch up through the snapshot, not the stream
	state := session.GameState()
	b.publish("join-event-response", comm.JoinResponse{
		Ok:    true,
		Event: session.Event(),
		State: &state,
	}, msg.SocketId)

	b.publishRoster(session, req.EventID, "")
}

func (b *Broker) handleLeave(msg *comm.WSMessage) {
	var req comm.LeaveRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error unmarshalling leave-event: %s", err)
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}
	session.Leave(req.UserID)

	if b.Presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.Presence.Remove(ctx, req.EventID, req.UserID); err != nil {
			log.Warnf("presence remove failed for %s/%s: %s", req.EventID, req.UserID, err)
		}
	}

	b.publishRoster(session, req.EventID, "")
}

func (b *Broker) handleHeartbeat(msg *comm.WSMessage) {
	var req comm.LeaveRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}
	session.Heartbeat(req.UserID)

	if b.Presence != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := b.Presence.Touch(ctx, req.EventID, req.UserID); err != nil {
			log.Warnf("presence touch failed for %s/%s: %s", req.EventID, req.UserID, err)
		}
	}
}

func (b *Broker) handleMark(msg *comm.WSMessage) {
	var req comm.MarkRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error unmarshalling mark-number: %s", err)
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}

	// a rejected mark is a normal outcome, reported not thrown
	accepted := session.Mark(req.CardID, req.Number, req.UserID) == nil

	b.publish("mark-number-response", comm.MarkResult{
		EventID:  req.EventID,
		CardID:   req.CardID,
		Number:   req.Number,
		Accepted: accepted,
		Marked:   session.Marked(req.CardID),
	}, msg.SocketId)
}

func (b *Broker) handleClaim(msg *comm.WSMessage) {
	var req comm.ClaimRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error unmarshalling claim-bingo: %s", err)
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}

	accepted, err := session.ClaimWin(req.CardID, req.Pattern, req.UserID)
	if err != nil {
		log.Errorf("Error claim for event %s card %d: %s", req.EventID, req.CardID, err)
		return
	}

	if b.ClaimService != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := b.ClaimService.RecordClaim(ctx, req.EventID, req.CardID, req.UserID, req.Pattern, accepted); err != nil {
			log.Errorf("Error recording claim: %s", err)
		}
	}

	b.publish("claim-bingo-response", comm.ClaimResult{
		EventID:  req.EventID,
		CardID:   req.CardID,
		Pattern:  req.Pattern,
		Accepted: accepted,
	}, msg.SocketId)
}

// handleEnd is published by the backoffice onto the bus when it finishes
// or cancels an event. The status is verified against the backend before
// the session is torn down, so a stray message cannot kill a live draw.
func (b *Broker) handleEnd(msg *comm.WSMessage) {
	var req comm.StateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		log.Errorf("Error unmarshalling end-event: %s", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.Registry.SyncStatus(ctx, req.EventID); err != nil {
		log.Warnf("status sync for event %s failed: %s", req.EventID, err)
	}
}

func (b *Broker) handleGetState(msg *comm.WSMessage) {
	var req comm.StateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}

	b.publish("game-state-response", comm.StateBroadcast{
		EventID: req.EventID,
		State:   session.GameState(),
	}, msg.SocketId)
}

func (b *Broker) handleGetRoster(msg *comm.WSMessage) {
	var req comm.StateRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}

	b.publishRosterTo(session, req.EventID, req.UserID, msg.SocketId)
}

func (b *Broker) handleGetCard(msg *comm.WSMessage) {
	var req comm.CardRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		return
	}

	session, err := b.Registry.Get(req.EventID)
	if err != nil {
		return
	}

	view, err := session.Card(req.CardID)
	if err != nil {
		return
	}

	b.publish("get-card-response", view, msg.SocketId)
}

// ensurePump starts one hub->NATS forwarder per session. The first
// subscription also starts the sequencer.
func (b *Broker) ensurePump(eventID string, session *game.Session) {
	b.pumpMu.Lock()
	defer b.pumpMu.Unlock()

	if _, ok := b.pumps[eventID]; ok {
		return
	}

	sub := session.Subscribe()
	b.pumps[eventID] = sub

	go func() {
		for state := range sub.C {
			b.publish("game-state", comm.StateBroadcast{EventID: eventID, State: state}, "")
		}
		b.pumpMu.Lock()
		delete(b.pumps, eventID)
		b.pumpMu.Unlock()
		log.Infof("state pump stopped for event %s", eventID)
	}()
}

func (b *Broker) publishRoster(session *game.Session, eventID, requesterID string) {
	b.publish("roster", comm.RosterData{
		EventID:      eventID,
		Participants: session.Roster(requesterID),
	}, "")
}

func (b *Broker) publishRosterTo(session *game.Session, eventID, requesterID, socketId string) {
	b.publish("roster-response", comm.RosterData{
		EventID:      eventID,
		Participants: session.Roster(requesterID),
	}, socketId)
}

func (b *Broker) publish(msgType string, payload interface{}, socketId string) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Errorf("unable to marshal %s payload: %s", msgType, err)
		return
	}

	msg := &comm.WSMessage{
		Type:     msgType,
		Data:     data,
		SocketId: socketId,
	}

	out, err := json.Marshal(msg)
	if err != nil {
		log.Errorf("Error %s", err)
		return
	}

	topic := "game.service"
	if err := b.Conn.Publish(topic, out); err != nil {
		log.Errorf("Error publishing to topic %s: %s", topic, err)
	}
}

// consume message from socket service
func (b *Broker) SubscribeSocketService(topic string) (*nats.Subscription, error) {
	sub, err := b.Conn.Subscribe(topic, b.handleMessage)
	if err != nil {
		return nil, err
	}

	return sub, nil
}
