package gateway

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/rx3lixir/prodhack/internal/battle"
	"github.com/rx3lixir/prodhack/pkg/logger"
)

// inbound is one parsed client message queued for the event loop
type inbound struct {
	client *Client
	msg    ClientMessage
}

// Gateway binds connections to rooms and runs the single event loop
// that owns all room state. Every register, message and disconnect is
// handled to completion before the next one starts, so room mutations
// never need locks; messages from one connection keep their send
// order, and no ordering is assumed across connections.
type Gateway struct {
	registry *battle.Registry

	// clients and membership are the connection-side session records:
	// who is connected, and which room each connection is in
	clients    map[uuid.UUID]*Client
	membership map[uuid.UUID]string

	// studyTimers tracks the armed study-phase countdown per room
	studyTimers map[string]*time.Timer

	register   chan *Client
	unregister chan *Client
	inbound    chan inbound
	studyOver  chan string
	listReq    chan chan []battle.RoomSummary

	shutdown chan struct{}
	done     chan struct{}

	log *logger.Logger
}

// New creates a gateway owning the given registry. The registry must
// not be shared with any other goroutine.
func New(registry *battle.Registry, log *logger.Logger) *Gateway {
	return &Gateway{
		registry:    registry,
		clients:     make(map[uuid.UUID]*Client),
		membership:  make(map[uuid.UUID]string),
		studyTimers: make(map[string]*time.Timer),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		inbound:     make(chan inbound, 256),
		studyOver:   make(chan string, 16),
		listReq:     make(chan chan []battle.RoomSummary),
		shutdown:    make(chan struct{}),
		done:        make(chan struct{}),
		log:         log,
	}
}

// Run is the event loop. It is the only goroutine that touches the
// registry, rooms and membership maps.
func (g *Gateway) Run() {
	defer close(g.done)

	for {
		select {
		case client := <-g.register:
			g.handleRegister(client)

		case client := <-g.unregister:
			g.handleUnregister(client)

		case in := <-g.inbound:
			g.handleMessage(in.client, in.msg)

		case roomID := <-g.studyOver:
			g.handleStudyOver(roomID)

		case reply := <-g.listReq:
			reply <- g.registry.List()

		case <-g.shutdown:
			g.handleShutdown()
			return
		}
	}
}

// Shutdown stops the event loop and disconnects all clients
func (g *Gateway) Shutdown() {
	close(g.shutdown)
	<-g.done
}

// ListRooms returns room summaries for the diagnostics endpoint. The
// call is served by the event loop so the registry is never read
// concurrently with a mutation.
func (g *Gateway) ListRooms() []battle.RoomSummary {
	reply := make(chan []battle.RoomSummary, 1)
	select {
	case g.listReq <- reply:
	case <-g.done:
		return nil
	}
	select {
	case summaries := <-reply:
		return summaries
	case <-g.done:
		return nil
	}
}

func (g *Gateway) handleRegister(c *Client) {
	g.clients[c.id] = c

	g.log.Info("client registered",
		"conn_id", c.id,
		"name", c.name,
		"total_clients", len(g.clients),
	)

	g.sendTo(c, TypeConnected, map[string]any{
		"connectionId": c.id,
	})
}

func (g *Gateway) handleUnregister(c *Client) {
	if _, ok := g.clients[c.id]; !ok {
		return
	}

	delete(g.clients, c.id)
	close(c.send)

	g.log.Info("client unregistered",
		"conn_id", c.id,
		"remaining_clients", len(g.clients),
	)

	roomID, ok := g.membership[c.id]
	if !ok {
		return
	}
	delete(g.membership, c.id)

	room, ok := g.registry.Get(roomID)
	if !ok {
		return
	}

	if empty := room.Leave(c.id.String()); empty {
		g.destroyRoom(roomID)
		g.log.Info("room destroyed", "room_id", roomID)
		return
	}

	// Remaining participant waits for a replacement; room fell back
	// to waiting inside Leave
	g.stopStudyTimer(roomID)
	g.broadcastToRoom(room, TypeOpponentDisconnected, nil, c.id)
}

func (g *Gateway) handleMessage(c *Client, msg ClientMessage) {
	switch msg.Type {
	case TypePing:
		g.sendTo(c, TypePong, nil)

	case TypeCreateRoom:
		g.handleCreateRoom(c)

	case TypeJoinRoom:
		g.handleJoinRoom(c, msg.Data)

	case TypeGameAction:
		g.handleGameAction(c, msg.Data)

	case TypeQuizAnswer:
		g.handleQuizAnswer(c, msg.Data)

	case TypeGetRoomStatus:
		g.handleGetRoomStatus(c, msg.Data)

	default:
		g.log.Debug("unknown message type", "type", msg.Type, "conn_id", c.id)
	}
}

func (g *Gateway) handleCreateRoom(c *Client) {
	room := g.registry.CreateRoom(c.id.String(), c.name)
	g.membership[c.id] = room.ID

	g.log.Info("room created", "room_id", room.ID, "host", c.id)

	g.sendTo(c, TypeRoomCreated, RoomCreatedData{RoomID: room.ID})
}

func (g *Gateway) handleJoinRoom(c *Client, data json.RawMessage) {
	var req JoinRoomData
	if err := json.Unmarshal(data, &req); err != nil {
		g.sendTo(c, TypeJoinError, ReasonRoomNotFound)
		return
	}
	if req.PlayerName == "" {
		req.PlayerName = c.name
	}

	room, ok := g.registry.Get(req.RoomID)
	if !ok {
		g.sendTo(c, TypeJoinError, ReasonRoomNotFound)
		return
	}

	becameReady, err := room.Join(c.id.String(), req.PlayerName)
	if err != nil {
		g.sendTo(c, TypeJoinError, ReasonRoomFull)
		return
	}

	g.membership[c.id] = room.ID

	g.log.Info("player joined room",
		"room_id", room.ID,
		"conn_id", c.id,
		"player_name", req.PlayerName,
	)

	g.sendTo(c, TypeJoinedRoom, JoinedRoomData{
		RoomID:     room.ID,
		PlayerName: req.PlayerName,
	})
	g.broadcastToRoom(room, TypePlayerJoined, PlayerJoinedData{
		PlayerName: req.PlayerName,
	}, c.id)

	if becameReady {
		g.broadcastToRoom(room, TypeRoomReady, nil, uuid.Nil)
	}
}

// handleGameAction interprets the known action subset and relays every
// action, interpreted or not, verbatim to the other participant so
// both clients stay in sync.
func (g *Gateway) handleGameAction(c *Client, data json.RawMessage) {
	var req GameActionData
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	room, ok := g.registry.Get(req.RoomID)
	if !ok {
		// Stale action for a dead room; not an error
		return
	}

	switch req.Action {
	case "pdfAnalyzed":
		var p MaterialPayload
		if err := json.Unmarshal(req.Payload, &p); err == nil {
			if err := room.SetMaterial(p.Topics, p.Quiz, p.StudyDuration); err != nil {
				g.log.Debug("material dropped", "room_id", room.ID, "error", err)
			}
		}

	case "startSession":
		var p StartSessionPayload
		_ = json.Unmarshal(req.Payload, &p)

		duration, err := room.StartStudy(p.StudyTime)
		if err != nil {
			g.log.Debug("startSession dropped", "room_id", room.ID, "error", err)
			break
		}

		g.armStudyTimer(room.ID, duration)
		// Every client starts its countdown from the same value
		g.broadcastToRoom(room, TypeSessionStarted, SessionStartedData{
			StudyDuration: duration,
		}, uuid.Nil)

	case "quizStarted":
		// Client-driven fallback for the studying -> quizzing edge;
		// the status guard in BeginQuiz keeps it single-shot against
		// the server timer
		if room.BeginQuiz() {
			g.stopStudyTimer(room.ID)
			g.broadcastToRoom(room, TypeScoreUpdate, room.Scores, uuid.Nil)
		}
	}

	g.broadcastToRoom(room, TypeOpponentAction, OpponentActionData{
		Action:  req.Action,
		Payload: req.Payload,
	}, c.id)
}

func (g *Gateway) handleQuizAnswer(c *Client, data json.RawMessage) {
	var req QuizAnswerData
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	room, ok := g.registry.Get(req.RoomID)
	if !ok {
		return
	}

	correct, err := room.SubmitAnswer(c.id.String(), req.QuestionIndex, req.ChosenOption)
	if err != nil {
		// Wrong state, bad index or duplicate: idempotent no-op
		g.log.Debug("answer dropped",
			"room_id", room.ID,
			"conn_id", c.id,
			"question", req.QuestionIndex,
			"reason", err,
		)
		return
	}

	g.broadcastToRoom(room, TypeOpponentAnswered, OpponentAnsweredData{
		QuestionIndex: req.QuestionIndex,
		ChosenOption:  req.ChosenOption,
		IsCorrect:     correct,
	}, c.id)

	// Both participants converge on the identical authoritative map
	g.broadcastToRoom(room, TypeScoreUpdate, room.Scores, uuid.Nil)
}

func (g *Gateway) handleGetRoomStatus(c *Client, data json.RawMessage) {
	var req RoomStatusQuery
	if err := json.Unmarshal(data, &req); err != nil {
		return
	}

	room, ok := g.registry.Get(req.RoomID)
	if !ok {
		g.sendTo(c, TypeRoomStatus, RoomStatusData{Exists: false})
		return
	}

	g.sendTo(c, TypeRoomStatus, RoomStatusData{
		Exists: true,
		Size:   room.Size(),
		Status: room.Status,
		Data: &RoomStatusDetail{
			RoomID:        room.ID,
			HostID:        room.HostID,
			Topics:        room.Topics,
			StudyDuration: room.StudyDuration,
			CreatedAt:     room.CreatedAt,
		},
	})
}

// handleStudyOver is the server-side timer authority for the
// studying -> quizzing transition. BeginQuiz's status guard makes a
// late or duplicate fire a no-op.
func (g *Gateway) handleStudyOver(roomID string) {
	g.stopStudyTimer(roomID)

	room, ok := g.registry.Get(roomID)
	if !ok {
		return
	}

	if !room.BeginQuiz() {
		return
	}

	g.log.Info("study phase over, quiz begins", "room_id", roomID)

	g.broadcastToRoom(room, TypeQuizStarted, nil, uuid.Nil)
	g.broadcastToRoom(room, TypeScoreUpdate, room.Scores, uuid.Nil)
}

func (g *Gateway) handleShutdown() {
	g.log.Info("gateway shutting down", "clients", len(g.clients))

	for id, timer := range g.studyTimers {
		timer.Stop()
		delete(g.studyTimers, id)
	}

	for _, c := range g.clients {
		close(c.send)
	}
	g.clients = nil
	g.membership = nil
}

func (g *Gateway) armStudyTimer(roomID string, durationSeconds int) {
	g.stopStudyTimer(roomID)

	g.studyTimers[roomID] = time.AfterFunc(
		time.Duration(durationSeconds)*time.Second,
		func() {
			select {
			case g.studyOver <- roomID:
			case <-g.done:
			}
		},
	)
}

func (g *Gateway) stopStudyTimer(roomID string) {
	if timer, ok := g.studyTimers[roomID]; ok {
		timer.Stop()
		delete(g.studyTimers, roomID)
	}
}

func (g *Gateway) destroyRoom(roomID string) {
	g.stopStudyTimer(roomID)
	g.registry.Remove(roomID)
}

// sendTo marshals and enqueues a message for one client. A client
// whose buffer is full is disconnected rather than allowed to stall
// the loop.
func (g *Gateway) sendTo(c *Client, msgType MessageType, payload any) {
	data, err := json.Marshal(ServerMessage{
		Type:      msgType,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	})
	if err != nil {
		g.log.Error("failed to marshal message", "type", msgType, "error", err)
		return
	}

	if !c.enqueue(data) {
		g.log.Warn("client buffer full, disconnecting", "conn_id", c.id)
		g.handleUnregister(c)
	}
}

// broadcastToRoom sends a message to every connected participant of
// the room except the one named in except (uuid.Nil sends to all).
func (g *Gateway) broadcastToRoom(room *battle.Room, msgType MessageType, payload any, except uuid.UUID) {
	for connID := range room.Participants {
		id, err := uuid.Parse(connID)
		if err != nil || id == except {
			continue
		}
		if c, ok := g.clients[id]; ok {
			g.sendTo(c, msgType, payload)
		}
	}
}
