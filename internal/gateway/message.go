package gateway

import (
	"encoding/json"
	"time"

	"github.com/rx3lixir/prodhack/internal/battle"
)

// MessageType defines the type of message on the realtime surface
type MessageType string

const (
	// Client -> Server
	TypePing          MessageType = "ping"
	TypeCreateRoom    MessageType = "createRoom"
	TypeJoinRoom      MessageType = "joinRoom"
	TypeGameAction    MessageType = "gameAction"
	TypeQuizAnswer    MessageType = "quizAnswer"
	TypeGetRoomStatus MessageType = "getRoomStatus"

	// Server -> Client
	TypePong                 MessageType = "pong"
	TypeConnected            MessageType = "connected"
	TypeRoomCreated          MessageType = "roomCreated"
	TypeJoinedRoom           MessageType = "joinedRoom"
	TypeJoinError            MessageType = "joinError"
	TypePlayerJoined         MessageType = "playerJoined"
	TypeRoomReady            MessageType = "roomReady"
	TypeOpponentAction       MessageType = "opponentAction"
	TypeSessionStarted       MessageType = "sessionStarted"
	TypeQuizStarted          MessageType = "quizStarted"
	TypeOpponentAnswered     MessageType = "opponentAnswered"
	TypeScoreUpdate          MessageType = "scoreUpdate"
	TypeOpponentDisconnected MessageType = "opponentDisconnected"
	TypeRoomStatus           MessageType = "roomStatus"
)

// Join error reasons are part of the wire contract; clients match on
// the exact strings.
const (
	ReasonRoomNotFound = "Room not found."
	ReasonRoomFull     = "Room is full."
)

// ClientMessage represents any message from client
type ClientMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage represents any message to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	Data      any         `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// JoinRoomData is the joinRoom request payload
type JoinRoomData struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// GameActionData is the generic gameAction envelope. Payload is kept
// raw so uninterpreted actions are relayed byte-for-byte.
type GameActionData struct {
	RoomID  string          `json:"roomId"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// QuizAnswerData is the quizAnswer request payload
type QuizAnswerData struct {
	RoomID        string `json:"roomId"`
	QuestionIndex int    `json:"questionIndex"`
	ChosenOption  string `json:"chosenOption"`
}

// RoomStatusQuery is the getRoomStatus request payload
type RoomStatusQuery struct {
	RoomID string `json:"roomId"`
}

// Interpreted gameAction payloads

// MaterialPayload carries the pdfAnalyzed action body. StudyDuration
// is in seconds, like every duration on this surface.
type MaterialPayload struct {
	Topics        []string          `json:"topics"`
	Quiz          []battle.Question `json:"quiz"`
	StudyDuration int               `json:"studyDuration"`
}

// StartSessionPayload carries the startSession action body
type StartSessionPayload struct {
	StudyTime int `json:"studyTime"`
}

// Server payloads

type RoomCreatedData struct {
	RoomID string `json:"roomId"`
}

type JoinedRoomData struct {
	RoomID     string `json:"roomId"`
	PlayerName string `json:"playerName"`
}

type PlayerJoinedData struct {
	PlayerName string `json:"playerName"`
}

type OpponentActionData struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type SessionStartedData struct {
	StudyDuration int `json:"studyDuration"`
}

type OpponentAnsweredData struct {
	QuestionIndex int    `json:"questionIndex"`
	ChosenOption  string `json:"chosenOption"`
	IsCorrect     bool   `json:"isCorrect"`
}

// RoomStatusData answers a getRoomStatus query. Data is nil when the
// room does not exist.
type RoomStatusData struct {
	Exists bool              `json:"exists"`
	Size   int               `json:"size"`
	Status battle.Status     `json:"status,omitempty"`
	Data   *RoomStatusDetail `json:"data,omitempty"`
}

type RoomStatusDetail struct {
	RoomID        string    `json:"roomId"`
	HostID        string    `json:"hostId"`
	Topics        []string  `json:"topics,omitempty"`
	StudyDuration int       `json:"studyDuration,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
