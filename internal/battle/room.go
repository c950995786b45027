package battle

import (
	"errors"
	"time"
)

const (
	// MaxParticipants is the hard cap for a 1v1 battle room
	MaxParticipants = 2

	// MaxQuizQuestions caps how many questions a room accepts
	MaxQuizQuestions = 10

	// OptionsPerQuestion is the required number of choices per question
	OptionsPerQuestion = 4

	// DefaultStudyDuration is used when a session starts without an
	// explicit duration (15 minutes)
	DefaultStudyDuration = 15 * 60
)

var (
	ErrRoomFull        = errors.New("room is full")
	ErrBadTransition   = errors.New("status transition not allowed")
	ErrWrongStatus     = errors.New("operation not allowed in current status")
	ErrNotParticipant  = errors.New("connection is not a room participant")
	ErrAlreadyAnswered = errors.New("question already answered")
)

// Status is the room lifecycle state. It is a closed enumeration;
// every change goes through Room.transition which checks the
// transition table.
type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusReady    Status = "ready"
	StatusStudying Status = "studying"
	StatusQuizzing Status = "quizzing"
)

// transitions is the complete set of allowed status changes.
// waiting -> ready: second participant joined
// ready -> studying: session started
// studying -> quizzing: study countdown elapsed (or explicit signal)
// ready/studying/quizzing -> waiting: a participant left
var transitions = map[Status][]Status{
	StatusWaiting:  {StatusReady},
	StatusReady:    {StatusStudying, StatusWaiting},
	StatusStudying: {StatusQuizzing, StatusWaiting},
	StatusQuizzing: {StatusWaiting},
}

// Question is a single multiple-choice quiz entry. Answer is always a
// member of Options (enforced by SanitizeQuiz before a room accepts it).
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Room holds the transient state of one 1v1 study battle. It is not
// persisted anywhere and dies with the process or with its last
// participant; that is deliberate.
//
// Room is not safe for concurrent use. The gateway event loop is the
// single owner of all rooms and serializes every mutation.
type Room struct {
	ID            string
	HostID        string
	Status        Status
	Participants  map[string]string // connection id -> display name
	StudyDuration int               // seconds
	Topics        []string
	Quiz          []Question
	Scores        map[string]int
	Answered      map[string]map[int]bool
	CreatedAt     time.Time
}

func newRoom(id, hostID, hostName string) *Room {
	return &Room{
		ID:           id,
		HostID:       hostID,
		Status:       StatusWaiting,
		Participants: map[string]string{hostID: hostName},
		CreatedAt:    time.Now(),
	}
}

// transition moves the room to next if the transition table allows it
func (r *Room) transition(next Status) error {
	for _, allowed := range transitions[r.Status] {
		if allowed == next {
			r.Status = next
			return nil
		}
	}
	return ErrBadTransition
}

// Size returns the current participant count
func (r *Room) Size() int {
	return len(r.Participants)
}

// IsParticipant reports whether connID is currently in the room
func (r *Room) IsParticipant(connID string) bool {
	_, ok := r.Participants[connID]
	return ok
}

// Join adds a participant. Re-joining is a no-op apart from refreshing
// the display name. becameReady is true when this join made the room
// full and moved it waiting -> ready.
func (r *Room) Join(connID, displayName string) (becameReady bool, err error) {
	if !r.IsParticipant(connID) && r.Size() >= MaxParticipants {
		return false, ErrRoomFull
	}

	r.Participants[connID] = displayName

	if r.Size() == MaxParticipants && r.Status == StatusWaiting {
		if err := r.transition(StatusReady); err != nil {
			return false, err
		}
		return true, nil
	}

	return false, nil
}

// Leave removes a participant. empty is true when the room has no
// participants left and must be destroyed by the registry. A non-empty
// room always falls back to waiting so it is never stuck mid-session
// with a single player.
func (r *Room) Leave(connID string) (empty bool) {
	if !r.IsParticipant(connID) {
		return r.Size() == 0
	}

	delete(r.Participants, connID)

	if r.Size() == 0 {
		return true
	}

	if r.Status != StatusWaiting {
		// Always allowed: every non-waiting status can reset
		r.Status = StatusWaiting
	}

	return false
}

// SetMaterial installs the study topics, quiz and suggested duration.
// Only accepted before a session starts; late or duplicate payloads
// are dropped silently.
func (r *Room) SetMaterial(topics []string, quiz []Question, durationSeconds int) error {
	if r.Status != StatusWaiting && r.Status != StatusReady {
		return ErrWrongStatus
	}

	if len(topics) > MaxQuizQuestions {
		topics = topics[:MaxQuizQuestions]
	}

	r.Topics = topics
	r.Quiz = SanitizeQuiz(quiz)
	if durationSeconds > 0 {
		r.StudyDuration = durationSeconds
	}

	return nil
}

// StartStudy begins the study countdown. Both participants must be
// present (status ready). The effective duration is returned so the
// caller can arm the server-side timer and broadcast the same value
// to every client.
func (r *Room) StartStudy(durationSeconds int) (int, error) {
	if r.Status != StatusReady {
		return 0, ErrWrongStatus
	}

	if durationSeconds <= 0 {
		durationSeconds = r.StudyDuration
	}
	if durationSeconds <= 0 {
		durationSeconds = DefaultStudyDuration
	}

	if err := r.transition(StatusStudying); err != nil {
		return 0, err
	}

	r.StudyDuration = durationSeconds
	return durationSeconds, nil
}

// BeginQuiz moves studying -> quizzing and initializes scores and
// answered sets for exactly the current participants. Returns false
// when the room is not studying, which makes the transition idempotent
// under duplicate timer fires or a racing client signal.
func (r *Room) BeginQuiz() bool {
	if r.Status != StatusStudying {
		return false
	}
	if err := r.transition(StatusQuizzing); err != nil {
		return false
	}

	r.Scores = make(map[string]int, r.Size())
	r.Answered = make(map[string]map[int]bool, r.Size())
	for connID := range r.Participants {
		r.Scores[connID] = 0
		r.Answered[connID] = make(map[int]bool)
	}

	return true
}

// SubmitAnswer is the single authority for whether an answer counts.
// Preconditions are checked in order; any failure returns a sentinel
// error and leaves the room untouched. Callers drop failures silently:
// a stale or duplicate submission is not a user-visible fault.
func (r *Room) SubmitAnswer(connID string, questionIndex int, chosenOption string) (correct bool, err error) {
	if r.Status != StatusQuizzing {
		return false, ErrWrongStatus
	}
	if questionIndex < 0 || questionIndex >= len(r.Quiz) {
		return false, ErrWrongStatus
	}

	answered, ok := r.Answered[connID]
	if !ok {
		return false, ErrNotParticipant
	}
	if answered[questionIndex] {
		return false, ErrAlreadyAnswered
	}

	answered[questionIndex] = true

	correct = chosenOption == r.Quiz[questionIndex].Answer
	if correct {
		r.Scores[connID]++
	}

	return correct, nil
}

// Finished reports whether every current participant has answered
// every question. The room keeps status quizzing; clients observe the
// terminal condition through the final scoreUpdate.
func (r *Room) Finished() bool {
	if r.Status != StatusQuizzing || len(r.Quiz) == 0 {
		return false
	}
	for connID := range r.Participants {
		if len(r.Answered[connID]) < len(r.Quiz) {
			return false
		}
	}
	return true
}

// SanitizeQuiz validates and repairs generated quiz content before it
// enters room state: questions without text or without exactly four
// options are dropped, an answer that is not one of its options is
// repaired to the first option, and the result is capped at
// MaxQuizQuestions.
func SanitizeQuiz(quiz []Question) []Question {
	out := make([]Question, 0, len(quiz))
	for _, q := range quiz {
		if q.Question == "" || len(q.Options) != OptionsPerQuestion {
			continue
		}

		valid := false
		for _, opt := range q.Options {
			if opt == q.Answer {
				valid = true
				break
			}
		}
		if !valid {
			q.Answer = q.Options[0]
		}

		out = append(out, q)
		if len(out) == MaxQuizQuestions {
			break
		}
	}
	return out
}
