package battle

import "testing"

func sampleQuiz() []Question {
	return []Question{
		{Question: "Q1", Options: []string{"A", "B", "C", "D"}, Answer: "A"},
		{Question: "Q2", Options: []string{"A", "B", "C", "D"}, Answer: "C"},
		{Question: "Q3", Options: []string{"A", "B", "C", "D"}, Answer: "D"},
	}
}

// makeQuizzingRoom builds a two-player room that has progressed to the
// quizzing phase.
func makeQuizzingRoom(t *testing.T) *Room {
	t.Helper()

	room := newRoom("AB12CD", "H", "Host")
	if _, err := room.Join("G", "Guest"); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if err := room.SetMaterial([]string{"topic"}, sampleQuiz(), 300); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}
	if _, err := room.StartStudy(5); err != nil {
		t.Fatalf("StartStudy: %v", err)
	}
	if !room.BeginQuiz() {
		t.Fatal("BeginQuiz returned false")
	}
	return room
}

func TestJoinCapacity(t *testing.T) {
	room := newRoom("AB12CD", "H", "Host")

	becameReady, err := room.Join("G", "Guest")
	if err != nil {
		t.Fatalf("second join: %v", err)
	}
	if !becameReady {
		t.Error("expected second join to make room ready")
	}
	if room.Status != StatusReady {
		t.Errorf("expected status ready, got %s", room.Status)
	}

	if _, err := room.Join("X", "Third"); err != ErrRoomFull {
		t.Errorf("expected ErrRoomFull for third participant, got %v", err)
	}
	if room.Size() != 2 {
		t.Errorf("participant count must never exceed 2, got %d", room.Size())
	}
}

func TestRejoinIsIdempotent(t *testing.T) {
	room := newRoom("AB12CD", "H", "Host")

	if _, err := room.Join("G", "Guest"); err != nil {
		t.Fatalf("join: %v", err)
	}

	// Existing member joining again must not hit the capacity check
	becameReady, err := room.Join("G", "Guest Renamed")
	if err != nil {
		t.Fatalf("rejoin: %v", err)
	}
	if becameReady {
		t.Error("rejoin must not fire a second ready transition")
	}
	if room.Participants["G"] != "Guest Renamed" {
		t.Error("rejoin should refresh display name")
	}
}

func TestReadyTransitionFiresOnce(t *testing.T) {
	room := newRoom("AB12CD", "H", "Host")

	first, _ := room.Join("G", "Guest")
	second, _ := room.Join("G", "Guest")

	if !first || second {
		t.Errorf("ready must fire exactly once, got first=%v second=%v", first, second)
	}
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"waiting to ready", StatusWaiting, StatusReady, true},
		{"ready to studying", StatusReady, StatusStudying, true},
		{"studying to quizzing", StatusStudying, StatusQuizzing, true},
		{"quizzing to waiting", StatusQuizzing, StatusWaiting, true},
		{"studying to waiting", StatusStudying, StatusWaiting, true},
		{"waiting to quizzing", StatusWaiting, StatusQuizzing, false},
		{"waiting to studying", StatusWaiting, StatusStudying, false},
		{"ready to quizzing", StatusReady, StatusQuizzing, false},
		{"quizzing to studying", StatusQuizzing, StatusStudying, false},
		{"quizzing to ready", StatusQuizzing, StatusReady, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			room := newRoom("AB12CD", "H", "Host")
			room.Status = tc.from

			err := room.transition(tc.to)
			if tc.allowed && err != nil {
				t.Errorf("expected %s -> %s to be allowed, got %v", tc.from, tc.to, err)
			}
			if !tc.allowed && err == nil {
				t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
			}
		})
	}
}

func TestStartStudyRequiresReady(t *testing.T) {
	room := newRoom("AB12CD", "H", "Host")

	if _, err := room.StartStudy(60); err != ErrWrongStatus {
		t.Errorf("expected ErrWrongStatus with a single participant, got %v", err)
	}
}

func TestStartStudyDurationFallbacks(t *testing.T) {
	room := newRoom("AB12CD", "H", "Host")
	room.Join("G", "Guest")

	d, err := room.StartStudy(0)
	if err != nil {
		t.Fatalf("StartStudy: %v", err)
	}
	if d != DefaultStudyDuration {
		t.Errorf("expected default duration %d, got %d", DefaultStudyDuration, d)
	}
}

func TestBeginQuizGuard(t *testing.T) {
	room := makeQuizzingRoom(t)

	// Duplicate timer fire near expiry must be a no-op
	if room.BeginQuiz() {
		t.Error("BeginQuiz must not fire twice")
	}

	if len(room.Scores) != 2 || len(room.Answered) != 2 {
		t.Errorf("scores/answered must cover exactly the participants, got %d/%d",
			len(room.Scores), len(room.Answered))
	}
	for connID, score := range room.Scores {
		if score != 0 {
			t.Errorf("initial score for %s must be 0, got %d", connID, score)
		}
	}
}

func TestLeaveResetsOrDestroys(t *testing.T) {
	room := makeQuizzingRoom(t)

	if empty := room.Leave("G"); empty {
		t.Error("room with one remaining participant is not empty")
	}
	if room.Status != StatusWaiting {
		t.Errorf("disconnect mid-quiz must reset to waiting, got %s", room.Status)
	}
	if !room.IsParticipant("H") {
		t.Error("remaining participant must be preserved")
	}

	if empty := room.Leave("H"); !empty {
		t.Error("last leave must report the room empty")
	}
}

func TestSetMaterialRejectedMidSession(t *testing.T) {
	room := makeQuizzingRoom(t)

	if err := room.SetMaterial([]string{"late"}, sampleQuiz(), 60); err != ErrWrongStatus {
		t.Errorf("expected ErrWrongStatus for material during quizzing, got %v", err)
	}
}

func TestSanitizeQuiz(t *testing.T) {
	quiz := []Question{
		{Question: "ok", Options: []string{"A", "B", "C", "D"}, Answer: "B"},
		{Question: "answer outside options", Options: []string{"A", "B", "C", "D"}, Answer: "Z"},
		{Question: "too few options", Options: []string{"A", "B"}, Answer: "A"},
		{Question: "", Options: []string{"A", "B", "C", "D"}, Answer: "A"},
	}

	out := SanitizeQuiz(quiz)

	if len(out) != 2 {
		t.Fatalf("expected 2 surviving questions, got %d", len(out))
	}
	if out[0].Answer != "B" {
		t.Errorf("valid answer must be untouched, got %s", out[0].Answer)
	}
	if out[1].Answer != "A" {
		t.Errorf("stray answer must be repaired to first option, got %s", out[1].Answer)
	}
}

func TestSanitizeQuizCap(t *testing.T) {
	quiz := make([]Question, 0, 15)
	for i := 0; i < 15; i++ {
		quiz = append(quiz, Question{
			Question: "q",
			Options:  []string{"A", "B", "C", "D"},
			Answer:   "A",
		})
	}

	if got := len(SanitizeQuiz(quiz)); got != MaxQuizQuestions {
		t.Errorf("expected quiz capped at %d, got %d", MaxQuizQuestions, got)
	}
}
