package battle

import "testing"

// TestFullSessionScenario walks one complete 1v1 session:
// create -> join -> material -> study -> quiz -> answers -> rematch state.
func TestFullSessionScenario(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom("H", "Host")

	if _, err := room.Join("G", "Guest"); err != nil {
		t.Fatalf("join: %v", err)
	}
	if room.Status != StatusReady {
		t.Fatalf("expected ready after both joined, got %s", room.Status)
	}

	if err := room.SetMaterial([]string{"goroutines", "channels"}, sampleQuiz(), 0); err != nil {
		t.Fatalf("SetMaterial: %v", err)
	}

	d, err := room.StartStudy(5)
	if err != nil {
		t.Fatalf("StartStudy: %v", err)
	}
	if d != 5 || room.StudyDuration != 5 {
		t.Fatalf("expected recorded duration 5, got %d/%d", d, room.StudyDuration)
	}
	if room.Status != StatusStudying {
		t.Fatalf("expected studying, got %s", room.Status)
	}

	// Quiz activity during the study phase is silently rejected
	if _, err := room.SubmitAnswer("H", 0, "A"); err != ErrWrongStatus {
		t.Fatalf("answer during study phase must be dropped, got %v", err)
	}

	if !room.BeginQuiz() {
		t.Fatal("study countdown expiry must begin the quiz")
	}

	// H answers question 0 correctly
	correct, err := room.SubmitAnswer("H", 0, "A")
	if err != nil || !correct {
		t.Fatalf("expected correct answer, got correct=%v err=%v", correct, err)
	}
	if room.Scores["H"] != 1 || room.Scores["G"] != 0 {
		t.Fatalf("expected scores H:1 G:0, got %v", room.Scores)
	}

	// G answers question 0 incorrectly
	correct, err = room.SubmitAnswer("G", 0, "B")
	if err != nil || correct {
		t.Fatalf("expected accepted incorrect answer, got correct=%v err=%v", correct, err)
	}
	if room.Scores["H"] != 1 || room.Scores["G"] != 0 {
		t.Fatalf("scores must be unchanged after incorrect answer, got %v", room.Scores)
	}

	// G re-submits question 0: ignored entirely
	if _, err := room.SubmitAnswer("G", 0, "A"); err != ErrAlreadyAnswered {
		t.Fatalf("duplicate answer must be rejected, got %v", err)
	}
	if room.Scores["H"] != 1 || room.Scores["G"] != 0 {
		t.Fatalf("duplicate answer must not change scores, got %v", room.Scores)
	}
}

// TestScoresMatchCorrectSubmissions checks the scorekeeping invariant:
// each participant's score equals exactly their count of correct first
// submissions, regardless of interleaving.
func TestScoresMatchCorrectSubmissions(t *testing.T) {
	room := makeQuizzingRoom(t)

	// Interleaved submissions; answers per sampleQuiz are A, C, D
	submissions := []struct {
		conn   string
		index  int
		option string
	}{
		{"H", 0, "A"}, // correct
		{"G", 1, "C"}, // correct
		{"H", 1, "B"}, // wrong
		{"G", 0, "A"}, // correct
		{"H", 2, "D"}, // correct
		{"G", 2, "B"}, // wrong
		{"H", 0, "A"}, // duplicate, ignored
	}

	for _, s := range submissions {
		room.SubmitAnswer(s.conn, s.index, s.option)
	}

	if room.Scores["H"] != 2 {
		t.Errorf("expected H score 2, got %d", room.Scores["H"])
	}
	if room.Scores["G"] != 2 {
		t.Errorf("expected G score 2, got %d", room.Scores["G"])
	}

	if !room.Finished() {
		t.Error("all questions answered by both participants, room must be finished")
	}
}

func TestAnswerOutOfRange(t *testing.T) {
	room := makeQuizzingRoom(t)

	if _, err := room.SubmitAnswer("H", 99, "A"); err != ErrWrongStatus {
		t.Errorf("out-of-range index must be dropped, got %v", err)
	}
	if _, err := room.SubmitAnswer("H", -1, "A"); err != ErrWrongStatus {
		t.Errorf("negative index must be dropped, got %v", err)
	}
}

func TestAnswerFromStranger(t *testing.T) {
	room := makeQuizzingRoom(t)

	if _, err := room.SubmitAnswer("X", 0, "A"); err != ErrNotParticipant {
		t.Errorf("non-participant answer must be rejected, got %v", err)
	}
	if room.Scores["X"] != 0 {
		t.Error("stranger must not acquire a score entry")
	}
}

func TestRematchAfterPeerLoss(t *testing.T) {
	room := makeQuizzingRoom(t)

	room.Leave("G")
	if room.Status != StatusWaiting {
		t.Fatalf("expected waiting after peer loss, got %s", room.Status)
	}

	// A replacement can join and a fresh session can start
	becameReady, err := room.Join("R", "Replacement")
	if err != nil || !becameReady {
		t.Fatalf("replacement join failed: ready=%v err=%v", becameReady, err)
	}

	if _, err := room.StartStudy(10); err != nil {
		t.Fatalf("restart after replacement: %v", err)
	}
	if !room.BeginQuiz() {
		t.Fatal("BeginQuiz after restart")
	}

	// Scores are re-initialized for the current pair only
	if _, ok := room.Scores["G"]; ok {
		t.Error("departed participant must not appear in fresh scores")
	}
	if _, ok := room.Scores["R"]; !ok {
		t.Error("replacement must appear in fresh scores")
	}
}
