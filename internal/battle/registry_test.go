package battle

import (
	"strings"
	"testing"
)

func TestCreateRoomIDFormat(t *testing.T) {
	reg := NewRegistry()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		room := reg.CreateRoom("H", "Host")

		if len(room.ID) != roomIDLength {
			t.Fatalf("expected %d-char id, got %q", roomIDLength, room.ID)
		}
		for _, c := range room.ID {
			if !strings.ContainsRune(roomIDCharset, c) {
				t.Fatalf("id %q contains invalid character %q", room.ID, c)
			}
		}
		if seen[room.ID] {
			t.Fatalf("duplicate id handed out: %s", room.ID)
		}
		seen[room.ID] = true
	}
}

func TestCreateRoomInitialState(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom("H", "Host")

	if room.Status != StatusWaiting {
		t.Errorf("new room must be waiting, got %s", room.Status)
	}
	if room.HostID != "H" {
		t.Errorf("host must be the creator, got %s", room.HostID)
	}
	if !room.IsParticipant("H") {
		t.Error("creator must be a participant")
	}
	if room.Size() != 1 {
		t.Errorf("new room must have exactly one participant, got %d", room.Size())
	}
}

func TestGetAndRemove(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom("H", "Host")

	if got, ok := reg.Get(room.ID); !ok || got != room {
		t.Fatal("Get must return the created room")
	}

	if _, ok := reg.Get("NOSUCH"); ok {
		t.Error("Get must report missing rooms")
	}

	reg.Remove(room.ID)
	if _, ok := reg.Get(room.ID); ok {
		t.Error("room must be gone after Remove")
	}

	// Idempotent
	reg.Remove(room.ID)
	if reg.Len() != 0 {
		t.Errorf("expected empty registry, got %d rooms", reg.Len())
	}
}

func TestListExposesNoQuizContent(t *testing.T) {
	reg := NewRegistry()
	room := reg.CreateRoom("H", "Host")
	room.Join("G", "Guest")
	room.SetMaterial([]string{"secret topic"}, sampleQuiz(), 60)

	summaries := reg.List()
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}

	s := summaries[0]
	if s.ID != room.ID || s.Participants != 2 || s.Status != StatusReady {
		t.Errorf("unexpected summary: %+v", s)
	}
}
