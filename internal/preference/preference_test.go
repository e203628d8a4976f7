package preference

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
)

func TestParsePhase(t *testing.T) {
	for _, name := range []string{"metadata", "Verification", " customization "} {
		if _, err := ParsePhase(name); err != nil {
			t.Errorf("ParsePhase(%q): %v", name, err)
		}
	}
	if _, err := ParsePhase("refining"); err == nil {
		t.Error("expected error for unknown phase")
	}
}

func TestPhaseNext(t *testing.T) {
	next, ok := PhaseMetadata.Next()
	if !ok || next != PhaseVerification {
		t.Errorf("metadata.Next() = %s, %v", next, ok)
	}
	next, ok = PhaseVerification.Next()
	if !ok || next != PhaseCustomization {
		t.Errorf("verification.Next() = %s, %v", next, ok)
	}
	if _, ok := PhaseCustomization.Next(); ok {
		t.Error("customization should be the last phase")
	}
}

func TestAnswer_UnmarshalStringOrList(t *testing.T) {
	var r Response
	if err := json.Unmarshal([]byte(`{"question_id":"format","answer":"bullet points"}`), &r); err != nil {
		t.Fatalf("unmarshal string answer: %v", err)
	}
	if r.Answer.Text() != "bullet points" {
		t.Errorf("expected 'bullet points', got %q", r.Answer.Text())
	}

	if err := json.Unmarshal([]byte(`{"question_id":"format","answer":["bullets"," ","headings"]}`), &r); err != nil {
		t.Fatalf("unmarshal list answer: %v", err)
	}
	if r.Answer.Text() != "bullets, headings" {
		t.Errorf("expected joined answer, got %q", r.Answer.Text())
	}

	if err := json.Unmarshal([]byte(`{"answer":42}`), &r); err == nil {
		t.Error("expected error for numeric answer")
	}
}

func TestAnswer_MarshalSingleAsString(t *testing.T) {
	b, err := json.Marshal(Answer{"concise"})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"concise"` {
		t.Errorf("expected plain string, got %s", b)
	}
}

func TestStore_AddSkipsExistingIDs(t *testing.T) {
	s := NewStore()
	a := NewStatement(PhaseMetadata, CategoryStructure, "text should use bullet points", 0.9, "test")
	b := NewStatement(PhaseMetadata, CategoryStyle, "text should use a formal tone", 0.8, "test")

	if n := s.Add(a, b); n != 2 {
		t.Fatalf("expected 2 added, got %d", n)
	}
	if n := s.Add(a); n != 0 {
		t.Errorf("re-adding same id should add nothing, got %d", n)
	}
	if s.Len() != 2 {
		t.Errorf("expected len 2, got %d", s.Len())
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	a := NewStatement(PhaseMetadata, CategoryStructure, "text should use bullet points", 1, "test")
	s.Add(a)

	if s.Remove(uuid.New()) {
		t.Error("removing unknown id should report false")
	}
	if s.Len() != 1 {
		t.Errorf("unknown removal changed size to %d", s.Len())
	}
	if !s.Remove(a.ID) {
		t.Error("expected removal of known id")
	}
	for _, st := range s.All() {
		if st.ID == a.ID {
			t.Error("removed id still present")
		}
	}
	if s.Len() != 0 {
		t.Errorf("expected empty store, got %d", s.Len())
	}
}

func TestStore_AllReturnsCopy(t *testing.T) {
	s := NewStore()
	s.Add(NewStatement(PhaseMetadata, CategoryContent, "text should cover every lecture topic", 1, "test"))

	all := s.All()
	all[0].Statement = "mutated"
	if s.All()[0].Statement == "mutated" {
		t.Error("All should return a copy")
	}
}
