package status

import "testing"

func TestParse(t *testing.T) {
	for _, raw := range []string{"pending", "extracting", "embedding", "tagging", "complete", "error"} {
		if _, err := Parse(raw); err != nil {
			t.Errorf("Parse(%q): unexpected error: %v", raw, err)
		}
	}

	if _, err := Parse("unknown"); err == nil {
		t.Error("expected error for unknown status")
	}
}

func TestCanTransition_Forward(t *testing.T) {
	sequence := []Status{Pending, Extracting, Embedding, Tagging, Complete}

	for i := 0; i < len(sequence)-1; i++ {
		if !sequence[i].CanTransition(sequence[i+1]) {
			t.Errorf("expected %s -> %s to be allowed", sequence[i], sequence[i+1])
		}
	}

	// Skipping stages forward is allowed.
	if !Pending.CanTransition(Embedding) {
		t.Error("expected pending -> embedding to be allowed")
	}
}

func TestCanTransition_NeverRegresses(t *testing.T) {
	sequence := []Status{Pending, Extracting, Embedding, Tagging, Complete}

	for i := range sequence {
		for j := 0; j <= i; j++ {
			if sequence[i].CanTransition(sequence[j]) {
				t.Errorf("expected %s -> %s to be rejected", sequence[i], sequence[j])
			}
		}
	}
}

func TestCanTransition_ErrorFromNonTerminal(t *testing.T) {
	for _, s := range []Status{Pending, Extracting, Embedding, Tagging} {
		if !s.CanTransition(Error) {
			t.Errorf("expected %s -> error to be allowed", s)
		}
	}
}

func TestCanTransition_TerminalStatesFrozen(t *testing.T) {
	for _, s := range []Status{Complete, Error} {
		for _, next := range []Status{Pending, Extracting, Embedding, Tagging, Complete, Error} {
			if s.CanTransition(next) {
				t.Errorf("expected terminal %s -> %s to be rejected", s, next)
			}
		}
	}
}
