package speech

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newSleepSpeaker(t *testing.T) *CommandSpeaker {
	t.Helper()
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	s, err := NewCommandSpeaker("sleep", nil)
	if err != nil {
		t.Fatalf("new speaker: %v", err)
	}
	return s
}

func TestCommandSpeaker_NewRequestCancelsCurrent(t *testing.T) {
	s := newSleepSpeaker(t)

	if err := s.Speak(context.Background(), "30"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	first := s.done

	start := time.Now()
	if err := s.Speak(context.Background(), "0"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	select {
	case <-first:
	default:
		t.Fatal("first utterance still playing")
	}
	s.Wait()
	if time.Since(start) > 10*time.Second {
		t.Error("interrupting took as long as the utterance")
	}
}

func TestCommandSpeaker_Stop(t *testing.T) {
	s := newSleepSpeaker(t)
	if err := s.Speak(context.Background(), "30"); err != nil {
		t.Fatalf("speak: %v", err)
	}
	s.Stop()
	s.Stop() // idempotent
}

func TestCommandSpeaker_FailuresAreSilent(t *testing.T) {
	s := newSleepSpeaker(t)
	// sleep rejects a non-numeric duration; the error is only logged.
	if err := s.Speak(context.Background(), "¿Cuánto es 7 por 8?"); err != nil {
		t.Errorf("Speak returned %v, want nil", err)
	}
	s.Wait()
}

func TestNew_FallsBackToNop(t *testing.T) {
	if _, ok := New("", nil).(Nop); !ok {
		t.Error("empty command should give Nop")
	}
	if _, ok := New("definitely-not-a-tts-binary -v es", nil).(Nop); !ok {
		t.Error("missing binary should give Nop")
	}
}

func TestHardWon(t *testing.T) {
	want := "¡Guau! ¡Has superado un reto difícil! Eres una campeona, Emmita."
	if got := HardWon(""); got != want {
		t.Errorf("HardWon(\"\") = %q", got)
	}
	if got := HardWon("Lucía"); got != "¡Guau! ¡Has superado un reto difícil! Eres una campeona, Lucía." {
		t.Errorf("HardWon(Lucía) = %q", got)
	}
}
