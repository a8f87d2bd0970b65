// Package speech reads prompts and feedback aloud in Spanish.
package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// DefaultCommand speaks Spanish (Spain) at roughly 0.9x the normal rate.
const DefaultCommand = "espeak-ng -v es -s 157"

// Speaker reads text aloud. Only one utterance plays at a time: Speak
// interrupts whatever is playing. Speak returns once the utterance has
// started; playback failures are logged, never returned.
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Stop()
}

// Nop is a Speaker that stays silent.
type Nop struct{}

func (Nop) Speak(context.Context, string) error { return nil }
func (Nop) Stop()                               {}

// CommandSpeaker speaks by running an external text-to-speech command with
// the text as its last argument.
type CommandSpeaker struct {
	name   string
	args   []string
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewCommandSpeaker parses command (program followed by arguments) and checks
// the program is installed.
func NewCommandSpeaker(command string, logger *zap.Logger) (*CommandSpeaker, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty speech command")
	}
	if _, err := exec.LookPath(fields[0]); err != nil {
		return nil, fmt.Errorf("speech command %q: %w", fields[0], err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandSpeaker{name: fields[0], args: fields[1:], logger: logger}, nil
}

// New returns a CommandSpeaker for command, or Nop when the command is empty
// or unavailable.
func New(command string, logger *zap.Logger) Speaker {
	if command == "" {
		return Nop{}
	}
	s, err := NewCommandSpeaker(command, logger)
	if err != nil {
		if logger != nil {
			logger.Info("speech disabled", zap.Error(err))
		}
		return Nop{}
	}
	return s
}

func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	args := append(append([]string{}, s.args...), text)
	cmd := exec.CommandContext(ctx, s.name, args...)
	if err := cmd.Start(); err != nil {
		cancel()
		s.logger.Warn("start speech", zap.String("text", text), zap.Error(err))
		return nil
	}

	done := make(chan struct{})
	s.cancel, s.done = cancel, done
	go func() {
		defer close(done)
		defer cancel()
		if err := cmd.Wait(); err != nil && ctx.Err() == nil {
			s.logger.Warn("speech failed", zap.String("text", text), zap.Error(err))
		}
	}()
	return nil
}

// Stop interrupts the current utterance and waits for it to end.
func (s *CommandSpeaker) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Wait blocks until the current utterance finishes on its own.
func (s *CommandSpeaker) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (s *CommandSpeaker) stopLocked() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel, s.done = nil, nil
}
