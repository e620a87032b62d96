// Package audio plays synthesized narration through an external player
// binary. Playback is one clip at a time; Stop kills the process and removes
// the temp file, so stopped audio cannot be resumed, only re-fetched.
package audio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"podium/internal/logging"
)

// ErrBusy is returned when Start is called while a clip is still playing.
var ErrBusy = errors.New("audio: playback already in progress")

// Player runs an external audio player binary one clip at a time.
type Player struct {
	binary  string
	ffprobe string
	logger  *slog.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	cancel   context.CancelFunc
	path     string
	duration time.Duration
	waitErr  chan error
}

// NewPlayer verifies the player binary is on PATH and returns a Player.
func NewPlayer(binary, ffprobeBinary string, logger *slog.Logger) (*Player, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("audio: player binary not configured")
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, fmt.Errorf("audio: locate %q: %w", binary, err)
	}
	return &Player{
		binary:  binary,
		ffprobe: ffprobeBinary,
		logger:  logging.NewComponentLogger(logger, "audio"),
	}, nil
}

// Start writes the clip to a temp file, probes its duration, and launches
// the player binary. It returns the probed duration without waiting for
// playback to finish.
func (p *Player) Start(ctx context.Context, clip []byte) (time.Duration, error) {
	if len(clip) == 0 {
		return 0, errors.New("audio: empty clip")
	}

	p.mu.Lock()
	if p.cmd != nil {
		p.mu.Unlock()
		return 0, ErrBusy
	}
	p.mu.Unlock()

	path := filepath.Join(os.TempDir(), "podium-"+uuid.NewString()+".mp3")
	if err := os.WriteFile(path, clip, 0o600); err != nil {
		return 0, fmt.Errorf("audio: write clip: %w", err)
	}

	duration, err := ProbeDuration(ctx, p.ffprobe, path)
	if err != nil {
		p.logger.Debug("duration probe failed", logging.Error(err))
		duration = 0
	}

	playCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(playCtx, p.binary, playerArgs(p.binary, path)...)
	if err := cmd.Start(); err != nil {
		cancel()
		os.Remove(path)
		return 0, fmt.Errorf("audio: start %q: %w", p.binary, err)
	}

	waitErr := make(chan error, 1)
	p.mu.Lock()
	p.cmd = cmd
	p.cancel = cancel
	p.path = path
	p.duration = duration
	p.waitErr = waitErr
	p.mu.Unlock()

	go func() {
		err := cmd.Wait()
		cancel()

		p.mu.Lock()
		if p.cmd == cmd {
			p.cmd = nil
			p.cancel = nil
			p.path = ""
		}
		p.mu.Unlock()

		os.Remove(path)
		waitErr <- err
	}()

	return duration, nil
}

// Wait blocks until the current clip finishes or is stopped. A nil error
// after Stop is not guaranteed; callers that stopped playback should ignore
// the result.
func (p *Player) Wait(ctx context.Context) error {
	p.mu.Lock()
	waitErr := p.waitErr
	p.mu.Unlock()
	if waitErr == nil {
		return nil
	}
	select {
	case err := <-waitErr:
		return err
	case <-ctx.Done():
		p.Stop()
		<-waitErr
		return ctx.Err()
	}
}

// Stop kills the player process and removes the clip's temp file. It is a
// no-op when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	path := p.path
	p.cmd = nil
	p.cancel = nil
	p.path = ""
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if path != "" {
		os.Remove(path)
	}
}

// Playing reports whether a clip is currently being played.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cmd != nil
}

// Duration returns the probed duration of the current or most recent clip.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.duration
}

func playerArgs(binary, path string) []string {
	switch filepath.Base(binary) {
	case "ffplay":
		return []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}
	case "mpv":
		return []string{"--no-video", "--really-quiet", path}
	case "afplay", "aplay", "paplay":
		return []string{path}
	default:
		return []string{path}
	}
}
