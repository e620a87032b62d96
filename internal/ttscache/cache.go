// Package ttscache holds synthesized narration audio keyed by section
// index. Pre-generation runs as a cancellable task per section; changing
// voice or speed invalidates every entry and cancels in-flight work, so a
// reader can never observe audio rendered with stale settings.
package ttscache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"podium/internal/logging"
)

// Synthesizer produces narration audio for a piece of text.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// DefaultWaitTimeout bounds how long a reader waits for an in-flight
// generation before fetching on demand.
const DefaultWaitTimeout = 5 * time.Second

type entry struct {
	done   chan struct{}
	audio  []byte
	cancel context.CancelFunc
}

// Cache is a per-session narration audio cache.
type Cache struct {
	synth       Synthesizer
	logger      *slog.Logger
	waitTimeout time.Duration

	mu      sync.Mutex
	voice   string
	speed   float64
	gen     uint64
	entries map[int]*entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithWaitTimeout overrides how long Fetch waits on an in-flight generation.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.waitTimeout = d
		}
	}
}

// New creates a cache bound to a synthesizer, voice, and playback speed.
func New(synth Synthesizer, voice string, speed float64, logger *slog.Logger, opts ...Option) *Cache {
	cache := &Cache{
		synth:       synth,
		logger:      logging.NewComponentLogger(logger, "ttscache"),
		waitTimeout: DefaultWaitTimeout,
		voice:       voice,
		speed:       speed,
		entries:     make(map[int]*entry),
	}
	for _, opt := range opts {
		opt(cache)
	}
	return cache
}

// Voice returns the active narration voice.
func (c *Cache) Voice() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

// Speed returns the active playback speed.
func (c *Cache) Speed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.speed
}

// SetVoice switches the narration voice, invalidating the cache when the
// value changes.
func (c *Cache) SetVoice(voice string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if voice == c.voice {
		return
	}
	c.voice = voice
	c.invalidateLocked()
}

// SetSpeed switches playback speed, invalidating the cache when the value
// changes.
func (c *Cache) SetSpeed(speed float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if speed == c.speed {
		return
	}
	c.speed = speed
	c.invalidateLocked()
}

// Invalidate drops every entry and cancels in-flight generations.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Cache) invalidateLocked() {
	for _, e := range c.entries {
		if e.cancel != nil {
			e.cancel()
		}
	}
	c.gen++
	c.entries = make(map[int]*entry)
}

// Prefetch starts background generation for a section. It returns
// immediately; a failed generation removes the entry so later readers fall
// back to an on-demand fetch.
func (c *Cache) Prefetch(section int, text string) {
	c.mu.Lock()
	if _, exists := c.entries[section]; exists {
		c.mu.Unlock()
		return
	}
	genCtx, cancel := context.WithCancel(context.Background())
	e := &entry{done: make(chan struct{}), cancel: cancel}
	c.entries[section] = e
	gen := c.gen
	voice := c.voice
	c.mu.Unlock()

	go func() {
		defer close(e.done)
		audio, err := c.synth.Synthesize(genCtx, text, voice)
		cancel()

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.gen != gen {
			// Voice or speed changed while generating; result is stale.
			return
		}
		if err != nil {
			delete(c.entries, section)
			c.logger.Warn("tts pre-generation failed",
				logging.Int(logging.FieldSection, section),
				logging.Error(err))
			return
		}
		e.audio = audio
	}()
}

// Fetch returns narration audio for a section: a completed entry is served
// directly, an in-flight generation is awaited up to the wait timeout, and
// anything else is fetched on demand.
func (c *Cache) Fetch(ctx context.Context, section int, text string) ([]byte, error) {
	c.mu.Lock()
	e := c.entries[section]
	gen := c.gen
	voice := c.voice
	c.mu.Unlock()

	if e != nil {
		select {
		case <-e.done:
			c.mu.Lock()
			current, present := c.entries[section]
			c.mu.Unlock()
			if present && current == e && len(e.audio) > 0 {
				return e.audio, nil
			}
			// Generation failed or was invalidated; fetch on demand.
		case <-time.After(c.waitTimeout):
			c.logger.Debug("gave up waiting on tts pre-generation",
				logging.Int(logging.FieldSection, section))
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	audio, err := c.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.gen == gen {
		done := make(chan struct{})
		close(done)
		c.entries[section] = &entry{done: done, audio: audio}
	}
	c.mu.Unlock()
	return audio, nil
}

// Ready reports whether a completed entry exists for the section.
func (c *Cache) Ready(section int) bool {
	c.mu.Lock()
	e := c.entries[section]
	c.mu.Unlock()
	if e == nil {
		return false
	}
	select {
	case <-e.done:
		return len(e.audio) > 0
	default:
		return false
	}
}

// Generating reports whether a generation is still in flight for the section.
func (c *Cache) Generating(section int) bool {
	c.mu.Lock()
	e := c.entries[section]
	c.mu.Unlock()
	if e == nil {
		return false
	}
	select {
	case <-e.done:
		return false
	default:
		return true
	}
}

// Len returns the number of cached entries, in-flight included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
