package player

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"podium/internal/api"
	"podium/internal/logging"
	"podium/internal/ttscache"
	"podium/internal/ws"
)

// Socket is the presentation WebSocket surface the controller drives.
type Socket interface {
	Send(ctx context.Context, action string) error
	Messages() <-chan ws.Message
	Errors() <-chan error
	Close() error
}

// Backend covers the REST calls made during a playback session.
type Backend interface {
	Interrupt(ctx context.Context) error
	Chat(ctx context.Context, message string, userID int64) (*api.ChatResponse, error)
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// Sink plays one audio clip at a time.
type Sink interface {
	Start(ctx context.Context, clip []byte) (time.Duration, error)
	Wait(ctx context.Context) error
	Stop()
	Playing() bool
}

// Transcript records chat lines for later review.
type Transcript interface {
	AppendChatMessage(ctx context.Context, sessionID, role, content string) error
}

type commandKind int

const (
	cmdPlay commandKind = iota
	cmdPause
	cmdResume
	cmdNext
	cmdStop
	cmdChat
)

// Command is a typed viewer action delivered to the controller loop.
type Command struct {
	kind     commandKind
	question string
}

// Play starts or restarts the presentation.
func Play() Command { return Command{kind: cmdPlay} }

// Pause holds narration at the current section.
func Pause() Command { return Command{kind: cmdPause} }

// Resume continues a paused session.
func Resume() Command { return Command{kind: cmdResume} }

// Next skips to the following section.
func Next() Command { return Command{kind: cmdNext} }

// Stop ends the session.
func Stop() Command { return Command{kind: cmdStop} }

// Ask opens a chat exchange with the given question.
func Ask(question string) Command { return Command{kind: cmdChat, question: question} }

// Options configures a Controller.
type Options struct {
	Socket   Socket
	Backend  Backend
	Cache    *ttscache.Cache
	Sink     Sink
	Renderer *Renderer
	Logger   *slog.Logger

	SessionID  string
	UserID     int64
	Transcript Transcript

	// Presentation holds the preloaded section data used for prefetch.
	Presentation *api.Presentation

	TTSEnabled    bool
	Speed         float64
	SectionDelay  time.Duration
	PrefetchAhead int
}

type sectionResult struct {
	index int
	err   error
}

// Controller owns the playback session. All session state lives in the Run
// goroutine; viewer input arrives as typed Commands and server events as
// socket messages, so there is no shared mutable state to race on.
type Controller struct {
	opts    Options
	logger  *slog.Logger
	machine *Machine
	images  *imageRegistry

	cmds     chan Command
	narrDone chan sectionResult

	// Fields below are touched only from the Run goroutine.
	sections      []api.Section
	totalSections int
	narrating     bool
	narrCancel    context.CancelFunc
	stopping      bool
}

// NewController builds a controller; Run must be called to start it.
func NewController(opts Options) (*Controller, error) {
	if opts.Socket == nil || opts.Backend == nil || opts.Sink == nil || opts.Renderer == nil {
		return nil, errors.New("player: socket, backend, sink, and renderer are required")
	}
	if opts.Speed <= 0 {
		opts.Speed = 1
	}
	var sections []api.Section
	total := 0
	if opts.Presentation != nil {
		sections = opts.Presentation.Data
		total = opts.Presentation.Sections
	}
	return &Controller{
		opts:          opts,
		logger:        logging.NewComponentLogger(opts.Logger, "player"),
		machine:       NewMachine(),
		images:        newImageRegistry(),
		cmds:          make(chan Command, 8),
		narrDone:      make(chan sectionResult, 1),
		sections:      sections,
		totalSections: total,
	}, nil
}

// State exposes the current session state.
func (c *Controller) State() State {
	return c.machine.State()
}

// Do queues a viewer command. It never blocks; a full queue drops the
// command and reports false.
func (c *Controller) Do(cmd Command) bool {
	select {
	case c.cmds <- cmd:
		return true
	default:
		return false
	}
}

// Run drives the session until it completes, is stopped, or the context is
// cancelled.
func (c *Controller) Run(ctx context.Context) error {
	for {
		select {
		case cmd := <-c.cmds:
			exit, err := c.handleCommand(ctx, cmd)
			if err != nil {
				c.logger.Warn("command failed",
					logging.String(logging.FieldEventType, "command"),
					logging.Error(err))
			}
			if exit {
				return nil
			}
		case msg, ok := <-c.opts.Socket.Messages():
			if !ok {
				return nil
			}
			if exit := c.handleMessage(ctx, msg); exit {
				return nil
			}
		case err := <-c.opts.Socket.Errors():
			c.cancelNarration()
			if c.stopping || errors.Is(err, context.Canceled) {
				return nil
			}
			c.opts.Renderer.Error("connection lost: " + err.Error())
			return err
		case res := <-c.narrDone:
			if exit := c.finishSection(ctx, res); exit {
				return nil
			}
		case <-ctx.Done():
			c.cancelNarration()
			c.opts.Sink.Stop()
			return ctx.Err()
		}
	}
}

func (c *Controller) handleCommand(ctx context.Context, cmd Command) (bool, error) {
	switch cmd.kind {
	case cmdPlay:
		if err := c.machine.Transition(StatePresenting); err != nil {
			return false, err
		}
		return false, c.opts.Socket.Send(ctx, ws.ActionPlay)

	case cmdPause:
		if c.machine.State() != StatePresenting {
			return false, errors.New("nothing to pause")
		}
		c.interruptNarration()
		if err := c.machine.Transition(StatePaused); err != nil {
			return false, err
		}
		c.opts.Renderer.Notice("Paused.")
		return false, c.opts.Socket.Send(ctx, ws.ActionPause)

	case cmdResume:
		if c.machine.State() != StatePaused {
			return false, errors.New("nothing to resume")
		}
		if err := c.machine.Transition(StatePresenting); err != nil {
			return false, err
		}
		return false, c.opts.Socket.Send(ctx, ws.ActionResume)

	case cmdNext:
		state := c.machine.State()
		if state != StatePresenting && state != StatePaused {
			return false, errors.New("no section to skip")
		}
		c.interruptNarration()
		if state == StatePaused {
			if err := c.machine.Transition(StatePresenting); err != nil {
				return false, err
			}
		}
		return false, c.opts.Socket.Send(ctx, ws.ActionNext)

	case cmdStop:
		c.interruptNarration()
		if err := c.machine.Transition(StateStopped); err != nil {
			return false, err
		}
		c.stopping = true
		c.images.Clear()
		if c.opts.Cache != nil {
			c.opts.Cache.Invalidate()
		}
		sendErr := c.opts.Socket.Send(ctx, ws.ActionStop)
		c.opts.Renderer.Notice("Stopped.")
		if sendErr != nil {
			// Socket already gone; nothing left to wait for.
			return true, nil
		}
		return false, nil

	case cmdChat:
		return false, c.runChat(ctx, cmd.question)
	}
	return false, nil
}

func (c *Controller) handleMessage(ctx context.Context, msg ws.Message) bool {
	switch msg.Type {
	case ws.TypeStart:
		c.totalSections = msg.TotalSections
		c.opts.Renderer.Title(msg.Title, msg.TotalSections)

	case ws.TypeSection:
		if c.machine.State() != StatePresenting || c.narrating {
			// Stale delivery after a pause, chat, or skip.
			c.logger.Debug("discarding section",
				logging.Int(logging.FieldSection, msg.SectionIndex),
				logging.String("state", c.machine.State().String()))
			return false
		}
		c.startSection(ctx, msg)

	case ws.TypeStatus:
		if msg.Message != "" {
			c.opts.Renderer.Status(msg.Message)
		}

	case ws.TypeInterrupted:
		c.interruptNarration()

	case ws.TypeComplete:
		c.cancelNarration()
		if err := c.machine.Transition(StateComplete); err == nil {
			c.opts.Renderer.Notice("Presentation complete.")
		}
		c.images.Clear()
		if c.opts.Cache != nil {
			c.opts.Cache.Invalidate()
		}
		return true

	case ws.TypeStopped:
		c.cancelNarration()
		return true

	case ws.TypeError:
		c.opts.Renderer.Error(msg.Message)
	}
	return false
}

// startSection renders a section and narrates it in a background goroutine
// so the command loop stays responsive.
func (c *Controller) startSection(ctx context.Context, msg ws.Message) {
	title := msg.Title
	if title == "" && msg.SectionIndex < len(c.sections) {
		title = c.sections[msg.SectionIndex].Title
	}
	c.opts.Renderer.SectionHeader(msg.SectionIndex, c.totalSections, title)
	c.images.Preload(msg.SectionIndex, msg.Images)
	c.prefetchAhead(msg.SectionIndex)

	narrCtx, cancel := context.WithCancel(ctx)
	c.narrCancel = cancel
	c.narrating = true

	go func() {
		err := c.narrate(narrCtx, msg)
		cancel()
		c.narrDone <- sectionResult{index: msg.SectionIndex, err: err}
	}()
}

func (c *Controller) narrate(ctx context.Context, msg ws.Message) error {
	if !c.opts.TTSEnabled || c.opts.Cache == nil {
		c.opts.Renderer.Content(msg.Content)
		return nil
	}

	clip, err := c.opts.Cache.Fetch(ctx, msg.SectionIndex, msg.Content)
	if err != nil {
		c.logger.Warn("narration synthesis failed",
			logging.Int(logging.FieldSection, msg.SectionIndex),
			logging.Error(err))
		c.opts.Renderer.Content(msg.Content)
		return nil
	}

	duration, err := c.opts.Sink.Start(ctx, clip)
	if err != nil {
		c.opts.Renderer.Content(msg.Content)
		return err
	}
	if streamErr := c.opts.Renderer.Narrate(ctx, msg.Content, duration, c.opts.Speed); streamErr != nil {
		return streamErr
	}
	return c.opts.Sink.Wait(ctx)
}

// finishSection runs after narration ends: takeaways, images, the
// inter-section delay, then section_done.
func (c *Controller) finishSection(ctx context.Context, res sectionResult) bool {
	c.narrating = false
	c.narrCancel = nil

	if res.err != nil {
		if errors.Is(res.err, context.Canceled) {
			return false
		}
		c.logger.Warn("section playback failed",
			logging.Int(logging.FieldSection, res.index),
			logging.Error(res.err))
	}
	if c.machine.State() != StatePresenting {
		return false
	}

	if res.index < len(c.sections) {
		c.opts.Renderer.Takeaways(c.sections[res.index].KeyTakeaways)
	}
	c.opts.Renderer.Images(c.images.Section(res.index))

	if c.opts.SectionDelay > 0 {
		select {
		case <-time.After(c.opts.SectionDelay):
		case <-ctx.Done():
			return true
		}
	}

	if err := c.opts.Socket.Send(ctx, ws.ActionSectionDone); err != nil {
		c.opts.Renderer.Error("connection lost: " + err.Error())
		return true
	}
	return false
}

func (c *Controller) prefetchAhead(current int) {
	if !c.opts.TTSEnabled || c.opts.Cache == nil || c.opts.PrefetchAhead <= 0 {
		return
	}
	for i := current + 1; i <= current+c.opts.PrefetchAhead && i < len(c.sections); i++ {
		c.opts.Cache.Prefetch(i, c.sections[i].Content)
	}
}

// interruptNarration cancels in-flight narration and silences the sink.
func (c *Controller) interruptNarration() {
	c.cancelNarration()
	c.opts.Sink.Stop()
}

func (c *Controller) cancelNarration() {
	if c.narrCancel != nil {
		c.narrCancel()
		c.narrCancel = nil
	}
}
