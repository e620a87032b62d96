package player

import (
	"context"
	"strings"
	"time"

	"podium/internal/api"
	"podium/internal/logging"
)

// runChat executes one question-and-answer exchange. Narration is silenced
// before the state flips to chat, and the state flips before any network
// call, so narration and answer audio can never overlap.
func (c *Controller) runChat(ctx context.Context, question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil
	}

	wasNarrating := c.narrating || c.opts.Sink.Playing()
	if wasNarrating {
		if err := c.opts.Backend.Interrupt(ctx); err != nil {
			c.logger.Warn("interrupt request failed", logging.Error(err))
		}
		c.interruptNarration()
	}
	if err := c.machine.Transition(StateChatActive); err != nil {
		return err
	}

	c.opts.Renderer.ChatQuestion(question)
	c.recordChat(ctx, "user", question)

	resp, err := c.opts.Backend.Chat(ctx, question, c.opts.UserID)
	if err != nil {
		c.opts.Renderer.Error("chat failed: " + err.Error())
		c.endChat()
		return err
	}

	c.opts.Renderer.ChatAnswer(resp.Response)
	c.opts.Renderer.References(resp.References)
	c.recordChat(ctx, "assistant", resp.Response)

	if c.opts.TTSEnabled {
		c.speakAnswer(ctx, resp.Response, referenceImages(resp))
	}

	c.endChat()
	return nil
}

// speakAnswer plays the answer audio, cycling reference images across the
// clip's duration.
func (c *Controller) speakAnswer(ctx context.Context, answer string, images []string) {
	voice := ""
	if c.opts.Cache != nil {
		voice = c.opts.Cache.Voice()
	}
	clip, err := c.opts.Backend.Synthesize(ctx, answer, voice)
	if err != nil {
		c.logger.Warn("answer synthesis failed", logging.Error(err))
		return
	}
	duration, err := c.opts.Sink.Start(ctx, clip)
	if err != nil {
		c.logger.Warn("answer playback failed", logging.Error(err))
		return
	}
	if len(images) > 0 && duration > 0 {
		c.cycleImages(ctx, images, duration)
	}
	if err := c.opts.Sink.Wait(ctx); err != nil && ctx.Err() == nil {
		c.logger.Debug("answer playback interrupted", logging.Error(err))
	}
}

// cycleImages shows each reference image for an equal slice of the clip.
func (c *Controller) cycleImages(ctx context.Context, images []string, duration time.Duration) {
	slice := duration / time.Duration(len(images))
	for i, url := range images {
		c.opts.Renderer.Images([]string{url})
		if i == len(images)-1 {
			return
		}
		select {
		case <-time.After(slice):
		case <-ctx.Done():
			return
		}
	}
}

// endChat leaves chat mode. A live session lands in Paused; the viewer
// resumes explicitly.
func (c *Controller) endChat() {
	state, err := c.machine.EndChat()
	if err != nil {
		c.logger.Warn("leave chat failed", logging.Error(err))
		return
	}
	if state == StatePaused {
		c.opts.Renderer.Notice("Presentation paused. Resume when ready.")
	}
}

func (c *Controller) recordChat(ctx context.Context, role, content string) {
	if c.opts.Transcript == nil || c.opts.SessionID == "" {
		return
	}
	if err := c.opts.Transcript.AppendChatMessage(ctx, c.opts.SessionID, role, content); err != nil {
		c.logger.Debug("transcript write failed", logging.Error(err))
	}
}

func referenceImages(resp *api.ChatResponse) []string {
	var urls []string
	for _, ref := range resp.References {
		urls = append(urls, ref.Images...)
	}
	return urls
}
