package player

import (
	"context"
	"io"
	"strings"
	"time"
)

// minWordInterval keeps word reveal visible even for very short clips.
const minWordInterval = 20 * time.Millisecond

// wordInterval computes the delay between word reveals so the visible text
// tracks the narration: the clip duration scaled by playback speed, spread
// across the word count.
func wordInterval(duration time.Duration, speed float64, wordCount int) time.Duration {
	if wordCount <= 0 || duration <= 0 {
		return 0
	}
	if speed <= 0 {
		speed = 1
	}
	interval := time.Duration(float64(duration) / speed / float64(wordCount))
	if interval < minWordInterval {
		interval = minWordInterval
	}
	return interval
}

// streamWords writes the text word by word so the reveal stays aligned with
// audio playback, correcting drift against the narration start time rather
// than the previous word. It returns early when the context is cancelled;
// with no usable duration the whole text is written at once.
func streamWords(ctx context.Context, w io.Writer, text string, duration time.Duration, speed float64) error {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	interval := wordInterval(duration, speed, len(words))
	if interval == 0 {
		_, err := io.WriteString(w, strings.Join(words, " ")+"\n")
		return err
	}

	start := time.Now()
	for i, word := range words {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, word); err != nil {
			return err
		}
		if i == len(words)-1 {
			break
		}
		wait := time.Until(start.Add(time.Duration(i+1) * interval))
		if wait <= 0 {
			continue
		}
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			_, _ = io.WriteString(w, "\n")
			return ctx.Err()
		}
	}
	_, err := io.WriteString(w, "\n")
	return err
}
