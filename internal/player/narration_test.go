package player

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestWordIntervalSpreadsDurationAcrossWords(t *testing.T) {
	got := wordInterval(10*time.Second, 1.0, 100)
	if got != 100*time.Millisecond {
		t.Fatalf("expected 100ms interval, got %s", got)
	}
}

func TestWordIntervalScalesWithSpeed(t *testing.T) {
	base := wordInterval(10*time.Second, 1.0, 10)
	fast := wordInterval(10*time.Second, 2.0, 10)
	if fast >= base {
		t.Fatalf("expected faster speed to shorten interval: base=%s fast=%s", base, fast)
	}
	if fast != base/2 {
		t.Fatalf("expected half the interval at 2x speed, got %s", fast)
	}
}

func TestWordIntervalZeroWithoutDuration(t *testing.T) {
	if got := wordInterval(0, 1.0, 10); got != 0 {
		t.Fatalf("expected zero interval without duration, got %s", got)
	}
	if got := wordInterval(time.Second, 1.0, 0); got != 0 {
		t.Fatalf("expected zero interval without words, got %s", got)
	}
}

func TestWordIntervalEnforcesFloor(t *testing.T) {
	if got := wordInterval(10*time.Millisecond, 1.0, 1000); got != minWordInterval {
		t.Fatalf("expected floor interval %s, got %s", minWordInterval, got)
	}
}

func TestStreamWordsWritesWholeTextWithoutDuration(t *testing.T) {
	var buf bytes.Buffer
	if err := streamWords(context.Background(), &buf, "hello narrated world", 0, 1.0); err != nil {
		t.Fatalf("stream: %v", err)
	}
	if got := buf.String(); got != "hello narrated world\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestStreamWordsStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := streamWords(ctx, &buf, strings.Repeat("word ", 50), time.Minute, 1.0)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if got := buf.String(); !strings.HasPrefix(got, "word") {
		t.Fatalf("expected at least the first word, got %q", got)
	}
	if strings.Count(buf.String(), "word") >= 50 {
		t.Fatal("expected cancellation to cut the stream short")
	}
}
