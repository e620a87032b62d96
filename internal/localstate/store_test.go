package localstate

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	return store
}

func TestPreferenceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, ok, err := store.Preference(ctx, PrefTheme); err != nil || ok {
		t.Fatalf("expected missing preference, got ok=%v err=%v", ok, err)
	}

	if err := store.SetPreference(ctx, PrefTheme, "dark"); err != nil {
		t.Fatalf("set preference: %v", err)
	}
	value, ok, err := store.Preference(ctx, PrefTheme)
	if err != nil {
		t.Fatalf("get preference: %v", err)
	}
	if !ok || value != "dark" {
		t.Fatalf("expected dark, got %q ok=%v", value, ok)
	}

	if err := store.SetPreference(ctx, PrefTheme, "light"); err != nil {
		t.Fatalf("update preference: %v", err)
	}
	value, _, err = store.Preference(ctx, PrefTheme)
	if err != nil {
		t.Fatalf("get updated preference: %v", err)
	}
	if value != "light" {
		t.Fatalf("expected upsert to replace value, got %q", value)
	}
}

func TestPreferenceRequiresKey(t *testing.T) {
	store := newTestStore(t)

	if err := store.SetPreference(context.Background(), "", "x"); err == nil {
		t.Fatal("expected error for empty preference key")
	}
}

func TestPreferencesListsAll(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetPreference(ctx, PrefTTSVoice, "nova"); err != nil {
		t.Fatalf("set voice: %v", err)
	}
	if err := store.SetPreference(ctx, PrefSpeed, "1.5"); err != nil {
		t.Fatalf("set speed: %v", err)
	}

	prefs, err := store.Preferences(ctx)
	if err != nil {
		t.Fatalf("list preferences: %v", err)
	}
	if len(prefs) != 2 {
		t.Fatalf("expected 2 preferences, got %d", len(prefs))
	}
	if prefs[PrefTTSVoice] != "nova" || prefs[PrefSpeed] != "1.5" {
		t.Fatalf("unexpected preferences: %#v", prefs)
	}
}

func TestIdentityRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	identity, err := store.Identity(ctx)
	if err != nil {
		t.Fatalf("get missing identity: %v", err)
	}
	if identity != nil {
		t.Fatalf("expected nil identity before registration, got %#v", identity)
	}

	registered := time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)
	saved := Identity{
		UserID:       42,
		Name:         "Ada Lovelace",
		Email:        "ada@example.com",
		Phone:        "+1 555 0100",
		RegisteredAt: registered,
	}
	if err := store.SaveIdentity(ctx, saved); err != nil {
		t.Fatalf("save identity: %v", err)
	}

	identity, err = store.Identity(ctx)
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if identity == nil {
		t.Fatal("expected identity after save")
	}
	if identity.UserID != 42 || identity.Name != "Ada Lovelace" || identity.Email != "ada@example.com" || identity.Phone != "+1 555 0100" {
		t.Fatalf("unexpected identity: %#v", identity)
	}
	if !identity.RegisteredAt.Equal(registered) {
		t.Fatalf("expected registered at %v, got %v", registered, identity.RegisteredAt)
	}
}

func TestSaveIdentityReplacesPrevious(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveIdentity(ctx, Identity{UserID: 1, Name: "First"}); err != nil {
		t.Fatalf("save first identity: %v", err)
	}
	if err := store.SaveIdentity(ctx, Identity{UserID: 2, Name: "Second"}); err != nil {
		t.Fatalf("save second identity: %v", err)
	}

	identity, err := store.Identity(ctx)
	if err != nil {
		t.Fatalf("get identity: %v", err)
	}
	if identity.UserID != 2 || identity.Name != "Second" {
		t.Fatalf("expected replacement identity, got %#v", identity)
	}
}

func TestSaveIdentityRequiresUserID(t *testing.T) {
	store := newTestStore(t)

	if err := store.SaveIdentity(context.Background(), Identity{Name: "No ID"}); err == nil {
		t.Fatal("expected error for missing user id")
	}
}

func TestClearIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveIdentity(ctx, Identity{UserID: 7, Name: "Gone"}); err != nil {
		t.Fatalf("save identity: %v", err)
	}
	if err := store.ClearIdentity(ctx); err != nil {
		t.Fatalf("clear identity: %v", err)
	}

	identity, err := store.Identity(ctx)
	if err != nil {
		t.Fatalf("get identity after clear: %v", err)
	}
	if identity != nil {
		t.Fatalf("expected nil identity after clear, got %#v", identity)
	}
}

func TestChatTranscriptOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lines := []struct {
		role, content string
	}{
		{"user", "What is the warranty?"},
		{"assistant", "Two years, parts and labor."},
		{"user", "Does it ship assembled?"},
	}
	for _, line := range lines {
		if err := store.AppendChatMessage(ctx, "session-a", line.role, line.content); err != nil {
			t.Fatalf("append %q: %v", line.content, err)
		}
	}
	if err := store.AppendChatMessage(ctx, "session-b", "user", "other session"); err != nil {
		t.Fatalf("append to other session: %v", err)
	}

	transcript, err := store.ChatTranscript(ctx, "session-a")
	if err != nil {
		t.Fatalf("get transcript: %v", err)
	}
	if len(transcript) != len(lines) {
		t.Fatalf("expected %d messages, got %d", len(lines), len(transcript))
	}
	for i, line := range lines {
		if transcript[i].Role != line.role || transcript[i].Content != line.content {
			t.Fatalf("message %d mismatch: %#v", i, transcript[i])
		}
	}
}

func TestAppendChatMessageRequiresSession(t *testing.T) {
	store := newTestStore(t)

	if err := store.AppendChatMessage(context.Background(), "", "user", "hi"); err == nil {
		t.Fatal("expected error for empty session id")
	}
}

func TestClearChat(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.AppendChatMessage(ctx, "session-a", "user", "line"); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	removed, err := store.ClearChat(ctx, "session-a")
	if err != nil {
		t.Fatalf("clear chat: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed rows, got %d", removed)
	}

	transcript, err := store.ChatTranscript(ctx, "session-a")
	if err != nil {
		t.Fatalf("get transcript after clear: %v", err)
	}
	if len(transcript) != 0 {
		t.Fatalf("expected empty transcript, got %d messages", len(transcript))
	}
}

func TestLockExcludesSecondInstance(t *testing.T) {
	dir := t.TempDir()

	first := NewLock(dir)
	if err := first.Acquire(); err != nil {
		t.Fatalf("acquire first lock: %v", err)
	}

	second := NewLock(dir)
	if err := second.Acquire(); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := first.Release(); err != nil {
		t.Fatalf("release first lock: %v", err)
	}
	if err := second.Acquire(); err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	if err := second.Release(); err != nil {
		t.Fatalf("release second lock: %v", err)
	}
}
