package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"podium/internal/api"
	"podium/internal/localstate"
	"podium/internal/testsupport"
)

func newPlayTestServer(t *testing.T, settings *api.Settings, products []api.Product) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/settings", func(w http.ResponseWriter, _ *http.Request) {
		if settings == nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(settings)
	})
	mux.HandleFunc("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(products)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func newPlayTestClient(t *testing.T, server *httptest.Server) *api.Client {
	t.Helper()
	client, err := api.New(server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("new api client: %v", err)
	}
	return client
}

func TestPlaybackSettingsServerOverridesConfig(t *testing.T) {
	server := newPlayTestServer(t, &api.Settings{
		TTSVoice:          "orion",
		TTSEnabled:        true,
		PresentationSpeed: 1.5,
		SectionDelay:      2,
	}, nil)
	client := newPlayTestClient(t, server)
	cfg := testsupport.NewConfig(t,
		testsupport.WithServerURL(server.URL),
		testsupport.WithTTS("asteria"),
		testsupport.WithSpeed(1.0),
	)

	voice, speed, delay, enabled := playbackSettings(context.Background(), client, cfg)
	if voice != "orion" {
		t.Fatalf("expected server voice, got %q", voice)
	}
	if speed != 1.5 || delay != 2 {
		t.Fatalf("expected server speed/delay, got %v/%v", speed, delay)
	}
	if !enabled {
		t.Fatal("expected narration enabled")
	}
}

func TestPlaybackSettingsServerCanDisableTTS(t *testing.T) {
	server := newPlayTestServer(t, &api.Settings{TTSEnabled: false}, nil)
	client := newPlayTestClient(t, server)
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(server.URL), testsupport.WithTTS("asteria"))

	_, _, _, enabled := playbackSettings(context.Background(), client, cfg)
	if enabled {
		t.Fatal("expected server settings to disable narration")
	}
}

func TestPlaybackSettingsFallsBackToConfig(t *testing.T) {
	server := newPlayTestServer(t, nil, nil)
	client := newPlayTestClient(t, server)
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(server.URL), testsupport.WithTTS("asteria"))

	voice, speed, delay, enabled := playbackSettings(context.Background(), client, cfg)
	if voice != "asteria" {
		t.Fatalf("expected config voice on settings failure, got %q", voice)
	}
	if speed != cfg.Player.Speed || delay != cfg.Player.SectionDelay {
		t.Fatalf("expected config speed/delay, got %v/%v", speed, delay)
	}
	if !enabled {
		t.Fatal("expected config TTS flag preserved")
	}
}

func TestResolveProduct(t *testing.T) {
	products := []api.Product{
		{ID: 10, Name: "Standing Desk"},
		{ID: 11, Name: "Task Chair"},
	}
	server := newPlayTestServer(t, nil, products)
	client := newPlayTestClient(t, server)
	cfg := testsupport.NewConfig(t, testsupport.WithServerURL(server.URL))

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	store, err := localstate.Open(cfg.Paths.StateDir)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()
	ctx := context.Background()

	t.Run("by id argument", func(t *testing.T) {
		product, err := resolveProduct(ctx, client, store, "11")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if product.ID != 11 {
			t.Fatalf("expected product 11, got %d", product.ID)
		}
	})

	t.Run("by name fragment", func(t *testing.T) {
		product, err := resolveProduct(ctx, client, store, "chair")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if product.ID != 11 {
			t.Fatalf("expected Task Chair, got %q", product.Name)
		}
	})

	t.Run("unknown argument", func(t *testing.T) {
		if _, err := resolveProduct(ctx, client, store, "treadmill"); err == nil {
			t.Fatal("expected error for unmatched product")
		}
	})

	t.Run("saved preference", func(t *testing.T) {
		if err := store.SetPreference(ctx, localstate.PrefSelectedProduct, "11"); err != nil {
			t.Fatalf("save preference: %v", err)
		}
		product, err := resolveProduct(ctx, client, store, "")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if product.ID != 11 {
			t.Fatalf("expected saved product, got %d", product.ID)
		}
	})

	t.Run("defaults to first product", func(t *testing.T) {
		if err := store.SetPreference(ctx, localstate.PrefSelectedProduct, "999"); err != nil {
			t.Fatalf("save stale preference: %v", err)
		}
		product, err := resolveProduct(ctx, client, store, "")
		if err != nil {
			t.Fatalf("resolve: %v", err)
		}
		if product.ID != 10 {
			t.Fatalf("expected first product fallback, got %d", product.ID)
		}
	})
}
