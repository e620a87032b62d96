package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"podium/internal/api"
	"podium/internal/audio"
	"podium/internal/config"
	"podium/internal/localstate"
	"podium/internal/logging"
	"podium/internal/player"
	"podium/internal/ttscache"
	"podium/internal/ws"
)

func newPlayCommand(cmdCtx *commandContext) *cobra.Command {
	var productFlag string
	var noTTS bool

	cmd := &cobra.Command{
		Use:   "play [product]",
		Short: "Play a product presentation",
		Long: "Connects to the presentation server and narrates the selected product " +
			"section by section. Registers the viewer first when no identity is stored.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				productFlag = args[0]
			}
			return runPlay(cmd, cmdCtx, productFlag, noTTS)
		},
	}

	cmd.Flags().StringVarP(&productFlag, "product", "p", "", "Product to present (id, number, or name fragment)")
	cmd.Flags().BoolVar(&noTTS, "no-tts", false, "Disable narration audio")
	return cmd
}

func runPlay(cmd *cobra.Command, cmdCtx *commandContext, productArg string, noTTS bool) error {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return err
	}
	logger := cmdCtx.ensureLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := localstate.Open(cfg.Paths.StateDir)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()

	lock := localstate.NewLock(cfg.Paths.StateDir)
	if err := lock.Acquire(); err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	client, err := cmdCtx.apiClient()
	if err != nil {
		return err
	}
	renderer := player.NewRenderer(cmd.OutOrStdout())
	if theme, ok, _ := store.Preference(ctx, localstate.PrefTheme); ok && theme == "plain" {
		renderer = player.NewPlainRenderer(cmd.OutOrStdout())
	}

	identity, err := store.Identity(ctx)
	if err != nil {
		return err
	}
	var selected *api.Product
	if identity == nil {
		registration := player.NewRegistration(client, renderer, cmd.InOrStdin(), logger)
		result, err := registration.Run(ctx)
		if err != nil {
			return err
		}
		identity = &localstate.Identity{
			UserID: result.UserID,
			Name:   result.Name,
			Email:  result.Email,
			Phone:  result.Phone,
		}
		if err := store.SaveIdentity(ctx, *identity); err != nil {
			return err
		}
		selected = &result.Product
	}

	if selected == nil {
		selected, err = resolveProduct(ctx, client, store, productArg)
		if err != nil {
			return err
		}
	}
	if err := store.SetPreference(ctx, localstate.PrefSelectedProduct, strconv.FormatInt(selected.ID, 10)); err != nil {
		return err
	}

	logger.Info("starting session",
		logging.Int64(logging.FieldProduct, selected.ID),
		logging.String("product_name", selected.Name))

	presentation, err := client.LoadPresentation(ctx, selected.ID)
	if err != nil {
		return fmt.Errorf("load presentation: %w", err)
	}

	voice, speed, delay, ttsEnabled := playbackSettings(ctx, client, cfg)
	if noTTS {
		ttsEnabled = false
	}
	rememberPlayback(ctx, store, voice, speed, delay, ttsEnabled)

	var sink player.Sink = player.NopSink{}
	if ttsEnabled {
		audioPlayer, err := audio.NewPlayer(cfg.Player.AudioPlayer, cfg.FFprobeBinary(), logger)
		if err != nil {
			renderer.Status("narration disabled: " + err.Error())
			ttsEnabled = false
		} else {
			sink = audioPlayer
			defer audioPlayer.Stop()
		}
	}

	socket := ws.NewClient(cfg.Server.WSURL, logger)
	if err := socket.Connect(ctx); err != nil {
		return err
	}
	defer socket.Close()

	cache := ttscache.New(client, voice, speed, logger)
	controller, err := player.NewController(player.Options{
		Socket:        socket,
		Backend:       client,
		Cache:         cache,
		Sink:          sink,
		Renderer:      renderer,
		Logger:        logger,
		SessionID:     uuid.NewString(),
		UserID:        identity.UserID,
		Transcript:    store,
		Presentation:  presentation,
		TTSEnabled:    ttsEnabled,
		Speed:         speed,
		SectionDelay:  time.Duration(delay * float64(time.Second)),
		PrefetchAhead: cfg.Player.PrefetchAhead,
	})
	if err != nil {
		return err
	}

	renderer.Status("Controls: [p]ause, [r]esume, [n]ext, [q]uit, or type a question.")
	go readCommands(ctx, cmd, controller)

	controller.Do(player.Play())
	err = controller.Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// resolveProduct picks the product from the argument, the saved preference,
// or an interactive prompt, in that order.
func resolveProduct(ctx context.Context, client *api.Client, store *localstate.Store, arg string) (*api.Product, error) {
	products, err := client.Products(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	if len(products) == 0 {
		return nil, errors.New("no products available")
	}

	if arg = strings.TrimSpace(arg); arg != "" {
		if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
			for i := range products {
				if products[i].ID == id {
					return &products[i], nil
				}
			}
		}
		if product := player.MatchProduct(products, arg); product != nil {
			return product, nil
		}
		return nil, fmt.Errorf("no product matches %q", arg)
	}

	if saved, ok, err := store.Preference(ctx, localstate.PrefSelectedProduct); err == nil && ok {
		if id, err := strconv.ParseInt(saved, 10, 64); err == nil {
			for i := range products {
				if products[i].ID == id {
					return &products[i], nil
				}
			}
		}
	}

	return &products[0], nil
}

// playbackSettings merges server-published settings over the local config.
func playbackSettings(ctx context.Context, client *api.Client, cfg *config.Config) (voice string, speed, delaySeconds float64, enabled bool) {
	voice = cfg.Player.TTSVoice
	speed = cfg.Player.Speed
	delaySeconds = cfg.Player.SectionDelay
	enabled = cfg.Player.TTSEnabled

	settings, err := client.Settings(ctx)
	if err != nil {
		return voice, speed, delaySeconds, enabled
	}
	if settings.TTSVoice != "" {
		voice = settings.TTSVoice
	}
	if settings.PresentationSpeed > 0 {
		speed = settings.PresentationSpeed
	}
	if settings.SectionDelay > 0 {
		delaySeconds = settings.SectionDelay
	}
	enabled = enabled && settings.TTSEnabled
	return voice, speed, delaySeconds, enabled
}

// rememberPlayback stores the effective session settings so other commands
// can show what the last session actually used. Failures are ignored; the
// preferences are informational.
func rememberPlayback(ctx context.Context, store *localstate.Store, voice string, speed, delay float64, enabled bool) {
	_ = store.SetPreference(ctx, localstate.PrefTTSVoice, voice)
	_ = store.SetPreference(ctx, localstate.PrefSpeed, strconv.FormatFloat(speed, 'f', -1, 64))
	_ = store.SetPreference(ctx, localstate.PrefSectionDelay, strconv.FormatFloat(delay, 'f', -1, 64))
	_ = store.SetPreference(ctx, localstate.PrefTTSEnabled, strconv.FormatBool(enabled))
}

// readCommands maps terminal input lines onto controller commands. Any line
// that is not a control key is treated as a chat question.
func readCommands(ctx context.Context, cmd *cobra.Command, controller *player.Controller) {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "p", "pause":
			controller.Do(player.Pause())
		case "r", "resume", "play":
			controller.Do(player.Resume())
		case "n", "next":
			controller.Do(player.Next())
		case "q", "quit", "stop":
			controller.Do(player.Stop())
			return
		default:
			controller.Do(player.Ask(line))
		}
	}
}
