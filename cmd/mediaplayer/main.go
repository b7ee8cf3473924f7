// Command mediaplayer is the network media player's entry point: it
// wires the message factory, the two reservoirs, the codec
// controller, the protocol manager, the pipeline orchestrator, an
// output animator, the track database, and the control/diagnostics
// HTTP surface into one running process.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	flag "github.com/spf13/pflag"

	"github.com/arung-agamani/denpa-pipeline/config"
	"github.com/arung-agamani/denpa-pipeline/internal/api"
	"github.com/arung-agamani/denpa-pipeline/internal/auth"
	"github.com/arung-agamani/denpa-pipeline/internal/codec"
	"github.com/arung-agamani/denpa-pipeline/internal/codec/adts"
	"github.com/arung-agamani/denpa-pipeline/internal/codec/wav"
	"github.com/arung-agamani/denpa-pipeline/internal/diag"
	"github.com/arung-agamani/denpa-pipeline/internal/msg"
	"github.com/arung-agamani/denpa-pipeline/internal/pipeline"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol/hls"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol/httpstream"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol/qobuz"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol/raop"
	"github.com/arung-agamani/denpa-pipeline/internal/protocol/songcast"
	"github.com/arung-agamani/denpa-pipeline/internal/reservoir"
	"github.com/arung-agamani/denpa-pipeline/internal/trackdb"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// These six flags are a tests/demos convenience for pointing the
	// player at a single Songcast/RAOP sender or seeding an initial
	// URI; the running process is otherwise driven entirely through
	// internal/api once it is up.
	var (
		url     = flag.String("url", "", "initial track URI to queue at startup")
		scanDir = flag.String("scan-dir", "", "directory to recursively scan for audio files and queue at startup")
		udn     = flag.String("udn", "", "device UDN to advertise (Songcast/RAOP discovery, tests/demos only)")
		name    = flag.String("name", "Denpa Media Player", "friendly device name")
		channel = flag.Uint("channel", 0, "Songcast multicast channel (tests/demos only)")
		adapter = flag.String("adapter", "", "network adapter to bind to (tests/demos only)")
	)
	flag.Parse()
	if *udn == "" {
		*udn = uuid.NewString()
	}

	cfg := config.Load()
	slog.Info("starting mediaplayer",
		"api_addr", cfg.APIAddr, "name", *name, "udn", *udn, "channel", *channel, "adapter", *adapter)

	registry := diag.NewRegistry()
	ids := msg.NewIDProvider()
	factory := msg.NewMessageFactory(msg.DefaultFactoryConfig(), ids, registry)

	encoded := reservoir.NewEncodedReservoir(uint64(cfg.EncodedReservoirMaxBytes), cfg.EncodedReservoirMaxStreams)
	decoded := reservoir.NewDecodedReservoir(cfg.DecodedReservoirMaxJiffies, cfg.GorgeJiffies, cfg.StarvationBelowJiffies)

	codecController := codec.NewController(factory, encoded, decoded, []codec.Codec{wav.New(), adts.New()})

	manager := protocol.NewManager(
		httpstream.New(),
		hls.New(),
		raop.New(),
		songcast.New(),
		qobuz.NewProtocol(cfg.QobuzAppID, cfg.QobuzAppSecret),
	)

	tracks := trackdb.NewDatabase()
	shuffler := trackdb.NewShuffler(tracks, time.Now().UnixNano())

	authSvc := auth.New(auth.Config{
		Username:           cfg.DJUsername,
		Password:           cfg.DJPassword,
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           24 * time.Hour,
		MaxLoginAttempts:   5,
		LoginWindowSeconds: 300,
	})

	apiSrv := api.New(cfg.APIAddr, nil, tracks, registry, authSvc)
	eng := newEngine(factory, ids, encoded, manager, tracks, shuffler, apiSrv.Hub())
	apiSrv.SetController(eng)

	anim, closeAnim, err := newAnimator()
	if err != nil {
		slog.Error("failed to open audio output", "error", err)
		os.Exit(1)
	}
	defer closeAnim()

	orchestrator := pipeline.New(decoded, factory, pipeline.Config{
		RampLong:        cfg.RampLongJiffies,
		RampShort:       cfg.RampShortJiffies,
		StarvationRamp:  cfg.StarvationRampJiffies,
		StarvationBelow: cfg.StarvationBelowJiffies,
	}, anim, eng, eng, eng, eng)
	eng.attach(orchestrator)

	codecController.OnCodecRecognised(func(c codec.Codec) {
		orchestrator.Seeker.SetActiveCodec(c)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutdown signal received")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := apiSrv.Shutdown(shutdownCtx); err != nil {
			slog.Warn("api server shutdown error", "error", err)
		}
		_ = encoded.Push(shutdownCtx, factory.NewQuit())
		cancel()
	}()

	go func() {
		if err := codecController.Run(ctx); err != nil {
			slog.Error("codec controller stopped", "error", err)
		}
	}()

	if *url != "" {
		if _, err := tracks.Insert(trackdb.IDNone, *url, trackdb.ResolveMetadata(*url, "")); err != nil {
			slog.Warn("failed to queue startup url", "url", *url, "error", err)
		}
	}
	if *scanDir != "" {
		result, err := trackdb.ScanDirectory(tracks, *scanDir)
		if err != nil {
			slog.Warn("failed to scan startup directory", "dir", *scanDir, "error", err)
		} else {
			slog.Info("scanned startup directory", "dir", *scanDir, "inserted", len(result.Inserted), "errors", len(result.Errors))
		}
	}

	go func() {
		if err := apiSrv.Run(); err != nil {
			slog.Error("api server error", "error", err)
		}
	}()

	if err := orchestrator.Run(ctx); err != nil && ctx.Err() == nil {
		slog.Error("pipeline stopped with error", "error", err)
		os.Exit(1)
	}

	encoded.Close()
	decoded.Close()
	slog.Info("mediaplayer stopped")
}
