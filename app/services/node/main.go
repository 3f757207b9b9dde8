package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ardanlabs/conf/v3"
	"github.com/google/uuid"
	"github.com/meshledger/meshledger/app/services/node/handlers"
	"github.com/meshledger/meshledger/business/sys/metrics"
	"github.com/meshledger/meshledger/foundation/blockchain/genesis"
	"github.com/meshledger/meshledger/foundation/blockchain/peer"
	"github.com/meshledger/meshledger/foundation/blockchain/state"
	"github.com/meshledger/meshledger/foundation/blockchain/storage/memory"
	"github.com/meshledger/meshledger/foundation/blockchain/worker"
	"github.com/meshledger/meshledger/foundation/events"
	"github.com/meshledger/meshledger/foundation/logger"
	"go.uber.org/zap"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger.
	log, err := logger.New("NODE")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	// Perform the startup and shutdown sequence.
	if err := run(log); err != nil {
		log.Errorw("startup", "ERROR", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(log *zap.SugaredLogger) error {

	// =========================================================================
	// Configuration

	// This is all the configuration for the application and the default values.
	// Configuration values will be passed through the application as individual
	// values.
	cfg := struct {
		conf.Version
		Web struct {
			ReadTimeout     time.Duration `conf:"default:5s"`
			WriteTimeout    time.Duration `conf:"default:120s"`
			IdleTimeout     time.Duration `conf:"default:120s"`
			ShutdownTimeout time.Duration `conf:"default:20s"`
			DebugHost       string        `conf:"default:0.0.0.0:7080"`
			PublicHost      string        `conf:"default:0.0.0.0:8080"`
		}
		State struct {
			NodeID             string        `conf:"help:identifier recorded in the blocks this node mines"`
			KnownPeers         []string      `conf:"help:peers registered on startup"`
			PeerTimeout        time.Duration `conf:"default:5s"`
			PeerRetries        int           `conf:"default:0"`
			MaxConcurrentFetch int           `conf:"default:8"`
			MaxChainBytes      int64         `conf:"default:33554432"`
			ResolveInterval    time.Duration `conf:"default:1m"`
			AutoMine           bool          `conf:"default:false"`
		}
	}{
		Version: conf.Version{
			Build: build,
			Desc:  "copyright information here",
		},
	}

	// Parse will set the defaults and then look for any overriding values
	// in environment variables and command line flags.
	const prefix = "NODE"
	help, err := conf.Parse(prefix, &cfg)
	if err != nil {
		if errors.Is(err, conf.ErrHelpWanted) {
			fmt.Println(help)
			return nil
		}
		return fmt.Errorf("parsing config: %w", err)
	}

	// A node without a configured identifier mines under a random one.
	if cfg.State.NodeID == "" {
		cfg.State.NodeID = strings.ReplaceAll(uuid.NewString(), "-", "")
	}

	// =========================================================================
	// App Starting

	log.Infow("starting service", "version", build)
	defer log.Infow("shutdown complete")

	// Display the current configuration to the logs.
	out, err := conf.String(&cfg)
	if err != nil {
		return fmt.Errorf("generating config for output: %w", err)
	}
	log.Infow("startup", "config", out)

	expvar.NewString("build").Set(build)
	expvar.NewString("node").Set(cfg.State.NodeID)

	// =========================================================================
	// Blockchain Support

	// A peer set is a collection of known nodes in the network so chains
	// can be compared.
	peerSet := peer.NewPeerSet()
	for _, address := range cfg.State.KnownPeers {
		pr, _, err := peerSet.Register(address)
		if err != nil {
			return fmt.Errorf("registering known peer: %w", err)
		}
		log.Infow("startup", "status", "known peer", "host", pr.Host)
	}

	// The blockchain packages accept a function of this signature to allow the
	// application to log. For now, these raw messages are sent to any websocket
	// client that is connected into the system through the events package.
	evts := events.New()
	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Publish(s)
	}

	// The blocks are kept in memory for the life of the process.
	strg, err := memory.New()
	if err != nil {
		return fmt.Errorf("constructing storage: %w", err)
	}

	// The state value represents the blockchain node and manages the blockchain
	// database and provides an API for application support.
	state, err := state.New(state.Config{
		NodeID:             cfg.State.NodeID,
		Host:               cfg.Web.PublicHost,
		Genesis:            genesis.Default(),
		Storage:            strg,
		KnownPeers:         peerSet,
		PeerTimeout:        cfg.State.PeerTimeout,
		PeerRetries:        cfg.State.PeerRetries,
		MaxConcurrentFetch: cfg.State.MaxConcurrentFetch,
		MaxChainBytes:      cfg.State.MaxChainBytes,
		EvHandler:          ev,
	})
	if err != nil {
		return err
	}
	defer state.Shutdown()

	// The worker package implements the background workflows such as
	// auto mining and periodic consensus. The worker will register itself
	// with the state.
	worker.Run(state, worker.Config{
		AutoMine:        cfg.State.AutoMine,
		ResolveInterval: cfg.State.ResolveInterval,
	}, ev)

	// =========================================================================
	// Metrics Support

	m := metrics.New()
	if err := m.Register(metrics.NewNodeCollector(state, cfg.State.NodeID)); err != nil {
		return fmt.Errorf("registering node metrics: %w", err)
	}

	// =========================================================================
	// Start Debug Service

	log.Infow("startup", "status", "debug v1 router started", "host", cfg.Web.DebugHost)

	// The Debug function returns a mux to listen and serve on for all the debug
	// related endpoints. This includes the standard library endpoints.

	// Construct the mux for the debug calls.
	debugMux := handlers.DebugMux(build, log, state, m)

	// Start the service listening for debug requests.
	// Not concerned with shutting this down with load shedding.
	go func() {
		if err := http.ListenAndServe(cfg.Web.DebugHost, debugMux); err != nil {
			log.Errorw("shutdown", "status", "debug v1 router closed", "host", cfg.Web.DebugHost, "ERROR", err)
		}
	}()

	// =========================================================================
	// Service Start/Stop Support

	// Make a channel to listen for an interrupt or terminate signal from the OS.
	// Use a buffered channel because the signal package requires it.
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	// Make a channel to listen for errors coming from the listener. Use a
	// buffered channel so the goroutine can exit if we don't collect this error.
	serverErrors := make(chan error, 1)

	// =========================================================================
	// Start Public Service

	log.Infow("startup", "status", "initializing V1 public API support")

	// Construct the mux for the public API calls.
	publicMux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: shutdown,
		Log:      log,
		State:    state,
		Evts:     evts,
		Metrics:  m,
	})

	// Construct a server to service the requests against the mux.
	public := http.Server{
		Addr:         cfg.Web.PublicHost,
		Handler:      publicMux,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		ErrorLog:     zap.NewStdLog(log.Desugar()),
	}

	// Start the service listening for api requests.
	go func() {
		log.Infow("startup", "status", "public api router started", "host", public.Addr)
		serverErrors <- public.ListenAndServe()
	}()

	// =========================================================================
	// Shutdown

	// Blocking main and waiting for shutdown.
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		log.Infow("shutdown", "status", "shutdown started", "signal", sig)
		defer log.Infow("shutdown", "status", "shutdown complete", "signal", sig)

		// Release any web sockets that are currently active.
		log.Infow("shutdown", "status", "shutdown web socket channels")
		evts.Shutdown()

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Web.ShutdownTimeout)
		defer cancel()

		// Asking listener to shut down and shed load.
		log.Infow("shutdown", "status", "shutdown public API started")
		if err := public.Shutdown(ctx); err != nil {
			public.Close()
			return fmt.Errorf("could not stop public service gracefully: %w", err)
		}
	}

	return nil
}
