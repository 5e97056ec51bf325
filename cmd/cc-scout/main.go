package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nixlim/cc-scout/internal/config"
	"github.com/nixlim/cc-scout/internal/detector"
	"github.com/nixlim/cc-scout/internal/events"
	"github.com/nixlim/cc-scout/internal/receiver"
	"github.com/nixlim/cc-scout/internal/session"
	"github.com/nixlim/cc-scout/internal/storage"
	"github.com/nixlim/cc-scout/internal/tui"
)

func main() {
	setupFlag := flag.Bool("setup", false, "Configure Claude Code telemetry settings and exit")
	configFlag := flag.String("config", "", "Path to config file (default ~/.config/cc-scout/config.toml)")
	headlessFlag := flag.Bool("headless", false, "Run without the dashboard, printing suggestions to stdout")
	debugFlag := flag.String("debug", "", "Write OTEL debug log (JSONL) to the specified file path")
	flag.Parse()

	if *setupFlag {
		RunSetup(*configFlag)
		return
	}

	loadResult, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc-scout: config error: %v\n", err)
		os.Exit(1)
	}
	cfg := loadResult.Config

	for _, w := range loadResult.Warnings {
		fmt.Fprintf(os.Stderr, "cc-scout: config warning: %s\n", w)
	}

	store, isPersistent, err := storage.NewStore(cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cc-scout: storage error: %v\n", err)
		os.Exit(1)
	}

	registry := session.NewRegistry(cfg.Detector.Overlay())

	eventBuf := events.NewRingBuffer(cfg.Display.EventBufferSize)

	registry.OnToolCall(func(sessionID string, c detector.ToolCall) {
		eventBuf.Add(events.FormatToolCall(sessionID, c))
		store.SaveToolCall(sessionID, c)
	})
	registry.OnSuggestion(func(sessionID string, s detector.Suggestion) {
		eventBuf.Add(events.FormatSuggestion(sessionID, s, time.Now()))
		store.SaveSuggestion(sessionID, s, time.Now())
	})

	var recvLogger receiver.Logger = receiver.NopLogger{}
	if *debugFlag != "" {
		debugFile, err := os.OpenFile(*debugFlag, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cc-scout: failed to open debug log %q: %v\n", *debugFlag, err)
			os.Exit(1)
		}
		defer debugFile.Close()
		recvLogger = receiver.NewFileLogger(debugFile)
	}

	recv := receiver.New(cfg.Receiver, registry, recvLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	if *headlessFlag {
		if err := recv.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "cc-scout: failed to start receivers: %v\n", err)
			os.Exit(1)
		}
		runHeadless(registry, sigCh)
		recv.Stop()
		_ = store.Close()
		return
	}

	// The TUI owns the terminal; route stray log output away from it.
	log.SetOutput(io.Discard)

	if err := recv.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "cc-scout: failed to start receivers: %v\n", err)
		os.Exit(1)
	}

	model := tui.NewModel(cfg,
		tui.WithSessionProvider(registry),
		tui.WithEventProvider(eventBuf),
		tui.WithPersistenceFlag(isPersistent),
		tui.WithOnShutdown(func() {
			recv.Stop()
			_ = store.Close()
		}),
	)

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
	)

	go func() {
		select {
		case <-sigCh:
			recv.Stop()
			_ = store.Close()
			p.Quit()
		case <-ctx.Done():
			return
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "cc-scout: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig loads from the explicit path when one was given, otherwise
// from the default location.
func loadConfig(path string) (*config.LoadResult, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}

// runHeadless prints tool calls and suggestions to stdout until a
// shutdown signal arrives.
func runHeadless(registry *session.Registry, sigCh <-chan os.Signal) {
	registry.OnToolCall(func(sessionID string, c detector.ToolCall) {
		fe := events.FormatToolCall(sessionID, c)
		fmt.Println(fe.Formatted)
	})
	registry.OnSuggestion(func(sessionID string, s detector.Suggestion) {
		fe := events.FormatSuggestion(sessionID, s, time.Now())
		fmt.Println(fe.Formatted)
	})

	fmt.Println("cc-scout: listening (headless), Ctrl-C to stop")
	<-sigCh
	fmt.Println("cc-scout: shutting down")
}
