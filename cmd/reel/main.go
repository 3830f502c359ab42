package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/reel/internal/async"
	"github.com/mmcdole/reel/internal/browse"
	"github.com/mmcdole/reel/internal/catalog"
	"github.com/mmcdole/reel/internal/config"
	"github.com/mmcdole/reel/internal/details"
	"github.com/mmcdole/reel/internal/domain"
	"github.com/mmcdole/reel/internal/favorites"
	"github.com/mmcdole/reel/internal/store"
	"github.com/mmcdole/reel/internal/tmdb"
	"github.com/mmcdole/reel/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                    \r"

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("reel %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, logFile, err := config.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = config.NullLogger()
	} else {
		defer logFile.Close()
	}
	slog.SetDefault(logger)

	logger.Info("starting reel", "version", Version)

	if !cfg.IsConfigured() {
		return runSetupFlow(cfg, logger)
	}

	st, err := store.Open(cfg.Store.Driver, cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("failed to open favorites store: %w", err)
	}
	defer st.Close()

	client := newClient(cfg, cfg.TMDB.APIKey, logger)

	// The Bubble Tea goroutine drains this queue
	fg := async.NewQueue()
	svc := catalog.NewService(client, st, async.NewPool(cfg.Workers, logger), catalog.Options{
		Language:   cfg.TMDB.Language,
		Timeout:    time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second,
		Foreground: fg,
	}, logger)
	defer svc.Close()

	favs := favorites.NewController(svc, logger)
	defer favs.Close()

	model := tui.NewModel(tui.Options{
		Foreground: fg,
		Browse:     browse.NewController(svc, fg, logger),
		Details:    details.NewController(svc, fg, logger),
		Favorites:  favs,
		LastError:  svc.LastError(),
		ImageBase:  cfg.TMDB.ImageBaseURL,
		Logger:     logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

func newClient(cfg *config.Config, apiKey string, logger *slog.Logger) *tmdb.Client {
	timeout := time.Duration(cfg.TMDB.TimeoutSeconds) * time.Second
	return tmdb.NewClient(cfg.TMDB.BaseURL, apiKey, logger,
		tmdb.WithHTTPClient(&http.Client{Timeout: timeout}),
		tmdb.WithRateLimit(cfg.TMDB.RequestsPerSecond),
	)
}

// runSetupFlow asks for an API key, checks it against the catalog and saves it
func runSetupFlow(cfg *config.Config, logger *slog.Logger) error {
	fmt.Println()
	fmt.Println("Welcome to Reel!")
	fmt.Println()
	fmt.Println("Reel needs a TMDB API key (v3 auth). Get one at https://www.themoviedb.org/settings/api")
	fmt.Println()

	// Every attempt reads from the same buffered stdin
	in := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("API key: ")
		key, err := readSecret(in)
		if err != nil {
			return fmt.Errorf("failed to read API key: %w", err)
		}
		if key == "" {
			fmt.Println("API key cannot be empty. Please try again.")
			continue
		}

		if err := verifyKeyWithSpinner(cfg, key, logger); err != nil {
			fmt.Printf("✗ %s\n", catalog.Describe(domain.OpPopular, err))
			if domain.IsOffline(err) {
				return errors.New("cannot verify the API key while offline")
			}
			fmt.Println("Please check the key and try again.")
			fmt.Println()
			continue
		}

		cfg.TMDB.APIKey = key
		break
	}

	if err := config.SaveConfig(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("✓ Configuration saved!")
	fmt.Println()
	fmt.Println("Run reel again to start the application.")
	return nil
}

// readSecret reads one line without echo when stdin is a terminal,
// otherwise from in
func readSecret(in *bufio.Reader) (string, error) {
	fd := int(syscall.Stdin)
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println() // Add newline after hidden input
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(b)), nil
	}

	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// verifyKeyWithSpinner requests the first popular page with key
func verifyKeyWithSpinner(cfg *config.Config, key string, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client := newClient(cfg, key, logger)
	check := async.NewFuture[*domain.ItemPage]()
	go func() {
		check.Resolve(client.Popular(ctx, 1, cfg.TMDB.Language))
	}()

	frame := 0
	fmt.Printf("\r%s Checking API key...", spinnerFrames[frame])

	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-check.Done():
			_, err := check.Await(ctx)
			fmt.Print(clearSpinnerLine)
			if err == nil {
				fmt.Println("✓ API key accepted")
			}
			return err

		case <-ticker.C:
			frame++
			fmt.Printf("\r%s Checking API key...", spinnerFrames[frame%len(spinnerFrames)])
		}
	}
}
