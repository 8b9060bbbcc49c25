package main

import (
	"context"
	_ "embed"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof" //nolint:gosec
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/tb0hdan/shodan-mcp/pkg/config"
	"github.com/tb0hdan/shodan-mcp/pkg/server"
	"github.com/tb0hdan/shodan-mcp/pkg/storage"
	"github.com/tb0hdan/shodan-mcp/pkg/tools"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/cpelookup"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/cvelookup"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/cvesbyproduct"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/dns"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/history"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/iplookup"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/reversedns"
	"github.com/tb0hdan/shodan-mcp/pkg/tools/search"
	"github.com/tb0hdan/shodan-mcp/pkg/upstream"
	"golang.org/x/sync/errgroup"
)

const (
	ServerName      = "shodan-mcp"
	ServiceName     = "Shodan MCP Server"
	ShutdownTimeout = 10 * time.Second
)

//go:embed VERSION
var Version string

func main() {
	var (
		debug        bool
		bindAddr     string
		transport    string
		configPath   string
		dbPath       string
		printVersion bool
	)
	flag.BoolVar(&debug, "debug", false, "debug mode")
	flag.StringVar(&bindAddr, "bind", "localhost:8989", "bind address (host:port), http transport only")
	flag.StringVar(&transport, "transport", "http", "MCP transport: http or stdio")
	flag.StringVar(&configPath, "config", "", "optional YAML config file path")
	flag.StringVar(&dbPath, "db", "", "SQLite database file path for the lookup audit log (empty disables it)")
	flag.BoolVar(&printVersion, "version", false, "print version and exit")
	flag.Parse()
	// Sanitize version
	version := strings.TrimSpace(Version)
	if printVersion {
		fmt.Printf("%s Version: %s\n", ServiceName, version)
		os.Exit(0)
	}

	// stdout carries the protocol in stdio mode.
	var logOutput io.Writer = os.Stdout
	switch transport {
	case "http":
	case "stdio":
		logOutput = os.Stderr
	default:
		fmt.Fprintf(os.Stderr, "unknown transport %q, expected http or stdio\n", transport)
		os.Exit(2)
	}

	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := zerolog.New(logOutput).With().Timestamp().Logger()
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger.Debug().Msg("debug mode enabled")
	}

	cfg, err := config.Load(configPath, os.Getenv)
	if err != nil {
		logger.Fatal().Msgf("Failed to load configuration: %v", err)
	}
	if cfg.UserAgent == config.Default().UserAgent {
		cfg.UserAgent = ServerName + "/" + version
	}

	impl := &mcp.Implementation{
		Name:    ServerName,
		Version: version,
	}

	// The audit store stays a nil interface when disabled.
	var store storage.Storage
	if dbPath != "" {
		sqliteStore, err := storage.NewSQLiteStorage(storage.Config{
			DatabasePath: dbPath,
			Debug:        debug,
		})
		if err != nil {
			logger.Fatal().Msgf("Failed to initialize storage: %v", err)
		}
		store = sqliteStore
		logger.Info().Msgf("Lookup audit database initialized at %s", dbPath)
	}

	srv := server.NewServer(impl, store)
	client := upstream.New(cfg, logger)

	toolList := []tools.Tool{
		iplookup.New(logger, client),
		search.New(logger, client),
		cvelookup.New(logger, client),
		dns.New(logger, client),
		reversedns.New(logger, client),
		cpelookup.New(logger, client),
		cvesbyproduct.New(logger, client),
	}
	if store != nil {
		toolList = append(toolList, history.New(logger))
	}

	registered := make([]string, 0, len(toolList))
	for _, tool := range toolList {
		if err := tool.Register(srv); err != nil {
			logger.Error().Msgf("Failed to register tool %s: %v", tool.Name(), err)
			continue
		}
		registered = append(registered, tool.Name())
	}
	logger.Info().Strs("tools", registered).Msgf("%s %s ready", ServiceName, version)

	if transport == "stdio" {
		err = runStdio(signalCtx, srv)
	} else {
		err = runHTTP(signalCtx, srv, logger, bindAddr, version, registered)
	}
	if err != nil {
		logger.Error().Msgf("%s stopped with error: %v", ServiceName, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Msgf("%s shutdown error: %v", ServiceName, err)
	} else {
		logger.Info().Msgf("%s shutdown complete", ServiceName)
	}
}

func runStdio(ctx context.Context, srv *server.Server) error {
	err := srv.Run(ctx, &mcp.StdioTransport{})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func runHTTP(ctx context.Context, srv *server.Server, logger zerolog.Logger, bindAddr, version string, toolNames []string) error {
	// Stateless mode avoids "session not found" errors after server restart
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return &srv.Server
	}, &mcp.StreamableHTTPOptions{
		Stateless: true,
	})

	http.Handle("/mcp", handler)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{
			"service": ServiceName,
			"version": version,
			"tools":   toolNames,
			"endpoints": map[string]string{
				"mcp": "/mcp",
			},
		})
	})

	httpServer := &http.Server{ //nolint:gosec
		Addr:    bindAddr,
		Handler: http.DefaultServeMux,
	}

	logger.Info().Msgf("%s starting on address %s", ServiceName, bindAddr)
	logger.Info().Msgf("MCP endpoint available at: http://%s/mcp", bindAddr)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s failed to start: %w", ServerName, err)
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx) //nolint:contextcheck
	})

	return group.Wait()
}
