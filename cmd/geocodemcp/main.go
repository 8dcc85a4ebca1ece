package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/NERVsystems/geocodemcp/pkg/config"
	"github.com/NERVsystems/geocodemcp/pkg/server"
	"github.com/NERVsystems/geocodemcp/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	configPath      string
	logFormat       string
	generateConfig  string
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&configPath, "config", "", "Path to a configuration file (yaml, json or toml)")
	flag.StringVar(&logFormat, "log-format", "", "Log format: text, json or pretty (overrides config)")
	flag.StringVar(&generateConfig, "generate-config", "", "Generate a Claude Desktop Client config file at the specified path")
}

func main() {
	flag.Parse()
	os.Exit(run())
}

// run holds the whole process lifetime so deferred cleanup happens on
// every exit path before main calls os.Exit.
func run() int {
	// Show version and exit if requested
	if showVersionFlag {
		fmt.Println(version.String())
		return 0
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		return 1
	}
	if debug {
		cfg.Log.Level = "debug"
	}
	if logFormat != "" {
		cfg.Log.Format = strings.ToLower(logFormat)
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "invalid flags: %v\n", err)
			return 1
		}
	}

	// stdout carries the protocol, so logs go to stderr
	logger, err := newLogger(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to configure logging: %v\n", err)
		return 1
	}
	slog.SetDefault(logger)

	// Generate Claude Desktop config if requested
	if generateConfig != "" {
		if err := generateClientConfig(generateConfig); err != nil {
			logger.Error("failed to generate config", "error", err)
			return 1
		}
		logger.Info("successfully generated Claude Desktop Client config", "path", generateConfig)
		return 0
	}

	logger.Info("starting geocoding MCP server",
		"build", version.Info(),
		"log_level", cfg.Log.Level,
		"upstream", cfg.Nominatim.BaseURL,
		"timeout", cfg.Nominatim.Timeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.NewServer(cfg.NominatimOptions(logger), logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return 1
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("failed to release resources", "error", err)
		}
	}()

	logger.Info("server initialized, waiting for requests")
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		logger.Error("server error", "error", err)
		return 1
	}
	return 0
}

// generateClientConfig creates or updates a Claude Desktop Client config file
func generateClientConfig(outputPath string) error {
	logger := slog.Default()

	if outputPath == "" {
		return errors.New("output path must not be empty")
	}
	if !strings.EqualFold(filepath.Ext(outputPath), ".json") {
		return fmt.Errorf("output path %q must have a .json extension", outputPath)
	}
	if strings.Contains(outputPath, "..") {
		return fmt.Errorf("output path %q must not contain '..'", outputPath)
	}

	// Get absolute path to executable
	execPath, err := os.Executable()
	if err != nil {
		execPath = os.Args[0]
	}
	absExecPath, err := filepath.Abs(execPath)
	if err != nil {
		absExecPath = execPath
	}

	serverConfig := map[string]interface{}{
		"command": absExecPath,
		"args":    []string{},
	}

	var cfg map[string]interface{}
	if data, err := os.ReadFile(outputPath); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			logger.Warn("existing config is not valid JSON, will create new", "error", err)
			cfg = nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read existing config: %w", err)
	}
	if cfg == nil {
		cfg = make(map[string]interface{})
	}

	mcpServers, ok := cfg["mcpServers"].(map[string]interface{})
	if !ok {
		mcpServers = make(map[string]interface{})
		cfg["mcpServers"] = mcpServers
	}
	mcpServers["Geocoding"] = serverConfig

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(outputPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	// WriteFile keeps the mode of an existing file
	if err := os.Chmod(outputPath, 0600); err != nil {
		return fmt.Errorf("failed to set config file permissions: %w", err)
	}

	return nil
}
