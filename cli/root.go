// Package cli provides the command-line interface for the authentication
// comparison service. The root command runs one service instance with the
// configured strategy; the seed subcommand registers test users against
// running instances.
//
// Configuration precedence (highest to lowest):
//  1. Command-line flags
//  2. Environment variables (AUTHSVC_ prefix)
//  3. Configuration file values
//  4. Default values
package cli

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"authbench.evalgo.org/api"
	"authbench.evalgo.org/auth"
	"authbench.evalgo.org/common"
	"authbench.evalgo.org/config"
	httpx "authbench.evalgo.org/http"
	"authbench.evalgo.org/kv"
	"authbench.evalgo.org/metrics"
	"authbench.evalgo.org/version"
)

// cfgFile holds the path to the configuration file specified via the
// --config flag. When empty, standard locations are searched.
var cfgFile string

// RootCmd runs a single service instance. The comparison setup runs the
// command twice: once with the session strategy, once with the token
// strategy, on different ports.
//
// Example usage:
//
//	# Session instance on the default port
//	authservice
//
//	# Token instance on another port
//	AUTHSVC_SERVER_PORT=3001 AUTHSVC_AUTH_STRATEGY=token \
//	  AUTHSVC_AUTH_JWT_SECRET=... authservice
var RootCmd = &cobra.Command{
	Use:   "authservice",
	Short: "authentication strategy comparison service",
	Long: `Authentication Strategy Comparison Service

Runs one HTTP instance of the shared credential store behind either
server-tracked sessions or stateless signed tokens:
- Registration with atomic unique-username enforcement
- Login with bcrypt credential verification
- Session issuance/invalidation in Redis, or self-contained JWTs
- Prometheus request counters and latency histograms for comparison

Configuration can be provided via command-line flags, environment
variables (AUTHSVC_ prefix), or a YAML configuration file.`,
	Run: runServer,
}

// Execute runs the CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	RootCmd.Flags().Int("port", 0, "server port (overrides config)")
	RootCmd.Flags().String("strategy", "", "authentication strategy: session or token (overrides config)")
	RootCmd.Flags().String("redis-url", "", "Redis connection URL (overrides config)")
	RootCmd.Flags().String("jwt-secret", "", "token signing secret (overrides config)")

	RootCmd.AddCommand(seedCmd)
}

// applyFlagOverrides lets explicit flags win over file and environment.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("port") {
		cfg.Server.Port, _ = cmd.Flags().GetInt("port")
	}
	if cmd.Flags().Changed("strategy") {
		cfg.Auth.Strategy, _ = cmd.Flags().GetString("strategy")
	}
	if cmd.Flags().Changed("redis-url") {
		cfg.Redis.URL, _ = cmd.Flags().GetString("redis-url")
	}
	if cmd.Flags().Changed("jwt-secret") {
		cfg.Auth.JWTSecret, _ = cmd.Flags().GetString("jwt-secret")
	}
}

// runServer initializes and starts one service instance: configuration,
// key-value store, auth core, HTTP server with metrics, then waits for
// SIGINT/SIGTERM and shuts down gracefully.
func runServer(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadConfig("AUTHSVC", cfgFile)
	if err != nil {
		common.Logger.Fatalf("Failed to load configuration: %v", err)
	}
	applyFlagOverrides(cmd, cfg)
	if err := config.ValidateConfig(cfg); err != nil {
		common.Logger.Fatalf("Invalid configuration: %v", err)
	}

	logger := common.NewLogger(common.LoggerConfig{
		Level:    common.LogLevel(cfg.Logging.Level),
		Format:   cfg.Logging.Format,
		Service:  cfg.Service.Name,
		Strategy: cfg.Auth.Strategy,
	})
	serviceLog := common.ServiceLogger(logger, common.LoggerConfig{
		Service:  cfg.Service.Name,
		Strategy: cfg.Auth.Strategy,
	})

	ctx := cmd.Context()
	store, err := kv.NewRedisStore(ctx, kv.Config{
		RedisURL:  cfg.Redis.URL,
		KeyPrefix: cfg.Redis.KeyPrefix,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to the key-value store: %v", err)
	}
	defer store.Close()

	coreConfig := cfg.AuthCoreConfig()
	creds := auth.NewCredentialStore(store)
	strategy, err := auth.NewStrategy(coreConfig, creds)
	if err != nil {
		logger.Fatalf("Failed to construct strategy: %v", err)
	}
	service := auth.NewService(coreConfig, creds, strategy, serviceLog)

	serverConfig := httpx.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Debug:           cfg.Server.Debug,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		RateLimit:       cfg.Server.RateLimit,
	}

	m := metrics.New(strategy.Name())

	e := httpx.NewEchoServer(serverConfig)
	e.Use(m.Middleware())
	e.GET("/health", httpx.HealthCheckHandler(cfg.Service.Name, version.Version, strategy.Name()))
	e.GET("/metrics", m.Handler())
	api.SetupRoutes(e, &api.Handlers{Auth: service}, cfg.Auth.JWTSecret)

	go func() {
		if err := httpx.StartServer(e, serverConfig); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()
	serviceLog.WithField("port", cfg.Server.Port).Info("service started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	if err := httpx.GracefulShutdown(e, serverConfig.ShutdownTimeout); err != nil {
		logger.Errorf("Shutdown error: %v", err)
	}
}
