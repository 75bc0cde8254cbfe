package main

import (
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vitalvas/mqttpub"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	host           string
	port           int
	clientID       string
	keepAlive      uint8
	connackTimeout time.Duration
	proxyURL       string
	logLevel       string
	metricsAddr    string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	cmd := &cobra.Command{
		Use:   "mqttpub",
		Short: "Minimal MQTT 3.1.1 publisher",
		Long: `mqttpub connects to an MQTT broker without credentials and publishes
messages. It never subscribes and never waits for acknowledgements.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			setupLogging(flags.logLevel)
			if flags.clientID == "" {
				flags.clientID = defaultClientID()
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.host, "host", "localhost", "Broker host name or IP address")
	pf.IntVar(&flags.port, "port", mqttpub.DefaultPort, "Broker port")
	pf.StringVar(&flags.clientID, "id", "", "Client identifier (default: mqttpub-<random>)")
	pf.Uint8Var(&flags.keepAlive, "keepalive", 30, "Keep alive interval in seconds sent in CONNECT")
	pf.DurationVar(&flags.connackTimeout, "connack-timeout", 5*time.Second, "Maximum wait for the broker's CONNACK (0 waits forever)")
	pf.StringVar(&flags.proxyURL, "proxy", "", "HTTP CONNECT or SOCKS5 proxy URL")
	pf.StringVar(&flags.logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	pf.StringVar(&flags.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9090")

	cmd.AddCommand(newPublishCmd(flags))
	cmd.AddCommand(newEventsCmd(flags))

	return cmd
}

// setupLogging installs a console zerolog logger at the requested level.
func setupLogging(level string) {
	consoleWriter := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log.Logger = zerolog.New(consoleWriter).With().Timestamp().Logger()

	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		log.Warn().Str("provided_level", level).Msg("invalid log level, defaulting to info")
		parsed = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsed)
}

// clientLogLevel maps the global zerolog level onto the client's levels.
func clientLogLevel() mqttpub.LogLevel {
	switch zerolog.GlobalLevel() {
	case zerolog.TraceLevel, zerolog.DebugLevel:
		return mqttpub.LogLevelDebug
	case zerolog.InfoLevel:
		return mqttpub.LogLevelInfo
	case zerolog.WarnLevel:
		return mqttpub.LogLevelWarn
	case zerolog.Disabled:
		return mqttpub.LogLevelNone
	default:
		return mqttpub.LogLevelError
	}
}

func defaultClientID() string {
	return "mqttpub-" + uuid.NewString()[:8]
}

// newClient builds a client from the global flags.
func (f *globalFlags) newClient() (*mqttpub.Client, error) {
	opts := []mqttpub.Option{
		mqttpub.WithPort(f.port),
		mqttpub.WithConnackTimeout(f.connackTimeout),
		mqttpub.WithLogger(mqttpub.NewZerologLogger(log.Logger, clientLogLevel())),
	}
	if f.proxyURL != "" {
		opts = append(opts, mqttpub.WithProxy(f.proxyURL))
	}
	if f.metricsAddr != "" {
		opts = append(opts, mqttpub.WithMetrics(mqttpub.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")))
		startMetricsServer(f.metricsAddr)
	}

	return mqttpub.NewClient(f.clientID, f.host, opts...)
}

// startMetricsServer serves /metrics in the background.
func startMetricsServer(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("address", addr).Msg("starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("metrics server error")
		}
	}()
}
