package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service level configuration.
type Config struct {
	HTTPAddr        string
	MetricsAddr     string
	LogLevel        slog.Level
	AllowedOrigins  []string
	SigningKey      string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	TraceExporter   string
	Constants       Constants
}

// Trace exporters accepted in TRACE_EXPORTER.
const (
	TraceExporterStdout = "stdout"
	TraceExporterNone   = "none"
)

// Load reads the optional dotenv files (".env" when none are given), then the
// process environment. Variables already set in the environment win over
// dotenv values.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	cfg := Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		MetricsAddr:    getEnv("METRICS_ADDR", ":9090"),
		SigningKey:     os.Getenv("DECISION_SIGNING_KEY"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
	}

	switch cfg.TraceExporter = strings.ToLower(getEnv("TRACE_EXPORTER", TraceExporterStdout)); cfg.TraceExporter {
	case TraceExporterStdout, TraceExporterNone:
	default:
		collect(fmt.Errorf("TRACE_EXPORTER: unknown exporter %q", cfg.TraceExporter))
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		collect(fmt.Errorf("LOG_LEVEL: %w", err))
	}

	var err error
	cfg.RequestTimeout, err = getEnvDuration("REQUEST_TIMEOUT", 5*time.Second)
	collect(err)
	cfg.ShutdownTimeout, err = getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second)
	collect(err)

	c := DefaultConstants()
	c.MinLoanAmount, err = getEnvInt("LOAN_MIN_AMOUNT", c.MinLoanAmount)
	collect(err)
	c.MaxLoanAmount, err = getEnvInt("LOAN_MAX_AMOUNT", c.MaxLoanAmount)
	collect(err)
	c.MinLoanPeriod, err = getEnvInt("LOAN_MIN_PERIOD", c.MinLoanPeriod)
	collect(err)
	c.MaxLoanPeriod, err = getEnvInt("LOAN_MAX_PERIOD", c.MaxLoanPeriod)
	collect(err)
	cfg.Constants = c

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Constants.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, v)
	}
	return i, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", key, d)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
