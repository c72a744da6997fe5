package tool

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/moyoez/moneylens-go/types"
)

const (
	EnvAPIBase    = "MONEYLENS_API_BASE"
	EnvConfigPath = "MONEYLENS_CONFIG"
)

var (
	ConfigPath    = "config.yaml" // be aware that it can be changed, default to ./config.yaml
	CurrentConfig types.AppConfig
)

func DefaultConfig() types.AppConfig {
	return types.AppConfig{
		APIBase:               DefaultAPIBase,
		Protocol:              types.ProtocolMultiStep,
		RequestTimeoutSeconds: int(DefaultTimeout / time.Second),
		DownloadDir:           "downloads",
		StatusResetMs:         3000,
		DeleteStatusResetMs:   2000,
		ReloadConcurrency:     4,
		ReloadRatePerSecond:   0, // unlimited
		ListenPort:            8787,
		NotifyWS:              true,
	}
}

// LoadEnv reads .env if present. A missing file is not an error.
func LoadEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil && !os.IsNotExist(err) {
		DefaultLogger.Warnf("Failed to load .env: %v", err)
	}
}

// LoadConfig reads the yaml config at path, creating it with defaults when missing,
// then applies the MONEYLENS_API_BASE environment override.
func LoadConfig(path string) (types.AppConfig, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		path = ConfigPath
	}
	ConfigPath = path

	cfg := DefaultConfig()

	info, err := os.Stat(path)
	switch {
	case err != nil && os.IsNotExist(err):
		if writeErr := writeConfig(path, cfg); writeErr != nil {
			return cfg, fmt.Errorf("config file not found, and failed to generate default config: %w", writeErr)
		}
		DefaultLogger.Infof("Created new config file at %s", path)
	case err != nil:
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	case info.IsDir():
		return cfg, fmt.Errorf("config file path is a directory: %s", path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if base := strings.TrimSpace(os.Getenv(EnvAPIBase)); base != "" {
		DefaultLogger.Debugf("Using %s=%s", EnvAPIBase, base)
		cfg.APIBase = base
	}
	if err := ValidateConfig(&cfg); err != nil {
		return cfg, err
	}

	CurrentConfig = cfg
	return cfg, nil
}

// ApplyFlagOverrides merges non-empty CLI flags over cfg.
func ApplyFlagOverrides(cfg *types.AppConfig, flags types.Config) error {
	if flags.UseAPIBase != "" {
		cfg.APIBase = flags.UseAPIBase
	}
	if flags.UseProtocol != "" {
		cfg.Protocol = types.Protocol(flags.UseProtocol)
	}
	if flags.UseDownloadDir != "" {
		cfg.DownloadDir = flags.UseDownloadDir
	}
	if flags.UseListenPort > 0 {
		cfg.ListenPort = flags.UseListenPort
	}
	return ValidateConfig(cfg)
}

// ValidateConfig fills zero values with defaults and rejects values that cannot work.
func ValidateConfig(cfg *types.AppConfig) error {
	def := DefaultConfig()
	if cfg.APIBase == "" {
		cfg.APIBase = def.APIBase
	}
	if _, err := ResolveAPIBase(cfg.APIBase); err != nil {
		return err
	}
	switch cfg.Protocol {
	case "":
		cfg.Protocol = def.Protocol
	case types.ProtocolMultiStep, types.ProtocolSingleCall:
	default:
		return fmt.Errorf("unknown protocol %q (want %s or %s)", cfg.Protocol, types.ProtocolMultiStep, types.ProtocolSingleCall)
	}
	if cfg.RequestTimeoutSeconds <= 0 {
		cfg.RequestTimeoutSeconds = def.RequestTimeoutSeconds
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = def.DownloadDir
	}
	if cfg.StatusResetMs <= 0 {
		cfg.StatusResetMs = def.StatusResetMs
	}
	if cfg.DeleteStatusResetMs <= 0 {
		cfg.DeleteStatusResetMs = def.DeleteStatusResetMs
	}
	if cfg.ReloadConcurrency <= 0 {
		cfg.ReloadConcurrency = def.ReloadConcurrency
	}
	if cfg.ReloadRatePerSecond < 0 {
		cfg.ReloadRatePerSecond = 0
	}
	if cfg.ListenPort <= 0 || cfg.ListenPort > 65535 {
		cfg.ListenPort = def.ListenPort
	}
	return nil
}

func writeConfig(path string, cfg types.AppConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// RequestTimeout returns the per-call bound configured for remote calls.
func RequestTimeout(cfg *types.AppConfig) time.Duration {
	return time.Duration(cfg.RequestTimeoutSeconds) * time.Second
}
