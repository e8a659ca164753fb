package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/xeptore/yamusic/constant"
	"github.com/xeptore/yamusic/ratelimit"
	"github.com/xeptore/yamusic/yandex/api"
	"github.com/xeptore/yamusic/yandex/downloadinfo"
)

type Config struct {
	BaseURL             string `json:"base_url"             yaml:"base_url"`
	UserAgent           string `json:"user_agent"           yaml:"user_agent"`
	ClientID            string `json:"client_id"            yaml:"client_id"`
	DownloadDir         string `json:"download_dir"         yaml:"download_dir"`
	Bitrate             int    `json:"bitrate"              yaml:"bitrate"`
	DownloadConcurrency int    `json:"download_concurrency" yaml:"download_concurrency"`
	DownloadAttempts    int    `json:"download_attempts"    yaml:"download_attempts"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{} //nolint:exhaustruct
	cfg.setDefaults()
	return cfg
}

func (cfg *Config) setDefaults() {
	if cfg.BaseURL == "" {
		cfg.BaseURL = api.BaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = constant.DefaultUserAgent
	}
	if cfg.ClientID == "" {
		cfg.ClientID = constant.DefaultClientID
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = "downloads"
	}
	if cfg.Bitrate == 0 {
		cfg.Bitrate = downloadinfo.DefaultBitrate
	}
	if cfg.DownloadConcurrency == 0 {
		cfg.DownloadConcurrency = ratelimit.TrackDownloadConcurrency
	}
	if cfg.DownloadAttempts == 0 {
		cfg.DownloadAttempts = ratelimit.TrackDownloadAttempts
	}
}

func (cfg *Config) validate() error {
	u, err := url.Parse(cfg.BaseURL)
	if nil != err {
		return fmt.Errorf("base url is invalid: %v", err)
	}
	if u.Scheme != "https" && u.Scheme != "http" || u.Host == "" {
		return fmt.Errorf("base url must be an absolute http(s) url, got %q", cfg.BaseURL)
	}

	switch cfg.Bitrate {
	case 64, 128, 192, 320:
	default:
		return fmt.Errorf("bitrate must be one of 64, 128, 192 or 320, got %d", cfg.Bitrate)
	}

	if cfg.DownloadConcurrency < 1 {
		return errors.New("download concurrency must be positive")
	}

	if cfg.DownloadAttempts < 1 {
		return errors.New("download attempts must be positive")
	}

	return nil
}

func FromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if nil != err {
		return nil, fmt.Errorf("failed to read config file %q: %v", filePath, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %v", filePath, err)
	}
	cfg.setDefaults()

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}

func FromString(data string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal([]byte(data), &cfg); nil != err {
		return nil, fmt.Errorf("failed to unmarshal config: %v", err)
	}
	cfg.setDefaults()

	if err := cfg.validate(); nil != err {
		return nil, fmt.Errorf("validation failed: %v", err)
	}

	return &cfg, nil
}
