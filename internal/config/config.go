package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config はアプリケーション全体の設定を保持する。
// 起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Calendar
	CalendarURL  string
	CalendarID   string
	FetchTimeout time.Duration
	FetchMaxSize int64
	SafeFetch    bool

	// Shop
	ShopName    string
	ShopAddress string

	// Rate Limit
	RateLimitPerMinute int
	RateLimitBurst     int

	// Logging
	LogLevel string

	// Server
	ServerPort string
}

// EnvPrefix は環境変数の接頭辞。例: FLAVORCAST_SERVER_PORT
const EnvPrefix = "FLAVORCAST"

// defaults は設定項目のデフォルト値。
var defaults = map[string]any{
	"calendar_url":     "http://www.TheDairyGodmother.com/flavor-of-the-day-forecast/",
	"calendar_id":      "mc-0191cbfb6d82b4fdb92b8847a2046366",
	"fetch_timeout":    10 * time.Second,
	"fetch_max_size":   int64(5 * 1024 * 1024),
	"safe_fetch":       true,
	"shop_name":        "The Dairy Godmother",
	"shop_address":     "2310 Mount Vernon Ave., Alexandria, VA 22301",
	"rate_limit_rpm":   120,
	"rate_limit_burst": 30,
	"log_level":        "info",
	"server_port":      "8080",
}

// Load は設定ファイル（任意）と環境変数からConfigを読み込む。
// configFileが空の場合は環境変数とデフォルト値のみを使う。
// 優先順位は 環境変数 > 設定ファイル > デフォルト値。
func Load(configFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		CalendarURL:        strings.TrimSpace(v.GetString("calendar_url")),
		CalendarID:         strings.TrimSpace(v.GetString("calendar_id")),
		FetchTimeout:       v.GetDuration("fetch_timeout"),
		FetchMaxSize:       v.GetInt64("fetch_max_size"),
		SafeFetch:          v.GetBool("safe_fetch"),
		ShopName:           v.GetString("shop_name"),
		ShopAddress:        v.GetString("shop_address"),
		RateLimitPerMinute: v.GetInt("rate_limit_rpm"),
		RateLimitBurst:     v.GetInt("rate_limit_burst"),
		LogLevel:           v.GetString("log_level"),
		ServerPort:         strings.TrimSpace(v.GetString("server_port")),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は設定値の整合性を検証する。問題はまとめて返す。
func (c *Config) validate() error {
	var errs []error

	u, err := url.Parse(c.CalendarURL)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		errs = append(errs, fmt.Errorf("calendar_url must be an absolute http(s) URL: %q", c.CalendarURL))
	}
	if c.CalendarID == "" {
		errs = append(errs, errors.New("calendar_id must not be empty"))
	}
	if c.FetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("fetch_timeout must be positive: %s", c.FetchTimeout))
	}
	if c.FetchMaxSize <= 0 {
		errs = append(errs, fmt.Errorf("fetch_max_size must be positive: %d", c.FetchMaxSize))
	}
	if c.RateLimitPerMinute <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_rpm must be positive: %d", c.RateLimitPerMinute))
	}
	if c.RateLimitBurst <= 0 {
		errs = append(errs, fmt.Errorf("rate_limit_burst must be positive: %d", c.RateLimitBurst))
	}
	if port, err := strconv.Atoi(c.ServerPort); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("server_port must be a port number: %q", c.ServerPort))
	}

	return errors.Join(errs...)
}
