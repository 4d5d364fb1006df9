package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type AppConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StoreConfig struct {
	Path string
}

type SearchConfig struct {
	DebounceQuiet time.Duration
}

type TimerConfig struct {
	TickInterval time.Duration
}

type LoginRateConfig struct {
	Requests int
	Window   time.Duration
}

type Config struct {
	AppConfig       *AppConfig
	UpstreamConfig  *UpstreamConfig
	StoreConfig     *StoreConfig
	SearchConfig    *SearchConfig
	TimerConfig     *TimerConfig
	LoginRateConfig *LoginRateConfig
}

func LoadConfig(logger *zap.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// optional: env may come from the environment directly
		logger.Debug("no .env file loaded", zap.Error(err))
	}

	/** app config */
	port := getenv("APP_PORT", "8081")

	readTimeout, err := duration("APP_READ_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	writeTimeout, err := duration("APP_WRITE_TIMEOUT", "30s")
	if err != nil {
		return nil, err
	}
	idleTimeout, err := duration("APP_IDLE_TIMEOUT", "60s")
	if err != nil {
		return nil, err
	}

	appConfig := &AppConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	/** upstream config */
	baseURL := os.Getenv("FLEET_API_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("FLEET_API_URL is not set")
	}
	upstreamTimeout, err := duration("FLEET_API_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}

	upstreamConfig := &UpstreamConfig{
		BaseURL: baseURL,
		Timeout: upstreamTimeout,
	}

	/** session store config */
	storeConfig := &StoreConfig{
		Path: getenv("SESSION_STORE_PATH", "data/console.db"),
	}

	/** search config */
	debounceQuiet, err := duration("SEARCH_DEBOUNCE", "300ms")
	if err != nil {
		return nil, err
	}
	searchConfig := &SearchConfig{DebounceQuiet: debounceQuiet}

	/** timer config */
	tickInterval, err := duration("TIMER_TICK_INTERVAL", "1s")
	if err != nil {
		return nil, err
	}
	timerConfig := &TimerConfig{TickInterval: tickInterval}

	/** login rate limit */
	loginRequests, err := integer("LOGIN_RATE_REQUESTS", "10")
	if err != nil {
		return nil, err
	}
	loginWindow, err := duration("LOGIN_RATE_WINDOW", "1m")
	if err != nil {
		return nil, err
	}
	loginRateConfig := &LoginRateConfig{
		Requests: loginRequests,
		Window:   loginWindow,
	}

	return &Config{
		AppConfig:       appConfig,
		UpstreamConfig:  upstreamConfig,
		StoreConfig:     storeConfig,
		SearchConfig:    searchConfig,
		TimerConfig:     timerConfig,
		LoginRateConfig: loginRateConfig,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func duration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(getenv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func integer(key, fallback string) (int, error) {
	n, err := strconv.Atoi(getenv(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
