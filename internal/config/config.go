package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	GithubToken string
	GithubOrgs  []string

	OutputDir string

	RunCron        string
	WorkersRepos   int
	WorkersPRs     int
	HTTPTimeout    time.Duration
	RateRetryEvery time.Duration
	RateRetryMax   int

	OpenAIKey     string
	OpenAIModel   string
	OpenAITimeout time.Duration

	TelegramToken   string
	TelegramChatIDs []int64
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" { return def }
	return v
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" { return def }
	i, err := strconv.Atoi(v)
	if err != nil { return def }
	return i
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" { return def }
	d, err := time.ParseDuration(v)
	if err != nil { return def }
	return d
}

func parseInt64s(csv string) []int64 {
	if csv == "" { return nil }
	parts := strings.Split(csv, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" { continue }
		n, err := strconv.ParseInt(p, 10, 64)
		if err == nil { out = append(out, n) }
	}
	return out
}

func parseStrings(csv string) []string {
	if csv == "" { return nil }
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" { continue }
		out = append(out, p)
	}
	return out
}

func Load() Config {
	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		GithubToken: getenv("GITHUB_TOKEN", ""),
		GithubOrgs:  parseStrings(getenv("GITHUB_ORGS", "ubiquity-os-marketplace,ubiquity-os")),

		OutputDir: getenv("OUTPUT_DIR", "."),

		RunCron:        getenv("CRON_SPEC", "0 6 * * MON"),
		WorkersRepos:   atoi("WORKERS_REPOS", 4),
		WorkersPRs:     atoi("WORKERS_PRS", 8),
		HTTPTimeout:    dur("HTTP_TIMEOUT", 30*time.Second),
		RateRetryEvery: dur("RATE_RETRY_EVERY", 60*time.Second),
		RateRetryMax:   atoi("RATE_RETRY_MAX", 0),

		OpenAIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4.1-mini"),
		OpenAITimeout: dur("OPENAI_TIMEOUT", 15*time.Second),

		TelegramToken:   getenv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatIDs: parseInt64s(getenv("TELEGRAM_CHAT_IDS", "")),
	}

	// set global timezone if available
	if loc, err := time.LoadLocation(cfg.TZ); err == nil {
		time.Local = loc
	} else {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
	}
	return cfg
}
