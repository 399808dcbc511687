package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr        string
	DatabaseURL     string // пусто — работаем на файловом хранилище
	DataPath        string
	LogLevel        string
	Env             string // dev|prod
	SentryDSN       string
	SupabaseURL     string // пусто — внешняя авторизация выключена
	SupabaseAnonKey string
	BotToken        string // пусто — телеграм-уведомления выключены
	AlertChatIDs    []int64
	AttendanceRate  float64 // базовая доля "present" при генерации демо-посещаемости
	ScanInterval    time.Duration
}

func Load() (*Config, error) {
	chatIDs, err := parseIDs(os.Getenv("ALERT_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("ALERT_CHAT_IDS: %w", err)
	}

	rate, err := parseRate(getenv("ATTENDANCE_RATE", "0.9"))
	if err != nil {
		return nil, fmt.Errorf("ATTENDANCE_RATE: %w", err)
	}

	scanEvery, err := time.ParseDuration(getenv("SCAN_INTERVAL", "10m"))
	if err != nil {
		return nil, fmt.Errorf("SCAN_INTERVAL: %w", err)
	}
	// интервал уходит в time.NewTicker, который паникует на <= 0
	if scanEvery <= 0 {
		return nil, fmt.Errorf("SCAN_INTERVAL: интервал %v должен быть положительным", scanEvery)
	}

	cfg := &Config{
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getenv("DATA_PATH", "./data/records.json"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		Env:             getenv("ENV", "dev"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		SupabaseURL:     os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey: os.Getenv("SUPABASE_ANON_KEY"),
		BotToken:        os.Getenv("BOT_TOKEN"),
		AlertChatIDs:    chatIDs,
		AttendanceRate:  rate,
		ScanInterval:    scanEvery,
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func parseRate(s string) (float64, error) {
	r, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if r < 0 || r > 1 {
		return 0, fmt.Errorf("rate %v вне диапазона [0,1]", r)
	}
	return r, nil
}
