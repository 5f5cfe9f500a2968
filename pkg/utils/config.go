package utils

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	Reservation ReservationConfig
	Layout      LayoutConfig
	WS          WSConfig
}

type AppConfig struct {
	Name    string
	Port    string
	Debug   bool
	LogPath string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

// Enabled reports whether a reservation archive database is configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

type ReservationConfig struct {
	HoldTTLMinutes       int
	SessionIdleMinutes   int
	SweepIntervalSeconds int
	DefaultSession       string
}

type LayoutConfig struct {
	Rows            []string
	SeatsPerRow     int
	WheelchairSeats []string
}

type WSConfig struct {
	SendBuffer          int
	WriteTimeoutSeconds int
	PingIntervalSeconds int
	MaxMessageBytes     int64
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "seat-coordinator")
	viper.SetDefault("PORT", "8000")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("HOLD_TTL_MINUTES", 5)
	viper.SetDefault("SESSION_IDLE_MINUTES", 30)
	viper.SetDefault("SWEEP_INTERVAL_SECONDS", 60)
	viper.SetDefault("DEFAULT_SESSION", "S001")
	viper.SetDefault("LAYOUT_ROWS", "J,I,H,G,F,E,D,C,B,A")
	viper.SetDefault("LAYOUT_SEATS_PER_ROW", 20)
	viper.SetDefault("LAYOUT_WHEELCHAIR_SEATS", "A01,A02,A17,A18")
	viper.SetDefault("WS_SEND_BUFFER", 64)
	viper.SetDefault("WS_WRITE_TIMEOUT_SECONDS", 10)
	viper.SetDefault("WS_PING_INTERVAL_SECONDS", 30)
	viper.SetDefault("WS_MAX_MESSAGE_BYTES", 4096)

	if err := viper.ReadInConfig(); err != nil {
		// A missing .env is fine, env vars and defaults still apply.
		var pathErr *fs.PathError
		if !errors.As(err, &pathErr) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:    viper.GetString("APP_NAME"),
			Port:    viper.GetString("PORT"),
			Debug:   viper.GetBool("DEBUG"),
			LogPath: viper.GetString("LOG_PATH"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Reservation: ReservationConfig{
			HoldTTLMinutes:       viper.GetInt("HOLD_TTL_MINUTES"),
			SessionIdleMinutes:   viper.GetInt("SESSION_IDLE_MINUTES"),
			SweepIntervalSeconds: viper.GetInt("SWEEP_INTERVAL_SECONDS"),
			DefaultSession:       viper.GetString("DEFAULT_SESSION"),
		},
		Layout: LayoutConfig{
			Rows:            splitCSV(viper.GetString("LAYOUT_ROWS")),
			SeatsPerRow:     viper.GetInt("LAYOUT_SEATS_PER_ROW"),
			WheelchairSeats: splitCSV(viper.GetString("LAYOUT_WHEELCHAIR_SEATS")),
		},
		WS: WSConfig{
			SendBuffer:          viper.GetInt("WS_SEND_BUFFER"),
			WriteTimeoutSeconds: viper.GetInt("WS_WRITE_TIMEOUT_SECONDS"),
			PingIntervalSeconds: viper.GetInt("WS_PING_INTERVAL_SECONDS"),
			MaxMessageBytes:     viper.GetInt64("WS_MAX_MESSAGE_BYTES"),
		},
	}

	return config, nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
