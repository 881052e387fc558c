package config

import "time"

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	UploadDir         string        `mapstructure:"upload_dir" yaml:"upload_dir"`
	PublicBaseURL     string        `mapstructure:"public_base_url" yaml:"public_base_url"`
	MaxUploadBytes    int64         `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	HistoryWindow     int           `mapstructure:"history_window" yaml:"history_window"`
	HistoryPageSize   int           `mapstructure:"history_page_size" yaml:"history_page_size"`
	MessagesPerMinute int           `mapstructure:"messages_per_minute" yaml:"messages_per_minute"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	LogFile           string        `mapstructure:"log_file" yaml:"log_file"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "chatroom.db",
		UploadDir:         "uploads",
		PublicBaseURL:     "",
		MaxUploadBytes:    10 << 20,
		HistoryWindow:     100,
		HistoryPageSize:   50,
		MessagesPerMinute: 120,
		LogLevel:          "info",
		LogFile:           "",
	}
}
