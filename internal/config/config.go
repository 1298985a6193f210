package config

import "time"

// ChannelConfig is one entry of the fixed channel set.
type ChannelConfig struct {
	Name        string `mapstructure:"name" yaml:"name"`
	Description string `mapstructure:"description" yaml:"description"`
}

// Config holds server configuration values.
type Config struct {
	Addr            string          `mapstructure:"addr" yaml:"addr"`
	HTTPAddr        string          `mapstructure:"http_addr" yaml:"http_addr"`
	ServerName      string          `mapstructure:"server_name" yaml:"server_name"`
	Welcome         string          `mapstructure:"welcome" yaml:"welcome"`
	Channels        []ChannelConfig `mapstructure:"channels" yaml:"channels"`
	LogLevel        string          `mapstructure:"log_level" yaml:"log_level"`
	LogFormat       string          `mapstructure:"log_format" yaml:"log_format"`
	WriteTimeout    time.Duration   `mapstructure:"write_timeout" yaml:"write_timeout"`
	MaxLineLength   int             `mapstructure:"max_line_length" yaml:"max_line_length"`
	WSRateLimit     int             `mapstructure:"ws_rate_limit" yaml:"ws_rate_limit"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	AuditPath       string          `mapstructure:"audit_path" yaml:"audit_path"`
	PasswordHash    string          `mapstructure:"password_hash" yaml:"password_hash"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:       ":6667",
		HTTPAddr:   ":8080",
		ServerName: "irc.wirechat.local",
		Welcome:    "Welcome to the wirechat IRC network",
		Channels: []ChannelConfig{
			{Name: "#rust", Description: "A place to talk about Rust"},
			{Name: "#java", Description: "A place to talk about Java"},
		},
		LogLevel:        "info",
		LogFormat:       "console",
		WriteTimeout:    10 * time.Second,
		MaxLineLength:   4096,
		WSRateLimit:     600,
		ShutdownTimeout: 5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.HTTPAddr != "" {
		c.HTTPAddr = other.HTTPAddr
	}
	if other.ServerName != "" {
		c.ServerName = other.ServerName
	}
	if other.Welcome != "" {
		c.Welcome = other.Welcome
	}
	if len(other.Channels) > 0 {
		c.Channels = other.Channels
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFormat != "" {
		c.LogFormat = other.LogFormat
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if other.MaxLineLength != 0 {
		c.MaxLineLength = other.MaxLineLength
	}
	if other.WSRateLimit != 0 {
		c.WSRateLimit = other.WSRateLimit
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.AuditPath != "" {
		c.AuditPath = other.AuditPath
	}
	if other.PasswordHash != "" {
		c.PasswordHash = other.PasswordHash
	}
}
