package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks values the server cannot start without.
func (c Config) Validate() error {
	if c.Addr == "" {
		return errors.New("config: addr is required")
	}
	if c.ServerName == "" || strings.ContainsAny(c.ServerName, " \r\n") {
		return fmt.Errorf("config: invalid server_name %q", c.ServerName)
	}
	if len(c.Channels) == 0 {
		return errors.New("config: at least one channel is required")
	}
	seen := make(map[string]struct{}, len(c.Channels))
	for _, ch := range c.Channels {
		if !strings.HasPrefix(ch.Name, "#") && !strings.HasPrefix(ch.Name, "&") {
			return fmt.Errorf("config: channel %q must start with # or &", ch.Name)
		}
		if strings.ContainsAny(ch.Name, " ,\r\n") {
			return fmt.Errorf("config: invalid channel name %q", ch.Name)
		}
		key := strings.ToLower(ch.Name)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("config: duplicate channel %q", ch.Name)
		}
		seen[key] = struct{}{}
	}
	if c.MaxLineLength < 512 {
		return fmt.Errorf("config: max_line_length %d is below 512", c.MaxLineLength)
	}
	return nil
}
