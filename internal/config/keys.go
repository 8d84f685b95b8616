// Package config provides API key management utilities.
package config

import (
	"errors"
	"fmt"
	"strings"
)

// Service identifies an external collaborator that needs a credential.
type Service string

const (
	ServiceAnthropic Service = "anthropic"
	ServiceWavespeed Service = "wavespeed"
	ServiceZeabur    Service = "zeabur"
	ServiceFirecrawl Service = "firecrawl"
)

// NotConfiguredError indicates a required credential is absent. It is a
// configuration error, not a transient failure: it is reported to the user
// with a remediation hint and never retried.
type NotConfiguredError struct {
	Service Service
	EnvVar  string
}

func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("%s API key not configured: set %s in your environment or .env file", e.Service, e.EnvVar)
}

// ErrNotConfigured matches any NotConfiguredError via errors.Is.
var ErrNotConfigured = errors.New("collaborator not configured")

func (e *NotConfiguredError) Is(target error) bool {
	return target == ErrNotConfigured
}

// envVars maps services to the env var the original system reads.
var envVars = map[Service]string{
	ServiceAnthropic: "ANTHROPIC_API_KEY",
	ServiceWavespeed: "WAVESPEED_API_KEY",
	ServiceZeabur:    "ZEABUR_API_KEY",
	ServiceFirecrawl: "FIRECRAWL_API_KEY",
}

// APIKey returns the configured key for a service. Empty keys and
// untouched "YOUR_..._HERE" template values both count as not configured.
func (c *Config) APIKey(svc Service) (string, error) {
	var key string
	switch svc {
	case ServiceAnthropic:
		key = c.Anthropic.APIKey
	case ServiceWavespeed:
		key = c.Wavespeed.APIKey
	case ServiceZeabur:
		key = c.Zeabur.APIKey
	case ServiceFirecrawl:
		key = c.Firecrawl.APIKey
	default:
		return "", fmt.Errorf("unknown service %q", svc)
	}

	if !usableKey(key) {
		return "", &NotConfiguredError{Service: svc, EnvVar: envVars[svc]}
	}
	return key, nil
}

// usableKey rejects empty keys and placeholder template values that made
// it into a .env file verbatim.
func usableKey(key string) bool {
	if key == "" {
		return false
	}
	if strings.HasPrefix(key, "YOUR_") && strings.HasSuffix(key, "_HERE") {
		return false
	}
	return true
}

// ValidateKey checks a credential held by a collaborator itself,
// returning a NotConfiguredError when it is absent or still a template
// placeholder.
func ValidateKey(svc Service, key string) error {
	if !usableKey(key) {
		return &NotConfiguredError{Service: svc, EnvVar: envVars[svc]}
	}
	return nil
}

// MaskAPIKey returns a masked version of an API key for display.
// Shows the first 7 and last 4 characters.
func MaskAPIKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 15 {
		return "***"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
