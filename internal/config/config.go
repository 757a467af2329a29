// Package config provides configuration management for go-webinarform.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

var AppVersion = "-unset-" // will be set at build time

const (
	DefaultListenPort  = 11980
	DefaultTLSPort     = 19443
	DefaultRobotsTxt   = "web/robots.txt"
	DefaultAutocertDir = "data/autocert"

	// ACME tls-alpn-01 challenges are always checked on 443
	AutocertPort = 443

	minPort = 1024
	maxPort = 65535
)

// MainConfig holds the main configuration for go-webinarform
type MainConfig struct {
	// Server settings
	Server ServerConfig `yaml:"server" json:"server"`

	AppVersion string `yaml:"-" json:"app_version"` // Application version, set at build time
}

// ServerConfig holds the web server configuration
type ServerConfig struct {
	Hostname string    `yaml:"hostname" json:"hostname"`
	Web      WebConfig `yaml:"web" json:"web"`
}

// WebConfig holds web interface configuration
type WebConfig struct {
	ListenPort int    `yaml:"listen_port" json:"listen_port"`
	SSL        bool   `yaml:"ssl" json:"ssl"`
	CertFile   string `yaml:"cert_file,omitempty" json:"cert_file,omitempty"`
	KeyFile    string `yaml:"key_file,omitempty" json:"key_file,omitempty"`

	// ACME (Let's Encrypt) certificates, used instead of CertFile/KeyFile when set
	AutocertHosts    []string `yaml:"autocert_hosts,omitempty" json:"autocert_hosts,omitempty"`
	AutocertCacheDir string   `yaml:"autocert_cache_dir" json:"autocert_cache_dir"`

	RobotsTxt string `yaml:"robots_txt" json:"robots_txt"` // served at /robots.txt if the file exists
	BlockBots bool   `yaml:"block_bots" json:"block_bots"`
	Debug     bool   `yaml:"debug" json:"debug"` // gin debug mode
}

// TerminatesTLS reports whether the web server itself speaks TLS
// (as opposed to running plain HTTP behind a reverse proxy).
func (w *WebConfig) TerminatesTLS() bool {
	return w.SSL || len(w.AutocertHosts) > 0
}

// Validate checks the web configuration for values the server cannot start with
func (w *WebConfig) Validate() error {
	if len(w.AutocertHosts) > 0 && w.ListenPort == AutocertPort {
		return nil
	}
	if w.ListenPort < minPort || w.ListenPort > maxPort {
		return fmt.Errorf("invalid port number: %d (must be between %d and %d)", w.ListenPort, minPort, maxPort)
	}
	if w.SSL && len(w.AutocertHosts) == 0 && (w.CertFile == "" || w.KeyFile == "") {
		return errors.New("SSL enabled but cert_file or key_file not specified in config")
	}
	return nil
}

// NewDefaultConfig returns a configuration with sensible defaults
func NewDefaultConfig() *MainConfig {
	return &MainConfig{
		AppVersion: AppVersion,
		Server: ServerConfig{
			Web: WebConfig{
				ListenPort:       DefaultListenPort,
				SSL:              false,
				AutocertCacheDir: DefaultAutocertDir,
				RobotsTxt:        DefaultRobotsTxt,
			},
		},
	}
}

// LoadFile reads a YAML config file on top of the defaults.
// An empty path returns the defaults unchanged.
func LoadFile(path string) (*MainConfig, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	log.Printf("[CONFIG]: loaded %s", path)
	return cfg, nil
}
