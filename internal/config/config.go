// SPDX-FileCopyrightText: Winni Neessen <wn@neessen.dev>
//
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/kkyr/fig"
)

const configEnv = "FOLIO"

// Config represents the global config object struct
type Config struct {
	Cache struct {
		Type     string        `fig:"type" default:"inmemory"`
		Lifetime time.Duration `fig:"lifetime" default:"5m"`
		Redis    struct {
			Address   string `fig:"address" default:"localhost:6379"`
			Password  string `fig:"password"`
			DB        int    `fig:"db"`
			KeyPrefix string `fig:"key_prefix" default:"folio:content:"`
		} `fig:"redis"`
	} `fig:"cache"`

	Content struct {
		Source          string   `fig:"source" default:"http"`
		BaseURL         string   `fig:"base_url" default:"http://localhost:8080/data"`
		Directory       string   `fig:"directory" default:"./data"`
		DefaultLanguage string   `fig:"default_language" default:"en"`
		WarmLanguages   []string `fig:"warm_languages"`
	} `fig:"content"`

	Contact struct {
		Identifier    string        `fig:"identifier" default:"global"`
		MaxAttempts   int           `fig:"max_attempts" default:"5"`
		Window        time.Duration `fig:"window" default:"15m"`
		HoneypotField string        `fig:"honeypot_field" default:"website"`
	} `fig:"contact"`

	Log struct {
		Level     slog.Level `fig:"level" default:"0"`
		Format    string     `fig:"format" default:"json"`
		DontLogIP bool       `fig:"dont_log_ip"`
	} `fig:"log"`

	Mail struct {
		Host          string        `fig:"host" default:"localhost"`
		Port          int           `fig:"port" default:"25"`
		Username      string        `fig:"username"`
		Password      string        `fig:"password"`
		ForceTLS      bool          `fig:"force_tls"`
		DryRun        bool          `fig:"dry_run"`
		Timeout       time.Duration `fig:"timeout" default:"15s"`
		Sender        string        `fig:"sender" default:"no-reply@localhost"`
		Recipients    []string      `fig:"recipients"`
		SubjectPrefix string        `fig:"subject_prefix" default:"[Portfolio]"`
		Confirmation  struct {
			Enabled bool   `fig:"enabled"`
			Subject string `fig:"subject" default:"Thanks for your message"`
			Content string `fig:"content" default:"Thank you for reaching out. I will get back to you shortly."`
		} `fig:"confirmation"`
	} `fig:"mail"`

	Metrics struct {
		Enabled bool `fig:"enabled" default:"true"`
	} `fig:"metrics"`

	Server struct {
		BindAddress    string        `fig:"address" default:"127.0.0.1"`
		BindPort       string        `fig:"port" default:"8765"`
		Timeout        time.Duration `fig:"timeout" default:"15s"`
		AllowedOrigins []string      `fig:"allowed_origins"`
		AdminToken     string        `fig:"admin_token"`
	} `fig:"server"`
}

// New returns a new Config. It tries to load the config from the default location
// and falls back to the defaults or environment variables if the config file
// was not found.
func New() (*Config, error) {
	conf := new(Config)

	configPath, configFile := findConfigFile()
	if configPath != "" && configFile != "" {
		return NewFromFile(configPath, configFile)
	}

	if err := fig.Load(conf, fig.AllowNoFile(), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, nil
}

// NewFromFile returns a new Config from the given path and file.
func NewFromFile(path, file string) (*Config, error) {
	conf := new(Config)
	_, err := os.Stat(filepath.Join(path, file))
	if err != nil {
		return conf, fmt.Errorf("failed to read Config: %w", err)
	}

	if err = fig.Load(conf, fig.Dirs(path), fig.File(file), fig.UseEnv(configEnv)); err != nil {
		return conf, fmt.Errorf("failed to load Config: %w", err)
	}

	return conf, nil
}

func findConfigFile() (string, string) {
	homedir, err := os.UserHomeDir()
	if err != nil {
		return "", ""
	}
	exts := []string{"toml", "yaml", "yml", "json"}
	for _, ext := range exts {
		path := filepath.Join(homedir, ".config", "folio", "folio."+ext)
		if _, err = os.Stat(path); err == nil {
			return filepath.Dir(path), filepath.Base(path)
		}
	}
	return "", ""
}
