package config

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

var GistsearchVersion = "0.0.1"

var C *config

// Not using nested structs because the library
// doesn't support dot notation in this case sadly
type config struct {
	LogLevel string `yaml:"log-level"`
	LogFile  string `yaml:"log-file"`

	HttpHost string `yaml:"http.host"`
	HttpPort string `yaml:"http.port"`

	GithubApiUrl  string        `yaml:"github.api-url"`
	GithubGistUrl string        `yaml:"github.gist-url"`
	GithubTimeout time.Duration `yaml:"github.timeout"`
	GithubPerPage int           `yaml:"github.per-page"`

	SearchMaxPages int `yaml:"search.max-pages"`
	SearchWorkers  int `yaml:"search.workers"`

	MetricsEnabled bool   `yaml:"metrics.enabled"`
	MetricsHost    string `yaml:"metrics.host"`
	MetricsPort    string `yaml:"metrics.port"`
}

func configWithDefaults() *config {
	c := &config{}

	c.LogLevel = "warn"

	c.HttpHost = "0.0.0.0"
	c.HttpPort = "8000"

	c.GithubApiUrl = "https://api.github.com/"
	c.GithubGistUrl = "https://gist.github.com"
	c.GithubTimeout = 10 * time.Second
	c.GithubPerPage = 100

	c.SearchMaxPages = 100
	c.SearchWorkers = 4

	c.MetricsEnabled = false
	c.MetricsHost = "0.0.0.0"
	c.MetricsPort = "6158"

	return c
}

func InitConfig(configPath string, out io.Writer) error {
	// Default values
	c := configWithDefaults()

	if configPath != "" {
		file, err := os.Open(configPath)
		if err != nil {
			return fmt.Errorf("cannot open config file: %w", err)
		}
		defer file.Close()

		_, _ = fmt.Fprintln(out, "Using config file: "+configPath)

		// Override default values with values from config.yml
		d := yaml.NewDecoder(file)
		if err = d.Decode(c); err != nil && err != io.EOF {
			return err
		}
	}

	// Override default values with environment variables (as yaml)
	configEnv := os.Getenv("CONFIG")
	if configEnv != "" {
		_, _ = fmt.Fprintln(out, "Using config from environment variable: CONFIG")
		d := yaml.NewDecoder(strings.NewReader(configEnv))
		if err := d.Decode(c); err != nil {
			return err
		}
	}

	if err := c.check(); err != nil {
		return err
	}

	C = c

	return nil
}

func (c *config) check() error {
	if c.GithubTimeout <= 0 {
		return fmt.Errorf("github.timeout must be a positive duration")
	}
	if c.GithubPerPage < 1 || c.GithubPerPage > 100 {
		return fmt.Errorf("github.per-page must be between 1 and 100")
	}
	if c.SearchMaxPages < 1 {
		return fmt.Errorf("search.max-pages must be at least 1")
	}
	if c.SearchWorkers < 1 {
		return fmt.Errorf("search.workers must be at least 1")
	}

	u, err := url.Parse(c.GithubApiUrl)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid github.api-url %q", c.GithubApiUrl)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	c.GithubApiUrl = u.String()
	c.GithubGistUrl = strings.TrimSuffix(c.GithubGistUrl, "/")

	return nil
}

func InitLog() {
	writers := []io.Writer{zerolog.NewConsoleWriter()}

	if C.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(C.LogFile), 0755); err != nil {
			panic(err)
		}
		file, err := os.OpenFile(C.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			panic(err)
		}
		writers = append(writers, file)
	}
	multi := zerolog.MultiLevelWriter(writers...)

	level, err := zerolog.ParseLevel(C.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	log.Logger = zerolog.New(multi).Level(level).With().Timestamp().Logger()
}

func HttpAddr() string {
	return C.HttpHost + ":" + C.HttpPort
}

func MetricsAddr() string {
	return C.MetricsHost + ":" + C.MetricsPort
}
