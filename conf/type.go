package conf

import (
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	APIKeyEnv = "PAPERSPACE_API_KEY"

	DefaultAPIHost  = "https://api.paperspace.io"
	DefaultVPCHost  = "https://services.paperspace.io/experiments/v2"
	DefaultLogsHost = "https://logs.paperspace.io"
)

/*****************
 * Configuration
 *****************/
type Configuration struct {
	APIKey     string           `yaml:"apiKey,omitempty"`
	Hosts      HostsConfig      `yaml:"hosts,omitempty"`
	Rest       RestConfig       `yaml:"restConfig,omitempty"`
	Logs       LogsConfig       `yaml:"logs,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	MockServer MockServerConfig `yaml:"mockServer,omitempty"`
}

// NewConfiguration: configuration with every default applied
func NewConfiguration() *Configuration {
	c := &Configuration{}
	c.SetDefault()
	return c
}

// Load: read the YAML file at path; an empty path only applies defaults and the environment
func (c *Configuration) Load(path string) error {
	if len(path) > 0 {
		content, err := ioutil.ReadFile(path)
		if err != nil {
			return err
		}
		if err := yaml.Unmarshal(content, c); err != nil {
			return err
		}
	}
	if len(c.APIKey) == 0 {
		c.APIKey = os.Getenv(APIKeyEnv)
	}
	c.SetDefault()
	return c.Validate()
}

func (c *Configuration) SetDefault() {
	c.Hosts.SetDefault()
	c.Rest.SetDefault()
	c.Logs.SetDefault()
	c.Logging.SetDefault()
	c.MockServer.SetDefault()
}

func (c *Configuration) Validate() error {
	if err := c.Hosts.Validate("$.hosts"); err != nil {
		return err
	}
	if err := c.Rest.Validate("$.restConfig"); err != nil {
		return err
	}
	if err := c.Logs.Validate("$.logs"); err != nil {
		return err
	}
	return c.Logging.Validate("$.logging")
}

func (c *Configuration) GetRestConfig() RestConfig {
	return c.Rest
}

/*********
 * Hosts
 *********/
type HostsConfig struct {
	API  string `yaml:"api,omitempty"`
	VPC  string `yaml:"vpc,omitempty"`
	Logs string `yaml:"logs,omitempty"`
}

func (c *HostsConfig) SetDefault() {
	if len(c.API) == 0 {
		c.API = DefaultAPIHost
	}
	if len(c.VPC) == 0 {
		c.VPC = DefaultVPCHost
	}
	if len(c.Logs) == 0 {
		c.Logs = DefaultLogsHost
	}
}

func (c *HostsConfig) Validate(prefix string) error {
	for name, host := range map[string]string{"api": c.API, "vpc": c.VPC, "logs": c.Logs} {
		u, err := url.Parse(host)
		if err != nil {
			return fmt.Errorf("%s.%s is not a valid url: %v", prefix, name, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%s.%s must be an http(s) url: %s", prefix, name, host)
		}
	}
	return nil
}

// SetAll: point every host at the same base url
func (c *HostsConfig) SetAll(host string) {
	c.API = host
	c.VPC = host
	c.Logs = host
}

/*************
 * RestConfig
 *************/
type RestConfig struct {
	QPS     float32       `json:"qps" yaml:"qps"`
	Burst   int           `json:"burst" yaml:"burst"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

func (c *RestConfig) SetDefault() {
	if c.QPS == 0 {
		c.QPS = 5
	}
	if c.Burst == 0 {
		c.Burst = 10
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
}

func (c *RestConfig) Validate(prefix string) error {
	if c.QPS <= 0 || c.Burst <= 0 {
		return fmt.Errorf("%s.qps and %s.burst must be positive", prefix, prefix)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%s.timeout must not be negative", prefix)
	}
	return nil
}

/*************
 * LogsConfig
 *************/
type LogsConfig struct {
	PollInterval time.Duration `yaml:"pollInterval,omitempty"`
	Limit        int           `yaml:"limit,omitempty"`
}

func (c *LogsConfig) SetDefault() {
	if c.PollInterval == 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.Limit == 0 {
		c.Limit = 10000
	}
}

func (c *LogsConfig) Validate(prefix string) error {
	if c.PollInterval <= 0 {
		return fmt.Errorf("%s.pollInterval must be positive", prefix)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("%s.limit must be positive", prefix)
	}
	return nil
}

/****************
 * LoggingConfig
 ****************/
type LoggingConfig struct {
	Dir   string `yaml:"dir,omitempty"`
	Level string `yaml:"level,omitempty"`
}

func (c *LoggingConfig) SetDefault() {
	if len(c.Level) == 0 {
		c.Level = "info"
	}
}

func (c *LoggingConfig) Validate(prefix string) error {
	switch c.Level {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("%s.level is not supported: %s", prefix, c.Level)
}

/*******************
 * MockServerConfig
 *******************/
type MockServerConfig struct {
	Listen string `yaml:"listen,omitempty"`
	// requests must carry this key when set
	APIKey string `yaml:"apiKey,omitempty"`
}

func (c *MockServerConfig) SetDefault() {
	if len(c.Listen) == 0 {
		c.Listen = "127.0.0.1:8800"
	}
}
