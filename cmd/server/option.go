package server

import (
	flag "github.com/spf13/pflag"

	"gradient-sdk/conf"
)

type Option struct {
	ConfigPath string `json:"configPath,omitempty"`
	APIKey     string `json:"-"`
	APIHost    string `json:"apiHost,omitempty"`
	LogLevel   string `json:"logLevel,omitempty"`
}

func NewOption() *Option {
	return &Option{}
}

func (opts *Option) Bind(fs *flag.FlagSet) {
	fs.StringVar(&opts.ConfigPath, "config", "", "The path to configuration file.")
	fs.StringVar(&opts.APIKey, "api-key", "", "API key, overrides the configuration and the environment.")
	fs.StringVar(&opts.APIHost, "api-host", "", "Send every request to this host, e.g. a local mock-server.")
	fs.StringVar(&opts.LogLevel, "log-level", "", "Override the configured log level.")
}

// Apply: command line values take precedence over the configuration file
func (opts *Option) Apply(config *conf.Configuration) error {
	if len(opts.APIKey) > 0 {
		config.APIKey = opts.APIKey
	}
	if len(opts.APIHost) > 0 {
		config.Hosts.SetAll(opts.APIHost)
	}
	if len(opts.LogLevel) > 0 {
		config.Logging.Level = opts.LogLevel
	}
	return config.Validate()
}
