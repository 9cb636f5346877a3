package mockserver

import (
	"encoding/json"
	"fmt"

	flag "github.com/spf13/pflag"

	"gradient-sdk/cmd/server"
)

type MockServerOption struct {
	*server.Option `json:",inline"`
	Listen         string `json:"listen,omitempty"`
	RequireAPIKey  bool   `json:"requireApiKey,omitempty"`
}

func NewOption() *MockServerOption {
	return &MockServerOption{
		Option: server.NewOption(),
	}
}

func (opts *MockServerOption) Bind(fs *flag.FlagSet) {
	fs.StringVar(&opts.Listen, "listen", "",
		"Address of the server, overrides the configured one.")
	fs.BoolVar(&opts.RequireAPIKey, "require-api-key", false,
		"Reject requests that do not carry the configured API key.")
}

func (opts *MockServerOption) String() string {
	if content, err := json.Marshal(opts); err == nil {
		return string(content)
	}
	return fmt.Sprintf("%#v", opts)
}
