package mockserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gradient-sdk/conf"
)

func TestServerConfig(t *testing.T) {
	config := conf.NewConfiguration()
	config.APIKey = "secret"
	opts := NewOption()

	c := serverConfig(opts, config)
	assert.Equal(t, "127.0.0.1:8800", c.Listen)
	assert.Empty(t, c.APIKey)

	opts.Listen = "127.0.0.1:0"
	opts.RequireAPIKey = true
	c = serverConfig(opts, config)
	assert.Equal(t, "127.0.0.1:0", c.Listen)
	assert.Equal(t, "secret", c.APIKey)
}

func TestRun(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.Nil(t, err)
	addr := l.Addr().String()
	require.Nil(t, l.Close())

	config := conf.NewConfiguration()
	opts := NewOption()
	opts.Listen = addr
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, opts, config)
	}()

	ok := false
	for i := 0; i < 50 && !ok; i++ {
		resp, err := http.Get(fmt.Sprintf("http://%s/ping", addr))
		if err == nil {
			resp.Body.Close()
			ok = resp.StatusCode == http.StatusOK
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.True(t, ok)
	cancel()
	assert.Nil(t, <-done)
}
