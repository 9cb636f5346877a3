package conf

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfiguration_Load(t *testing.T) {
	dir, err := ioutil.TempDir("", "gradient-conf")
	require.Nil(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "config.yaml")
	content := `
apiKey: secret
hosts:
  api: http://127.0.0.1:8800
restConfig:
  qps: 2
  burst: 4
  timeout: 5s
logs:
  pollInterval: 500ms
logging:
  level: debug
`
	require.Nil(t, ioutil.WriteFile(path, []byte(content), 0644))

	c := &Configuration{}
	require.Nil(t, c.Load(path))
	assert.Equal(t, "secret", c.APIKey)
	assert.Equal(t, "http://127.0.0.1:8800", c.Hosts.API)
	assert.Equal(t, DefaultVPCHost, c.Hosts.VPC)
	assert.Equal(t, float32(2), c.Rest.QPS)
	assert.Equal(t, 4, c.Rest.Burst)
	assert.Equal(t, 5*time.Second, c.Rest.Timeout)
	assert.Equal(t, 500*time.Millisecond, c.Logs.PollInterval)
	assert.Equal(t, 10000, c.Logs.Limit)
	assert.Equal(t, "debug", c.Logging.Level)
}

func TestConfiguration_LoadEnv(t *testing.T) {
	os.Setenv(APIKeyEnv, "from-env")
	defer os.Unsetenv(APIKeyEnv)

	c := &Configuration{}
	require.Nil(t, c.Load(""))
	assert.Equal(t, "from-env", c.APIKey)
	assert.Equal(t, DefaultAPIHost, c.Hosts.API)
}

func TestConfiguration_Validate(t *testing.T) {
	cases := []struct {
		modify func(c *Configuration)
		valid  bool
	}{
		{modify: func(c *Configuration) {}, valid: true},
		{modify: func(c *Configuration) { c.Hosts.API = "ftp://example.com" }, valid: false},
		{modify: func(c *Configuration) { c.Rest.QPS = -1 }, valid: false},
		{modify: func(c *Configuration) { c.Logs.PollInterval = -time.Second }, valid: false},
		{modify: func(c *Configuration) { c.Logging.Level = "loud" }, valid: false},
	}
	for i, tc := range cases {
		c := NewConfiguration()
		tc.modify(c)
		err := c.Validate()
		t.Logf("case #%d: valid=%v, error=%v", i, tc.valid, err)
		if tc.valid {
			assert.Nil(t, err)
		} else {
			assert.NotNil(t, err)
		}
	}
}
