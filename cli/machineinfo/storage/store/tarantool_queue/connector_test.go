package tarantool_queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOptions(t *testing.T) {
	opts, err := options(map[string]string{
		"max_recons": "5",
		"timeout":    "2",
		"reconnect":  "1",
		"user":       "exporter",
		"password":   "pw",
	})
	assert.NoError(t, err)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, time.Second, opts.Reconnect)
	assert.Equal(t, uint(5), opts.MaxReconnects)
	assert.Equal(t, "exporter", opts.User)

	_, err = options(map[string]string{"max_recons": "5", "timeout": "soon"})
	assert.Error(t, err)

	opts, err = options(map[string]string{})
	assert.NoError(t, err)
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Equal(t, uint(5), opts.MaxReconnects)
}

func TestInitRequiresQueue(t *testing.T) {
	c := &Connector{}
	assert.Error(t, c.Init(nil))
	assert.Error(t, c.Init(map[string]string{"host": "localhost"}))
	assert.NoError(t, c.Close())
}
