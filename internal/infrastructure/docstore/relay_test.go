package docstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedisRelay_Decode(t *testing.T) {
	r := NewRedisRelay(nil, "", nil)

	t.Run("uses the default channel", func(t *testing.T) {
		assert.Equal(t, DefaultRelayChannel, r.channel)
	})

	t.Run("own messages are skipped", func(t *testing.T) {
		collection, remote := r.decode(r.encode("users"))
		assert.Equal(t, "users", collection)
		assert.False(t, remote)
	})

	t.Run("messages from other instances are forwarded", func(t *testing.T) {
		collection, remote := r.decode("other-instance|users/u1/orders")
		assert.Equal(t, "users/u1/orders", collection)
		assert.True(t, remote)
	})

	t.Run("malformed payloads are ignored", func(t *testing.T) {
		for _, payload := range []string{"", "no-separator", "id|", "id|users/u1"} {
			_, remote := r.decode(payload)
			assert.False(t, remote, payload)
		}
	})
}
