package auth_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/emirkorkmazz/lokanta-api/auth"
)

func TestMemoryDenylist(t *testing.T) {
	t.Run("revoked id is reported until expiry", func(t *testing.T) {
		d := auth.NewMemoryDenylist(0)
		defer d.Close()

		d.Revoke("token-1", time.Now().Add(time.Hour))

		assert.True(t, d.IsRevoked("token-1"))
		assert.False(t, d.IsRevoked("token-2"))
	})

	t.Run("entry past its expiry no longer counts", func(t *testing.T) {
		d := auth.NewMemoryDenylist(0)
		defer d.Close()

		d.Revoke("token-1", time.Now().Add(-time.Minute))

		assert.False(t, d.IsRevoked("token-1"))
	})

	t.Run("empty id is never revoked", func(t *testing.T) {
		d := auth.NewMemoryDenylist(0)
		defer d.Close()

		d.Revoke("", time.Now().Add(time.Hour))

		assert.False(t, d.IsRevoked(""))
	})

	t.Run("close is idempotent", func(t *testing.T) {
		d := auth.NewMemoryDenylist(time.Minute)
		d.Close()
		d.Close()
	})
}

func TestMemoryDenylistConcurrency(t *testing.T) {
	d := auth.NewMemoryDenylist(0)
	defer d.Close()

	until := time.Now().Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		jti := fmt.Sprintf("token-%d", i)
		go func() {
			defer wg.Done()
			d.Revoke(jti, until)
		}()
		go func() {
			defer wg.Done()
			d.IsRevoked(jti)
		}()
	}
	wg.Wait()

	for i := 0; i < 50; i++ {
		assert.True(t, d.IsRevoked(fmt.Sprintf("token-%d", i)))
	}
}
