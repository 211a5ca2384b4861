package remember_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tdslabs/apiconsole/internal/remember"
)

func TestBoltStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remember.db")

	s, err := remember.OpenBolt(path)
	require.NoError(t, err)

	require.NoError(t, s.Save(remember.Hint{Email: "admin@example.com", Remember: true}))
	require.NoError(t, s.Close())

	// Reopen to prove the hint survives a process restart.
	s, err = remember.OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	h, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", h.Email)
	assert.True(t, h.Remember)
}

func TestBoltStore_RememberOffDropsEmail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remember.db")

	s, err := remember.OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Save(remember.Hint{Email: "admin@example.com", Remember: true}))
	require.NoError(t, s.Save(remember.Hint{Email: "admin@example.com", Remember: false}))

	h, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, h.Email)
	assert.False(t, h.Remember)
}

func TestBoltStore_EmptyDatabase(t *testing.T) {
	s, err := remember.OpenBolt(filepath.Join(t.TempDir(), "remember.db"))
	require.NoError(t, err)
	defer s.Close()

	h, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, remember.Hint{}, h)
}
