package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }

func (s *stubFeature) Load(app fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	runs := &stubFeature{name: "runs", enabled: true}
	history := &stubFeature{name: "history", enabled: false}

	mgr := NewManager()
	mgr.Register(runs)
	mgr.Register(nil)
	mgr.Register(history)

	loaded, err := mgr.LoadAll(fiber.New())
	require.NoError(t, err)
	assert.Equal(t, []string{"runs"}, loaded)
	assert.True(t, runs.loaded)
	assert.False(t, history.loaded)
	assert.Len(t, mgr.Features(), 2)
}

func TestManager_LoadAllStopsOnError(t *testing.T) {
	broken := &stubFeature{name: "health", enabled: true, err: errors.New("boom")}
	after := &stubFeature{name: "runs", enabled: true}

	mgr := NewManager()
	mgr.Register(broken)
	mgr.Register(after)

	_, err := mgr.LoadAll(fiber.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "health")
	assert.False(t, after.loaded)
}
