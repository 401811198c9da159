package extension

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counting(name string, calls *int, err error) Extension {
	return Func{ExtensionName: name, SetupFunc: func(context.Context, Host) error {
		*calls++
		return err
	}}
}

func TestLoadExtension(t *testing.T) {
	var calls int
	r := NewRegistry(counting("events", &calls, nil))

	require.NoError(t, r.LoadExtension(context.Background(), nil, "events"))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"events"}, r.Loaded())

	err := r.LoadExtension(context.Background(), nil, "events")
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
	assert.Equal(t, 1, calls)
}

func TestLoadUnknownExtension(t *testing.T) {
	r := NewRegistry()
	err := r.LoadExtension(context.Background(), nil, "music")
	assert.ErrorIs(t, err, ErrUnknownExtension)
	assert.Empty(t, r.Loaded())
}

func TestFailedSetupIsNotLoaded(t *testing.T) {
	var calls int
	boom := errors.New("boom")
	r := NewRegistry(counting("commands", &calls, boom))

	assert.ErrorIs(t, r.LoadExtension(context.Background(), nil, "commands"), boom)
	assert.Empty(t, r.Loaded())
}

func TestPanickingSetup(t *testing.T) {
	r := NewRegistry(Func{ExtensionName: "bad", SetupFunc: func(context.Context, Host) error {
		panic("nil map")
	}})

	err := r.LoadExtension(context.Background(), nil, "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked: nil map")
	assert.Empty(t, r.Loaded())
}

func TestRegisterReplaces(t *testing.T) {
	var first, second int
	r := NewRegistry(counting("events", &first, nil))
	r.Register(counting("events", &second, nil))

	require.NoError(t, r.LoadExtension(context.Background(), nil, "events"))
	assert.Equal(t, 0, first)
	assert.Equal(t, 1, second)
}
