package shell

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/module"
)

func plainEnv(ctx context.Context, gen uint64) *module.Env {
	return module.NewEnv(module.EnvParams{Context: ctx})
}

func TestHost_GenerationsAndDetach(t *testing.T) {
	var changed []uint64
	h := NewHost(nil, func(gen uint64) { changed = append(changed, gen) })
	h.Resize(80)

	var first module.Container
	var firstEnv *module.Env
	require.NoError(t, h.Mount(module.Descriptor{
		ID: "a", Title: "A",
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			first, firstEnv = c, env
			assert.Equal(t, 80, c.Width())
			c.SetContent("a")
			return nil, nil
		},
	}, plainEnv))
	assert.Equal(t, uint64(1), h.Generation())

	require.NoError(t, h.Mount(module.Descriptor{
		ID: "b", Title: "B",
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			c.SetContent("b")
			return nil, nil
		},
	}, plainEnv))

	assert.True(t, first.Detached())
	assert.False(t, firstEnv.Active())
	first.SetContent("stale")

	assert.Equal(t, "b", h.Content())
	assert.Equal(t, uint64(2), h.Generation())
	assert.Equal(t, []uint64{1, 2}, changed)
}

func TestHost_UnmountSwallowsPanics(t *testing.T) {
	h := NewHost(nil, nil)
	require.NoError(t, h.Mount(module.Descriptor{
		ID: "a", Title: "A",
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			c.SetContent("a")
			return module.UnmountFunc(func() { panic("unmount exploded") }), nil
		},
	}, plainEnv))

	assert.NotPanics(t, h.Unmount)
	_, ok := h.Active()
	assert.False(t, ok)
	assert.Empty(t, h.Content())
	assert.NotPanics(t, h.Unmount)
}

func TestHost_FailedMountReleasesHandle(t *testing.T) {
	h := NewHost(nil, nil)
	released := false
	err := h.Mount(module.Descriptor{
		ID: "a", Title: "Alerts",
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			return module.UnmountFunc(func() { released = true }), errors.New("no data")
		},
	}, plainEnv)

	require.EqualError(t, err, "no data")
	assert.Equal(t, common.KindModule, common.KindOf(err))
	assert.True(t, released)
	assert.True(t, h.Failed())
	assert.Contains(t, h.Content(), "Alerts failed to load")
	assert.Contains(t, h.Content(), "no data")
}

func TestHost_PanickingMountIsModuleError(t *testing.T) {
	h := NewHost(nil, nil)
	err := h.Mount(module.Descriptor{
		ID: "a", Title: "Alerts",
		Mount: func(module.Container, *module.Env) (module.Handle, error) {
			panic("nil map")
		},
	}, plainEnv)

	require.EqualError(t, err, "nil map")
	assert.Equal(t, common.KindModule, common.KindOf(err))
	assert.Contains(t, h.Content(), "nil map")
}

func TestHost_UnmountCancelsBeforeModuleUnmount(t *testing.T) {
	h := NewHost(nil, nil)

	var region module.Container
	var sawDetached, timedOut bool
	require.NoError(t, h.Mount(module.Descriptor{
		ID: "a", Title: "A",
		Mount: func(c module.Container, env *module.Env) (module.Handle, error) {
			region = c
			return module.UnmountFunc(func() {
				sawDetached = c.Detached()
				select {
				case <-env.Context().Done():
				case <-time.After(2 * time.Second):
					timedOut = true
				}
			}), nil
		},
	}, plainEnv))

	start := time.Now()
	h.Unmount()

	assert.False(t, timedOut)
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, sawDetached)
	assert.True(t, region.Detached())
}

type panickyKeys struct{}

func (panickyKeys) Unmount()              {}
func (panickyKeys) HandleKey(string) bool { panic("bad key") }

func TestHost_HandleKey(t *testing.T) {
	h := NewHost(nil, nil)
	assert.False(t, h.HandleKey("x"))

	require.NoError(t, h.Mount(module.Descriptor{
		ID: "a", Title: "A",
		Mount: func(module.Container, *module.Env) (module.Handle, error) {
			return panickyKeys{}, nil
		},
	}, plainEnv))
	assert.NotPanics(t, func() { assert.False(t, h.HandleKey("x")) })
}
