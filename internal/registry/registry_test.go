package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pharmdesk/internal/module"
)

func desc(id string, order int) module.Descriptor {
	return module.Descriptor{
		ID:    id,
		Title: "Title " + id,
		Order: order,
		Mount: func(module.Container, *module.Env) (module.Handle, error) { return nil, nil },
	}
}

func ids(ds []module.Descriptor) []string {
	out := make([]string, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func TestList_SortedByID(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(desc("b", 0)))
	require.NoError(t, r.Register(desc("a", 0)))

	assert.Equal(t, []string{"a", "b"}, ids(r.List()))
}

func TestListOrdered(t *testing.T) {
	r := New()
	r.MustRegister(desc("stock", 2), desc("alerts", 1), desc("home", 0), desc("audit", 2))

	assert.Equal(t, []string{"home", "alerts", "audit", "stock"}, ids(r.ListOrdered()))
	assert.Equal(t, []string{"alerts", "audit", "home", "stock"}, ids(r.List()))
	assert.True(t, r.HasOrder())
}

func TestRegister_Overwrites(t *testing.T) {
	r := New()
	first := desc("a", 0)
	second := desc("a", 0)
	second.Title = "Patched"

	require.NoError(t, r.Register(first))
	require.NoError(t, r.Register(second))

	got, ok := r.Get("a")
	require.True(t, ok)
	assert.Equal(t, "Patched", got.Title)
	assert.Equal(t, 1, r.Len())
}

func TestRegister_RejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		d    module.Descriptor
	}{
		{"empty id", module.Descriptor{Title: "x", Mount: desc("x", 0).Mount}},
		{"empty title", module.Descriptor{ID: "x", Mount: desc("x", 0).Mount}},
		{"no mount", module.Descriptor{ID: "x", Title: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			notified := false
			r.Subscribe(func() { notified = true })

			err := r.Register(tt.d)
			require.ErrorIs(t, err, module.ErrInvalidDescriptor)
			assert.Zero(t, r.Len())
			assert.False(t, notified)
		})
	}
}

func TestMustRegister_Panics(t *testing.T) {
	assert.Panics(t, func() { New().MustRegister(module.Descriptor{ID: "x"}) })
}

func TestSubscribe(t *testing.T) {
	r := New()
	calls := 0
	cancel := r.Subscribe(func() { calls++ })

	r.MustRegister(desc("a", 0), desc("b", 0))
	cancel()
	r.MustRegister(desc("c", 0))

	assert.Equal(t, 2, calls)
	assert.False(t, r.HasOrder())
}
