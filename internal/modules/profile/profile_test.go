package profile

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pharmdesk/internal/api"
	"github.com/dmitrijs2005/pharmdesk/internal/module"
)

type container struct {
	mu      sync.Mutex
	content string
}

func (c *container) SetContent(s string) {
	c.mu.Lock()
	c.content = s
	c.mu.Unlock()
}

func (c *container) Content() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.content
}

func (c *container) Width() int     { return 80 }
func (c *container) Detached() bool { return false }

func newEnv(t *testing.T, ctx context.Context, status int, body string, titles *[]string) *module.Env {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	client, err := api.NewClient(srv.URL, nil)
	require.NoError(t, err)
	return module.NewEnv(module.EnvParams{
		Context:  ctx,
		API:      client,
		SetTitle: func(title, subtitle string) { *titles = append(*titles, title+"|"+subtitle) },
	})
}

func TestProfile_Loads(t *testing.T) {
	var titles []string
	env := newEnv(t, context.Background(), 200,
		`{"ok":true,"user":{"email":"a@b.com","role":"store_manager","org_name":"Acme"}}`, &titles)
	c := &container{}

	h, err := Descriptor().Mount(c, env)
	require.NoError(t, err)
	h.Unmount() // waits for the load

	content := c.Content()
	assert.Contains(t, content, "a@b.com")
	assert.Contains(t, content, "Store Manager")
	assert.Contains(t, content, "Acme")
	assert.Equal(t, []string{"My profile|Acme · a@b.com"}, titles)
}

func TestProfile_ShowsErrorsAndRetries(t *testing.T) {
	var titles []string
	env := newEnv(t, context.Background(), 500, `{"error":"database offline"}`, &titles)
	c := &container{}

	h, err := Descriptor().Mount(c, env)
	require.NoError(t, err)
	v := h.(*view)
	v.wg.Wait()
	assert.Contains(t, c.Content(), "database offline")

	assert.True(t, v.HandleKey("r"))
	v.wg.Wait()
	assert.Contains(t, c.Content(), "database offline")
	assert.False(t, v.HandleKey("x"))
	assert.Empty(t, titles)
}

func TestProfile_LateResponseIgnored(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var titles []string
	env := newEnv(t, ctx, 200, `{"ok":true,"user":{"email":"a@b.com"}}`, &titles)
	c := &container{}

	h, err := Descriptor().Mount(c, env)
	require.NoError(t, err)
	h.Unmount()

	assert.Equal(t, "Loading profile…", c.Content())
	assert.Empty(t, titles)
}

func TestProfile_UnmountAfterCancelDoesNotWaitForSlowBackend(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := api.NewClient(srv.URL, nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	env := module.NewEnv(module.EnvParams{Context: ctx, API: client})
	c := &container{}

	h, err := Descriptor().Mount(c, env)
	require.NoError(t, err)

	start := time.Now()
	cancel()
	h.Unmount()

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, "Loading profile…", c.Content())
}
