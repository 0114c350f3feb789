// Package profile shows the signed-in user's record as the backend knows it.
package profile

import (
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/pharmdesk/internal/api"
	"github.com/dmitrijs2005/pharmdesk/internal/module"
	"github.com/dmitrijs2005/pharmdesk/internal/session"
)

const ID = "profile"

func Descriptor() module.Descriptor {
	return module.Descriptor{
		ID:    ID,
		Title: "My profile",
		Icon:  "☺",
		Order: 90,
		Mount: mount,
	}
}

type meResponse struct {
	User *session.User `json:"user"`
}

type view struct {
	c   module.Container
	env *module.Env
	wg  sync.WaitGroup
}

func mount(c module.Container, env *module.Env) (module.Handle, error) {
	v := &view{c: c, env: env}
	v.refresh()
	return v, nil
}

// Unmount waits for an in-flight refresh. The host cancels the mount
// context first, so a pending request is already aborting.
func (v *view) Unmount() {
	v.wg.Wait()
}

// HandleKey reloads the profile on r.
func (v *view) HandleKey(key string) bool {
	if key != "r" {
		return false
	}
	v.refresh()
	return true
}

func (v *view) refresh() {
	v.c.SetContent("Loading profile…")
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		v.load()
	}()
}

func (v *view) load() {
	raw, err := v.env.Get("/auth/me")
	if !v.env.Active() {
		return
	}
	if err != nil {
		v.c.SetContent(fmt.Sprintf("Could not load profile: %s\n\nr retry", err))
		return
	}
	res, err := api.Decode[meResponse](raw)
	if err != nil || res.User == nil {
		v.c.SetContent("Could not load profile: unexpected response\n\nr retry")
		return
	}
	u := *res.User
	v.c.SetContent(render(u))
	v.env.SetTitle("My profile", u.Subtitle())
}

func render(u session.User) string {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			value = "—"
		}
		fmt.Fprintf(&b, "%-14s%s\n", label, value)
	}
	row("Email", u.Email)
	row("Role", u.RoleLabel())
	row("Organisation", u.OrgName)
	row("Location", u.LocationName)
	b.WriteString("\nr refresh")
	return b.String()
}
