// Package module defines the contract between the shell and the feature
// modules it hosts: the descriptor a module registers, the handle it may
// return from Mount, and the Env it is given while mounted.
package module

import (
	"errors"
	"fmt"
)

// ErrInvalidDescriptor is returned when a descriptor lacks a required field.
var ErrInvalidDescriptor = errors.New("invalid module descriptor")

// MountFunc renders a module into c. A nil Handle is allowed when the
// module has nothing to release.
type MountFunc func(c Container, env *Env) (Handle, error)

// Descriptor is the registration record of a module.
type Descriptor struct {
	ID       string
	Title    string
	NavLabel string
	Icon     string
	Order    int
	Mount    MountFunc
}

// Validate checks the required fields: ID, Title and Mount.
func (d Descriptor) Validate() error {
	switch {
	case d.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidDescriptor)
	case d.Title == "":
		return fmt.Errorf("%w: module %q has no title", ErrInvalidDescriptor, d.ID)
	case d.Mount == nil:
		return fmt.Errorf("%w: module %q has no mount function", ErrInvalidDescriptor, d.ID)
	}
	return nil
}

// Label is the text shown in the nav.
func (d Descriptor) Label() string {
	if d.NavLabel != "" {
		return d.NavLabel
	}
	return d.Title
}

// Handle is what a mounted module hands back to the shell.
type Handle interface {
	Unmount()
}

// UnmountFunc adapts a plain function to Handle.
type UnmountFunc func()

func (f UnmountFunc) Unmount() { f() }

// KeyHandler is implemented by handles that want key presses while the
// content region has focus. HandleKey reports whether the key was used.
type KeyHandler interface {
	HandleKey(key string) bool
}

// Container is the content region lent to a module for one mount.
// Once the module is unmounted the container is detached and writes to it
// are dropped.
type Container interface {
	// SetContent replaces everything the module shows.
	SetContent(s string)
	// Content returns what was last set.
	Content() string
	// Width is the usable width in cells.
	Width() int
	// Detached reports whether the mount this container belongs to is over.
	Detached() bool
}
