package shell

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/pharmdesk/internal/common"
	"github.com/dmitrijs2005/pharmdesk/internal/logging"
	"github.com/dmitrijs2005/pharmdesk/internal/module"
)

// region is the content area lent to one mount. After detach every write
// is dropped, which keeps late responses of an unmounted module out of the
// current one.
type region struct {
	mu       sync.Mutex
	content  string
	width    int
	detached bool
	onChange func()
}

func newRegion(width int, onChange func()) *region {
	return &region{width: width, onChange: onChange}
}

func (r *region) SetContent(s string) {
	r.mu.Lock()
	if r.detached {
		r.mu.Unlock()
		return
	}
	r.content = s
	fn := r.onChange
	r.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (r *region) Content() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.content
}

func (r *region) Width() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width
}

func (r *region) Detached() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detached
}

func (r *region) resize(width int) {
	r.mu.Lock()
	r.width = width
	r.mu.Unlock()
}

// detach ends the region's mount, optionally leaving final content behind.
func (r *region) detach(final *string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.detached = true
	if final != nil {
		r.content = *final
	}
}

type mount struct {
	id     string
	gen    uint64
	region *region
	handle module.Handle
	cancel context.CancelFunc
	failed bool
}

// Host owns the single active module slot.
type Host struct {
	logger   logging.Logger
	onChange func(gen uint64)

	gen    uint64
	width  int
	active *mount
}

// NewHost returns an empty host. onChange is called, possibly off the UI
// goroutine, whenever the active module rewrites its content.
func NewHost(logger logging.Logger, onChange func(gen uint64)) *Host {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Host{logger: logger, onChange: onChange}
}

// EnvFactory builds the Env for a mount generation.
type EnvFactory func(ctx context.Context, gen uint64) *module.Env

// Mount runs d.Mount in a fresh region. A mount that returns an error or
// panics leaves an error card in the content area and yields a KindModule
// error; the host stays usable. The previous module must already be unmounted.
func (h *Host) Mount(d module.Descriptor, newEnv EnvFactory) error {
	if h.active != nil {
		h.Unmount()
	}

	h.gen++
	gen := h.gen
	ctx, cancel := context.WithCancel(context.Background())

	var notify func()
	if h.onChange != nil {
		notify = func() { h.onChange(gen) }
	}
	m := &mount{
		id:     d.ID,
		gen:    gen,
		region: newRegion(h.width, notify),
		cancel: cancel,
	}
	h.active = m

	handle, err := safeMount(d, m.region, newEnv(ctx, gen))
	if err != nil {
		err = common.NewError(common.KindModule, err)
		m.failed = true
		cancel()
		card := renderErrorCard(d.Title, err)
		m.region.detach(&card)
		if handle != nil {
			safeUnmount(h.logger, d.ID, handle)
		}
		h.logger.Error(ctx, "module mount failed", "module", d.ID, "generation", gen, "error", err)
		return err
	}

	m.handle = handle
	h.logger.Info(ctx, "module mounted", "module", d.ID, "generation", gen)
	return nil
}

// Unmount releases the active module. The mount context is cancelled and
// the region detached before the module's own Unmount runs.
// Panics from the module's Unmount are logged and swallowed.
func (h *Host) Unmount() {
	m := h.active
	if m == nil {
		return
	}
	h.active = nil

	m.cancel()
	m.region.detach(nil)
	if m.handle != nil {
		safeUnmount(h.logger, m.id, m.handle)
	}
	h.logger.Info(context.Background(), "module unmounted", "module", m.id, "generation", m.gen)
}

// Active returns the id of the mounted module.
func (h *Host) Active() (string, bool) {
	if h.active == nil {
		return "", false
	}
	return h.active.id, true
}

// Generation identifies the current mount. It changes on every Mount.
func (h *Host) Generation() uint64 {
	if h.active == nil {
		return 0
	}
	return h.active.gen
}

// Failed reports whether the active module's mount failed.
func (h *Host) Failed() bool {
	return h.active != nil && h.active.failed
}

func (h *Host) Content() string {
	if h.active == nil {
		return ""
	}
	return h.active.region.Content()
}

func (h *Host) Resize(width int) {
	h.width = width
	if h.active != nil {
		h.active.region.resize(width)
	}
}

// HandleKey forwards key to the active module if it accepts keys.
func (h *Host) HandleKey(key string) bool {
	if h.active == nil || h.active.handle == nil {
		return false
	}
	kh, ok := h.active.handle.(module.KeyHandler)
	if !ok {
		return false
	}
	handled := false
	func() {
		defer func() {
			if p := recover(); p != nil {
				h.logger.Error(context.Background(), "module key handler panicked",
					"module", h.active.id, "panic", fmt.Sprint(p))
			}
		}()
		handled = kh.HandleKey(key)
	}()
	return handled
}

func safeMount(d module.Descriptor, c module.Container, env *module.Env) (h module.Handle, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("%v", p)
		}
	}()
	return d.Mount(c, env)
}

func safeUnmount(logger logging.Logger, id string, h module.Handle) {
	defer func() {
		if p := recover(); p != nil {
			logger.Warn(context.Background(), "module unmount panicked", "module", id, "panic", fmt.Sprint(p))
		}
	}()
	h.Unmount()
}

func renderErrorCard(title string, err error) string {
	return errorCardStyle.Render(fmt.Sprintf("%s failed to load\n\n%s", title, err.Error()))
}
