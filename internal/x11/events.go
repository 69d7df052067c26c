package x11

import (
	"log/slog"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// WindowEvents receives client lifecycle and focus notifications. Callbacks
// run on the X event loop goroutine and must not block.
type WindowEvents struct {
	Created   func(xproto.Window)
	Destroyed func(xproto.Window)
	Focused   func(xproto.Window)
}

// clientSource is the part of Connection the watcher reads.
type clientSource interface {
	ClientList() ([]xproto.Window, error)
	GetActiveWindow() (xproto.Window, error)
}

// Watcher turns root window property changes into WindowEvents.
//
// _NET_CLIENT_LIST is diffed against the previous value: new clients that
// pass accept are reported as created, vanished tracked clients as destroyed.
// Clients that do not pass accept yet (typically because their title is not
// set at map time) are watched for property changes and reported once they
// do. _NET_ACTIVE_WINDOW changes are reported as focus.
//
// All state is touched only from the X event loop.
type Watcher struct {
	source   clientSource
	root     xproto.Window
	listen   func(id xproto.Window, onChange func(atom string)) error
	unlisten func(id xproto.Window)
	accept   func(xproto.Window) bool
	events   WindowEvents
	logger   *slog.Logger
	known    map[xproto.Window]bool // value: tracked (reported as created)
	pending  map[xproto.Window]bool
}

// NewWatcher creates a watcher. accept decides which clients are reported.
func NewWatcher(conn *Connection, accept func(xproto.Window) bool, events WindowEvents, logger *slog.Logger) *Watcher {
	return newWatcher(conn, conn.Root, conn.listenProperties, conn.unlistenProperties, accept, events, logger)
}

func newWatcher(
	source clientSource,
	root xproto.Window,
	listen func(xproto.Window, func(string)) error,
	unlisten func(xproto.Window),
	accept func(xproto.Window) bool,
	events WindowEvents,
	logger *slog.Logger,
) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source:   source,
		root:     root,
		listen:   listen,
		unlisten: unlisten,
		accept:   accept,
		events:   events,
		logger:   logger,
		known:    make(map[xproto.Window]bool),
		pending:  make(map[xproto.Window]bool),
	}
}

// Start subscribes to root property changes and records the current client
// list as the baseline. Clients in tracked are considered already reported.
// Other clients that pass accept are reported as created now; the rest are
// watched until they do.
func (w *Watcher) Start(tracked []xproto.Window) error {
	if err := w.listen(w.root, w.rootPropertyChanged); err != nil {
		return err
	}

	isTracked := make(map[xproto.Window]bool, len(tracked))
	for _, id := range tracked {
		isTracked[id] = true
	}

	clients, err := w.source.ClientList()
	if err != nil {
		return err
	}
	for _, id := range clients {
		if isTracked[id] {
			w.known[id] = true
			continue
		}
		w.known[id] = false
		if !w.consider(id) {
			w.watchPending(id)
		}
	}
	return nil
}

func (w *Watcher) rootPropertyChanged(atom string) {
	switch atom {
	case "_NET_CLIENT_LIST":
		w.clientListChanged()
	case "_NET_ACTIVE_WINDOW":
		w.activeWindowChanged()
	}
}

func (w *Watcher) clientListChanged() {
	clients, err := w.source.ClientList()
	if err != nil {
		w.logger.Warn("client list unavailable", "error", err)
		return
	}

	present := make(map[xproto.Window]bool, len(clients))
	for _, id := range clients {
		present[id] = true
		if _, seen := w.known[id]; seen {
			continue
		}
		w.known[id] = false
		if !w.consider(id) {
			w.watchPending(id)
		}
	}

	for id, tracked := range w.known {
		if present[id] {
			continue
		}
		delete(w.known, id)
		w.forgetPending(id)
		if tracked && w.events.Destroyed != nil {
			w.events.Destroyed(id)
		}
	}
}

func (w *Watcher) activeWindowChanged() {
	id, err := w.source.GetActiveWindow()
	if err != nil || id == 0 {
		return
	}
	if w.events.Focused != nil {
		w.events.Focused(id)
	}
}

// consider reports id as created if it passes the filter.
func (w *Watcher) consider(id xproto.Window) bool {
	if !w.accept(id) {
		return false
	}
	w.known[id] = true
	if w.events.Created != nil {
		w.events.Created(id)
	}
	return true
}

func (w *Watcher) watchPending(id xproto.Window) {
	if w.pending[id] {
		return
	}
	err := w.listen(id, func(atom string) {
		if !w.pending[id] {
			return
		}
		switch atom {
		case "_NET_WM_NAME", "WM_NAME", "_NET_WM_STATE", "_NET_WM_WINDOW_TYPE", "_NET_WM_DESKTOP":
		default:
			return
		}
		if w.consider(id) {
			w.forgetPending(id)
		}
	})
	if err != nil {
		w.logger.Debug("cannot watch pending window", "window", id, "error", err)
		return
	}
	w.pending[id] = true
}

func (w *Watcher) forgetPending(id xproto.Window) {
	if !w.pending[id] {
		return
	}
	delete(w.pending, id)
	w.unlisten(id)
}

// listenProperties selects PropertyNotify on id and hands each changed
// atom's name to onChange.
func (c *Connection) listenProperties(id xproto.Window, onChange func(atom string)) error {
	if err := xwindow.New(c.XUtil, id).Listen(xproto.EventMaskPropertyChange); err != nil {
		return err
	}
	xevent.PropertyNotifyFun(func(xu *xgbutil.XUtil, ev xevent.PropertyNotifyEvent) {
		name, err := xprop.AtomName(xu, ev.Atom)
		if err != nil {
			return
		}
		onChange(name)
	}).Connect(c.XUtil, id)
	return nil
}

func (c *Connection) unlistenProperties(id xproto.Window) {
	xevent.Detach(c.XUtil, id)
}
