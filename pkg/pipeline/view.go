package pipeline

import (
	"sync/atomic"

	"github.com/irview/irview/pkg/layout"
)

// View publishes the most recent layout to readers. A viewer process
// receives snapshots faster than it can lay them out; each incoming snapshot
// starts a pass with Begin, and only the newest pass may publish. Stale
// passes that finish after a newer one began are discarded, so readers never
// observe an older drawing replacing a newer one.
//
// All methods are safe for concurrent use.
type View struct {
	seq     atomic.Uint64
	current atomic.Pointer[versioned]
}

type versioned struct {
	token  uint64
	layout *layout.Layout
}

// Begin registers a new pass and returns its token. Every later Begin
// invalidates all earlier tokens.
func (v *View) Begin() uint64 {
	return v.seq.Add(1)
}

// Publish installs the layout if the token is still the newest. It reports
// whether the layout was installed.
func (v *View) Publish(token uint64, l *layout.Layout) bool {
	if token != v.seq.Load() {
		return false
	}
	next := &versioned{token: token, layout: l}
	for {
		cur := v.current.Load()
		if cur != nil && cur.token > token {
			return false
		}
		if v.current.CompareAndSwap(cur, next) {
			return true
		}
	}
}

// Current returns the most recently published layout, or nil before the
// first publication.
func (v *View) Current() *layout.Layout {
	cur := v.current.Load()
	if cur == nil {
		return nil
	}
	return cur.layout
}
