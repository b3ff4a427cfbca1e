package testutil

import (
	"sync"

	"taskboard/internal/controller"
)

// Notices records controller notices.
type Notices struct {
	mu   sync.Mutex
	list []controller.Notice
}

// Notify implements controller.Notifier.
func (n *Notices) Notify(notice controller.Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, notice)
}

// All returns every notice received so far.
func (n *Notices) All() []controller.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]controller.Notice, len(n.list))
	copy(out, n.list)
	return out
}

// Last returns the most recent notice, or the zero Notice.
func (n *Notices) Last() controller.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.list) == 0 {
		return controller.Notice{}
	}
	return n.list[len(n.list)-1]
}

// Errors returns the notices with error level.
func (n *Notices) Errors() []controller.Notice {
	var out []controller.Notice
	for _, notice := range n.All() {
		if notice.Level == controller.LevelError {
			out = append(out, notice)
		}
	}
	return out
}
