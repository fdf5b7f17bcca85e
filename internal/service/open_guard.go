package service

import "sync"

// OpenGuard makes sure a page opens the class join link at most once, no
// matter how many flows observe the class starting. It is single-assignment:
// the first Open wins and later calls are no-ops.
type OpenGuard struct {
	once   sync.Once
	done   chan struct{}
	opener func(url string)

	mu  sync.Mutex
	url string
}

// NewOpenGuard returns a guard that calls opener for the winning Open.
func NewOpenGuard(opener func(url string)) *OpenGuard {
	return &OpenGuard{
		done:   make(chan struct{}),
		opener: opener,
	}
}

// Open opens url unless the guard already fired. It reports whether this
// call was the one that opened.
func (g *OpenGuard) Open(url string) bool {
	opened := false
	g.once.Do(func() {
		g.mu.Lock()
		g.url = url
		g.mu.Unlock()
		if g.opener != nil {
			g.opener(url)
		}
		opened = true
		close(g.done)
	})
	return opened
}

// Done is closed once the link has been opened.
func (g *OpenGuard) Done() <-chan struct{} {
	return g.done
}

// Opened reports whether the guard has fired.
func (g *OpenGuard) Opened() bool {
	select {
	case <-g.done:
		return true
	default:
		return false
	}
}

// URL returns the opened join URL, or "" before the guard fires.
func (g *OpenGuard) URL() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.url
}
