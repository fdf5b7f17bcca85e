package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parentpanel/gateway/internal/parentpanel"
)

const waitTimeout = 2 * time.Second

type fakeTimer struct {
	d  time.Duration
	ch chan time.Time
}

func (tm fakeTimer) fire() { tm.ch <- time.Time{} }

// fakeClock hands every requested timer to the test, which decides when it
// fires.
type fakeClock struct {
	now    time.Time
	timers chan fakeTimer
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now, timers: make(chan fakeTimer, 64)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	tm := fakeTimer{d: d, ch: make(chan time.Time, 1)}
	c.timers <- tm
	return tm.ch
}

func (c *fakeClock) nextTimer(t *testing.T) fakeTimer {
	t.Helper()
	select {
	case tm := <-c.timers:
		return tm
	case <-time.After(waitTimeout):
		t.Fatal("no timer was scheduled")
		return fakeTimer{}
	}
}

func strPtr(s string) *string { return &s }

func notStarted() (*parentpanel.ClassStartStatus, error) {
	return &parentpanel.ClassStartStatus{Success: true}, nil
}

func started(url string) (*parentpanel.ClassStartStatus, error) {
	return &parentpanel.ClassStartStatus{Success: true, Started: true, JoinURL: strPtr(url)}, nil
}

// fakeJoinAPI answers class-started checks through checkFn, which receives
// the 1-based number of the call.
type fakeJoinAPI struct {
	mu         sync.Mutex
	checks     int
	enqueued   int
	checkFn    func(n int) (*parentpanel.ClassStartStatus, error)
	enqueueErr error
	checked    chan int
}

func newFakeJoinAPI(checkFn func(n int) (*parentpanel.ClassStartStatus, error)) *fakeJoinAPI {
	return &fakeJoinAPI{checkFn: checkFn, checked: make(chan int, 64)}
}

func (f *fakeJoinAPI) CheckIfClassStarted(ctx context.Context, code string) (*parentpanel.ClassStartStatus, error) {
	f.mu.Lock()
	f.checks++
	n := f.checks
	f.mu.Unlock()

	status, err := f.checkFn(n)
	f.checked <- n
	return status, err
}

func (f *fakeJoinAPI) AddChildToJoinQueue(ctx context.Context, code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued++
	return f.enqueueErr
}

func (f *fakeJoinAPI) checkCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checks
}

func (f *fakeJoinAPI) enqueueCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.enqueued
}

func (f *fakeJoinAPI) waitCheck(t *testing.T) int {
	t.Helper()
	select {
	case n := <-f.checked:
		return n
	case <-time.After(waitTimeout):
		t.Fatal("class-started check did not happen")
		return 0
	}
}

// recorder counts opener calls.
type recorder struct {
	mu   sync.Mutex
	urls []string
}

func (r *recorder) open(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.urls = append(r.urls, url)
}

func (r *recorder) opened() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.urls...)
}

type fakeCodeAPI struct {
	verify    *parentpanel.VerifyResponse
	verifyErr error
	info      *parentpanel.ClassInfoResponse
	infoErr   error
	infoCalls int
}

func (f *fakeCodeAPI) VerifyJoinCode(ctx context.Context, code string) (*parentpanel.VerifyResponse, error) {
	return f.verify, f.verifyErr
}

func (f *fakeCodeAPI) GetJoinClassInfo(ctx context.Context, code string) (*parentpanel.ClassInfoResponse, error) {
	f.infoCalls++
	return f.info, f.infoErr
}

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (s *memTokenStore) Get(ctx context.Context, sessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.tokens[sessionID], nil
}

func (s *memTokenStore) Set(ctx context.Context, sessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.tokens[sessionID] = token
	s.ttls[sessionID] = ttl
	return nil
}

var errUpstream = errors.New("upstream unavailable")
