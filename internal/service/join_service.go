package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/parentpanel/gateway/internal/joincode"
	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/rs/zerolog"
)

// JoinState is the state of a page's join-queue flow.
type JoinState string

const (
	JoinIdle    JoinState = "idle"
	JoinJoining JoinState = "joining"
	JoinPolling JoinState = "polling"
	JoinDone    JoinState = "done"
	JoinError   JoinState = "error"
)

// Sentinel errors for the join flow.
var (
	ErrJoinCodeRequired = errors.New("join code is required")
	ErrPageClosed       = errors.New("join page is closed")
)

// Copy shown to parents by the join flow.
const (
	MsgQueued          = "You're in the queue! We'll open the class as soon as it starts."
	MsgJoinFailed      = "We couldn't add you to the class queue. Please try again."
	MsgJoinCodeMissing = "Join code is missing. Please open the link from your class message again."
)

// Default poll cadence: the first check waits a short while, later checks
// are spaced out.
const (
	DefaultFirstPollDelay = 5 * time.Second
	DefaultPollInterval   = 15 * time.Second
)

// JoinAPI is the slice of the parent-panel client the join flow needs.
type JoinAPI interface {
	CheckIfClassStarted(ctx context.Context, code string) (*parentpanel.ClassStartStatus, error)
	AddChildToJoinQueue(ctx context.Context, code string) error
}

// JoinService creates join pages sharing one upstream client and clock.
type JoinService struct {
	api        JoinAPI
	clock      Clock
	firstDelay time.Duration
	interval   time.Duration
	log        zerolog.Logger
}

// NewJoinService creates a new JoinService. Non-positive delays fall back to
// DefaultFirstPollDelay and DefaultPollInterval.
func NewJoinService(api JoinAPI, clock Clock, firstDelay, interval time.Duration, log zerolog.Logger) *JoinService {
	if firstDelay <= 0 {
		firstDelay = DefaultFirstPollDelay
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &JoinService{
		api:        api,
		clock:      clock,
		firstDelay: firstDelay,
		interval:   interval,
		log:        log.With().Str("component", "join_service").Logger(),
	}
}

// JoinPage is one mounted dashboard page waiting to join a class. The
// auto-join check and the join-queue poll loop of a page share one
// OpenGuard, so the join link is opened at most once per page.
type JoinPage struct {
	svc   *JoinService
	code  string
	guard *OpenGuard
	log   zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	autoJoin sync.Once

	mu     sync.Mutex
	state  JoinState
	closed bool
}

// OpenPage starts a page for code. opener is called with the join URL the
// one time the class is found live. ctx carries the upstream auth token and
// bounds the page lifetime together with Close.
func (s *JoinService) OpenPage(ctx context.Context, code string, opener func(url string)) *JoinPage {
	pageCtx, cancel := context.WithCancel(ctx)
	return &JoinPage{
		svc:    s,
		code:   code,
		guard:  NewOpenGuard(opener),
		log:    s.log.With().Str("code", code).Logger(),
		ctx:    pageCtx,
		cancel: cancel,
		state:  JoinIdle,
	}
}

// State returns the current join state.
func (p *JoinPage) State() JoinState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Guard exposes the page's one-shot open guard.
func (p *JoinPage) Guard() *OpenGuard {
	return p.guard
}

// AutoJoin checks once, in the background, whether the class is already
// live and opens it if so. Failures are logged and otherwise ignored.
// Only the first call per page does anything.
func (p *JoinPage) AutoJoin() {
	p.autoJoin.Do(func() {
		if !joincode.IsValid(p.code) {
			return
		}
		p.spawn(p.runAutoJoin)
	})
}

func (p *JoinPage) runAutoJoin(ctx context.Context) {
	status, err := p.svc.api.CheckIfClassStarted(ctx, p.code)
	if err != nil {
		if ctx.Err() == nil {
			p.log.Warn().Err(err).Msg("Auto-join check failed")
		}
		return
	}
	if status.Ready() {
		p.open(status.URL(), "auto_join")
	}
}

// JoinNow is the parent pressing "Join": check whether the class is live,
// otherwise enqueue the child and poll until it is. While a join is already
// in progress or finished it returns the current state without side effects.
func (p *JoinPage) JoinNow() (JoinState, error) {
	if !joincode.IsValid(p.code) {
		return p.State(), ErrJoinCodeRequired
	}

	p.mu.Lock()
	if p.closed {
		st := p.state
		p.mu.Unlock()
		return st, ErrPageClosed
	}
	switch p.state {
	case JoinJoining, JoinPolling, JoinDone:
		st := p.state
		p.mu.Unlock()
		return st, nil
	}
	p.state = JoinJoining
	p.mu.Unlock()

	status, err := p.svc.api.CheckIfClassStarted(p.ctx, p.code)
	if err != nil {
		return p.fail(fmt.Errorf("check class started: %w", err))
	}
	if status.Ready() {
		p.open(status.URL(), "join_now")
		return p.State(), nil
	}
	if p.guard.Opened() {
		return p.State(), nil
	}

	if err := p.svc.api.AddChildToJoinQueue(p.ctx, p.code); err != nil {
		return p.fail(fmt.Errorf("enqueue child: %w", err))
	}
	p.log.Info().Msg("Child added to join queue")

	p.setState(JoinPolling)
	p.spawn(p.poll)
	return p.State(), nil
}

// poll checks the class state after the first delay, then on every
// interval, until the class is live, the guard fires elsewhere, or the page
// closes. Errors are transient: they are logged and the check is retried.
func (p *JoinPage) poll(ctx context.Context) {
	delay := p.svc.firstDelay
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-p.guard.Done():
			p.setState(JoinDone)
			return
		case <-p.svc.clock.After(delay):
		}
		if ctx.Err() != nil {
			return
		}
		if p.guard.Opened() {
			p.setState(JoinDone)
			return
		}
		delay = p.svc.interval

		status, err := p.svc.api.CheckIfClassStarted(ctx, p.code)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			p.log.Warn().Err(err).Int("attempt", attempt).Msg("Join poll failed, retrying")
			continue
		}
		if status.Ready() {
			p.open(status.URL(), "poll")
			return
		}
		p.log.Debug().Int("attempt", attempt).Msg("Class not started yet")
	}
}

// Close tears the page down: pending timers and in-flight checks are
// cancelled and Close returns once no page goroutine is left.
func (p *JoinPage) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
}

func (p *JoinPage) open(url, via string) {
	if p.guard.Open(url) {
		p.log.Info().Str("via", via).Msg("Class started, join link opened")
	}
	p.setState(JoinDone)
}

func (p *JoinPage) fail(err error) (JoinState, error) {
	p.log.Error().Err(err).Msg("Join failed")
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != JoinDone {
		p.state = JoinError
	}
	return p.state, err
}

// setState moves to st unless the page is already done.
func (p *JoinPage) setState(st JoinState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state == JoinDone {
		return
	}
	p.state = st
}

func (p *JoinPage) spawn(fn func(ctx context.Context)) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		fn(p.ctx)
	}()
	return true
}

// JoinMessage maps a JoinNow error to parent-facing copy, preferring a
// message supplied by the backend.
func JoinMessage(err error) string {
	if errors.Is(err, ErrJoinCodeRequired) {
		return MsgJoinCodeMissing
	}
	if msg := parentpanel.Message(err); msg != "" {
		return msg
	}
	return MsgJoinFailed
}
