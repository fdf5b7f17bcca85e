package service

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/parentpanel/gateway/internal/joincode"
	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/rs/zerolog"
)

// VerifyStatus is the state of a join-code verification.
type VerifyStatus string

const (
	VerifyChecking VerifyStatus = "checking"
	VerifyOK       VerifyStatus = "ok"
	VerifyError    VerifyStatus = "error"
)

// Copy shown to parents when a code cannot be used.
const (
	MsgInvalidCodeFormat = "Please use the 6-letter/number code from your class link."
	MsgCodeRejected      = "That code didn't work. Please check your link and try again."
	MsgVerifyUnavailable = "We could not check your code right now. Please try again in a moment."
)

// CodeAPI is the slice of the parent-panel client the verifier needs.
type CodeAPI interface {
	VerifyJoinCode(ctx context.Context, code string) (*parentpanel.VerifyResponse, error)
	GetJoinClassInfo(ctx context.Context, code string) (*parentpanel.ClassInfoResponse, error)
}

// Verification is the outcome of checking a join code.
type Verification struct {
	Status    VerifyStatus              `json:"status"`
	Code      string                    `json:"code"`
	Subject   joincode.Subject          `json:"subject,omitempty"`
	ChildName string                    `json:"child_name,omitempty"`
	Class     *parentpanel.ClassDetails `json:"class,omitempty"`
	// StartsIn is the time left before the class starts, zero once it has
	// started, nil when the schedule could not be read.
	StartsIn *time.Duration `json:"-"`
	Message  string         `json:"message,omitempty"`
}

// FormatError reports whether the code was rejected before any network call.
func (v *Verification) FormatError() bool {
	return v.Status == VerifyError && v.Message == MsgInvalidCodeFormat
}

// VerifyService resolves a join code to its class and subject.
type VerifyService struct {
	api   CodeAPI
	clock Clock
	loc   *time.Location
	log   zerolog.Logger
}

// NewVerifyService creates a new VerifyService. loc is the timezone class
// schedules are expressed in.
func NewVerifyService(api CodeAPI, clock Clock, loc *time.Location, log zerolog.Logger) *VerifyService {
	if loc == nil {
		loc = time.UTC
	}
	return &VerifyService{
		api:   api,
		clock: clock,
		loc:   loc,
		log:   log.With().Str("component", "verify_service").Logger(),
	}
}

// Verify runs the checking → ok | error machine for code. It never returns
// an error: every failure is folded into a Verification with parent-facing
// copy. Cancelling ctx aborts the upstream calls.
func (s *VerifyService) Verify(ctx context.Context, code string) Verification {
	if !joincode.IsValid(code) {
		return Verification{Status: VerifyError, Code: code, Message: MsgInvalidCodeFormat}
	}

	log := s.log.With().Str("code", code).Logger()

	verified, err := s.api.VerifyJoinCode(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Join code verification failed")
		return Verification{Status: VerifyError, Code: code, Message: failureMessage(err)}
	}
	if !verified.Verified() {
		log.Info().Str("backend_message", verified.Message).Msg("Join code rejected")
		return Verification{Status: VerifyError, Code: code, Message: orDefault(verified.Message, MsgCodeRejected)}
	}

	info, err := s.api.GetJoinClassInfo(ctx, code)
	if err != nil {
		log.Error().Err(err).Msg("Join class info failed")
		return Verification{Status: VerifyError, Code: code, Message: failureMessage(err)}
	}
	if !info.Success || info.NextClass == nil {
		log.Info().Str("backend_message", info.Message).Msg("No class for join code")
		return Verification{Status: VerifyError, Code: code, Message: orDefault(info.Message, MsgCodeRejected)}
	}

	class := info.NextClass
	v := Verification{
		Status:    VerifyOK,
		Code:      code,
		Subject:   joincode.Classify(class.ClassName),
		ChildName: class.ChildName,
		Class:     class,
	}
	if start, err := class.StartAt(s.loc); err == nil {
		left := start.Sub(s.clock.Now())
		if left < 0 {
			left = 0
		}
		v.StartsIn = &left
	}

	log.Debug().
		Str("class_name", class.ClassName).
		Str("subject", string(v.Subject)).
		Msg("Join code verified")

	return v
}

// failureMessage shows the backend's own message for a 4xx answer, such as an
// expired code. Server errors and transport failures get the retry copy.
func failureMessage(err error) string {
	var apiErr *parentpanel.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" &&
		apiErr.StatusCode >= http.StatusBadRequest && apiErr.StatusCode < http.StatusInternalServerError {
		return apiErr.Message
	}
	return MsgVerifyUnavailable
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
