package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/parentpanel/gateway/internal/parentpanel"
)

// ErrRejected marks a well-formed upstream answer carrying success:false.
var ErrRejected = errors.New("rejected by parent panel")

// RejectedError carries the backend message of a success:false answer.
type RejectedError struct {
	Message string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return ErrRejected.Error()
	}
	return ErrRejected.Error() + ": " + e.Message
}

func (e *RejectedError) Unwrap() error { return ErrRejected }

// DashboardAPI is the slice of the parent-panel client the dashboard cards need.
type DashboardAPI interface {
	FetchLastSessionDetails(ctx context.Context, code string) (*parentpanel.SessionDetailsResponse, error)
	GetHeader(ctx context.Context) (*parentpanel.HeaderResponse, error)
}

// DashboardService gathers what the subject dashboard renders.
type DashboardService struct {
	verifier *VerifyService
	api      DashboardAPI
}

// NewDashboardService creates a new DashboardService.
func NewDashboardService(verifier *VerifyService, api DashboardAPI) *DashboardService {
	return &DashboardService{verifier: verifier, api: api}
}

// Resolve verifies code and returns the class, subject and child it maps to.
func (s *DashboardService) Resolve(ctx context.Context, code string) Verification {
	return s.verifier.Verify(ctx, code)
}

// LastSession returns the homework / slides payload of the previous session.
func (s *DashboardService) LastSession(ctx context.Context, code string) (json.RawMessage, error) {
	res, err := s.api.FetchLastSessionDetails(ctx, code)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, &RejectedError{Message: res.Message}
	}
	return res.Data, nil
}

// Header returns the progress counters of the dashboard header.
func (s *DashboardService) Header(ctx context.Context) (json.RawMessage, error) {
	res, err := s.api.GetHeader(ctx)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, &RejectedError{Message: res.Message}
	}
	return res.Data, nil
}
