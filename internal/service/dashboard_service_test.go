package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/parentpanel/gateway/internal/parentpanel"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDashboardAPI struct {
	session    *parentpanel.SessionDetailsResponse
	sessionErr error
	header     *parentpanel.HeaderResponse
	headerErr  error
}

func (f *fakeDashboardAPI) FetchLastSessionDetails(ctx context.Context, code string) (*parentpanel.SessionDetailsResponse, error) {
	return f.session, f.sessionErr
}

func (f *fakeDashboardAPI) GetHeader(ctx context.Context) (*parentpanel.HeaderResponse, error) {
	return f.header, f.headerErr
}

func newTestDashboard(api *fakeDashboardAPI) *DashboardService {
	verifier := NewVerifyService(&fakeCodeAPI{verifyErr: errUpstream}, newFakeClock(time.Now()), time.UTC, zerolog.Nop())
	return NewDashboardService(verifier, api)
}

func TestDashboardLastSession(t *testing.T) {
	payload := json.RawMessage(`{"homework":"Read chapter 2"}`)

	t.Run("success returns payload", func(t *testing.T) {
		svc := newTestDashboard(&fakeDashboardAPI{session: &parentpanel.SessionDetailsResponse{Success: true, Data: payload}})

		data, err := svc.LastSession(context.Background(), "abc123")

		require.NoError(t, err)
		assert.JSONEq(t, string(payload), string(data))
	})

	t.Run("success false is rejected with message", func(t *testing.T) {
		svc := newTestDashboard(&fakeDashboardAPI{session: &parentpanel.SessionDetailsResponse{Message: "No sessions yet"}})

		_, err := svc.LastSession(context.Background(), "abc123")

		require.ErrorIs(t, err, ErrRejected)
		var rejected *RejectedError
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, "No sessions yet", rejected.Message)
	})

	t.Run("transport error passes through", func(t *testing.T) {
		svc := newTestDashboard(&fakeDashboardAPI{sessionErr: errUpstream})

		_, err := svc.LastSession(context.Background(), "abc123")

		assert.ErrorIs(t, err, errUpstream)
	})
}

func TestDashboardHeader(t *testing.T) {
	svc := newTestDashboard(&fakeDashboardAPI{header: &parentpanel.HeaderResponse{Success: true, Data: json.RawMessage(`{"classes_attended":4}`)}})

	data, err := svc.Header(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `{"classes_attended":4}`, string(data))

	svc = newTestDashboard(&fakeDashboardAPI{headerErr: parentpanel.ErrTokenMissing})
	_, err = svc.Header(context.Background())
	assert.ErrorIs(t, err, parentpanel.ErrTokenMissing)
}

func TestDashboardResolveUsesVerifier(t *testing.T) {
	svc := newTestDashboard(&fakeDashboardAPI{})

	v := svc.Resolve(context.Background(), "abc123")

	assert.Equal(t, VerifyError, v.Status)
	assert.Equal(t, MsgVerifyUnavailable, v.Message)
}

func TestRejectedErrorText(t *testing.T) {
	assert.Equal(t, "rejected by parent panel", (&RejectedError{}).Error())
	assert.Equal(t, "rejected by parent panel: nope", (&RejectedError{Message: "nope"}).Error())
}
