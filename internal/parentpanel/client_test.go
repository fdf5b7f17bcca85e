package parentpanel

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second)
}

func TestVerifyJoinCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/parent-panel/verify-join-code", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "a1b2c3", body["code"])

		_, _ = w.Write([]byte(`{"success":true,"code":"a1b2c3","message":"Code verified"}`))
	})

	res, err := c.VerifyJoinCode(WithToken(context.Background(), "tok"), "a1b2c3")
	require.NoError(t, err)
	assert.True(t, res.Verified())
}

func TestVerifyResponseVerified(t *testing.T) {
	tests := []struct {
		name string
		resp *VerifyResponse
		want bool
	}{
		{name: "all three", resp: &VerifyResponse{Success: true, Code: "abc123", Message: "Your code verified ok"}, want: true},
		{name: "upper case message", resp: &VerifyResponse{Success: true, Code: "abc123", Message: "CODE VERIFIED"}, want: true},
		{name: "message lacks phrase", resp: &VerifyResponse{Success: true, Code: "abc123", Message: "Invalid"}},
		{name: "no code", resp: &VerifyResponse{Success: true, Message: "code verified"}},
		{name: "not success", resp: &VerifyResponse{Code: "abc123", Message: "code verified"}},
		{name: "nil", resp: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.resp.Verified())
		})
	}
}

func TestNoTokenHeaderWhenAbsent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "/parent-panel/get-join-class-info/a1b2c3", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"nextclass":{"class_name":"Gita for kids","child_name":"Arjun"}}`))
	})

	res, err := c.GetJoinClassInfo(context.Background(), "a1b2c3")
	require.NoError(t, err)
	require.NotNil(t, res.NextClass)
	assert.Equal(t, "Arjun", res.NextClass.ChildName)
}

func TestTokenRequiredCallsFailWithoutNetwork(t *testing.T) {
	calls := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
	})

	err := c.AddChildToJoinQueue(context.Background(), "a1b2c3")
	assert.ErrorIs(t, err, ErrTokenMissing)

	_, err = c.GetHeader(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)

	assert.Zero(t, calls)
}

func TestAddChildToJoinQueue(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    bool
		wantMsg    string
		isRejected bool
	}{
		{name: "ok", status: http.StatusOK, body: `{"success":true,"message":"queued"}`},
		{name: "success false", status: http.StatusOK, body: `{"success":false,"message":"Class already over"}`, wantErr: true, wantMsg: "Class already over", isRejected: true},
		{name: "server error", status: http.StatusInternalServerError, body: `{"message":"boom"}`, wantErr: true, wantMsg: "boom"},
		{name: "server error without body", status: http.StatusBadGateway, body: ``, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/parent-panel/add-child-in-join-queue/a1b2c3", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			err := c.AddChildToJoinQueue(WithToken(context.Background(), "tok"), "a1b2c3")
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, Message(err))
			assert.Equal(t, tt.isRejected, errors.Is(err, ErrQueueRejected))
		})
	}
}

func TestCheckIfClassStarted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parent-panel/check-if-class-started/a1b2c3/", r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"started":true,"join_url":"https://meet.example/x"}`))
	})

	status, err := c.CheckIfClassStarted(context.Background(), "a1b2c3")
	require.NoError(t, err)
	assert.True(t, status.Ready())
	assert.Equal(t, "https://meet.example/x", status.URL())
}

func TestCheckIfClassStartedNullURL(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"started":true,"join_url":null}`))
	})

	status, err := c.CheckIfClassStarted(context.Background(), "a1b2c3")
	require.NoError(t, err)
	assert.False(t, status.Ready())
}

func TestCheckIfClassStartedNon2xx(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.CheckIfClassStarted(context.Background(), "a1b2c3")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestFetchLastSessionDetailsQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parent-panel/last_session_details", r.URL.Path)
		assert.Equal(t, "a1b2c3", r.URL.Query().Get("code"))
		_, _ = w.Write([]byte(`{"success":true,"data":{"homework":"Read chapter 2"}}`))
	})

	res, err := c.FetchLastSessionDetails(context.Background(), "a1b2c3")
	require.NoError(t, err)
	assert.JSONEq(t, `{"homework":"Read chapter 2"}`, string(res.Data))
}

func TestCancelledContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.CheckIfClassStarted(ctx, "a1b2c3")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassDetailsStartAt(t *testing.T) {
	loc := time.FixedZone("IST", 5*3600+1800)
	tests := []struct {
		name    string
		details ClassDetails
		want    time.Time
		wantErr bool
	}{
		{name: "24h with seconds", details: ClassDetails{ClassDate: "2026-10-15", StartTime: "17:30:00"}, want: time.Date(2026, 10, 15, 17, 30, 0, 0, loc)},
		{name: "24h", details: ClassDetails{ClassDate: "2026-10-15", StartTime: "09:05"}, want: time.Date(2026, 10, 15, 9, 5, 0, 0, loc)},
		{name: "12h", details: ClassDetails{ClassDate: "2026-10-15", StartTime: "5:30 PM"}, want: time.Date(2026, 10, 15, 17, 30, 0, 0, loc)},
		{name: "missing", details: ClassDetails{ClassDate: "2026-10-15"}, wantErr: true},
		{name: "garbage", details: ClassDetails{ClassDate: "tomorrow", StartTime: "soon"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.details.StartAt(loc)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}
