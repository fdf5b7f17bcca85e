package parentpanel

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// VerifyResponse is the reply to POST /parent-panel/verify-join-code.
type VerifyResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Verified reports whether the backend accepted the code. All three of
// success, a returned code, and a "code verified" message are required.
func (r *VerifyResponse) Verified() bool {
	if r == nil {
		return false
	}
	return r.Success &&
		r.Code != "" &&
		strings.Contains(strings.ToLower(r.Message), "code verified")
}

// ClassDetails describes the next scheduled class for a join code.
type ClassDetails struct {
	ClassName string `json:"class_name"`
	ChildName string `json:"child_name"`
	ClassDate string `json:"class_date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

var startTimeLayouts = []string{"15:04:05", "15:04", "3:04 PM", "3:04PM", "03:04 PM"}

// StartAt combines ClassDate and StartTime into an instant in loc.
func (d *ClassDetails) StartAt(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := strings.TrimSpace(d.ClassDate)
	clock := strings.TrimSpace(d.StartTime)
	if date == "" || clock == "" {
		return time.Time{}, fmt.Errorf("class date or start time missing")
	}
	for _, layout := range startTimeLayouts {
		t, err := time.ParseInLocation("2006-01-02 "+layout, date+" "+clock, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised class start %q %q", date, clock)
}

// ClassInfoResponse is the reply to GET /parent-panel/get-join-class-info/{code}.
type ClassInfoResponse struct {
	Success   bool          `json:"success"`
	NextClass *ClassDetails `json:"nextclass"`
	Message   string        `json:"message"`
}

// SessionDetailsResponse is the reply to GET /parent-panel/last_session_details.
// Data is passed through to the dashboard untouched.
type SessionDetailsResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

// ClassStartStatus is the reply to GET /parent-panel/check-if-class-started/{code}/.
type ClassStartStatus struct {
	Success bool    `json:"success"`
	Started bool    `json:"started"`
	JoinURL *string `json:"join_url"`
	Message string  `json:"message"`
}

// Ready reports whether the class is live and a join URL is available.
func (s *ClassStartStatus) Ready() bool {
	return s != nil && s.Started && s.URL() != ""
}

// URL returns the join URL, or "" when the backend sent none.
func (s *ClassStartStatus) URL() string {
	if s == nil || s.JoinURL == nil {
		return ""
	}
	return strings.TrimSpace(*s.JoinURL)
}

// HeaderResponse carries the progress / overview counters for the dashboard
// header. The counter set varies by subject, so it stays raw.
type HeaderResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type basicResponse struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}
