package model

import (
	"encoding/json"

	"github.com/parentpanel/gateway/internal/parentpanel"
)

// CodeURI binds the :code path segment.
type CodeURI struct {
	Code string `uri:"code" json:"code" binding:"required,joincode"`
}

// SubjectURI binds /:code/:subject.
type SubjectURI struct {
	Code    string `uri:"code" json:"code" binding:"required,joincode"`
	Subject string `uri:"subject" json:"subject" binding:"required,oneof=gita english maths math"`
}

// DashboardResponse is what the subject dashboard renders from.
type DashboardResponse struct {
	Status          string                    `json:"status"`
	Code            string                    `json:"code"`
	Subject         string                    `json:"subject,omitempty"`
	SubjectMismatch bool                      `json:"subject_mismatch,omitempty"`
	ChildName       string                    `json:"child_name,omitempty"`
	Class           *parentpanel.ClassDetails `json:"class,omitempty"`
	StartsInSeconds *int64                    `json:"starts_in_seconds,omitempty"`
	Message         string                    `json:"message,omitempty"`
}

// SessionDetailsResponse carries the last session's homework and slides.
type SessionDetailsResponse struct {
	Code    string          `json:"code"`
	Session json.RawMessage `json:"session"`
}

// HeaderResponse carries the progress counters of the dashboard header.
type HeaderResponse struct {
	Progress json.RawMessage `json:"progress"`
}
