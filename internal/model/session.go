package model

// CreateSessionRequest stores the parent's auth token for this browser.
type CreateSessionRequest struct {
	Token string `json:"token" binding:"required,min=8"`
}
