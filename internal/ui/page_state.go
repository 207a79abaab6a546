package ui

import (
	"time"
)

// page_state.go provides shared state management for TUI pages.
// Embed PageState in a page model to get consistent state handling.

// PageState contains common state that all pages need.
type PageState struct {
	Layout       Layout
	StatusMsg    string
	StatusIsErr  bool
	StatusExpiry time.Time
	Quitting     bool
}

// NewPageState creates a new PageState with the given layout.
func NewPageState(layout Layout) PageState {
	return PageState{Layout: layout}
}

// SetStatus sets a status message that will expire after the given duration.
// If duration is 0, the status message will not expire.
func (p *PageState) SetStatus(msg string, duration time.Duration) {
	p.StatusMsg = msg
	p.StatusIsErr = false
	if duration > 0 {
		p.StatusExpiry = time.Now().Add(duration)
	} else {
		p.StatusExpiry = time.Time{} // Zero time = no expiry
	}
}

// SetError sets an error status message with the given lifetime.
func (p *PageState) SetError(msg string, duration time.Duration) {
	p.SetStatus(msg, duration)
	p.StatusIsErr = true
}

// ClearExpiredStatus clears the status message if it has expired.
// Call this in Update() to automatically clear old messages.
func (p *PageState) ClearExpiredStatus() {
	if !p.StatusExpiry.IsZero() && time.Now().After(p.StatusExpiry) {
		p.StatusMsg = ""
		p.StatusIsErr = false
		p.StatusExpiry = time.Time{}
	}
}

// HasStatus returns true if there is a non-empty status message.
func (p *PageState) HasStatus() bool {
	return p.StatusMsg != ""
}

// UpdateLayout updates the layout and returns true if it changed.
// Use this in the WindowSizeMsg handler.
func (p *PageState) UpdateLayout(width, height int) bool {
	newLayout := NewLayout(width, height)
	if newLayout != p.Layout {
		p.Layout = newLayout
		return true
	}
	return false
}
