package session

import "net/http"

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

// Flash is a one-time message displayed on the next rendered page.
type Flash struct {
	Kind    FlashKind
	Message string
}

// PutFlash stores a message for the next page view.
func (m *Manager) PutFlash(r *http.Request, kind FlashKind, message string) {
	m.Put(r.Context(), KeyFlash, message)
	m.Put(r.Context(), KeyFlashKind, string(kind))
}

// PopFlash returns and clears the pending message, or nil when there is none.
func (m *Manager) PopFlash(r *http.Request) *Flash {
	message := m.PopString(r.Context(), KeyFlash)
	kind := m.PopString(r.Context(), KeyFlashKind)
	if message == "" {
		return nil
	}
	if kind == "" {
		kind = string(FlashSuccess)
	}
	return &Flash{Kind: FlashKind(kind), Message: message}
}
