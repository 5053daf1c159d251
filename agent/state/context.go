package state

import (
	"strings"
	"time"
)

const DefaultLocale = "en"

// ConversationContext is the carry-over state threaded through every tool call
// of one session. It caches pointers to recent transactional artifacts; it is
// never the source of truth for them, so a stale pointer must be handled as a
// recoverable error by whoever dereferences it.
type ConversationContext struct {
	UserID            string `json:"userId,omitempty"`
	UserEmail         string `json:"userEmail,omitempty"`
	UserOriginAirport string `json:"userOriginAirport,omitempty"`
	LastSearchID      string `json:"lastSearchId,omitempty"`
	LastFlightNumber  string `json:"lastFlightNumber,omitempty"`
	CurrentPNR        string `json:"currentPnr,omitempty"`
	CurrentScreen     string `json:"currentScreen,omitempty"`
	Locale            string `json:"locale"`
}

// ContextField names a context value an argument may fall back to.
type ContextField string

const (
	FieldUserID            ContextField = "userId"
	FieldUserEmail         ContextField = "userEmail"
	FieldUserOriginAirport ContextField = "userOriginAirport"
	FieldLastSearchID      ContextField = "lastSearchId"
	FieldLastFlightNumber  ContextField = "lastFlightNumber"
	FieldCurrentPNR        ContextField = "currentPnr"
	FieldCurrentScreen     ContextField = "currentScreen"
	FieldLocale            ContextField = "locale"
)

func NewConversationContext(locale string) ConversationContext {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		locale = DefaultLocale
	}
	return ConversationContext{Locale: locale}
}

// Field returns the value of f, or "" for unknown fields.
func (c ConversationContext) Field(f ContextField) string {
	switch f {
	case FieldUserID:
		return c.UserID
	case FieldUserEmail:
		return c.UserEmail
	case FieldUserOriginAirport:
		return c.UserOriginAirport
	case FieldLastSearchID:
		return c.LastSearchID
	case FieldLastFlightNumber:
		return c.LastFlightNumber
	case FieldCurrentPNR:
		return c.CurrentPNR
	case FieldCurrentScreen:
		return c.CurrentScreen
	case FieldLocale:
		return c.Locale
	default:
		return ""
	}
}

func (c ConversationContext) HasSearch() bool {
	return strings.TrimSpace(c.LastSearchID) != ""
}

func (c ConversationContext) LoggedIn() bool {
	return strings.TrimSpace(c.UserID) != ""
}

// ContextUpdate is the mutation a tool asks the caller to persist. A nil field
// leaves the value untouched; a pointer to "" clears it.
type ContextUpdate struct {
	UserOriginAirport *string `json:"userOriginAirport,omitempty"`
	LastSearchID      *string `json:"lastSearchId,omitempty"`
	LastFlightNumber  *string `json:"lastFlightNumber,omitempty"`
	CurrentPNR        *string `json:"currentPnr,omitempty"`
	CurrentScreen     *string `json:"currentScreen,omitempty"`
}

// Str returns a pointer to v for building a ContextUpdate.
func Str(v string) *string {
	return &v
}

func (u *ContextUpdate) IsEmpty() bool {
	return u == nil ||
		(u.UserOriginAirport == nil &&
			u.LastSearchID == nil &&
			u.LastFlightNumber == nil &&
			u.CurrentPNR == nil &&
			u.CurrentScreen == nil)
}

// Apply returns a copy of c with u applied. c itself is not modified.
func (c ConversationContext) Apply(u *ContextUpdate) ConversationContext {
	if u.IsEmpty() {
		return c
	}
	next := c
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&next.UserOriginAirport, u.UserOriginAirport)
	set(&next.LastSearchID, u.LastSearchID)
	set(&next.LastFlightNumber, u.LastFlightNumber)
	set(&next.CurrentPNR, u.CurrentPNR)
	set(&next.CurrentScreen, u.CurrentScreen)
	return next
}

// Identity is what the channel knows about the user before any tool runs.
type Identity struct {
	UserID            string `json:"userId,omitempty"`
	UserEmail         string `json:"userEmail,omitempty"`
	UserOriginAirport string `json:"userOriginAirport,omitempty"`
	Locale            string `json:"locale,omitempty"`
}

// WithIdentity overlays the non-empty identity fields onto c.
func (c ConversationContext) WithIdentity(id Identity) ConversationContext {
	next := c
	if v := strings.TrimSpace(id.UserID); v != "" {
		next.UserID = v
	}
	if v := strings.TrimSpace(id.UserEmail); v != "" {
		next.UserEmail = strings.ToLower(v)
	}
	if v := strings.TrimSpace(id.UserOriginAirport); v != "" {
		next.UserOriginAirport = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(id.Locale); v != "" {
		next.Locale = v
	}
	return next
}

// Session is the persisted record for one conversation.
type Session struct {
	SessionID string              `json:"session_id"`
	Context   ConversationContext `json:"context"`
	Version   int64               `json:"version"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func NewSession(sessionID string, locale string, now time.Time) *Session {
	return &Session{
		SessionID: sessionID,
		Context:   NewConversationContext(locale),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
}

func (s *Session) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *Session) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if strings.TrimSpace(s.Context.Locale) == "" {
		s.Context.Locale = DefaultLocale
	}
	return nil
}
