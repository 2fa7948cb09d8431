package server

import (
	"strings"
	"time"

	cafeadmin "github.com/ReaperX0402/Bean-there-admin"

	"github.com/medatechnology/goutil/simplelog"
	"github.com/medatechnology/simplehttp"
)

const (
	SESSION_CONTEXT_KEY = "admin_session"
	TOKEN_CONTEXT_KEY   = "session_token"

	HEADER_AUTHORIZATION = "Authorization"
	HEADER_API_KEY       = "X-Api-Key"
	HEADER_SESSION_TOKEN = "X-Session-Token"
	BEARER_PREFIX        = "Bearer "
)

// HandlerState carries one request's outcome from handler body to
// response: who called, what they touched, what happened. It is the
// single translator from (error, status) pairs into the notice shape
// every page consumes, so no handler builds responses by hand.
type HandlerState struct {
	ctx     simplehttp.Context
	started time.Time

	User       string
	Session    *cafeadmin.AdminSession
	Path       string
	Label      string
	LogMessage string

	httpStatus int
	message    string
	data       interface{}
	redirect   string
	err        error
	failed     bool
}

// NewHandlerState starts the per-request state and timer.
func NewHandlerState(ctx simplehttp.Context, user, path, label string) *HandlerState {
	return &HandlerState{
		ctx:        ctx,
		started:    time.Now(),
		User:       user,
		Path:       path,
		Label:      label,
		httpStatus: 200,
	}
}

// NewHandlerSessionState starts the state from the session the token
// middleware stashed in the request context.
func NewHandlerSessionState(ctx simplehttp.Context, path, label string) *HandlerState {
	state := NewHandlerState(ctx, "", path, label)
	if value := ctx.Get(SESSION_CONTEXT_KEY); value != nil {
		if session, ok := value.(*cafeadmin.AdminSession); ok {
			state.Session = session
			state.User = session.DisplayName()
		}
	}
	return state
}

// Token returns the raw session token the middleware extracted.
func (s *HandlerState) Token() string {
	if value := s.ctx.Get(TOKEN_CONTEXT_KEY); value != nil {
		if token, ok := value.(string); ok {
			return token
		}
	}
	return ""
}

// SetError marks the request failed. A zero status defaults to 500.
func (s *HandlerState) SetError(message string, err error, httpStatus int) *HandlerState {
	if httpStatus == 0 {
		httpStatus = 500
	}
	s.failed = true
	s.httpStatus = httpStatus
	s.message = message
	s.err = err
	return s
}

// SetRedirect attaches the login redirect hint for session failures.
func (s *HandlerState) SetRedirect(target string) *HandlerState {
	s.redirect = target
	return s
}

// SetSuccess marks the request succeeded with a payload.
func (s *HandlerState) SetSuccess(message string, data interface{}) *HandlerState {
	s.failed = false
	s.httpStatus = 200
	s.message = message
	s.data = data
	return s
}

// SaveStopTimer returns the elapsed request time in milliseconds.
func (s *HandlerState) SaveStopTimer() float64 {
	return float64(time.Since(s.started).Microseconds()) / 1000.0
}

// LogAndResponse logs the outcome and writes the standard response.
// logData is only logged, never sent to the client.
func (s *HandlerState) LogAndResponse(logMessage string, logData interface{}, doLog bool) error {
	if doLog {
		tag := s.Path
		if s.User != "" {
			tag += " [" + s.User + "]"
		}
		if s.failed {
			simplelog.LogErrorAny(tag, s.err, logMessage)
		} else {
			entry := logMessage
			if logData != nil {
				entry = logMessage + " (" + s.Label + ")"
			}
			simplelog.LogThis(tag, entry)
		}
	}

	if cafeadmin.Metrics != nil {
		cafeadmin.Metrics.RecordRequest(!s.failed)
	}

	return s.ctx.JSON(s.httpStatus, cafeadmin.StandardResponse{
		Status:   s.httpStatus,
		Message:  s.message,
		Data:     s.data,
		Redirect: s.redirect,
	})
}

// extractToken pulls the session token from the Authorization bearer
// header, falling back to the explicit session header.
func extractToken(ctx simplehttp.Context) string {
	auth := ctx.GetHeader(HEADER_AUTHORIZATION)
	if strings.HasPrefix(auth, BEARER_PREFIX) {
		return strings.TrimSpace(strings.TrimPrefix(auth, BEARER_PREFIX))
	}
	return strings.TrimSpace(ctx.GetHeader(HEADER_SESSION_TOKEN))
}

// MiddlewareAPIKeyHeader gates the /auth group with the deployment's
// API key. An unset key means an open deployment (local dev).
func MiddlewareAPIKeyHeader(console *cafeadmin.Console) simplehttp.MiddlewareFunc {
	return func(next simplehttp.HandlerFunc) simplehttp.HandlerFunc {
		return func(ctx simplehttp.Context) error {
			if console.Config.APIKey == "" {
				return next(ctx)
			}
			if ctx.GetHeader(HEADER_API_KEY) != console.Config.APIKey {
				state := NewHandlerState(ctx, "", ctx.GetPath(), "api_key")
				return state.SetError("Invalid or missing API key", nil, 401).
					LogAndResponse("api key check failed", nil, true)
			}
			return next(ctx)
		}
	}
}

// MiddlewareSessionCheck gates the /api group: the token must resolve
// to a structurally valid cached session. Invalid entries are cleared
// by Require and the client gets the login redirect hint.
func MiddlewareSessionCheck(console *cafeadmin.Console) simplehttp.MiddlewareFunc {
	return func(next simplehttp.HandlerFunc) simplehttp.HandlerFunc {
		return func(ctx simplehttp.Context) error {
			token := extractToken(ctx)
			session, err := console.Sessions.Require(token)
			if err != nil {
				if cafeadmin.Metrics != nil && err == &cafeadmin.ErrSessionInvalid {
					cafeadmin.Metrics.RecordSessionInvalidated()
				}
				state := NewHandlerState(ctx, "", ctx.GetPath(), "session_check")
				return state.SetError("Authentication required", err, 401).
					SetRedirect(console.Config.LoginPath).
					LogAndResponse("session check failed", nil, true)
			}
			ctx.Set(TOKEN_CONTEXT_KEY, token)
			ctx.Set(SESSION_CONTEXT_KEY, session)
			return next(ctx)
		}
	}
}

// MiddlewareRequireBackend answers data routes with the sticky
// configuration-absent error when the deployment never configured the
// backend. Nothing is retried automatically.
func MiddlewareRequireBackend(console *cafeadmin.Console) simplehttp.MiddlewareFunc {
	return func(next simplehttp.HandlerFunc) simplehttp.HandlerFunc {
		return func(ctx simplehttp.Context) error {
			if console.Datastore == nil || console.Datastore.DB == nil {
				state := NewHandlerState(ctx, "", ctx.GetPath(), "backend_check")
				return state.SetError("Backend configuration missing", &cafeadmin.ErrConfigMissing, 503).
					LogAndResponse("data route hit while unconfigured", nil, true)
			}
			return next(ctx)
		}
	}
}
