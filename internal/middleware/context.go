package middleware

// Context keys for values the middleware chain shares with handlers: the
// authenticated dashboard user and the request id carried into sweep logs.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
)
