package constants

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyUser   = "current_user"
)

// Pagination limits
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// DefaultMinPasswordLength is used when MIN_PASSWORD_LENGTH is not configured.
const DefaultMinPasswordLength = 8
