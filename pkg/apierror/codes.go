package apierror

// Machine-readable codes carried in the "code" field of error bodies.
const (
	CodeValidation           = "VALIDATION_ERROR"
	CodeMissingFields        = "MISSING_FIELDS"
	CodeWeakPassword         = "WEAK_PASSWORD"
	CodeDisposableEmail      = "DISPOSABLE_EMAIL"
	CodeUserAlreadyExists    = "USER_ALREADY_EXISTS"
	CodeInvalidCredentials   = "INVALID_CREDENTIALS"
	CodeRefreshTokenRequired = "REFRESH_TOKEN_REQUIRED"
	CodeInvalidRefreshToken  = "INVALID_REFRESH_TOKEN"
	CodeAccessTokenRequired  = "ACCESS_TOKEN_REQUIRED"
	CodeInvalidToken         = "INVALID_OR_EXPIRED_TOKEN"
	CodeAuthRequired         = "AUTHENTICATION_REQUIRED"
	CodeInsufficientPerms    = "INSUFFICIENT_PERMISSIONS"
	CodeNotFound             = "NOT_FOUND"
	CodeInternal             = "INTERNAL_ERROR"
	CodeRateLimited          = "RATE_LIMITED"
	CodeRequestTimeout       = "REQUEST_TIMEOUT"
)
