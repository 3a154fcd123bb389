package constants

import "time"

// Login lockout policy.
const (
	MaxLoginAttempts   = 5
	LoginAttemptWindow = 15 * time.Minute
	LoginLockDuration  = 15 * time.Minute
)

// Cron schedules (UTC) and their job timeouts.
const (
	LoginAttemptsCleanupCronSpec   = "@daily"
	LoginAttemptsCleanupJobTimeout = 2 * time.Minute
	LoginAttemptsStaleAfter        = 24 * time.Hour
)

// Statement uploads.
const (
	MaxStatementUploadBytes = 10 << 20
	StatementFormField      = "statement"
	StatementPasswordField  = "password"
)

// Session cookie.
const (
	SessionCookieName = "rentalai_session"
	FlashCookieName   = "rentalai_flash"
	TokenIssuer       = "rentalAI"
)

// Insights heuristics.
const (
	LowAverageRentThreshold = 8000.0
	InsightsCacheKeyPrefix  = "rentalai:insights:"
)

// Dashboard chart buckets.
const (
	RentTrendMonths      = 12
	LodgeOccupancyWeeks  = 4
	DefaultOpenAIModel   = "gpt-4.1"
	OpenAIRequestTimeout = 20 * time.Second
)

// HTTP server and process control.
const (
	CORSLowSecurityAllowedOriginLocalhost = "http://localhost:*"
	ServerReadHeaderTimeout               = 10 * time.Second
	ServerShutdownTimeout                 = 10 * time.Second
	ProcessStopTimeout                    = 10 * time.Second
	StartHealthAttempts                   = 10
	StartHealthDelay                      = 500 * time.Millisecond
	DefaultLogTailLines                   = 50
)
