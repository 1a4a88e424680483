package config

import "time"

const (
	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8000
	DefaultEnvironment = "development"
	DefaultAPIPrefix   = "/api/v1"
	DefaultLogLevel    = "info"
	DefaultTransport   = TransportStdio

	DefaultRateLimitPerMinute = 60

	DefaultBigQueryLocation = "US"

	DefaultMaxBytesBilled    = 100 << 20 // 100 MiB
	DefaultMaxResults        = 100
	DefaultMaxResultsCeiling = 10_000
	DefaultToolTimeout       = 300 * time.Second

	DefaultCORSMaxAge = 300
)

const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
	TransportHTTP  = "http"
)

var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://localhost:8080",
}

var DefaultSensitiveColumns = []string{
	"email", "phone", "ssn", "social_security_number",
	"credit_card", "password", "secret", "token",
	"api_key", "access_key", "private_key",
}
