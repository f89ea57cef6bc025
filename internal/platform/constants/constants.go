// Copyright (c) 2026 Quotable. All rights reserved.

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and client tracking TTLs.
  - Security: header names for write protection.
  - Upload: request limits for bulk ingestion.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "quotable-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 15 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 60 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// UploadRequestTimeout replaces the global deadline on the bulk upload route.
	UploadRequestTimeout = 55 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second

	// ReadinessTimeout bounds every dependency probe in /ready.
	ReadinessTimeout = 2 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute

	// WriteRateLimitWindow is the fixed window used by the shared write limiter.
	WriteRateLimitWindow = 1 * time.Minute
)

// # HTTP Headers

const (
	// HeaderAPIKey carries the shared secret required by mutating routes.
	HeaderAPIKey = "x-api-key"

	HeaderXRequestID    = "X-Request-ID"
	HeaderXRealIP       = "X-Real-IP"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderOrigin        = "Origin"
	HeaderRetryAfter    = "Retry-After"
)

// # Upload

const (
	// UploadFormField is the multipart field holding the JSON document.
	UploadFormField = "file"

	// MultipartMemory is the in-memory budget for multipart parsing.
	MultipartMemory = 8 << 20
)

// # JSON Field Identifiers

const (
	FieldData     = "data"
	FieldMetadata = "metadata"
	FieldError    = "error"
	FieldCode     = "code"
	FieldDetails  = "details"
	FieldStatus   = "status"
	FieldApp      = "app"
	FieldVersion  = "version"
	FieldChecks   = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixWriteLimit = "ratelimit:write:"
)
