// Package constants centralizes shared defaults and limits.
package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultRequestTimeout bounds each individual request attempt.
	DefaultRequestTimeout = 10 * time.Second

	// ShortHTTPTimeout is used for quick operations such as token requests.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry behavior.
const (
	// DefaultRetryMax is the default maximum number of attempts for a
	// timed-out request.
	DefaultRetryMax = 5

	// DefaultBackoffUnit scales the exponential backoff between retries:
	// the n-th retry sleeps 2^n units.
	DefaultBackoffUnit = time.Second
)

// Token lifecycle.
const (
	// TokenExpirationBuffer is the buffer time before token expiration
	// within which a token is already treated as invalid.
	TokenExpirationBuffer = 30 * time.Second

	// DefaultDevicePollInterval is the polling cadence for the device-code
	// flow when the identity provider suggests none.
	DefaultDevicePollInterval = 5 * time.Second
)

// Log rotation.
const (
	// LogMaxSizeMB caps the size of the active log file.
	LogMaxSizeMB = 5

	// LogMaxBackups caps the number of rotated log files kept.
	LogMaxBackups = 5
)

// Output format constants.
const (
	// FormatJSON for JSON output format.
	FormatJSON = "json"

	// FormatYAML for YAML output format.
	FormatYAML = "yaml"
)
