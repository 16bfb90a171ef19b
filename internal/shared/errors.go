package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")

	// Ledger errors
	ErrLedgerCorrupt  = fmt.Errorf("progress ledger is corrupt")
	ErrLedgerPersist  = fmt.Errorf("failed to persist progress ledger")
	ErrLedgerNotFound = fmt.Errorf("no progress ledger found")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrPodcastNotFound    = fmt.Errorf("podcast not found")
	ErrEpisodeNotFound    = fmt.Errorf("episode not found")
	ErrUploadRejected     = fmt.Errorf("upload rejected")

	// Episode-level processing errors; classify an outcome, never retried within a run
	ErrNoMediaReference = fmt.Errorf("no source media reference")
	ErrNoArtworkData    = fmt.Errorf("no artwork data received")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
