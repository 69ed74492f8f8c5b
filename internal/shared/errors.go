package shared

import "errors"

var (
	// ErrNoSession indicates the request carries no valid session token.
	ErrNoSession = errors.New("no session")
	// ErrExportInProgress indicates another worker holds the export lock.
	ErrExportInProgress = errors.New("export already in progress")
)
