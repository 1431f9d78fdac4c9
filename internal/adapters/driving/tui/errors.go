package tui

import "errors"

// ErrMissingReconciler is returned when the reconciler is not provided.
var ErrMissingReconciler = errors.New("tui: reconciler is required")

// ErrMissingConnectorService is returned when the connector service is not provided.
var ErrMissingConnectorService = errors.New("tui: connector service is required")

// ErrMissingFormServices is returned when the schema registry or form interpreter is missing.
var ErrMissingFormServices = errors.New("tui: schema registry and form interpreter are required")

// ErrMissingDriveService is returned when the drive service is not provided.
var ErrMissingDriveService = errors.New("tui: drive service is required")
