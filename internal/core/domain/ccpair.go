package domain

import (
	"time"
)

// CCPairStatus is the normalised lifecycle status of a connector-credential pair.
type CCPairStatus string

// Lifecycle states.
const (
	StatusScheduled       CCPairStatus = "SCHEDULED"
	StatusInitialIndexing CCPairStatus = "INITIAL_INDEXING"
	StatusActive          CCPairStatus = "ACTIVE"
	StatusPaused          CCPairStatus = "PAUSED"
	StatusDeleting        CCPairStatus = "DELETING"
	StatusInvalid         CCPairStatus = "INVALID"
)

// IsValid returns true if the status is recognised.
func (s CCPairStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusInitialIndexing, StatusActive,
		StatusPaused, StatusDeleting, StatusInvalid:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s CCPairStatus) String() string {
	return string(s)
}

// AccessType scopes who can see a CCPair's documents.
type AccessType string

const (
	AccessPrivate AccessType = "private"
	AccessPublic  AccessType = "public"
	AccessSync    AccessType = "sync"
)

// IndexAttemptNotStarted is the upstream last-status value of a run that has
// been queued but not picked up.
const IndexAttemptNotStarted = "not_started"

// IndexAttemptInProgress is the upstream last-status value of a running attempt.
const IndexAttemptInProgress = "in_progress"

// ConnectorRef identifies the connector half of a pair.
type ConnectorRef struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Source string `json:"source"`
}

// ConnectorStatusRecord is one raw entry of the upstream status list. The
// lifecycle signal is split across LastFinishedStatus, LastStatus and PairStatus.
type ConnectorStatusRecord struct {
	CCPairID           int          `json:"cc_pair_id"`
	Name               string       `json:"name"`
	Connector          ConnectorRef `json:"connector"`
	CredentialID       int          `json:"credential_id"`
	AccessType         AccessType   `json:"access_type"`
	PairStatus         CCPairStatus `json:"cc_pair_status"`
	LastFinishedStatus *string      `json:"last_finished_status"`
	LastStatus         *string      `json:"last_status"`
	DocsIndexed        int          `json:"docs_indexed"`
	LastSuccess        *time.Time   `json:"last_success"`
	LastError          string       `json:"latest_error,omitempty"`
	InProgress         bool         `json:"in_progress"`
}

// DeriveStatus normalises the upstream signals into one status:
// a finished run means the explicit pair status applies; otherwise a queued
// run is SCHEDULED and anything else is INITIAL_INDEXING.
func DeriveStatus(lastFinishedStatus, lastStatus *string, pairStatus CCPairStatus) CCPairStatus {
	if lastFinishedStatus != nil {
		return pairStatus
	}
	if lastStatus != nil && *lastStatus == IndexAttemptNotStarted {
		return StatusScheduled
	}
	return StatusInitialIndexing
}

// CCPair is one configured connector instance bound to a credential.
type CCPair struct {
	// ID is used for every management call.
	ID int
	// ConnectorID is the underlying connector's own id, used to trigger indexing.
	ConnectorID  int
	CredentialID int
	Name         string
	Source       string
	Status       CCPairStatus
	AccessType   AccessType
	// NumDocsIndexed is the document count reported by the backend.
	NumDocsIndexed int
	LastIndexedAt  time.Time
	LastError      string
	// Indexing is true while an index run is in flight.
	Indexing bool
}

// NewCCPair returns the in-model form of a freshly created pair. No index run
// has finished, so it starts SCHEDULED.
func NewCCPair(id, connectorID, credentialID int, name, source string) CCPair {
	return CCPair{
		ID:           id,
		ConnectorID:  connectorID,
		CredentialID: credentialID,
		Name:         name,
		Source:       source,
		Status:       StatusScheduled,
		AccessType:   AccessPrivate,
	}
}

// CCPairFromRecord builds a CCPair from a raw status record, deriving its status.
func CCPairFromRecord(r *ConnectorStatusRecord) CCPair {
	pair := CCPair{
		ID:             r.CCPairID,
		ConnectorID:    r.Connector.ID,
		CredentialID:   r.CredentialID,
		Name:           r.Name,
		Source:         r.Connector.Source,
		Status:         DeriveStatus(r.LastFinishedStatus, r.LastStatus, r.PairStatus),
		AccessType:     r.AccessType,
		NumDocsIndexed: r.DocsIndexed,
		LastError:      r.LastError,
		Indexing:       r.InProgress || (r.LastStatus != nil && *r.LastStatus == IndexAttemptInProgress),
	}
	if pair.Name == "" {
		pair.Name = r.Connector.Name
	}
	if r.LastSuccess != nil {
		pair.LastIndexedAt = *r.LastSuccess
	}
	return pair
}

// CanRequestTransition reports whether a status-change request from one state
// to another may be issued. Requests are not guaranteed outcomes.
func CanRequestTransition(from, to CCPairStatus) bool {
	switch {
	case from == StatusActive && to == StatusPaused:
		return true
	case from == StatusPaused && to == StatusActive:
		return true
	case from == StatusPaused && to == StatusDeleting:
		return true
	default:
		return false
	}
}

// PauseToggleTarget returns the status a pause/resume request asks for.
func (p *CCPair) PauseToggleTarget() CCPairStatus {
	if p.Status == StatusPaused {
		return StatusActive
	}
	return StatusPaused
}

// DisplayStatus is the short label shown in connector listings. It is derived
// from the canonical Status and Indexing flag only.
func (p *CCPair) DisplayStatus() string {
	switch p.Status {
	case StatusScheduled:
		return "Scheduled"
	case StatusInitialIndexing:
		return "Indexing"
	case StatusActive:
		if p.Indexing {
			return "Syncing"
		}
		return "Active"
	case StatusPaused:
		return "Paused"
	case StatusDeleting:
		return "Deleting"
	case StatusInvalid:
		return "Needs attention"
	default:
		return "Unknown"
	}
}
