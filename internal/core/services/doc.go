// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The Reconciler is the single writer of the CCPair list and the
// entitlement snapshot. ConnectorService and QuotaGate read from it;
// DriveService owns drive state and its auto-sync loop independently.
package services
