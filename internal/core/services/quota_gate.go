package services

import (
	"context"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// Ensure QuotaGate implements the interface.
var _ driving.QuotaGate = (*QuotaGate)(nil)

// entitlementSnapshot is the part of the reconciler the gate reads.
type entitlementSnapshot interface {
	Entitlement() *domain.Entitlement
}

// QuotaGate checks entitlement limits at dialog open, at submit and before
// uploads. An unknown entitlement never blocks.
type QuotaGate struct {
	snapshot entitlementSnapshot
	backend  driven.EntitlementBackend
}

// NewQuotaGate creates a quota gate reading the reconciler's snapshot.
// backend is used for the fresh read at submit time.
func NewQuotaGate(snapshot entitlementSnapshot, backend driven.EntitlementBackend) *QuotaGate {
	return &QuotaGate{snapshot: snapshot, backend: backend}
}

// CheckOpen decides from the cached snapshot.
func (g *QuotaGate) CheckOpen() domain.QuotaDecision {
	return connectorDecision(domain.CheckpointOpen, g.snapshot.Entitlement())
}

// CheckSubmit reads entitlements fresh so that a limit reached after the
// dialog opened still blocks. When the fresh read fails the cached snapshot
// decides.
func (g *QuotaGate) CheckSubmit(ctx context.Context) domain.QuotaDecision {
	return connectorDecision(domain.CheckpointSubmit, g.current(ctx))
}

// CheckUpload blocks when the storage allowance is used up.
func (g *QuotaGate) CheckUpload(ctx context.Context) domain.QuotaDecision {
	ent := g.current(ctx)
	decision := domain.QuotaDecision{Checkpoint: domain.CheckpointUpload}
	if ent != nil && ent.StorageExhausted() {
		decision.Blocked = true
		decision.Message = domain.StorageLimitMessage(ent)
	}
	return decision
}

func (g *QuotaGate) current(ctx context.Context) *domain.Entitlement {
	if g.backend != nil {
		ent, err := g.backend.GetEntitlements(ctx)
		if err == nil && ent != nil {
			return ent
		}
		logger.Warn("quota: fresh entitlement read failed, using cached snapshot: %v", err)
	}
	return g.snapshot.Entitlement()
}

func connectorDecision(cp domain.QuotaCheckpoint, ent *domain.Entitlement) domain.QuotaDecision {
	decision := domain.QuotaDecision{Checkpoint: cp}
	if ent != nil && ent.ConnectorsExhausted() {
		decision.Blocked = true
		decision.Message = domain.ConnectorLimitMessage(ent)
	}
	return decision
}
