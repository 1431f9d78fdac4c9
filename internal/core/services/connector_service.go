package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-workspace/internal/logger"
)

// Ensure ConnectorService implements the interface.
var _ driving.ConnectorService = (*ConnectorService)(nil)

// ConnectorService runs creation and guarded lifecycle actions. It never
// mutates the CCPair list itself; changes go through the reconciler.
type ConnectorService struct {
	backend    driven.ConnectorBackend
	schemas    driving.SchemaRegistry
	forms      driving.FormInterpreter
	quota      driving.QuotaGate
	reconciler driving.Reconciler
}

// NewConnectorService creates a connector service.
func NewConnectorService(
	backend driven.ConnectorBackend,
	schemas driving.SchemaRegistry,
	forms driving.FormInterpreter,
	quota driving.QuotaGate,
	reconciler driving.Reconciler,
) *ConnectorService {
	return &ConnectorService{
		backend:    backend,
		schemas:    schemas,
		forms:      forms,
		quota:      quota,
		reconciler: reconciler,
	}
}

// ExistingCredential returns the newest credential for a connector type.
func (s *ConnectorService) ExistingCredential(ctx context.Context, source string) (*domain.Credential, error) {
	creds, err := s.backend.ListCredentials(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return domain.NewestCredential(creds), nil
}

// Create submits a creation dialog. The quota gate is consulted first, then
// the form is validated; neither failure reaches the backend.
func (s *ConnectorService) Create(ctx context.Context, req driving.CreateRequest) (*domain.CCPair, error) {
	if req.Form == nil {
		return nil, fmt.Errorf("%w: form state is required", domain.ErrInvalidInput)
	}

	if decision := s.quota.CheckSubmit(ctx); decision.Blocked {
		return nil, &domain.QuotaError{Decision: decision}
	}

	schema := s.schemas.Get(req.Source)
	if schema == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, req.Source)
	}

	if errs := s.forms.Validate(schema, req.Form, req.Credential); len(errs) > 0 {
		return nil, &domain.ValidationError{Fields: errs}
	}

	name := strings.TrimSpace(req.Form.String(domain.FieldConnectorName))
	payload := s.forms.BuildPayload(schema, req.Form, req.Credential)
	credFields, config := SplitPayload(schema, payload)

	logger.Section("Create Connector")
	logger.Debug("source=%s name=%q config_keys=%d credential_keys=%d",
		schema.ID, name, len(config), len(credFields))

	credentialID, err := s.resolveCredential(ctx, schema, name, req.Credential, credFields)
	if err != nil {
		return nil, err
	}

	connectorID, err := s.backend.CreateConnector(ctx, driven.NewConnectorCreate(
		name, schema.ID, config, schema.EffectiveRefreshFreq(), domain.DefaultPruneFreq))
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}

	pairID, err := s.backend.CreateCCPair(ctx, driven.CCPairCreate{
		ConnectorID:  connectorID,
		CredentialID: credentialID,
		Name:         name,
		AccessType:   string(domain.AccessPrivate),
	})
	if err != nil {
		return nil, fmt.Errorf("create connector-credential pair: %w", err)
	}

	logger.Info("created pair %d (connector %d, credential %d)", pairID, connectorID, credentialID)

	if err := s.reconciler.RefreshConnectors(ctx); err != nil && !errors.Is(err, domain.ErrRefreshInFlight) {
		logger.Warn("refresh after create failed: %v", err)
	}

	pair := domain.NewCCPair(pairID, connectorID, credentialID, name, schema.ID)
	return &pair, nil
}

// resolveCredential reuses the existing credential when it carries no new
// credential values, and creates one otherwise.
func (s *ConnectorService) resolveCredential(
	ctx context.Context,
	schema *domain.ConnectorSchema,
	name string,
	existing *domain.Credential,
	fields map[string]any,
) (int, error) {
	if existing != nil && len(fields) == 0 {
		return existing.ID, nil
	}
	id, err := s.backend.CreateCredential(ctx, driven.CredentialCreate{
		Source:         schema.ID,
		Name:           name,
		CredentialJSON: fields,
	})
	if err != nil {
		return 0, fmt.Errorf("create credential: %w", err)
	}
	return id, nil
}

// Actions returns the permitted actions of a pair.
func (s *ConnectorService) Actions(ccPairID int) (domain.ActionSet, error) {
	pair, err := s.pair(ccPairID)
	if err != nil {
		return domain.ActionSet{}, err
	}
	return domain.AllowedActions(pair), nil
}

// Index triggers an index or full reindex run.
func (s *ConnectorService) Index(ctx context.Context, ccPairID int, fromBeginning bool) error {
	pair, err := s.pair(ccPairID)
	if err != nil {
		return err
	}
	action := domain.ActionIndex
	if fromBeginning {
		action = domain.ActionFullReindex
	}
	if err := domain.AllowedActions(pair).Check(action); err != nil {
		return err
	}

	err = s.backend.TriggerIndex(ctx, pair.ConnectorID, driven.IndexRequest{
		FromBeginning: fromBeginning,
		CredentialIDs: []int{pair.CredentialID},
	})
	if err != nil {
		return fmt.Errorf("trigger index: %w", err)
	}
	s.reconciler.MarkIndexing(pair.ID)
	return nil
}

// SetPaused requests a pause or a resume.
func (s *ConnectorService) SetPaused(ctx context.Context, ccPairID int, paused bool) error {
	pair, err := s.pair(ccPairID)
	if err != nil {
		return err
	}
	if err := domain.AllowedActions(pair).Check(domain.ActionPauseOrResume); err != nil {
		return err
	}

	target := domain.StatusActive
	if paused {
		target = domain.StatusPaused
	}
	if !domain.CanRequestTransition(pair.Status, target) {
		return &domain.ActionBlockedError{
			Action: domain.ActionPauseOrResume,
			Reason: fmt.Sprintf("cannot move from %s to %s.", pair.Status, target),
		}
	}

	if err := s.backend.SetCCPairStatus(ctx, pair.ID, target); err != nil {
		return fmt.Errorf("set status: %w", err)
	}
	s.refreshAfterAction(ctx)
	return nil
}

// TogglePause flips between paused and active.
func (s *ConnectorService) TogglePause(ctx context.Context, ccPairID int) error {
	pair, err := s.pair(ccPairID)
	if err != nil {
		return err
	}
	return s.SetPaused(ctx, ccPairID, pair.PauseToggleTarget() == domain.StatusPaused)
}

// Delete deletes a paused pair. The pair leaves the list only once the
// backend accepted the call.
func (s *ConnectorService) Delete(ctx context.Context, ccPairID int) error {
	pair, err := s.pair(ccPairID)
	if err != nil {
		return err
	}
	if err := domain.AllowedActions(pair).Check(domain.ActionDelete); err != nil {
		return err
	}
	if err := s.backend.DeleteCCPair(ctx, pair.ID); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	s.reconciler.Remove(pair.ID)
	return nil
}

func (s *ConnectorService) pair(id int) (domain.CCPair, error) {
	pair, ok := s.reconciler.CCPair(id)
	if !ok {
		return domain.CCPair{}, fmt.Errorf("%w: connector %d", domain.ErrNotFound, id)
	}
	return pair, nil
}

func (s *ConnectorService) refreshAfterAction(ctx context.Context) {
	if err := s.reconciler.RefreshConnectors(ctx); err != nil && !errors.Is(err, domain.ErrRefreshInFlight) {
		logger.Warn("refresh after action failed: %v", err)
	}
}
