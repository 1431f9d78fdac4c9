package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
	"github.com/custodia-labs/sercha-workspace/internal/core/ports/driven"
)

// Management API paths.
const (
	pathConnectorStatus = "/manage/connector-status"
	pathCredential      = "/manage/credential"
	pathConnector       = "/manage/connector"
	pathCCPair          = "/manage/connector-credential-pair"
	pathEntitlements    = "/entitlements/me"
)

// idResponse is the answer of every create call.
type idResponse struct {
	ID int `json:"id"`
}

// ListConnectorStatus returns the raw status records of every pair.
func (c *Client) ListConnectorStatus(ctx context.Context) ([]domain.ConnectorStatusRecord, error) {
	var out []domain.ConnectorStatusRecord
	if _, err := c.doJSON(ctx, http.MethodGet, pathConnectorStatus, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListCredentials returns the credentials for a connector type.
func (c *Client) ListCredentials(ctx context.Context, source string) ([]domain.Credential, error) {
	q := url.Values{}
	q.Set("source", source)
	var out []domain.Credential
	if _, err := c.doJSON(ctx, http.MethodGet, pathCredential+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCredential creates a credential.
func (c *Client) CreateCredential(ctx context.Context, req driven.CredentialCreate) (int, error) {
	return c.create(ctx, pathCredential, req)
}

// CreateConnector creates a connector.
func (c *Client) CreateConnector(ctx context.Context, req driven.ConnectorCreate) (int, error) {
	return c.create(ctx, pathConnector, req)
}

// CreateCCPair binds a connector to a credential.
func (c *Client) CreateCCPair(ctx context.Context, req driven.CCPairCreate) (int, error) {
	return c.create(ctx, pathCCPair, req)
}

func (c *Client) create(ctx context.Context, path string, body any) (int, error) {
	var out idResponse
	if _, err := c.doJSON(ctx, http.MethodPost, path, body, &out); err != nil {
		return 0, err
	}
	if out.ID == 0 {
		return 0, fmt.Errorf("POST %s: response carries no id", path)
	}
	return out.ID, nil
}

// TriggerIndex starts an index run.
func (c *Client) TriggerIndex(ctx context.Context, connectorID int, req driven.IndexRequest) error {
	path := fmt.Sprintf("%s/%d/index", pathConnector, connectorID)
	_, err := c.doJSON(ctx, http.MethodPost, path, req, nil)
	return err
}

// SetCCPairStatus requests a pause or resume.
func (c *Client) SetCCPairStatus(ctx context.Context, ccPairID int, status domain.CCPairStatus) error {
	path := fmt.Sprintf("/manage/cc-pair/%d/status", ccPairID)
	body := struct {
		Status domain.CCPairStatus `json:"status"`
	}{Status: status}
	_, err := c.doJSON(ctx, http.MethodPut, path, body, nil)
	return err
}

// DeleteCCPair deletes a pair.
func (c *Client) DeleteCCPair(ctx context.Context, ccPairID int) error {
	path := fmt.Sprintf("/manage/cc-pair/%d", ccPairID)
	_, err := c.doJSON(ctx, http.MethodDelete, path, nil, nil)
	return err
}

// GetEntitlements returns usage and limits.
func (c *Client) GetEntitlements(ctx context.Context) (*domain.Entitlement, error) {
	var out domain.Entitlement
	if _, err := c.doJSON(ctx, http.MethodGet, pathEntitlements, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
