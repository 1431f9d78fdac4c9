package mcp

import (
	"context"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-workspace/internal/core/domain"
)

func TestExtractCCPairID(t *testing.T) {
	tests := []struct {
		name   string
		uri    string
		wantID int
		wantOK bool
	}{
		{"valid", "sercha://connectors/12", 12, true},
		{"invalid prefix", "file://connectors/12", 0, false},
		{"not a number", "sercha://connectors/abc", 0, false},
		{"zero", "sercha://connectors/0", 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := extractCCPairID(tt.uri)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleConnectorsResource(t *testing.T) {
	ctx := context.Background()

	t.Run("empty snapshot", func(t *testing.T) {
		server, _, _ := newTestServer(t)

		result, err := server.handleConnectorsResource(ctx, makeReadResourceRequest("sercha://connectors"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})

	t.Run("lists pairs", func(t *testing.T) {
		server, _, _ := newTestServer(t, domain.CCPair{ID: 1, Name: "Docs", Source: "web", Status: domain.StatusInvalid})

		result, err := server.handleConnectorsResource(ctx, makeReadResourceRequest("sercha://connectors"))

		require.NoError(t, err)
		assert.Contains(t, result.Contents[0].Text, `"name": "Docs"`)
		assert.Contains(t, result.Contents[0].Text, "Needs attention")
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
	})
}

func TestServer_handleConnectorResource(t *testing.T) {
	ctx := context.Background()
	server, _, _ := newTestServer(t, domain.CCPair{ID: 4, Name: "Wiki", Source: "confluence", Status: domain.StatusScheduled})

	result, err := server.handleConnectorResource(ctx, makeReadResourceRequest("sercha://connectors/4"))
	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, "Wiki")
	assert.Contains(t, result.Contents[0].Text, "Scheduled")

	_, err = server.handleConnectorResource(ctx, makeReadResourceRequest("sercha://connectors/5"))
	assert.Error(t, err)

	_, err = server.handleConnectorResource(ctx, makeReadResourceRequest("sercha://other/4"))
	assert.Error(t, err)
}

func TestServer_handleEntitlementsResource(t *testing.T) {
	server, reconciler, _ := newTestServer(t)
	reconciler.entitlement = &domain.Entitlement{ConnectorsUsed: 1, ConnectorsLimit: -1, StorageUsedGB: 2, StorageGB: 2}

	result, err := server.handleEntitlementsResource(context.Background(), makeReadResourceRequest("sercha://entitlements"))

	require.NoError(t, err)
	assert.Contains(t, result.Contents[0].Text, `"connectors_limit": -1`)
	assert.Contains(t, result.Contents[0].Text, domain.StorageLimitMessage(reconciler.entitlement))
}
