package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for workspace resources.
	uriScheme = "sercha://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "connectors",
		Name:        "connectors",
		Description: "All connector-credential pairs with their current status",
		MIMEType:    "application/json",
	}, s.handleConnectorsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "connectors/{ccPairId}",
		Name:        "connector",
		Description: "A single connector-credential pair",
		MIMEType:    "application/json",
	}, s.handleConnectorResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "entitlements",
		Name:        "entitlements",
		Description: "Plan usage and limits",
		MIMEType:    "application/json",
	}, s.handleEntitlementsResource)
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleConnectorsResource returns the reconciler's current snapshot.
func (s *Server) handleConnectorsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	pairs := s.ports.Reconciler.CCPairs()
	infos := make([]ConnectorOutput, len(pairs))
	for i := range pairs {
		infos[i] = toConnectorOutput(pairs[i])
	}
	return jsonResult(req.Params.URI, infos)
}

// handleConnectorResource returns one pair by id.
func (s *Server) handleConnectorResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, ok := extractCCPairID(req.Params.URI)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	pair, found := s.ports.Reconciler.CCPair(id)
	if !found {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResult(req.Params.URI, toConnectorOutput(pair))
}

func (s *Server) handleEntitlementsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, output, err := s.handleEntitlements(ctx, nil, EntitlementsInput{})
	if err != nil {
		return nil, err
	}
	return jsonResult(req.Params.URI, output)
}

// extractCCPairID parses the id from a URI like sercha://connectors/{ccPairId}.
func extractCCPairID(uri string) (int, bool) {
	const prefix = uriScheme + "connectors/"

	if !strings.HasPrefix(uri, prefix) {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimPrefix(uri, prefix))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
