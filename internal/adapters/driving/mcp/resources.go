package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cinedex/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for cinedex resources.
	uriScheme = "cinedex://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Served index generation, document counts and the last build",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "titles/{id}",
		Name:        "title",
		Description: "A title with its alternate titles, ratings and crew",
		MIMEType:    "application/json",
	}, s.handleTitleResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "names/{id}",
		Name:        "name",
		Description: "A person with their professions and known-for titles",
		MIMEType:    "application/json",
	}, s.handleNameResource)
}

// handleStatusResource returns the index status, or an empty object when
// index management is unavailable.
func (s *Server) handleStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Index == nil {
		return jsonResource(req.Params.URI, struct{}{})
	}

	status, err := s.ports.Index.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading index status: %w", err)
	}
	return jsonResource(req.Params.URI, status)
}

// handleTitleResource returns the full document of one title.
func (s *Server) handleTitleResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractID(req.Params.URI, "titles")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Search.GetTitle(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting title: %w", err)
	}
	return jsonResource(req.Params.URI, doc)
}

// handleNameResource returns the full document of one person.
func (s *Server) handleNameResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id := extractID(req.Params.URI, "names")
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	doc, err := s.ports.Search.GetName(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting name: %w", err)
	}
	return jsonResource(req.Params.URI, doc)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractID extracts the identifier from a URI like cinedex://{collection}/{id}.
func extractID(uri, collection string) string {
	prefix := uriScheme + collection + "/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	id := strings.TrimPrefix(uri, prefix)
	if strings.Contains(id, "/") {
		return ""
	}
	return id
}
