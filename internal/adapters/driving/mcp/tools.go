package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
)

// LoadFilesInput is the input schema for the load_files tool.
type LoadFilesInput struct {
	Paths []string `json:"paths" jsonschema:"files or directories to load"`
}

// LoadOutput is the output schema for the load tools.
type LoadOutput struct {
	LoadID    string   `json:"load_id"`
	Count     int      `json:"count"`
	Batches   int      `json:"batches"`
	Documents []string `json:"documents"`
}

// StatusOutput is the output schema for the load_status tool.
type StatusOutput struct {
	LoadID           string `json:"load_id"`
	Running          bool   `json:"running"`
	DocumentsRead    int    `json:"documents_read"`
	BatchesWritten   int    `json:"batches_written"`
	DocumentsWritten int    `json:"documents_written"`
}

// ModulesInput is the input schema for the module tools.
type ModulesInput struct {
	Dir string `json:"dir" jsonschema:"the modules directory"`
}

// ModulesOutput is the output schema for the find_modules tool.
type ModulesOutput struct {
	Services       []string `json:"services"`
	Assets         []string `json:"assets"`
	Options        []string `json:"options"`
	Transforms     []string `json:"transforms"`
	Namespaces     []string `json:"namespaces"`
	PropertiesFile string   `json:"properties_file,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_files",
		Description: "Load files and directories into the document store",
	}, s.handleLoadFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_status",
		Description: "Report progress of the current or most recent load",
	}, s.handleLoadStatus)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_modules",
		Description: "Classify the files of a modules directory",
	}, s.handleFindModules)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load_assets",
		Description: "Load the assets of a modules directory",
	}, s.handleLoadAssets)
}

func (s *Server) handleLoadFiles(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadFilesInput,
) (*mcp.CallToolResult, LoadOutput, error) {
	docs, err := s.ports.Loader.LoadFiles(ctx, input.Paths...)
	if err != nil {
		return nil, LoadOutput{}, err
	}
	return nil, s.loadOutput(docs), nil
}

func (s *Server) handleLoadStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, StatusOutput, error) {
	return nil, statusOutput(s.ports.Loader.Status()), nil
}

func (s *Server) handleFindModules(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ModulesInput,
) (*mcp.CallToolResult, ModulesOutput, error) {
	if s.ports.Modules == nil {
		return nil, ModulesOutput{}, errModulesUnavailable
	}

	m, err := s.ports.Modules.FindModules(input.Dir)
	if err != nil {
		return nil, ModulesOutput{}, err
	}

	assets := make([]string, len(m.Assets))
	for i, a := range m.Assets {
		assets[i] = a.URI
	}

	return nil, ModulesOutput{
		Services:       m.Services,
		Assets:         assets,
		Options:        m.Options,
		Transforms:     m.Transforms,
		Namespaces:     m.Namespaces,
		PropertiesFile: m.PropertiesFile,
	}, nil
}

func (s *Server) handleLoadAssets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ModulesInput,
) (*mcp.CallToolResult, LoadOutput, error) {
	if s.ports.Assets == nil {
		return nil, LoadOutput{}, errModulesUnavailable
	}

	docs, err := s.ports.Assets.LoadAssets(ctx, input.Dir)
	if err != nil {
		return nil, LoadOutput{}, err
	}
	return nil, s.loadOutput(docs), nil
}

func (s *Server) loadOutput(docs []*domain.Document) LoadOutput {
	status := s.ports.Loader.Status()
	uris := domain.URIs(docs)
	if uris == nil {
		uris = []string{}
	}
	return LoadOutput{
		LoadID:    status.LoadID,
		Count:     len(docs),
		Batches:   status.BatchesWritten,
		Documents: uris,
	}
}

func statusOutput(st driving.LoadStatus) StatusOutput {
	return StatusOutput{
		LoadID:           st.LoadID,
		Running:          st.Running,
		DocumentsRead:    st.DocumentsRead,
		BatchesWritten:   st.BatchesWritten,
		DocumentsWritten: st.DocumentsWritten,
	}
}
