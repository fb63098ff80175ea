package mcp

import (
	"context"

	"github.com/custodia-labs/docloader/internal/core/domain"
	"github.com/custodia-labs/docloader/internal/core/ports/driving"
)

type mockLoader struct {
	docs   []*domain.Document
	err    error
	status driving.LoadStatus
	paths  []string
}

func (m *mockLoader) LoadFiles(_ context.Context, paths ...string) ([]*domain.Document, error) {
	m.paths = paths
	return m.docs, m.err
}

func (m *mockLoader) Status() driving.LoadStatus {
	return m.status
}

type mockAssetLoader struct {
	docs []*domain.Document
	err  error
	dir  string
}

func (m *mockAssetLoader) LoadAssets(_ context.Context, dir string) ([]*domain.Document, error) {
	m.dir = dir
	return m.docs, m.err
}

type mockModulesFinder struct {
	modules *domain.Modules
	err     error
}

func (m *mockModulesFinder) FindModules(_ string) (*domain.Modules, error) {
	return m.modules, m.err
}

func docs(uris ...string) []*domain.Document {
	out := make([]*domain.Document, len(uris))
	for i, u := range uris {
		out[i] = domain.NewDocument(u, "", domain.BytesContent("x"))
	}
	return out
}
