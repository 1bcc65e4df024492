package kbproxy

import (
	"context"

	domknow "github.com/kailas-cloud/kbproxy/internal/domain/knowledge"
	domsig "github.com/kailas-cloud/kbproxy/internal/domain/signature"
)

// --- knowledgeUseCase mock ---

type mockKnowledgeUC struct {
	fetchFn  func(ctx context.Context) ([]domknow.Record, error)
	searchFn func(ctx context.Context, query string) ([]domknow.MatchResult, error)
}

func (m *mockKnowledgeUC) FetchAll(ctx context.Context) ([]domknow.Record, error) {
	return m.fetchFn(ctx)
}

func (m *mockKnowledgeUC) Search(ctx context.Context, query string) ([]domknow.MatchResult, error) {
	return m.searchFn(ctx, query)
}

// --- signatureUseCase mock ---

type mockSignatureUC struct {
	signFn func(ctx context.Context, req domsig.Request) (domsig.Result, error)
}

func (m *mockSignatureUC) Sign(ctx context.Context, req domsig.Request) (domsig.Result, error) {
	return m.signFn(ctx, req)
}

// --- probeUseCase mock ---

type mockProbeUC struct {
	report domknow.ProbeReport
}

func (m *mockProbeUC) Run(_ context.Context) domknow.ProbeReport { return m.report }
