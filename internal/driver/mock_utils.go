package driver

import (
	"context"
	"sync"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// MockDriver records queries and answers them from Results, keyed by the
// exact query text.
type MockDriver struct {
	Results map[string]neo4j.EagerResult
	Err     error

	mu      sync.Mutex
	Queries []Statement
	Writes  [][]Statement
}

func NewMockDriver() *MockDriver {
	return &MockDriver{Results: map[string]neo4j.EagerResult{}}
}

func (m *MockDriver) ExecuteQuery(ctx context.Context, query string, params map[string]interface{}) (neo4j.EagerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, Statement{Query: query, Params: params})
	if m.Err != nil {
		return neo4j.EagerResult{}, m.Err
	}
	return m.Results[query], nil
}

func (m *MockDriver) ExecuteWrite(ctx context.Context, statements []Statement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Err != nil {
		return m.Err
	}
	m.Writes = append(m.Writes, statements)
	return nil
}

func (m *MockDriver) BuildIndices(ctx context.Context) error {
	return nil
}

func (m *MockDriver) Close(ctx context.Context) error {
	return nil
}
