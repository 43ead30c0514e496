package discovery

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type mockSearcher struct {
	mock.Mock
}

func (m *mockSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	args := m.Called(ctx, query)
	if v := args.Get(0); v != nil {
		return v.([]SearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}
