package menu

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/grazbites/scraper/pkg/anthropic"
)

type mockClient struct {
	mock.Mock
}

func (m *mockClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if v := args.Get(0); v != nil {
		return v.(*anthropic.MessageResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func textResponse(s string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: s}},
	}
}

type fakeText struct {
	text  string
	err   error
	calls int
}

func (f *fakeText) ExtractText(_ context.Context, _ []byte) (string, error) {
	f.calls++
	return f.text, f.err
}

type fakeRaster struct {
	pages [][]byte
	err   error
	calls int
	max   int
}

func (f *fakeRaster) Rasterize(_ context.Context, _ []byte, maxPages int) ([][]byte, error) {
	f.calls++
	f.max = maxPages
	return f.pages, f.err
}
