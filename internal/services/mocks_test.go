// internal/services/mocks_test.go
package services

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// mockGateway is a testify mock of the Gateway contract.
type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) GenerateImage(ctx context.Context, prompt, aspectRatio string) ([]byte, error) {
	args := m.Called(ctx, prompt, aspectRatio)
	if data := args.Get(0); data != nil {
		return data.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}
