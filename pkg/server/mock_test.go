package server

import (
	"context"

	"github.com/gridscope/gridscope/pkg/types"
	"github.com/stretchr/testify/mock"
)

type mockForecast struct {
	mock.Mock
}

func (m *mockForecast) Models(ctx context.Context) ([]types.ModelInfo, error) {
	args := m.Called(ctx)
	if models, ok := args.Get(0).([]types.ModelInfo); ok {
		return models, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockForecast) CurrentModel(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *mockForecast) SelectModel(ctx context.Context, modelID string) (bool, error) {
	args := m.Called(ctx, modelID)
	return args.Bool(0), args.Error(1)
}

func (m *mockForecast) CurrentMetrics(ctx context.Context) (types.ModelMetrics, error) {
	args := m.Called(ctx)
	return args.Get(0).(types.ModelMetrics), args.Error(1)
}

func (m *mockForecast) DemandTrend(ctx context.Context, zone string) (types.DemandTrend, error) {
	args := m.Called(ctx, zone)
	return args.Get(0).(types.DemandTrend), args.Error(1)
}
