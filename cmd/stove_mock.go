package cmd

import (
	"context"

	"github.com/guileb/circular-integration/internal/pkg/stove"
)

// MockStoveService implements StoveService for tests. Set the Func fields to
// script behaviour; calls are counted either way.
type MockStoveService struct {
	UpdateDataCalls   int
	DrainCalls        int
	SnapshotCalls     int
	PowerCalls        []int
	TemperatureCalls  []float64
	FanCalls          []int
	TurnOnCalls       int
	TurnOffCalls      int
	EcoHeatingCalls   int
	ExternalTempCalls []float64

	UpdateDataFunc         func(ctx context.Context) error
	FailedPollAttemptsFunc func() int32
	SnapshotFunc           func() stove.Snapshot
	DrainChangesFunc       func() []string
}

func (m *MockStoveService) UpdateData(ctx context.Context) error {
	m.UpdateDataCalls++
	if m.UpdateDataFunc != nil {
		return m.UpdateDataFunc(ctx)
	}
	return nil
}

func (m *MockStoveService) FailedPollAttempts() int32 {
	if m.FailedPollAttemptsFunc != nil {
		return m.FailedPollAttemptsFunc()
	}
	return 0
}

func (m *MockStoveService) Snapshot() stove.Snapshot {
	m.SnapshotCalls++
	if m.SnapshotFunc != nil {
		return m.SnapshotFunc()
	}
	return stove.Snapshot{}
}

func (m *MockStoveService) DrainChanges() []string {
	m.DrainCalls++
	if m.DrainChangesFunc != nil {
		return m.DrainChangesFunc()
	}
	return nil
}

func (m *MockStoveService) SetPower(_ context.Context, value int) error {
	m.PowerCalls = append(m.PowerCalls, value)
	return nil
}

func (m *MockStoveService) SetFanSpeed(_ context.Context, value int) error {
	m.FanCalls = append(m.FanCalls, value)
	return nil
}

func (m *MockStoveService) SetTemperature(_ context.Context, value float64) error {
	m.TemperatureCalls = append(m.TemperatureCalls, value)
	return nil
}

func (m *MockStoveService) SetTemperatureAskByExternalEntity(_ context.Context, value float64) error {
	m.ExternalTempCalls = append(m.ExternalTempCalls, value)
	return nil
}

func (m *MockStoveService) TurnOn(context.Context) error {
	m.TurnOnCalls++
	return nil
}

func (m *MockStoveService) TurnOff(context.Context) error {
	m.TurnOffCalls++
	return nil
}

func (m *MockStoveService) StartEcoModeHeating() {
	m.EcoHeatingCalls++
}
