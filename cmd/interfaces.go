package cmd

import (
	"context"

	"github.com/guileb/circular-integration/internal/pkg/stove"
)

// StoveService is what cmd.run expects from the stove client.
type StoveService interface {
	UpdateData(ctx context.Context) error
	FailedPollAttempts() int32
	Snapshot() stove.Snapshot
	DrainChanges() []string
	SetPower(ctx context.Context, value int) error
	SetFanSpeed(ctx context.Context, value int) error
	SetTemperature(ctx context.Context, value float64) error
	SetTemperatureAskByExternalEntity(ctx context.Context, value float64) error
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	StartEcoModeHeating()
}

// Broadcaster receives a snapshot after every poll cycle.
type Broadcaster interface {
	Broadcast(snap stove.Snapshot)
}
