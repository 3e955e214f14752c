package stove

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/guileb/circular-integration/internal/pkg/config"
	"github.com/guileb/circular-integration/internal/pkg/winet"
)

// Value bounds from the stove web UI. Setters clamp silently.
const (
	MinPower = 1
	MaxPower = 5

	MinFanSpeed = 0
	MaxFanSpeed = 6 // 6 = auto

	MinThermostatTemp = 5.0
	MaxThermostatTemp = 40.0

	MinDeltaEcoTemp = 0.0
	MaxDeltaEcoTemp = 5.0
)

func clamp(value, lower, upper float64) float64 {
	return max(lower, min(value, upper))
}

// registerAPI is the slice of the winet client the control layer needs.
type registerAPI interface {
	GetRegisters(ctx context.Context, key winet.RegisterKey, category winet.RegisterCategory) (*winet.GetRegistersResult, error)
	SetRegister(ctx context.Context, reg winet.Register, value int) error
}

// Client owns one stove: its merged state and the command surface on top of
// raw register writes. One instance per device session.
type Client struct {
	api    registerAPI
	state  *State
	logger *zap.Logger

	polling     atomic.Bool
	failedPolls atomic.Int32

	mu                 sync.Mutex
	ecoModeEnabled     bool
	autoRegulate       bool
	deltaEco           float64
	heatingRequests    int
	desiredTemperature float64
}

func NewClient(api registerAPI, cfg *config.StoveConfig) *Client {
	return &Client{
		api:            api,
		state:          NewState(),
		logger:         zap.L(),
		ecoModeEnabled: cfg.EcoModeDrive,
		autoRegulate:   cfg.AutoRegulate,
		deltaEco:       clamp(cfg.DeltaEcoTemp, MinDeltaEcoTemp, MaxDeltaEcoTemp),
	}
}

func (c *Client) State() *State {
	return c.state
}

func (c *Client) Snapshot() Snapshot {
	return c.state.Snapshot()
}

// DrainChanges returns the state fields touched since the previous drain.
func (c *Client) DrainChanges() []string {
	return c.state.Drain()
}

func (c *Client) FailedPollAttempts() int32 {
	return c.failedPolls.Load()
}

func (c *Client) SetPower(ctx context.Context, value int) error {
	v := int(clamp(float64(value), MinPower, MaxPower))
	c.logger.Debug("set power", zap.Int("value", v))
	return c.api.SetRegister(ctx, winet.RegisterPowerSet, v)
}

func (c *Client) SetFanSpeed(ctx context.Context, value int) error {
	v := int(clamp(float64(value), MinFanSpeed, MaxFanSpeed))
	c.logger.Debug("set fan speed", zap.Int("value", v))
	return c.api.SetRegister(ctx, winet.RegisterFanARSpeed, v)
}

func (c *Client) SetTemperature(ctx context.Context, value float64) error {
	v := clamp(value, MinThermostatTemp, MaxThermostatTemp)
	c.mu.Lock()
	c.desiredTemperature = v
	c.mu.Unlock()
	c.logger.Debug("set temperature", zap.Float64("value", v))
	return c.api.SetRegister(ctx, winet.RegisterTemperatureSet, int(v))
}

// SetDeltaTemp configures how far above the read temperature the eco drive
// pushes the setpoint when waking the stove.
func (c *Client) SetDeltaTemp(value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deltaEco = clamp(value, MinDeltaEcoTemp, MaxDeltaEcoTemp)
}

// TurnOn toggles the stove on via the change-status key. The protocol cannot
// address "on" and "off" separately, so the call is skipped when the stove
// already reports any non-off state.
func (c *Client) TurnOn(ctx context.Context) error {
	if c.state.IsOn() {
		c.logger.Debug("stove already on")
		return nil
	}
	c.logger.Debug("turning stove on")
	_, err := c.api.GetRegisters(ctx, winet.KeyChangeStatus, winet.CategoryNone)
	return err
}

func (c *Client) TurnOff(ctx context.Context) error {
	if !c.state.IsOn() {
		c.logger.Debug("stove already off")
		return nil
	}
	c.logger.Debug("turning stove off")
	_, err := c.api.GetRegisters(ctx, winet.KeyChangeStatus, winet.CategoryNone)
	return err
}

// StartEcoModeHeating records the intent to leave eco stop. The next poll
// cycles carry it out, see ecoModeDrive.
func (c *Client) StartEcoModeHeating() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.heatingRequests++
	c.logger.Debug("eco mode heating requested", zap.Int("pending", c.heatingRequests))
}

// SetTemperatureAskByExternalEntity forwards a setpoint driven by an external
// thermostat entity. It only writes while auto regulation is enabled, the
// stove is actively heating and the value actually deviates from the known
// setpoint, so the stove is neither woken up nor spammed with redundant
// writes.
func (c *Client) SetTemperatureAskByExternalEntity(ctx context.Context, value float64) error {
	c.mu.Lock()
	auto := c.autoRegulate
	c.mu.Unlock()
	if !auto || !c.state.IsHeating() || value == c.state.TemperatureSet() {
		return nil
	}
	c.logger.Debug("external entity temperature request", zap.Float64("value", value))
	return c.SetTemperature(ctx, value)
}

// ecoModeDrive runs the two-phase eco stop handshake. The firmware only
// leaves eco stop when the setpoint exceeds the read temperature by more than
// its internal delta, so a pending heating request first forces the setpoint
// to read+delta, then restores the desired setpoint once the stove confirms
// by reporting WORK.
func (c *Client) ecoModeDrive(ctx context.Context) {
	c.mu.Lock()
	enabled := c.ecoModeEnabled
	pending := c.heatingRequests
	delta := c.deltaEco
	desired := c.desiredTemperature
	c.mu.Unlock()

	if !enabled || pending == 0 {
		return
	}

	switch {
	case c.state.IsEcoStop() && pending == 1:
		read := c.state.TemperatureRead()
		if gap := c.state.TemperatureSet() - read; gap <= delta {
			forced := clamp(read+delta, MinThermostatTemp, MaxThermostatTemp)
			c.logger.Info("forcing stove out of eco stop",
				zap.Float64("read", read),
				zap.Float64("gap", gap),
				zap.Float64("setpoint", forced))
			if err := c.api.SetRegister(ctx, winet.RegisterTemperatureSet, int(forced)); err != nil {
				c.logger.Error("eco mode force start failed", zap.Error(err))
			}
		}
	case c.state.IsHeating():
		c.mu.Lock()
		c.heatingRequests = 0
		c.mu.Unlock()
		if desired == 0 {
			desired = c.state.TemperatureSet()
		}
		c.logger.Info("eco mode start confirmed, restoring setpoint", zap.Float64("setpoint", desired))
		if err := c.SetTemperature(ctx, desired); err != nil {
			c.logger.Error("restoring setpoint failed", zap.Error(err))
		}
	}
}

// pollSteps is the fixed category sequence of one cycle: full subscribe,
// then core status, hardware configuration and alarms.
var pollSteps = []struct {
	key      winet.RegisterKey
	category winet.RegisterCategory
}{
	{winet.KeySubscribe, winet.CategoryNone},
	{winet.KeyPollData, winet.CategoryPoll2},
	{winet.KeyPollData, winet.CategoryPoll4},
	{winet.KeyPollData, winet.CategoryPoll6},
}

// UpdateData runs one full poll cycle and finishes with the eco mode drive.
// A cycle already in flight wins: the re-entrant call is dropped, not queued.
// A single failing category is logged and the rest of the cycle continues.
func (c *Client) UpdateData(ctx context.Context) error {
	if !c.polling.CompareAndSwap(false, true) {
		c.logger.Warn("poll cycle already in flight, dropping")
		return nil
	}
	defer c.polling.Store(false)

	failed := 0
	for _, step := range pollSteps {
		result, err := c.api.GetRegisters(ctx, step.key, step.category)
		if err != nil {
			failed++
			c.logger.Error("poll category failed",
				zap.String("key", step.key.String()),
				zap.String("category", step.category.String()),
				zap.Error(err))
			continue
		}
		if result == nil {
			// Soft rejection, skip this category for the cycle.
			continue
		}
		c.state.Update(result, step.category)
	}

	if failed == len(pollSteps) {
		n := c.failedPolls.Add(1)
		return fmt.Errorf("poll cycle failed entirely (%d consecutive): %w", n, winet.ErrConnection)
	}
	if failed > 0 {
		c.failedPolls.Add(1)
	} else {
		c.failedPolls.Store(0)
	}

	c.ecoModeDrive(ctx)
	return nil
}
