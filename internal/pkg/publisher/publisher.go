package publisher

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/guileb/circular-integration/internal/pkg/model"
	"github.com/guileb/circular-integration/internal/pkg/stove"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var (
	registeredPublishers = make(map[string]publisher)
	sensors              sync.Map
)

type publisher interface {
	// Write delivers sensor payloads to one transport (mqtt, ...).
	Write(ctx context.Context, data []map[string]any) error
	RegisterDevice(device *model.Device) error
}

func Register(name string, p publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = p
	return nil
}

// sensorUnits maps measurement fields to their Home Assistant unit. Fields
// absent here and not in model.TextSensors publish without a unit.
var sensorUnits = map[string]string{
	stove.FieldTemperatureRead: "°C",
	stove.FieldTemperatureSet:  "°C",
	"signal":                   "%",
}

// FromSnapshot turns the drained changed fields of a snapshot into sensor
// statuses. Fields with no sensor mapping (fan configuration) are skipped.
func FromSnapshot(snap stove.Snapshot, fields []string) []model.SensorStatus {
	statuses := make([]model.SensorStatus, 0, len(fields))
	for _, field := range fields {
		value, ok := fieldValue(snap, field)
		if !ok {
			continue
		}
		statuses = append(statuses, model.SensorStatus{
			Name:  strings.ReplaceAll(field, "_", " "),
			Slug:  field,
			Value: value,
			Unit:  sensorUnits[field],
		})
	}
	return statuses
}

func fieldValue(snap stove.Snapshot, field string) (string, bool) {
	switch field {
	case stove.FieldStatus:
		return snap.Status, true
	case stove.FieldTemperatureRead:
		return strconv.FormatFloat(snap.TemperatureRead, 'f', 1, 64), true
	case stove.FieldTemperatureSet:
		return strconv.FormatFloat(snap.TemperatureSet, 'f', 1, 64), true
	case stove.FieldPowerSet:
		return strconv.Itoa(snap.PowerSet), true
	case stove.FieldFanSpeed:
		return strconv.Itoa(snap.FanSpeed), true
	case stove.FieldAlarms:
		return strings.Join(snap.Alarms, ", "), true
	default:
		return "", false
	}
}

// PublishData fans sensor statuses out to every registered publisher,
// skipping values that did not move since their last publish.
func PublishData(ctx context.Context, device model.Device, statuses []model.SensorStatus) error {
	data := make([]map[string]any, 0, len(statuses))
	for _, status := range statuses {
		if !shouldUpdate(device.ID, status.Slug, status.Value) {
			continue
		}
		payload := map[string]any{
			"value":      status.Value,
			"slug":       status.Slug,
			"timestamp":  time.Now(),
			"identifier": device.ID,
		}
		if !model.TextSensors.HasSlug(status.Slug) {
			payload["unit_of_measurement"] = status.Unit
		}
		data = append(data, payload)
	}
	if len(data) == 0 {
		return nil
	}
	for name, p := range registeredPublishers {
		if err := p.Write(ctx, data); err != nil {
			zap.L().Error("failed to publish data", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("updated sensors", zap.Int("count", len(data)), zap.String("publisher", name))
	}
	return nil
}

func RegisterDevice(device *model.Device) error {
	for name, p := range registeredPublishers {
		if err := p.RegisterDevice(device); err != nil {
			zap.L().Error("failed to register device", zap.Error(err), zap.String("publisher", name))
			continue
		}
		zap.L().Debug("registered device", zap.String("device", device.ID), zap.String("publisher", name))
	}
	return nil
}

// Registered reports the names of the active publishers.
func Registered() []string {
	return lo.Keys(registeredPublishers)
}

func shouldUpdate(identifier, slug, newValue string) bool {
	key := fmt.Sprintf("%s_%s", identifier, slug)
	oldValue, exists := sensors.Load(key)
	if exists && strings.EqualFold(newValue, oldValue.(string)) {
		return false
	}
	if !exists {
		zap.L().Info("configured sensor",
			zap.String("device", identifier),
			zap.String("sensor", slug),
			zap.String("value", newValue))
	}
	sensors.Store(key, newValue)
	return true
}
