package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileb/circular-integration/internal/pkg/model"
	"github.com/guileb/circular-integration/internal/pkg/stove"
)

type publisherMock struct {
	writes  [][]map[string]any
	devices []*model.Device

	WriteFunc func(data []map[string]any) error
}

func (m *publisherMock) Write(_ context.Context, data []map[string]any) error {
	m.writes = append(m.writes, data)
	if m.WriteFunc != nil {
		return m.WriteFunc(data)
	}
	return nil
}

func (m *publisherMock) RegisterDevice(device *model.Device) error {
	m.devices = append(m.devices, device)
	return nil
}

func resetPublishers(t *testing.T) *publisherMock {
	t.Helper()
	registeredPublishers = make(map[string]publisher)
	mock := &publisherMock{}
	require.NoError(t, Register(t.Name(), mock))
	return mock
}

func testSnapshot() stove.Snapshot {
	return stove.Snapshot{
		Name:            "living-room",
		Status:          "Working",
		Alarms:          []string{"No alarm"},
		TemperatureRead: 18.5,
		TemperatureSet:  21,
		PowerSet:        3,
		FanSpeed:        4,
	}
}

func TestRegister_RejectsDuplicates(t *testing.T) {
	registeredPublishers = make(map[string]publisher)
	require.NoError(t, Register("mqtt", &publisherMock{}))
	assert.ErrorIs(t, Register("mqtt", &publisherMock{}), errAlreadyRegistered)
	assert.Equal(t, []string{"mqtt"}, Registered())
}

func TestFromSnapshot_MapsChangedFields(t *testing.T) {
	statuses := FromSnapshot(testSnapshot(), []string{
		stove.FieldStatus,
		stove.FieldTemperatureRead,
		stove.FieldTemperatureSet,
		stove.FieldPowerSet,
		stove.FieldFanSpeed,
		stove.FieldAlarms,
	})

	assert.Equal(t, []model.SensorStatus{
		{Name: "status", Slug: "status", Value: "Working"},
		{Name: "temperature read", Slug: "temperature_read", Value: "18.5", Unit: "°C"},
		{Name: "temperature set", Slug: "temperature_set", Value: "21.0", Unit: "°C"},
		{Name: "power set", Slug: "power_set", Value: "3"},
		{Name: "fan speed", Slug: "fan_speed", Value: "4"},
		{Name: "alarms", Slug: "alarms", Value: "No alarm"},
	}, statuses)
}

func TestFromSnapshot_SkipsUnmappedFields(t *testing.T) {
	statuses := FromSnapshot(testSnapshot(), []string{stove.FieldFanConfiguration, stove.FieldStatus})
	require.Len(t, statuses, 1)
	assert.Equal(t, "status", statuses[0].Slug)
}

func TestPublishData_DeliversPayloads(t *testing.T) {
	mock := resetPublishers(t)
	device := model.Device{ID: "circular_" + t.Name()}

	statuses := FromSnapshot(testSnapshot(), []string{stove.FieldStatus, stove.FieldTemperatureRead})
	require.NoError(t, PublishData(context.Background(), device, statuses))

	require.Len(t, mock.writes, 1)
	require.Len(t, mock.writes[0], 2)

	status := mock.writes[0][0]
	assert.Equal(t, "Working", status["value"])
	assert.Equal(t, "status", status["slug"])
	assert.Equal(t, device.ID, status["identifier"])
	assert.NotContains(t, status, "unit_of_measurement", "text sensors carry no unit")

	temperature := mock.writes[0][1]
	assert.Equal(t, "18.5", temperature["value"])
	assert.Equal(t, "°C", temperature["unit_of_measurement"])
}

func TestPublishData_DeduplicatesUnchangedValues(t *testing.T) {
	mock := resetPublishers(t)
	device := model.Device{ID: "circular_" + t.Name()}
	statuses := FromSnapshot(testSnapshot(), []string{stove.FieldStatus})

	require.NoError(t, PublishData(context.Background(), device, statuses))
	require.Len(t, mock.writes, 1)

	// Same value again, nothing delivered.
	require.NoError(t, PublishData(context.Background(), device, statuses))
	assert.Len(t, mock.writes, 1)

	// A moved value goes out again.
	snap := testSnapshot()
	snap.Status = "Eco stop"
	require.NoError(t, PublishData(context.Background(), device, FromSnapshot(snap, []string{stove.FieldStatus})))
	assert.Len(t, mock.writes, 2)
}

func TestPublishData_PublisherFailureDoesNotAbort(t *testing.T) {
	mock := resetPublishers(t)
	mock.WriteFunc = func([]map[string]any) error { return assert.AnError }
	device := model.Device{ID: "circular_" + t.Name()}

	err := PublishData(context.Background(), device, FromSnapshot(testSnapshot(), []string{stove.FieldStatus}))
	assert.NoError(t, err, "delivery failures are logged, not returned")
}

func TestRegisterDevice_FansOut(t *testing.T) {
	mock := resetPublishers(t)
	device := &model.Device{ID: "circular_stove", Model: "Circular", Name: "stove"}

	require.NoError(t, RegisterDevice(device))
	require.Len(t, mock.devices, 1)
	assert.Equal(t, device, mock.devices[0])
}
