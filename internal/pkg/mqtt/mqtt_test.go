package mqtt

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileb/circular-integration/internal/pkg/model"
)

type publishedMessage struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type tokenStub struct{}

func (tokenStub) Wait() bool                     { return true }
func (tokenStub) WaitTimeout(time.Duration) bool { return true }
func (tokenStub) Done() <-chan struct{}          { return nil }
func (tokenStub) Error() error                   { return nil }

type clientStub struct {
	published []publishedMessage
}

func (c *clientStub) IsConnected() bool      { return true }
func (c *clientStub) IsConnectionOpen() bool { return true }
func (c *clientStub) Connect() paho_mqtt.Token {
	return tokenStub{}
}
func (c *clientStub) Disconnect(uint) {}
func (c *clientStub) Publish(topic string, qos byte, retained bool, payload any) paho_mqtt.Token {
	c.published = append(c.published, publishedMessage{
		topic:    topic,
		qos:      qos,
		retained: retained,
		payload:  payload.([]byte),
	})
	return tokenStub{}
}
func (c *clientStub) Subscribe(string, byte, paho_mqtt.MessageHandler) paho_mqtt.Token {
	return tokenStub{}
}
func (c *clientStub) SubscribeMultiple(map[string]byte, paho_mqtt.MessageHandler) paho_mqtt.Token {
	return tokenStub{}
}
func (c *clientStub) Unsubscribe(...string) paho_mqtt.Token     { return tokenStub{} }
func (c *clientStub) AddRoute(string, paho_mqtt.MessageHandler) {}
func (c *clientStub) OptionsReader() paho_mqtt.ClientOptionsReader {
	return paho_mqtt.ClientOptionsReader{}
}

func TestRegisterDevice_PublishesRetainedDiscoveryConfigs(t *testing.T) {
	configuredDevices = make(map[string]struct{})
	stub := &clientStub{}
	s := New(stub, "homeassistant")
	device := &model.Device{ID: "circular_living_room", Model: "Circular", Name: "living-room"}

	require.NoError(t, s.RegisterDevice(device))
	require.Len(t, stub.published, len(model.SensorSlugs))

	first := stub.published[0]
	assert.Equal(t, "homeassistant/sensor/circular_living_room/status/config", first.topic)
	assert.Equal(t, byte(1), first.qos)
	assert.True(t, first.retained)

	var msg model.RegisterMessage
	require.NoError(t, json.Unmarshal(first.payload, &msg))
	assert.Equal(t, "homeassistant/sensor/circular_living_room/status", msg.Tilda)
	assert.Equal(t, "Circular living-room status", msg.Name)
	assert.Equal(t, "circular_living_room_status", msg.ID)
	assert.Equal(t, "~/state", msg.StateTopic)
	assert.Equal(t, []string{"circular_living_room"}, msg.Device.Identifiers)
	assert.Equal(t, "Ravelli", msg.Device.Manufacturer)

	// Registering twice publishes the configs once.
	require.NoError(t, s.RegisterDevice(device))
	assert.Len(t, stub.published, len(model.SensorSlugs))
}

func TestWrite_PublishesStateTopics(t *testing.T) {
	stub := &clientStub{}
	s := New(stub, "homeassistant")

	err := s.Write(context.Background(), []map[string]any{
		{
			"value":               "18.5",
			"slug":                "temperature_read",
			"identifier":          "circular_living_room",
			"unit_of_measurement": "°C",
		},
		{
			"value":      "Working",
			"slug":       "status",
			"identifier": "circular_living_room",
		},
	})
	require.NoError(t, err)
	require.Len(t, stub.published, 2)

	temperature := stub.published[0]
	assert.Equal(t, "homeassistant/sensor/circular_living_room/temperature_read/state", temperature.topic)
	assert.False(t, temperature.retained)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(temperature.payload, &payload))
	assert.Equal(t, "18.5", payload["value"])
	assert.Equal(t, "°C", payload["unit_of_measurement"])

	status := stub.published[1]
	assert.Equal(t, "homeassistant/sensor/circular_living_room/status/state", status.topic)
	payload = nil
	require.NoError(t, json.Unmarshal(status.payload, &payload))
	assert.NotContains(t, payload, "unit_of_measurement", "text sensors carry no unit")
}

func TestDeviceSlug(t *testing.T) {
	assert.Equal(t, "circular_192_168_1_33", DeviceSlug("circular", "192.168.1.33"))
	assert.Equal(t, "circular_living_room", DeviceSlug("Circular", "Living Room"))
}
