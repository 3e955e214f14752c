package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"

	"github.com/guileb/circular-integration/internal/pkg/model"
)

var configuredDevices = make(map[string]struct{})

func (s *service) Write(ctx context.Context, data []map[string]any) error {
	for _, d := range data {
		if err := s.publishSensor(d); err != nil {
			return err
		}
	}
	return nil
}

// RegisterDevice announces the stove's sensors on the Home Assistant
// discovery topic. Retained so a restarted broker keeps the config.
func (s *service) RegisterDevice(device *model.Device) error {
	if _, exists := configuredDevices[device.ID]; exists {
		return nil
	}

	identifier := device.ID
	for _, sensor := range model.SensorSlugs {
		if err := s.publishConfig(device, identifier, sensor); err != nil {
			return err
		}
	}
	configuredDevices[device.ID] = struct{}{}
	return nil
}

func (s *service) publishConfig(device *model.Device, identifier, sensor string) error {
	topic := fmt.Sprintf("%s/sensor/%s/%s/config", s.topicPrefix, identifier, sensor)
	payload, err := json.Marshal(registerMsg(device, identifier, sensor, s.topicPrefix))
	if err != nil {
		return err
	}
	token := s.client.Publish(topic, 1, true, payload)
	if err := token.Error(); err != nil {
		return err
	}
	token.WaitTimeout(time.Second * 5)
	return token.Error()
}

func (s *service) publishSensor(data map[string]any) error {
	isTextSensor := model.TextSensors.HasSlug(data["slug"].(string))
	topic := fmt.Sprintf("%s/sensor/%s/%s/state", s.topicPrefix, data["identifier"], data["slug"].(string))

	payload := map[string]string{
		"value": data["value"].(string),
	}
	if !isTextSensor {
		payload["unit_of_measurement"], _ = data["unit_of_measurement"].(string)
	}

	publishData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, publishData)
	if token.WaitTimeout(time.Second * 10) {
		return token.Error()
	}
	return token.Error()
}

func registerMsg(device *model.Device, identifier, sensor, prefix string) model.RegisterMessage {
	name := fmt.Sprintf("%s %s", device.Model, device.Name)
	return model.RegisterMessage{
		Tilda:      fmt.Sprintf("%s/sensor/%s/%s", prefix, identifier, sensor),
		Name:       fmt.Sprintf("%s %s", name, sensor),
		ID:         strings.ToLower(fmt.Sprintf("%s_%s", identifier, sensor)),
		StateTopic: "~/state",
		Device: model.RegisterDevice{
			Name:         name,
			Identifiers:  []string{identifier},
			Model:        device.Model,
			Manufacturer: "Ravelli",
		},
	}
}

// DeviceSlug derives the topic identifier for a stove from its model and
// configured name.
func DeviceSlug(productModel, name string) string {
	return strings.ReplaceAll(slug.Make(fmt.Sprintf("%s %s", productModel, name)), "-", "_")
}
