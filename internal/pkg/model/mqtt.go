package model

// RegisterDevice is the device block of a Home Assistant MQTT discovery
// config message.
type RegisterDevice struct {
	Name         string   `json:"name"`
	Identifiers  []string `json:"identifiers"`
	Model        string   `json:"model"`
	Manufacturer string   `json:"manufacturer"`
}

// RegisterMessage announces one sensor on the discovery topic.
type RegisterMessage struct {
	Tilda      string         `json:"~"`
	Name       string         `json:"name"`
	ID         string         `json:"unique_id"`
	StateTopic string         `json:"state_topic"`
	Device     RegisterDevice `json:"device"`
}

// Device identifies the stove towards publishers.
type Device struct {
	ID    string
	Model string
	Name  string
}

// SensorStatus is one decoded stove field on its way to the publishers.
type SensorStatus struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}
