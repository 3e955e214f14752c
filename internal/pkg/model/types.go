package model

type (
	TextSensor  string
	TextSensorz []TextSensor
)

func (t TextSensor) String() string {
	return string(t)
}

func (ts TextSensorz) HasSlug(slug string) bool {
	for _, t := range ts {
		if t.String() == slug {
			return true
		}
	}
	return false
}

const (
	StatusTextSensor TextSensor = "status"
	AlarmsTextSensor TextSensor = "alarms"
	NameTextSensor   TextSensor = "name"
	ModelTextSensor  TextSensor = "model"
)

// TextSensors report state words rather than measurements; publishers omit
// the unit for these.
var TextSensors = TextSensorz{
	StatusTextSensor,
	AlarmsTextSensor,
	NameTextSensor,
	ModelTextSensor,
}

// SensorSlugs is every sensor announced through discovery.
var SensorSlugs = []string{
	"status",
	"alarms",
	"temperature_read",
	"temperature_set",
	"power_set",
	"fan_speed",
}
