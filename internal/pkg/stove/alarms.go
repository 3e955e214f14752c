package stove

// Alarm is a fault code from register 3. The table was reverse engineered
// from the web UI and is still provisional: some codes (7, 9) changed meaning
// between firmware dumps, so the messages live in a swappable table rather
// than in the type.
type Alarm int

const (
	AlarmNone                  Alarm = 0
	AlarmBlackout              Alarm = 1
	AlarmSmokeProbeFailure     Alarm = 2
	AlarmSmokeOvertemperature  Alarm = 3
	AlarmExtractorMalfunction  Alarm = 4
	AlarmFailedIgnition        Alarm = 5
	AlarmNoPellets             Alarm = 6
	AlarmOpenPelletCompartment Alarm = 7
	AlarmLackOfPressure        Alarm = 8
	AlarmThermalSafety         Alarm = 9
	AlarmExtractorTurn         Alarm = 12
	AlarmTarierePhase          Alarm = 14
	AlarmTariereTriac          Alarm = 15
	AlarmCleanerFailure        Alarm = 19
	AlarmTariereAlarm          Alarm = 25
)

// AlarmMessages maps fault codes to display text. Exported so deployments
// with different firmware can override entries at startup.
var AlarmMessages = map[Alarm]string{
	AlarmNone:                  "No alarm",
	AlarmBlackout:              "Blackout",
	AlarmSmokeProbeFailure:     "Smoke probe failure",
	AlarmSmokeOvertemperature:  "Smoke over-temperature",
	AlarmExtractorMalfunction:  "Extractor malfunction",
	AlarmFailedIgnition:        "Failed ignition",
	AlarmNoPellets:             "No pellets",
	AlarmOpenPelletCompartment: "Pellet compartment is open",
	AlarmLackOfPressure:        "Lack of pressure",
	AlarmThermalSafety:         "Thermal safety",
	AlarmExtractorTurn:         "Extractor turn fault",
	AlarmTarierePhase:          "Auger phase fault",
	AlarmTariereTriac:          "Auger triac fault",
	AlarmCleanerFailure:        "Cleaner failure",
	AlarmTariereAlarm:          "Auger alarm",
}

func (a Alarm) Message() string {
	if msg, ok := AlarmMessages[a]; ok {
		return msg
	}
	return "Unknown"
}
