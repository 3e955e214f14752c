package stove

// Status is the operating state reported by register 2. Codes 3 and 10 show
// up in the web UI firmware but have no known meaning.
type Status int

const (
	StatusUnknown         Status = -1
	StatusOff             Status = 0
	StatusWaitForFlame    Status = 1
	StatusPowerOn         Status = 2
	StatusReserved3       Status = 3
	StatusStableFlame     Status = 4
	StatusWork            Status = 5
	StatusBrazierCleaning Status = 6
	StatusFinalCleaning   Status = 7
	StatusEcoStop         Status = 8
	StatusModula          Status = 9
	StatusReserved10      Status = 10
	StatusAlarm           Status = 11
)

// statusMessages holds the display labels used by the stove web UI. Kept
// outside the type so hosts can render their own.
var statusMessages = map[Status]string{
	StatusOff:             "Off",
	StatusWaitForFlame:    "Waiting flame",
	StatusPowerOn:         "Power on",
	StatusReserved3:       "Unknown",
	StatusStableFlame:     "Stable flame",
	StatusWork:            "Working",
	StatusBrazierCleaning: "Brazier cleaning",
	StatusFinalCleaning:   "Final cleaning",
	StatusEcoStop:         "Eco stop",
	StatusModula:          "Modula",
	StatusReserved10:      "Unknown",
	StatusAlarm:           "Alarm",
	StatusUnknown:         "Unknown",
}

func (s Status) Message() string {
	if msg, ok := statusMessages[s]; ok {
		return msg
	}
	return "Unknown"
}

// statusFromRegister maps a raw register value onto the closed enum; codes
// outside the table collapse to StatusUnknown.
func statusFromRegister(value int) Status {
	if _, ok := statusMessages[Status(value)]; ok {
		return Status(value)
	}
	return StatusUnknown
}
