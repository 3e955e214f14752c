package winet

import "strconv"

// Register is a numbered slot in the stove's control memory. Ids were lifted
// from the Winet web UI javascript; unknown ids are polled but not decoded.
type Register int

func (r Register) Int() int { return int(r) }

// Poll category 2: core status and temperatures.
const (
	RegisterStatus           Register = 2
	RegisterAlarmsBits       Register = 3
	RegisterUnknown2_1       Register = 5
	RegisterTemperatureProbe Register = 6
	RegisterTemperatureInt   Register = 7
	RegisterTemperatureInt1  Register = 8
	RegisterTemperatureInt2  Register = 9
	RegisterTemperatureInt3  Register = 10
	RegisterUnknown2_2       Register = 37
	RegisterTemperatureSet   Register = 50
	RegisterPowerSet         Register = 51
)

// Poll category 4: fan and hardware configuration.
const (
	RegisterUnknown4_1 Register = 60
	RegisterUnknown4_2 Register = 61
	RegisterUnknown4_3 Register = 62
	RegisterUnknown4_4 Register = 63
	RegisterUnknown4_5 Register = 64
)

// Poll category 6: alarms and fan speeds.
const (
	RegisterFanARSpeed Register = 187
	RegisterFanAVSpeed Register = 188
	RegisterActTExt    Register = 191
)

// RegisterKey is the "key" parameter of the get-registers endpoint.
type RegisterKey string

func (k RegisterKey) String() string {
	return string(k)
}

const (
	KeySubscribe    RegisterKey = "019"
	KeyPollData     RegisterKey = "020"
	KeyChangeStatus RegisterKey = "022"
)

// RegisterCategory is the "category" parameter of the get-registers endpoint.
// CategoryNone omits the parameter entirely (full subscribe or status toggle).
type RegisterCategory int

const (
	CategoryNone  RegisterCategory = -1
	CategoryPoll2 RegisterCategory = 2
	CategoryPoll4 RegisterCategory = 4
	CategoryPoll6 RegisterCategory = 6
)

func (c RegisterCategory) String() string {
	return strconv.Itoa(int(c))
}
