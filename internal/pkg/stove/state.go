package stove

import (
	"fmt"
	"sort"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/guileb/circular-integration/internal/pkg/winet"
)

// Field names reported through the changed-fields set.
const (
	FieldStatus           = "status"
	FieldTemperatureRead  = "temperature_read"
	FieldTemperatureSet   = "temperature_set"
	FieldPowerSet         = "power_set"
	FieldAlarms           = "alarms"
	FieldFanSpeed         = "fan_speed"
	FieldFanConfiguration = "fan_configuration"
)

// RegisterNotFoundError reports a register id missing from the merged
// register map. On a category poll this means the category and register
// table disagree, not a transient fault.
type RegisterNotFoundError struct {
	Register winet.Register
}

func (e *RegisterNotFoundError) Error() string {
	return fmt.Sprintf("register %d not found in data", e.Register.Int())
}

// State is the merged view over every poll reply received this session. Each
// reply only carries a category's subset, so values accumulate here with
// last-write-wins semantics, like the memory banks the protocol implies.
type State struct {
	mu     sync.Mutex
	logger *zap.Logger

	registers map[winet.Register]int

	signal    int
	name      string
	alarmRaw  string
	authLevel int
	model     ProductModel

	status          Status
	alarms          []Alarm
	temperatureRead float64
	temperatureSet  float64
	powerSet        int
	fanSpeed        int

	changed map[string]struct{}
}

func NewState() *State {
	return &State{
		logger:    zap.L(),
		registers: make(map[winet.Register]int),
		status:    StatusUnknown,
		changed:   make(map[string]struct{}),
	}
}

// Update merges one poll reply into the accumulated registers and decodes
// the fields belonging to its category. Merge, decode and change tracking
// happen under one lock so a concurrent Drain never sees a half-applied
// cycle.
func (s *State) Update(res *winet.GetRegistersResult, category winet.RegisterCategory) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := false
	for _, param := range res.Params {
		if len(param) < 2 {
			continue
		}
		id, value := winet.Register(param[0]), param[1]
		if old, ok := s.registers[id]; !ok || old != value {
			merged = true
		}
		s.registers[id] = value
	}

	s.signal = res.Signal
	s.name = res.Name
	s.alarmRaw = res.Alarm
	s.authLevel = res.AuthLevel
	s.model = ProductModel(res.Model)

	switch category {
	case winet.CategoryPoll2:
		s.decodeStatus()
		s.decodeTemperatureRead()
		s.decodeTemperatureSet()
		s.decodePowerSet()
	case winet.CategoryPoll6:
		s.decodeAlarms()
		s.decodeFanSpeed()
	case winet.CategoryPoll4:
		// No decoded fields yet; surface that the fan configuration moved.
		if merged {
			s.markChanged(FieldFanConfiguration)
		}
	}
}

// Register returns the merged value of one register id. Absence is an error,
// distinct from a legitimately zero value.
func (s *State) Register(id winet.Register) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register(id)
}

func (s *State) register(id winet.Register) (int, error) {
	value, ok := s.registers[id]
	if !ok {
		return 0, &RegisterNotFoundError{Register: id}
	}
	return value, nil
}

func (s *State) markChanged(field string) {
	s.changed[field] = struct{}{}
}

func (s *State) decodeStatus() {
	value, err := s.register(winet.RegisterStatus)
	if err != nil {
		// Previous status stays authoritative for this cycle.
		s.logger.Warn("skipping status decode", zap.Error(err))
		return
	}
	if status := statusFromRegister(value); status != s.status {
		s.status = status
		s.markChanged(FieldStatus)
	}
}

func (s *State) decodeTemperatureRead() {
	value, err := s.register(winet.RegisterTemperatureProbe)
	if err != nil {
		s.logger.Warn("skipping temperature read decode", zap.Error(err))
		return
	}
	if t := float64(value); t != s.temperatureRead {
		s.temperatureRead = t
		s.markChanged(FieldTemperatureRead)
	}
}

func (s *State) decodeTemperatureSet() {
	value, err := s.register(winet.RegisterTemperatureSet)
	if err != nil {
		s.logger.Warn("skipping temperature set decode", zap.Error(err))
		return
	}
	if t := float64(value); t != s.temperatureSet {
		s.temperatureSet = t
		s.markChanged(FieldTemperatureSet)
	}
}

func (s *State) decodePowerSet() {
	value, err := s.register(winet.RegisterPowerSet)
	if err != nil {
		s.logger.Warn("skipping power decode", zap.Error(err))
		return
	}
	if value != s.powerSet {
		s.powerSet = value
		s.markChanged(FieldPowerSet)
	}
}

func (s *State) decodeFanSpeed() {
	value, err := s.register(winet.RegisterFanARSpeed)
	if err != nil {
		s.logger.Warn("skipping fan speed decode", zap.Error(err))
		return
	}
	if value != s.fanSpeed {
		s.fanSpeed = value
		s.markChanged(FieldFanSpeed)
	}
}

// decodeAlarms replaces the alarm set with the single code the register
// carries. The register looks like a bitfield but the web UI only ever shows
// one code, so a richer expansion would be guesswork.
func (s *State) decodeAlarms() {
	value, err := s.register(winet.RegisterAlarmsBits)
	if err != nil {
		s.logger.Warn("skipping alarm decode", zap.Error(err))
		return
	}
	if value < 0 {
		s.logger.Error("cannot decode alarms", zap.Int("value", value))
		return
	}
	alarm := Alarm(value)
	if len(s.alarms) != 1 || s.alarms[0] != alarm {
		s.alarms = []Alarm{alarm}
		s.markChanged(FieldAlarms)
	}
}

// Drain returns the fields touched since the previous drain and clears the
// set. A second drain right after returns nothing.
func (s *State) Drain() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	fields := lo.Keys(s.changed)
	sort.Strings(fields)
	s.changed = make(map[string]struct{})
	return fields
}

func (s *State) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Derived views, recomputed on every read.

func (s *State) IsOn() bool {
	return s.Status() != StatusOff
}

func (s *State) IsHeating() bool {
	return s.Status() == StatusWork
}

func (s *State) IsEcoStop() bool {
	return s.Status() == StatusEcoStop
}

func (s *State) ErrorOffline() bool {
	return s.Status() == StatusAlarm
}

func (s *State) HasAlarm(a Alarm) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo.Contains(s.alarms, a)
}

func (s *State) TemperatureRead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperatureRead
}

func (s *State) TemperatureSet() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.temperatureSet
}

func (s *State) PowerSet() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.powerSet
}

func (s *State) FanSpeed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fanSpeed
}

func (s *State) Signal() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signal
}

func (s *State) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *State) Model() ProductModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Snapshot is the plain read-only view handed to host layers.
type Snapshot struct {
	Name            string   `json:"name"`
	Model           string   `json:"model"`
	Signal          int      `json:"signal"`
	Status          string   `json:"status"`
	StatusCode      int      `json:"status_code"`
	Alarms          []string `json:"alarms"`
	TemperatureRead float64  `json:"temperature_read"`
	TemperatureSet  float64  `json:"temperature_set"`
	PowerSet        int      `json:"power_set"`
	FanSpeed        int      `json:"fan_speed"`
	On              bool     `json:"on"`
	Heating         bool     `json:"heating"`
	EcoStop         bool     `json:"eco_stop"`
	Offline         bool     `json:"offline"`
}

func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Name:       s.name,
		Model:      s.model.Message(),
		Signal:     s.signal,
		Status:     s.status.Message(),
		StatusCode: int(s.status),
		Alarms: lo.Map(s.alarms, func(a Alarm, _ int) string {
			return a.Message()
		}),
		TemperatureRead: s.temperatureRead,
		TemperatureSet:  s.temperatureSet,
		PowerSet:        s.powerSet,
		FanSpeed:        s.fanSpeed,
		On:              s.status != StatusOff,
		Heating:         s.status == StatusWork,
		EcoStop:         s.status == StatusEcoStop,
		Offline:         s.status == StatusAlarm,
	}
}
