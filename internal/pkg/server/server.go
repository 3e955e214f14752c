package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/guileb/circular-integration/internal/pkg/config"
	"github.com/guileb/circular-integration/internal/pkg/stove"
)

// stoveService is the command surface the api exposes.
type stoveService interface {
	SetPower(ctx context.Context, value int) error
	SetFanSpeed(ctx context.Context, value int) error
	SetTemperature(ctx context.Context, value float64) error
	TurnOn(ctx context.Context) error
	TurnOff(ctx context.Context) error
	StartEcoModeHeating()
	Snapshot() stove.Snapshot
}

type Server struct {
	stove  stoveService
	cfg    *config.ServerConfig
	logger *zap.Logger

	stream *stream
}

func New(svc stoveService, cfg *config.ServerConfig) *Server {
	return &Server{
		stove:  svc,
		cfg:    cfg,
		logger: zap.L(),
		stream: newStream(),
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /stove", s.getState)
	mux.HandleFunc("POST /stove/power", s.postPower)
	mux.HandleFunc("POST /stove/fan", s.postFan)
	mux.HandleFunc("POST /stove/temperature", s.postTemperature)
	mux.HandleFunc("POST /stove/state", s.postState)
	mux.HandleFunc("POST /stove/eco-heating", s.postEcoHeating)
	mux.HandleFunc("GET /ws/state", s.stream.handle)
	return LoggingMiddleware(BasicAuth(s.cfg.PasswordHash)(mux))
}

// Broadcast pushes a snapshot to every websocket subscriber. Invoked by the
// poll loop after each cycle.
func (s *Server) Broadcast(snap stove.Snapshot) {
	s.stream.broadcast(snap)
}

type valuePayload struct {
	Value float64 `json:"value"`
}

type statePayload struct {
	State string `json:"state"` // "on" | "off"
}

func (s *Server) getState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.stove.Snapshot())
}

func (s *Server) postPower(w http.ResponseWriter, r *http.Request) {
	payload, err := unmarshalPayload[valuePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.stove.SetPower(r.Context(), int(payload.Value)); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) postFan(w http.ResponseWriter, r *http.Request) {
	payload, err := unmarshalPayload[valuePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.stove.SetFanSpeed(r.Context(), int(payload.Value)); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) postTemperature(w http.ResponseWriter, r *http.Request) {
	payload, err := unmarshalPayload[valuePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	if err := s.stove.SetTemperature(r.Context(), payload.Value); err != nil {
		handleError(w, err)
		return
	}
	writeSuccess(w)
}

func (s *Server) postState(w http.ResponseWriter, r *http.Request) {
	payload, err := unmarshalPayload[statePayload](r)
	if err != nil {
		handleError(w, err)
		return
	}
	switch payload.State {
	case "on":
		err = s.stove.TurnOn(r.Context())
	case "off":
		err = s.stove.TurnOff(r.Context())
	default:
		http.Error(w, "state must be on or off", http.StatusBadRequest)
		return
	}
	if err != nil {
		handleError(w, err)
		return
	}
	s.logger.Info("stove state switched", zap.String("state", payload.State))
	writeSuccess(w)
}

func (s *Server) postEcoHeating(w http.ResponseWriter, r *http.Request) {
	s.stove.StartEcoModeHeating()
	writeSuccess(w)
}

func unmarshalPayload[T any](r *http.Request) (*T, error) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}
	payload := new(T)
	if err := json.Unmarshal(data, payload); err != nil {
		return nil, err
	}
	return payload, nil
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("success"))
}

func handleError(w http.ResponseWriter, err error) {
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = w.Write([]byte(err.Error()))
}
