package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/guileb/circular-integration/internal/pkg/config"
	"github.com/guileb/circular-integration/internal/pkg/contxt"
	"github.com/guileb/circular-integration/internal/pkg/model"
	"github.com/guileb/circular-integration/internal/pkg/mqtt"
	"github.com/guileb/circular-integration/internal/pkg/publisher"
	"github.com/guileb/circular-integration/internal/pkg/server"
	"github.com/guileb/circular-integration/internal/pkg/stove"
	"github.com/guileb/circular-integration/internal/pkg/winet"
)

// maxFailedPolls mirrors the stove's own web ui, which gives up after ten
// bad cycles and forces a reconnect.
const maxFailedPolls = 10

var (
	errTooManyFailedPolls = errors.New("too many consecutive failed poll cycles")
	errStoveHostRequired  = errors.New("stove host is required")
)

// StoveCommand is the entry point of the controller CLI.
func StoveCommand(ctx *cli.Context) error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	applyFlags(ctx, cfg)

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	if cfg.StoveCfg.Host == "" {
		return errStoveHostRequired
	}

	winetClient := winet.New(cfg.StoveCfg)
	defer winetClient.Close()
	stoveSvc := stove.NewClient(winetClient, cfg.StoveCfg)

	errorChan := make(chan error, 100)
	return run(ctx.Context, cfg, stoveSvc, errorChan, logger)
}

func applyFlags(ctx *cli.Context, cfg *config.Config) {
	if ctx.IsSet("stove-host") {
		cfg.StoveCfg.Host = ctx.String("stove-host")
	}
	if ctx.IsSet("poll-interval") {
		cfg.StoveCfg.PollInterval = ctx.Duration("poll-interval")
	}
	if ctx.IsSet("eco-mode-drive") {
		cfg.StoveCfg.EcoModeDrive = ctx.Bool("eco-mode-drive")
	}
	if ctx.IsSet("delta-eco-temp") {
		cfg.StoveCfg.DeltaEcoTemp = ctx.Float64("delta-eco-temp")
	}
	if ctx.IsSet("auto-regulate") {
		cfg.StoveCfg.AutoRegulate = ctx.Bool("auto-regulate")
	}
	if ctx.IsSet("mqtt-host") {
		cfg.MqttCfg.Host = ctx.String("mqtt-host")
	}
	if ctx.IsSet("mqtt-user") {
		cfg.MqttCfg.Username = ctx.String("mqtt-user")
	}
	if ctx.IsSet("mqtt-pass") {
		cfg.MqttCfg.Password = ctx.String("mqtt-pass")
	}
	if ctx.IsSet("mqtt-topic-prefix") {
		cfg.MqttCfg.TopicPrefix = ctx.String("mqtt-topic-prefix")
	}
	if ctx.IsSet("api-address") {
		cfg.ServerCfg.Address = ctx.String("api-address")
	}
	if ctx.IsSet("api-password-hash") {
		cfg.ServerCfg.PasswordHash = ctx.String("api-password-hash")
	}
	if ctx.IsSet("log-level") {
		cfg.LogLevel = ctx.String("log-level")
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	parsed, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	logCfg.Level = parsed
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	return logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func run(ctx context.Context, cfg *config.Config, svc StoveService, errorChan chan error, logger *zap.Logger) error {
	device := model.Device{
		ID:    mqtt.DeviceSlug("circular", cfg.StoveCfg.Host),
		Model: "Circular",
		Name:  cfg.StoveCfg.Host,
	}

	if cfg.MqttCfg.Host != "" {
		opts := paho_mqtt.NewClientOptions().
			AddBroker(cfg.MqttCfg.Host).
			SetUsername(cfg.MqttCfg.Username).
			SetPassword(cfg.MqttCfg.Password).
			SetClientID("circular-integration")
		m := mqtt.New(paho_mqtt.NewClient(opts), cfg.MqttCfg.TopicPrefix)
		if err := m.Connect(); err != nil {
			return err
		}
		if err := publisher.Register("mqtt", m); err != nil {
			return err
		}
	}
	if err := publisher.RegisterDevice(&device); err != nil {
		logger.Error("registering device", zap.Error(err))
	}
	logger.Info("active publishers", zap.Strings("publishers", publisher.Registered()))

	srv := server.New(svc, cfg.ServerCfg)

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		return pollLoop(ctx, cfg.StoveCfg.PollInterval, svc, device, srv, errorChan)
	})

	eg.Go(func() error {
		httpSrv := &http.Server{
			Handler:      srv.Handler(),
			Addr:         cfg.ServerCfg.Address,
			WriteTimeout: 15 * time.Second,
			ReadTimeout:  15 * time.Second,
		}
		go func() {
			<-ctx.Done()
			_ = httpSrv.Close()
		}()
		return httpSrv.ListenAndServe()
	})

	eg.Go(func() error {
		// handle any async errors from the poll loop
		for {
			select {
			case err := <-errorChan:
				if errors.Is(err, errTooManyFailedPolls) {
					logger.Error("giving up on stove", zap.Error(err))
					return err
				}
				logger.Error("async error", zap.Error(err))
			case <-ctx.Done():
				logger.Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

func pollLoop(ctx context.Context, interval time.Duration, svc StoveService, device model.Device, b Broadcaster, errorChan chan error) error {
	c := cron.New()
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", interval), func() {
		pollCycle(contxt.NewContext(interval), svc, device, b, errorChan)
	}); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		c.Stop()
	}()
	c.Run()
	return ctx.Err()
}

// pollCycle runs one device poll and fans the outcome out: changed fields to
// the publishers, a full snapshot to websocket subscribers.
func pollCycle(ctx context.Context, svc StoveService, device model.Device, b Broadcaster, errorChan chan error) {
	if err := svc.UpdateData(ctx); err != nil {
		zap.L().Error("poll cycle failed", zap.Error(err))
	}
	if svc.FailedPollAttempts() > maxFailedPolls {
		errorChan <- errTooManyFailedPolls
		return
	}

	snap := svc.Snapshot()
	if fields := svc.DrainChanges(); len(fields) > 0 {
		statuses := publisher.FromSnapshot(snap, fields)
		if err := publisher.PublishData(contxt.NewContext(5*time.Second), device, statuses); err != nil {
			errorChan <- err
			return
		}
	}
	if b != nil {
		b.Broadcast(snap)
	}
}
