package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/guileb/circular-integration/cmd"
	"github.com/guileb/circular-integration/pkg/hasher"
)

func main() {
	app := &cli.App{
		Name:   "circular-controller",
		Usage:  "controller for a circular pellet stove on a local winet module",
		Action: cmd.StoveCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "stove-host",
				EnvVars: []string{"STOVE_HOST"},
				Value:   "",
			},
			&cli.DurationFlag{
				Name:    "poll-interval",
				EnvVars: []string{"POLL_INTERVAL"},
				Value:   15 * time.Second,
			},
			&cli.BoolFlag{
				Name:    "eco-mode-drive",
				EnvVars: []string{"ECO_MODE_DRIVE"},
				Value:   false,
			},
			&cli.Float64Flag{
				Name:    "delta-eco-temp",
				EnvVars: []string{"DELTA_ECO_TEMP"},
				Value:   2,
			},
			&cli.BoolFlag{
				Name:    "auto-regulate",
				EnvVars: []string{"AUTO_REGULATE"},
				Value:   false,
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-topic-prefix",
				EnvVars: []string{"MQTT_TOPIC_PREFIX"},
				Value:   "homeassistant",
			},
			&cli.StringFlag{
				Name:    "api-address",
				EnvVars: []string{"API_ADDRESS"},
				Value:   "0.0.0.0:8000",
			},
			&cli.StringFlag{
				Name:    "api-password-hash",
				EnvVars: []string{"API_PASSWORD_HASH"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "INFO",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "hash-password",
				Usage:     "print the bcrypt hash of a password for API_PASSWORD_HASH",
				ArgsUsage: "<password>",
				Action: func(ctx *cli.Context) error {
					password := ctx.Args().First()
					if password == "" {
						return errors.New("password argument is required")
					}
					hash, err := hasher.HashPassword([]byte(password))
					if err != nil {
						return err
					}
					fmt.Println(hash)
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
