package mqtt

import (
	"errors"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
)

type service struct {
	client      paho_mqtt.Client
	topicPrefix string
}

func New(client paho_mqtt.Client, topicPrefix string) *service {
	return &service{
		client:      client,
		topicPrefix: topicPrefix,
	}
}

func (s *service) Connect() error {
	token := s.client.Connect()
	if token.WaitTimeout(time.Second * 5) {
		return token.Error()
	}
	if err := token.Error(); err != nil {
		return err
	}
	return errors.New("unable to connect in time")
}
