package main

import (
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/config"
	"github.com/LeonardoBeccarini/farmassist/internal/logging"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq"
)

var configPath string

// loadConfig legge la configurazione e costruisce il logger condiviso.
func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger := logging.New(cfg.App, cfg.Logging)
	return cfg, logger, nil
}

func mqttConfig(cfg config.MQTTConfig) *rabbitmq.RabbitMQConfig {
	return &rabbitmq.RabbitMQConfig{
		Host:           cfg.Host,
		Port:           cfg.Port,
		User:           cfg.User,
		Password:       cfg.Password,
		ClientID:       cfg.ClientID,
		ConnectTimeout: cfg.ConnectTimeout,
		MaxRetries:     int(cfg.MaxRetries),
	}
}
