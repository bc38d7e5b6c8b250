package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/farmassist/internal/config"
)

func TestSubcommandsRegistered(t *testing.T) {
	for _, name := range []string{"serve", "simulate", "ctl"} {
		cmd, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, cmd.Name())
	}
	cmd, _, err := rootCmd.Find([]string{"ctl", "threshold"})
	require.NoError(t, err)
	assert.Equal(t, "threshold", cmd.Name())
}

func TestSimulatorOptionsFromConfig(t *testing.T) {
	logger, _ := test.NewNullLogger()
	opts := simulatorOptions(config.SimulatorConfig{
		FieldID:       "north",
		SensorID:      "s7",
		TickInterval:  time.Second,
		ToggleDelay:   2 * time.Second,
		InitialLevel:  50,
		Threshold:     35,
		AutoMode:      false,
		HistorySize:   4,
		SummaryWindow: 8,
	}, logger)

	assert.Equal(t, "north", opts.FieldID)
	assert.Equal(t, "s7", opts.SensorID)
	assert.Equal(t, 2*time.Second, opts.ToggleDelay)
	assert.Equal(t, 35.0, opts.Threshold)
	assert.False(t, opts.AutoMode)
	assert.Equal(t, 4, opts.HistorySize)
	assert.True(t, opts.SeedHistory)
}

func TestMQTTConfigMapping(t *testing.T) {
	rc := mqttConfig(config.MQTTConfig{Host: "broker", Port: 1884, ClientID: "farm", MaxRetries: 3})
	assert.Equal(t, "broker", rc.Host)
	assert.Equal(t, 1884, rc.Port)
	assert.Equal(t, 3, rc.MaxRetries)
}
