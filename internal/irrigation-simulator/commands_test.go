package irrigation_simulator

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/messages"
	"github.com/LeonardoBeccarini/farmassist/pkg/rabbitmq/rabbitmqtest"
)

func mountedView(t *testing.T, mutate func(*Options)) *View {
	t.Helper()
	logger, _ := test.NewNullLogger()
	view := NewView(func() *Simulator {
		opts := DefaultOptions()
		opts.Source = &fakeSource{}
		opts.ToggleDelay = 5 * time.Millisecond
		opts.TickInterval = time.Hour
		opts.Logger = logger
		if mutate != nil {
			mutate(&opts)
		}
		return NewSimulator(opts)
	}, logger)
	require.NoError(t, view.Mount(context.Background()))
	t.Cleanup(view.Unmount)
	return view
}

func TestCommandHandlerAppliesCommands(t *testing.T) {
	logger, _ := test.NewNullLogger()
	view := mountedView(t, nil)
	h := NewCommandHandler(view, time.Minute, 100, logger)
	sim, _ := view.Simulator()

	err := h.HandleMessage("farm/field1/command", &rabbitmqtest.Message{Body: []byte(`{"command":"toggle_auto"}`)})
	require.NoError(t, err)
	assert.False(t, sim.State().AutoMode)

	err = h.HandleMessage("farm/field1/command", &rabbitmqtest.Message{Body: []byte(`{"command":"toggle_pump","sensor_id":"sensor1"}`)})
	require.NoError(t, err)
	require.Eventually(t, func() bool { return sim.State().PumpOn }, time.Second, time.Millisecond)

	err = h.HandleMessage("farm/field1/command", &rabbitmqtest.Message{Body: []byte(`{"command":"set_threshold","threshold":55}`)})
	require.NoError(t, err)
	assert.Equal(t, 55.0, sim.State().Threshold)
}

func TestCommandHandlerDropsDuplicates(t *testing.T) {
	logger, _ := test.NewNullLogger()
	view := mountedView(t, nil)
	h := NewCommandHandler(view, time.Minute, 100, logger)
	sim, _ := view.Simulator()

	msg := &rabbitmqtest.Message{Body: []byte(`{"command":"toggle_auto","timestamp":"2024-06-01T12:00:00Z"}`)}
	require.NoError(t, h.HandleMessage("t", msg))
	require.NoError(t, h.HandleMessage("t", msg))
	assert.False(t, sim.State().AutoMode, "redelivered payload must not flip auto mode back")
}

func TestCommandHandlerErrors(t *testing.T) {
	logger, _ := test.NewNullLogger()
	view := mountedView(t, nil)
	h := NewCommandHandler(view, time.Minute, 100, logger)

	assert.Error(t, h.HandleMessage("t", &rabbitmqtest.Message{Body: []byte(`not json`)}))
	assert.Error(t, h.Apply(model.PumpCommand{Command: "reboot"}))
	assert.ErrorIs(t, h.Apply(model.PumpCommand{Command: messages.CommandTogglePump}), ErrAutoMode)
	assert.ErrorIs(t, h.Apply(model.PumpCommand{Command: messages.CommandSetThreshold, Threshold: 70}), ErrThresholdRange)
}

func TestCommandHandlerIgnoresOtherSensorsAndUnmountedView(t *testing.T) {
	logger, _ := test.NewNullLogger()
	view := mountedView(t, nil)
	h := NewCommandHandler(view, time.Minute, 100, logger)
	sim, _ := view.Simulator()

	require.NoError(t, h.Apply(model.PumpCommand{Command: messages.CommandToggleAuto, SensorID: "sensor9"}))
	require.NoError(t, h.Apply(model.PumpCommand{Command: messages.CommandToggleAuto, FieldID: "field9"}))
	assert.True(t, sim.State().AutoMode)

	view.Unmount()
	assert.NoError(t, h.Apply(model.PumpCommand{Command: messages.CommandToggleAuto}))
}

func TestViewMountUnmount(t *testing.T) {
	view := mountedView(t, nil)

	first, ok := view.Simulator()
	require.True(t, ok)
	require.NoError(t, first.ToggleAutoMode())

	// mounting twice keeps the same simulator
	require.NoError(t, view.Mount(context.Background()))
	again, _ := view.Simulator()
	assert.Same(t, first, again)

	view.Unmount()
	_, ok = view.Simulator()
	assert.False(t, ok)
	assert.ErrorIs(t, first.TogglePump(), ErrStopped)

	// remounting starts from fresh state
	require.NoError(t, view.Mount(context.Background()))
	second, ok := view.Simulator()
	require.True(t, ok)
	assert.NotSame(t, first, second)
	assert.True(t, second.State().AutoMode)
	assert.Equal(t, 45.0, second.State().Level)
}
