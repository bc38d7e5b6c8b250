package irrigation_simulator

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"

	"github.com/LeonardoBeccarini/farmassist/internal/model"
	"github.com/LeonardoBeccarini/farmassist/internal/model/messages"
	"github.com/LeonardoBeccarini/farmassist/pkg/dedup"
)

// Target resolves the simulator currently mounted, if any.
type Target interface {
	Simulator() (*Simulator, bool)
}

// CommandHandler applica i comandi remoti ricevuti sul topic MQTT di controllo.
type CommandHandler struct {
	target  Target
	deduper *dedup.Deduper
	logger  logrus.FieldLogger
}

func NewCommandHandler(target Target, ttl time.Duration, max int, logger logrus.FieldLogger) *CommandHandler {
	return &CommandHandler{
		target:  target,
		deduper: dedup.New(ttl, max),
		logger:  logger.WithField("component", "commands"),
	}
}

// HandleMessage matches rabbitmq.MessageHandler.
func (h *CommandHandler) HandleMessage(_ string, msg mqtt.Message) error {
	// Dedup a payload: redelivery QoS1 ha lo stesso payload → stesso hash
	if !h.deduper.ShouldProcessPayload(msg.Payload()) {
		return nil
	}

	var cmd model.PumpCommand
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		return fmt.Errorf("invalid PumpCommand: %w", err)
	}
	return h.Apply(cmd)
}

// Apply executes cmd against the mounted simulator. Commands addressed to
// another sensor are ignored.
func (h *CommandHandler) Apply(cmd model.PumpCommand) error {
	sim, ok := h.target.Simulator()
	if !ok {
		h.logger.WithField("command", cmd.Command).Debug("no simulator mounted, command dropped")
		return nil
	}
	if cmd.SensorID != "" && cmd.SensorID != sim.SensorID() {
		return nil
	}
	if cmd.FieldID != "" && cmd.FieldID != sim.FieldID() {
		return nil
	}

	var err error
	switch cmd.Command {
	case messages.CommandTogglePump:
		err = sim.TogglePump()
	case messages.CommandToggleAuto:
		err = sim.ToggleAutoMode()
	case messages.CommandSetThreshold:
		err = sim.SetThreshold(cmd.Threshold)
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", cmd.Command, err)
	}
	h.logger.WithField("command", cmd.Command).Info("command applied")
	return nil
}
