package actuator

import (
	"errors"
	"fmt"

	"github.com/nerrad567/lockguard-core/internal/infrastructure/mqtt"
)

// Payloads understood by the lock firmware.
const (
	LEDGreen      = "green"
	LEDRed        = "red"
	BuzzerSuccess = "buzzer_success"
	BuzzerFail    = "buzzer_fail"
	ServoOpen     = "open"
	ServoClose    = "close"
)

// ErrInvalidAction is returned by ManualControl for actions other than
// open and close.
var ErrInvalidAction = errors.New("actuator: action must be open or close")

// Action is a manual-control request.
type Action string

const (
	ActionOpen  Action = "open"
	ActionClose Action = "close"
)

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a == ActionOpen || a == ActionClose
}

// Command is one outbound message.
type Command struct {
	Identity string
	Channel  string
	Payload  string
}

// Topic returns the command's destination topic.
func (c Command) Topic() string {
	return mqtt.Topics{}.Device(c.Identity, c.Channel)
}

// Publisher is the transport used to send commands.
// *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// CommandsFor returns the sequence for a verification outcome.
func CommandsFor(identity string, granted bool) []Command {
	if granted {
		return []Command{
			{identity, mqtt.ChannelLED, LEDGreen},
			{identity, mqtt.ChannelBuzzer, BuzzerSuccess},
			{identity, mqtt.ChannelServo, ServoOpen},
		}
	}
	return []Command{
		{identity, mqtt.ChannelLED, LEDRed},
		{identity, mqtt.ChannelBuzzer, BuzzerFail},
	}
}

// ManualCommands returns the full triple for a manual action.
// Close mirrors a denial and adds an explicit latch.
func ManualCommands(identity string, action Action) []Command {
	if action == ActionOpen {
		return CommandsFor(identity, true)
	}
	return append(CommandsFor(identity, false), Command{identity, mqtt.ChannelServo, ServoClose})
}

// Actuator publishes command sequences.
type Actuator struct {
	pub Publisher
	qos byte
}

// New creates an Actuator publishing at the given QoS.
func New(pub Publisher, qos byte) *Actuator {
	return &Actuator{pub: pub, qos: qos}
}

// OnVerified publishes the sequence for a verification outcome.
//
// Returns:
//   - error: every failed publish joined together, or nil
func (a *Actuator) OnVerified(identity string, granted bool) error {
	return a.send(CommandsFor(identity, granted))
}

// ManualControl publishes the sequence for an open or close request made
// on behalf of an already-authorized identity.
func (a *Actuator) ManualControl(identity string, action Action) error {
	if !action.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return a.send(ManualCommands(identity, action))
}

func (a *Actuator) send(cmds []Command) error {
	var errs []error
	for _, cmd := range cmds {
		if err := a.pub.Publish(cmd.Topic(), []byte(cmd.Payload), a.qos, false); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", cmd.Topic(), err))
		}
	}
	return errors.Join(errs...)
}
