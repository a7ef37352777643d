package mqtt

import (
	"fmt"
	"strings"
)

// Device topic layout: {identity}/{DeviceSegment}/{channel}.
const (
	// DeviceSegment is the fixed middle segment of every lock topic.
	DeviceSegment = "esp32"

	// TopicPrefixSystem is the base for LockGuard Core's own topics.
	TopicPrefixSystem = "lockguard/system"
)

// Inbound channels, published by the lock.
const (
	ChannelPIR      = "pir"
	ChannelPassword = "password"
	ChannelNotify   = "notify"
)

// Outbound channels, published by Core.
const (
	ChannelLED    = "led"
	ChannelBuzzer = "buzzer"
	ChannelServo  = "servo"
)

// InboundChannels lists the channels Core subscribes to for every identity.
var InboundChannels = []string{ChannelPIR, ChannelPassword, ChannelNotify}

// Topics provides builders for LockGuard MQTT topics.
//
//	topics := mqtt.Topics{}
//	topics.Device("alice", mqtt.ChannelServo)
//	// Returns: "alice/esp32/servo"
type Topics struct{}

// =============================================================================
// Device Topics
// =============================================================================

// Device returns the topic for one channel of an identity's lock.
//
// Example: alice/esp32/password
func (Topics) Device(identity, channel string) string {
	return fmt.Sprintf("%s/%s/%s", identity, DeviceSegment, channel)
}

// DeviceInbound returns the three topics a lock publishes on.
func (t Topics) DeviceInbound(identity string) []string {
	out := make([]string, 0, len(InboundChannels))
	for _, ch := range InboundChannels {
		out = append(out, t.Device(identity, ch))
	}
	return out
}

// =============================================================================
// System Topics
// =============================================================================

// SystemStatus returns the Core online/offline status topic.
//
// Example: lockguard/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// =============================================================================
// Parsing
// =============================================================================

// DeviceTopic is a parsed {identity}/{device}/{channel} topic.
type DeviceTopic struct {
	Identity string
	Device   string
	Channel  string
}

// ParseDeviceTopic splits a received topic into its three segments.
//
// It returns ErrMalformedTopic unless the topic has exactly three non-empty
// segments and the middle one is DeviceSegment. The channel is not checked;
// callers decide which channels they understand.
func ParseDeviceTopic(topic string) (DeviceTopic, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return DeviceTopic{}, fmt.Errorf("%w: %q has %d segments", ErrMalformedTopic, topic, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return DeviceTopic{}, fmt.Errorf("%w: %q has an empty segment", ErrMalformedTopic, topic)
		}
	}
	if parts[1] != DeviceSegment {
		return DeviceTopic{}, fmt.Errorf("%w: %q device segment is %q", ErrMalformedTopic, topic, parts[1])
	}
	return DeviceTopic{Identity: parts[0], Device: parts[1], Channel: parts[2]}, nil
}

// ValidateIdentity reports whether identity can be used as a topic segment.
//
// Separators and wildcards are rejected so an identity can never widen a
// subscription or address another identity's namespace.
func ValidateIdentity(identity string) error {
	if identity == "" {
		return fmt.Errorf("%w: empty identity", ErrInvalidIdentity)
	}
	if strings.ContainsAny(identity, "/+#\x00") {
		return fmt.Errorf("%w: %q contains a reserved character", ErrInvalidIdentity, identity)
	}
	return nil
}
