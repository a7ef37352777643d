package mqtt

import "fmt"

// maxPayloadSize caps outbound payloads. Lock commands are a few bytes;
// anything near this size is a bug.
const maxPayloadSize = 1 << 16

// Publish sends a message to the specified MQTT topic and waits for the
// broker's acknowledgement (for QoS > 0) up to the operation timeout.
//
// Parameters:
//   - topic: The topic to publish to (e.g., "alice/esp32/led")
//   - payload: The message payload
//   - qos: Quality of Service level (0, 1, or 2)
//   - retained: Whether the broker should retain the message
//
// Returns:
//   - error: ErrNotConnected while the link is down, or a wrapped
//     ErrPublishFailed
//
// Example:
//
//	topic := mqtt.Topics{}.Device("alice", mqtt.ChannelLED)
//	err := client.Publish(topic, []byte("green"), 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload size %d exceeds maximum %d bytes", ErrPublishFailed, len(payload), maxPayloadSize)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(defaultOperationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, defaultOperationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	return nil
}

// QoS returns the configured default QoS level.
func (c *Client) QoS() byte {
	return byte(c.cfg.QoS)
}
