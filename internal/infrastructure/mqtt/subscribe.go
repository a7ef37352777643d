package mqtt

import "fmt"

// Subscribe registers a handler for messages on the specified topic and
// waits for the broker's SUBACK.
//
// The handler is called in a separate goroutine for each received message,
// wrapped with panic recovery. Subscriptions are not restored after a
// reconnect; see SetOnConnect.
//
// Parameters:
//   - topic: The topic to subscribe to (wildcards allowed)
//   - qos: Maximum QoS level for received messages (0, 1, or 2)
//   - handler: Callback function invoked for each message
//
// Returns:
//   - error: ErrNotConnected while the link is down, or a wrapped
//     ErrSubscribeFailed
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if handler == nil {
		return fmt.Errorf("%w: handler cannot be nil", ErrSubscribeFailed)
	}

	if !c.IsConnected() {
		return ErrNotConnected
	}

	token := c.client.Subscribe(topic, qos, c.wrapHandler(handler))
	if !token.WaitTimeout(defaultOperationTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, defaultOperationTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}
	return nil
}
