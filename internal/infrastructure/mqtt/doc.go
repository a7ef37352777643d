// Package mqtt provides MQTT client connectivity for LockGuard Core.
//
// This package manages:
//   - Connection to the broker with paho auto-reconnect
//   - Publishing and subscribing with QoS acknowledgement timeouts
//   - Last Will and Testament (LWT) for Core offline detection
//   - The lock topic layout and its parser
//
// # Architecture
//
// Each lock is an ESP32 board that talks to Core only through the broker:
//
//	ESP32 lock ↔ MQTT Broker ↔ LockGuard Core
//
// Every lock lives under its owner's identity:
//
//	{identity}/esp32/pir       lock → Core  motion value
//	{identity}/esp32/password  lock → Core  submitted access code
//	{identity}/esp32/notify    lock → Core  "1" raises an intrusion alert
//	{identity}/esp32/led       Core → lock  green | red
//	{identity}/esp32/buzzer    Core → lock  buzzer_success | buzzer_fail
//	{identity}/esp32/servo     Core → lock  open | close
//
// # Security Considerations
//
//   - TLS is required for production deployments (cfg.Broker.TLS=true)
//   - Access codes travel as plain payloads; only transport TLS protects them
//   - Identities containing '/', '+' or '#' are rejected by ValidateIdentity
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	topic := mqtt.Topics{}.Device("alice", mqtt.ChannelServo)
//	client.Publish(topic, []byte("open"), client.QoS(), false)
package mqtt
