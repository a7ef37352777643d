package mqtt

import (
	"errors"
	"testing"
)

func TestTopics_Device(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		channel string
		want    string
	}{
		{ChannelPIR, "alice/esp32/pir"},
		{ChannelPassword, "alice/esp32/password"},
		{ChannelNotify, "alice/esp32/notify"},
		{ChannelLED, "alice/esp32/led"},
		{ChannelBuzzer, "alice/esp32/buzzer"},
		{ChannelServo, "alice/esp32/servo"},
	}

	for _, tt := range tests {
		t.Run(tt.channel, func(t *testing.T) {
			if got := topics.Device("alice", tt.channel); got != tt.want {
				t.Errorf("Device() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTopics_DeviceInbound(t *testing.T) {
	got := Topics{}.DeviceInbound("bob")
	want := []string{"bob/esp32/pir", "bob/esp32/password", "bob/esp32/notify"}

	if len(got) != len(want) {
		t.Fatalf("DeviceInbound() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("DeviceInbound()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestTopics_SystemStatus(t *testing.T) {
	if got := (Topics{}).SystemStatus(); got != "lockguard/system/status" {
		t.Errorf("SystemStatus() = %q", got)
	}
}

func TestParseDeviceTopic(t *testing.T) {
	tests := []struct {
		topic   string
		want    DeviceTopic
		wantErr bool
	}{
		{topic: "alice/esp32/password", want: DeviceTopic{"alice", "esp32", "password"}},
		{topic: "alice/esp32/unknown", want: DeviceTopic{"alice", "esp32", "unknown"}},
		{topic: "alice/esp32", wantErr: true},
		{topic: "alice/esp32/pir/extra", wantErr: true},
		{topic: "/esp32/pir", wantErr: true},
		{topic: "alice/esp32/", wantErr: true},
		{topic: "alice/esp8266/pir", wantErr: true},
		{topic: "", wantErr: true},
		{topic: "lockguard/system/status", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			got, err := ParseDeviceTopic(tt.topic)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedTopic) {
					t.Errorf("ParseDeviceTopic(%q) error = %v, want ErrMalformedTopic", tt.topic, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDeviceTopic(%q) error = %v", tt.topic, err)
			}
			if got != tt.want {
				t.Errorf("ParseDeviceTopic(%q) = %+v, want %+v", tt.topic, got, tt.want)
			}
		})
	}
}

func TestValidateIdentity(t *testing.T) {
	valid := []string{"alice", "bob.smith", "user_42", "Ünïcode"}
	for _, id := range valid {
		if err := ValidateIdentity(id); err != nil {
			t.Errorf("ValidateIdentity(%q) error = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "a/b", "+", "alice#", "x\x00y"}
	for _, id := range invalid {
		if err := ValidateIdentity(id); !errors.Is(err, ErrInvalidIdentity) {
			t.Errorf("ValidateIdentity(%q) error = %v, want ErrInvalidIdentity", id, err)
		}
	}
}
