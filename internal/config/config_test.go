package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	c, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if c.TCPPort != 3850 || c.RPCPort != 3851 || !c.RPCEnabled || c.RPCListenAll {
		t.Errorf("ports = %+v", c)
	}
	if c.DeliveryBudget != 10*time.Second || c.WakeTimeout != 10*time.Minute || c.UIWakeTimeout != 5*time.Minute {
		t.Errorf("durations = %v %v %v", c.DeliveryBudget, c.WakeTimeout, c.UIWakeTimeout)
	}
	if c.StorePath != filepath.Join(dir, "alarms.db") {
		t.Errorf("store = %s", c.StorePath)
	}
	if c.SoundPreferred != "alarm.wav" || c.SoundFallback != "notification.wav" {
		t.Errorf("sounds = %s %s", c.SoundPreferred, c.SoundFallback)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := "rpc:\n  port: 4000\n  listen_all: true\nring:\n  wake_timeout: 2m\nsound:\n  preferred: bell.wav\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WARPALARM_DELIVERY_BUDGET", "3s")
	t.Setenv("WARPALARM_RPC_PORT", "4100")

	c, err := Load(dir, "")
	if err != nil {
		t.Fatal(err)
	}
	if c.RPCPort != 4100 {
		t.Errorf("rpc port = %d, env should win", c.RPCPort)
	}
	if !c.RPCListenAll || c.WakeTimeout != 2*time.Minute || c.SoundPreferred != "bell.wav" {
		t.Errorf("file values not applied: %+v", c)
	}
	if c.DeliveryBudget != 3*time.Second {
		t.Errorf("budget = %v", c.DeliveryBudget)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(dir, filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("explicit missing file should fail")
	}
	bad := filepath.Join(dir, "bad.yaml")
	_ = os.WriteFile(bad, []byte("tcp_port: 70000\n"), 0o600)
	if _, err := Load(dir, bad); err == nil {
		t.Error("out of range port should fail")
	}
}
