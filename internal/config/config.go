// Package config loads daemon settings from config.yaml in the config
// directory, overridden by WARPALARM_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/warpdl/warpalarm/common"
)

const (
	envPrefix = "WARPALARM"
	fileName  = "config"
)

// Config is the resolved daemon configuration.
type Config struct {
	SocketPath string
	TCPPort    int

	RPCEnabled   bool
	RPCPort      int
	RPCListenAll bool

	DeliveryBudget time.Duration
	WakeTimeout    time.Duration
	UIWakeTimeout  time.Duration

	SoundDir       string
	SoundPreferred string
	SoundFallback  string

	StorePath      string
	MetricsEnabled bool
	LogFile        string
}

func setDefaults(v *viper.Viper, dir string) {
	v.SetDefault("socket_path", common.SocketPath())
	v.SetDefault("tcp_port", common.DefaultTCPPort)
	v.SetDefault("rpc.enabled", true)
	v.SetDefault("rpc.port", common.DefaultRPCPort)
	v.SetDefault("rpc.listen_all", false)
	v.SetDefault("delivery.budget", 10*time.Second)
	v.SetDefault("ring.wake_timeout", 10*time.Minute)
	v.SetDefault("ring.ui_wake_timeout", 5*time.Minute)
	v.SetDefault("sound.dir", filepath.Join(dir, "sounds"))
	v.SetDefault("sound.preferred", "alarm.wav")
	v.SetDefault("sound.fallback", "notification.wav")
	v.SetDefault("store.path", filepath.Join(dir, "alarms.db"))
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("log.file", filepath.Join(dir, "daemon.log"))
}

// Load reads dir/config.yaml, or file when non-empty. A missing default
// file is not an error.
func Load(dir, file string) (*Config, error) {
	v := viper.New()
	setDefaults(v, dir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(fileName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error: cannot read config: %w", err)
		}
	}

	c := &Config{
		SocketPath:     v.GetString("socket_path"),
		TCPPort:        v.GetInt("tcp_port"),
		RPCEnabled:     v.GetBool("rpc.enabled"),
		RPCPort:        v.GetInt("rpc.port"),
		RPCListenAll:   v.GetBool("rpc.listen_all"),
		DeliveryBudget: v.GetDuration("delivery.budget"),
		WakeTimeout:    v.GetDuration("ring.wake_timeout"),
		UIWakeTimeout:  v.GetDuration("ring.ui_wake_timeout"),
		SoundDir:       v.GetString("sound.dir"),
		SoundPreferred: v.GetString("sound.preferred"),
		SoundFallback:  v.GetString("sound.fallback"),
		StorePath:      v.GetString("store.path"),
		MetricsEnabled: v.GetBool("metrics.enabled"),
		LogFile:        v.GetString("log.file"),
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	if c.TCPPort <= 0 || c.TCPPort > 65535 {
		return fmt.Errorf("error: tcp_port %d out of range", c.TCPPort)
	}
	if c.RPCEnabled && (c.RPCPort <= 0 || c.RPCPort > 65535) {
		return fmt.Errorf("error: rpc.port %d out of range", c.RPCPort)
	}
	if c.DeliveryBudget <= 0 {
		return fmt.Errorf("error: delivery.budget must be positive")
	}
	if c.WakeTimeout <= 0 || c.UIWakeTimeout <= 0 {
		return fmt.Errorf("error: ring wake timeouts must be positive")
	}
	return nil
}
