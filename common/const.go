package common

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// TCPHost is the loopback address used by the TCP fallback transport.
	TCPHost = "127.0.0.1"

	// DefaultTCPPort is used when neither the socket nor the pipe is usable.
	DefaultTCPPort = 3850

	// DefaultRPCPort serves the HTTP bridge, websocket and metrics.
	DefaultRPCPort = 3851

	// DefaultDialTimeout bounds a single connection attempt to the daemon.
	DefaultDialTimeout = 2 * time.Second

	appDirName     = "warpalarm"
	socketFileName = "warpalarm.sock"
)

var configDirOverride string

// ConfigDir returns the directory that holds daemon state.
// Resolution order: SetConfigDir, WARPALARM_CONFIG_DIR, os.UserConfigDir()/warpalarm,
// and finally the temp directory when no user config dir exists.
func ConfigDir() string {
	if configDirOverride != "" {
		return configDirOverride
	}
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(os.TempDir(), appDirName)
	}
	return filepath.Join(base, appDirName)
}

// SetConfigDir pins the config directory, mainly for tests.
func SetConfigDir(dir string) {
	configDirOverride = dir
}

// EnsureConfigDir creates the config directory if missing.
func EnsureConfigDir() (string, error) {
	dir := ConfigDir()
	return dir, os.MkdirAll(dir, 0o700)
}

// SocketPath returns the unix socket path for the daemon.
func SocketPath() string {
	if path := os.Getenv(SocketPathEnv); path != "" {
		return path
	}
	return filepath.Join(os.TempDir(), socketFileName)
}

// ForceTCP reports whether WARPALARM_FORCE_TCP asks for the TCP transport.
func ForceTCP() bool {
	v := os.Getenv(ForceTCPEnv)
	return v == "1" || v == "true"
}

// Debug reports whether WARPALARM_DEBUG is set.
func Debug() bool {
	return os.Getenv(DebugEnv) != ""
}

// TCPPort returns the daemon TCP port from WARPALARM_TCP_PORT, or DefaultTCPPort.
func TCPPort() int {
	if v := os.Getenv(TCPPortEnv); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 && p < 65536 {
			return p
		}
	}
	return DefaultTCPPort
}
