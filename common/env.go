// Package common provides shared types and constants used across the warpalarm
// client-daemon communication layer.
package common

// Environment variable names for configuration.
const (
	// ConfigDirEnv overrides the directory holding the alarm store, config and pid file.
	ConfigDirEnv = "WARPALARM_CONFIG_DIR"

	// SocketPathEnv is the environment variable for custom socket path.
	SocketPathEnv = "WARPALARM_SOCKET_PATH"

	// TCPPortEnv is the environment variable for custom TCP port.
	TCPPortEnv = "WARPALARM_TCP_PORT"

	// ForceTCPEnv is the environment variable to force TCP connections.
	ForceTCPEnv = "WARPALARM_FORCE_TCP"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "WARPALARM_DEBUG"

	// PipeNameEnv overrides the Windows named pipe name.
	PipeNameEnv = "WARPALARM_PIPE_NAME"

	// RPCSecretEnv supplies the bearer token for the HTTP and websocket RPC
	// endpoints instead of the keyring.
	RPCSecretEnv = "WARPALARM_RPC_SECRET"

	// DaemonURIEnv points the CLI at a specific daemon, e.g. tcp://host:3850.
	DaemonURIEnv = "WARPALARM_DAEMON_URI"

	// SuppressVersionCheckEnv silences the CLI/daemon version mismatch warning.
	SuppressVersionCheckEnv = "WARPALARM_SUPPRESS_VERSION_CHECK"
)
