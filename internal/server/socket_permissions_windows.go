//go:build windows

package server

// setSocketPermissions is a no-op on Windows; the pipe is guarded by its ACL.
func setSocketPermissions(string) {}
