package alarmcli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/warpdl/warpalarm/common"
)

// CheckVersionMismatch warns on w when the daemon runs a different
// version than the CLI. It never fails the command.
func (c *Client) CheckVersionMismatch(ctx context.Context, w io.Writer, expectedVersion string) {
	if expectedVersion == "" || os.Getenv(common.SuppressVersionCheckEnv) != "" {
		return
	}
	v, err := c.GetDaemonVersion(ctx)
	if err != nil {
		fmt.Fprintf(w, "Warning: could not verify daemon version: %v\n", err)
		return
	}
	if v.Version != expectedVersion {
		fmt.Fprintf(w, "Warning: CLI version (%s) differs from daemon version (%s)\n", expectedVersion, v.Version)
		fmt.Fprintf(w, "Run 'warpalarm stop-daemon' to restart the daemon with the new version.\n")
	}
}
