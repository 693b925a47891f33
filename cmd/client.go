package cmd

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/alarmcli"
)

// alarmClient is the part of *alarmcli.Client the commands use.
type alarmClient interface {
	Schedule(ctx context.Context, p *common.ScheduleParams) (*common.ScheduleResult, error)
	ScheduleRepeating(ctx context.Context, p *common.RepeatingParams) (*common.ScheduleResult, error)
	Cancel(ctx context.Context, id int) (bool, error)
	List(ctx context.Context) ([]common.AlarmInfo, error)
	RingStatus(ctx context.Context) (*common.RingStatusResult, error)
	Dismiss(ctx context.Context) (bool, error)
	Snooze(ctx context.Context) (*common.SnoozeResult, error)
	CheckPermissions(ctx context.Context) (*common.PermissionsResult, error)
	RequestPermissions(ctx context.Context) error
	ExplainPermissions(ctx context.Context) (string, error)
	GrantPermission(ctx context.Context, capability string) error
	CheckVersionMismatch(ctx context.Context, w io.Writer, expectedVersion string)
	Close() error
}

// newClient is swapped in tests.
var newClient = func(opt alarmcli.Options) (alarmClient, error) {
	return alarmcli.NewClientWithOptions(opt)
}

// connect opens a client honoring --daemon-uri and warns on a version
// mismatch.
func connect(ctx *cli.Context, onPush alarmcli.PushHandler) (alarmClient, error) {
	client, err := newClient(alarmcli.Options{
		URI:    ctx.GlobalString("daemon-uri"),
		OnPush: onPush,
	})
	if err != nil {
		return nil, err
	}
	callCtx, cancel := callContext()
	defer cancel()
	client.CheckVersionMismatch(callCtx, errWriter(ctx), currentBuildArgs.Version)
	return client, nil
}

func callContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), DEF_CALL_TIMEOUT)
}

func outWriter(ctx *cli.Context) io.Writer {
	if ctx.App != nil && ctx.App.Writer != nil {
		return ctx.App.Writer
	}
	return os.Stdout
}

func errWriter(ctx *cli.Context) io.Writer {
	if ctx.App != nil && ctx.App.ErrWriter != nil {
		return ctx.App.ErrWriter
	}
	return os.Stderr
}
