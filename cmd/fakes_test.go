package cmd

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/pkg/alarmcli"
)

type fakeClient struct {
	scheduled []*common.ScheduleParams
	repeating []*common.RepeatingParams
	cancelled []int
	granted   []string
	alarms    []common.AlarmInfo
	status    *common.RingStatusResult
	snooze    *common.SnoozeResult
	perms     *common.PermissionsResult
	closed    bool
	err       error
}

func (f *fakeClient) Schedule(_ context.Context, p *common.ScheduleParams) (*common.ScheduleResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.scheduled = append(f.scheduled, p)
	return &common.ScheduleResult{Success: true, AlarmID: *p.ID, TriggerAtMillis: p.TriggerAtMillis}, nil
}

func (f *fakeClient) ScheduleRepeating(_ context.Context, p *common.RepeatingParams) (*common.ScheduleResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.repeating = append(f.repeating, p)
	return &common.ScheduleResult{Success: true, AlarmID: *p.ID}, nil
}

func (f *fakeClient) Cancel(_ context.Context, id int) (bool, error) {
	f.cancelled = append(f.cancelled, id)
	for _, a := range f.alarms {
		if a.ID == id {
			return true, nil
		}
	}
	return false, f.err
}

func (f *fakeClient) List(context.Context) ([]common.AlarmInfo, error) {
	return f.alarms, f.err
}

func (f *fakeClient) RingStatus(context.Context) (*common.RingStatusResult, error) {
	if f.status == nil {
		return &common.RingStatusResult{State: common.RingStateIdle}, f.err
	}
	return f.status, f.err
}

func (f *fakeClient) Dismiss(context.Context) (bool, error) {
	return f.status != nil, f.err
}

func (f *fakeClient) Snooze(context.Context) (*common.SnoozeResult, error) {
	if f.snooze == nil {
		return &common.SnoozeResult{}, f.err
	}
	return f.snooze, f.err
}

func (f *fakeClient) CheckPermissions(context.Context) (*common.PermissionsResult, error) {
	if f.perms == nil {
		return &common.PermissionsResult{}, f.err
	}
	return f.perms, f.err
}

func (f *fakeClient) RequestPermissions(context.Context) error { return f.err }

func (f *fakeClient) ExplainPermissions(context.Context) (string, error) {
	return "Exact alarm permission is required.", f.err
}

func (f *fakeClient) GrantPermission(_ context.Context, capability string) error {
	f.granted = append(f.granted, capability)
	return f.err
}

func (f *fakeClient) CheckVersionMismatch(context.Context, io.Writer, string) {}

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

// withFakeClient makes connect return fc for the duration of the test.
func withFakeClient(t *testing.T, fc *fakeClient) {
	t.Helper()
	old := newClient
	newClient = func(alarmcli.Options) (alarmClient, error) { return fc, nil }
	t.Cleanup(func() { newClient = old })
}

// runCmd runs one command through a minimal app and returns its output.
func runCmd(t *testing.T, cmd cli.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := cli.NewApp()
	app.Name = DEF_APP_NAME
	app.HelpName = DEF_APP_NAME
	app.Writer = &out
	app.ErrWriter = &out
	app.Flags = globalFlags
	app.Commands = []cli.Command{cmd}
	if err := app.Run(append([]string{DEF_APP_NAME, cmd.Name}, args...)); err != nil {
		t.Fatalf("%s: %v", cmd.Name, err)
	}
	return out.String()
}
