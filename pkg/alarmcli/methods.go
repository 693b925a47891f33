package alarmcli

import (
	"context"

	"github.com/warpdl/warpalarm/common"
)

func (c *Client) Schedule(ctx context.Context, p *common.ScheduleParams) (*common.ScheduleResult, error) {
	return call[common.ScheduleResult](ctx, c, "alarm.schedule", p)
}

func (c *Client) ScheduleRepeating(ctx context.Context, p *common.RepeatingParams) (*common.ScheduleResult, error) {
	return call[common.ScheduleResult](ctx, c, "alarm.scheduleRepeating", p)
}

// Cancel reports whether anything was pending for id.
func (c *Client) Cancel(ctx context.Context, id int) (bool, error) {
	res, err := call[common.CancelResult](ctx, c, "alarm.cancel", &common.IDParams{ID: &id})
	if err != nil {
		return false, err
	}
	return res.Cancelled, nil
}

func (c *Client) List(ctx context.Context) ([]common.AlarmInfo, error) {
	res, err := call[common.ListResult](ctx, c, "alarm.list", nil)
	if err != nil {
		return nil, err
	}
	return res.Alarms, nil
}

func (c *Client) RingStatus(ctx context.Context) (*common.RingStatusResult, error) {
	return call[common.RingStatusResult](ctx, c, "ring.status", nil)
}

// Dismiss reports whether a session was ringing.
func (c *Client) Dismiss(ctx context.Context) (bool, error) {
	res, err := call[common.SuccessResult](ctx, c, "ring.dismiss", nil)
	if err != nil {
		return false, err
	}
	return res.Success, nil
}

func (c *Client) Snooze(ctx context.Context) (*common.SnoozeResult, error) {
	return call[common.SnoozeResult](ctx, c, "ring.snooze", nil)
}

func (c *Client) CheckPermissions(ctx context.Context) (*common.PermissionsResult, error) {
	return call[common.PermissionsResult](ctx, c, "permissions.check", nil)
}

func (c *Client) RequestPermissions(ctx context.Context) error {
	_, err := call[common.SuccessResult](ctx, c, "permissions.request", nil)
	return err
}

func (c *Client) ExplainPermissions(ctx context.Context) (string, error) {
	res, err := call[common.ExplanationResult](ctx, c, "permissions.explain", nil)
	if err != nil {
		return "", err
	}
	return res.Message, nil
}

func (c *Client) GrantPermission(ctx context.Context, capability string) error {
	_, err := call[common.SuccessResult](ctx, c, "permissions.grant", &common.GrantParams{Capability: capability})
	return err
}

func (c *Client) GetDaemonVersion(ctx context.Context) (*common.VersionResult, error) {
	return call[common.VersionResult](ctx, c, "system.getVersion", nil)
}
