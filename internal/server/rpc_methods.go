package server

import (
	"context"
	"errors"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/permission"
	"github.com/warpdl/warpalarm/internal/ring"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// JSON-RPC error codes for alarm operations.
const (
	codePermissionDenied = jrpc2.Code(-32010)
	codeRescheduleFailed = jrpc2.Code(-32011)
	codeDeliveryFailed   = jrpc2.Code(-32012)
	codeInvalidParams    = jrpc2.Code(-32602)
)

// Scheduler is the scheduling surface the methods call.
type Scheduler interface {
	Schedule(ctx context.Context, a alarm.Alarm) error
	Cancel(ctx context.Context, id int) (bool, error)
	ScheduleRepeating(ctx context.Context, a alarm.Alarm, hour, minute int) (alarm.Alarm, error)
	Pending(ctx context.Context) ([]alarm.Alarm, error)
}

// Permissions is the capability gate.
type Permissions interface {
	Query(ctx context.Context) permission.State
	RequestMissing(ctx context.Context, st permission.State)
	Explain(st permission.State) string
	Grant(ctx context.Context, capability string) error
}

// Ringer is the ringing controller.
type Ringer interface {
	Status() ring.Status
	Dismiss(ctx context.Context) bool
	Snooze(ctx context.Context) (alarm.Alarm, error)
}

// API implements the daemon's JSON-RPC methods.
type API struct {
	sched   Scheduler
	perms   Permissions
	ring    Ringer
	log     logger.Logger
	version common.VersionResult
}

func NewAPI(sched Scheduler, perms Permissions, r Ringer, l logger.Logger, version common.VersionResult) *API {
	return &API{sched: sched, perms: perms, ring: r, log: l, version: version}
}

// Methods returns the method table shared by every transport.
func (a *API) Methods() handler.Map {
	return handler.Map{
		"alarm.schedule":          handler.New(a.alarmSchedule),
		"alarm.scheduleRepeating": handler.New(a.alarmScheduleRepeating),
		"alarm.cancel":            handler.New(a.alarmCancel),
		"alarm.list":              handler.New(a.alarmList),
		"permissions.check":       handler.New(a.permissionsCheck),
		"permissions.request":     handler.New(a.permissionsRequest),
		"permissions.explain":     handler.New(a.permissionsExplain),
		"permissions.grant":       handler.New(a.permissionsGrant),
		"ring.status":             handler.New(a.ringStatus),
		"ring.dismiss":            handler.New(a.ringDismiss),
		"ring.snooze":             handler.New(a.ringSnooze),
		"system.getVersion":       handler.New(a.systemGetVersion),
	}
}

// rpcError maps the alarm error taxonomy onto JSON-RPC codes.
func rpcError(err error) error {
	if err == nil {
		return nil
	}
	var code jrpc2.Code
	switch {
	case errors.Is(err, alarm.ErrPermissionDenied):
		code = codePermissionDenied
	case errors.Is(err, alarm.ErrInvalidRequest), errors.Is(err, permission.ErrUnknownCapability):
		code = codeInvalidParams
	case errors.Is(err, alarm.ErrRescheduleFailed):
		code = codeRescheduleFailed
	case errors.Is(err, alarm.ErrDeliveryFailed):
		code = codeDeliveryFailed
	default:
		return err
	}
	return &jrpc2.Error{Code: code, Message: err.Error()}
}

func invalid(msg string) error {
	return &jrpc2.Error{Code: codeInvalidParams, Message: msg}
}

func (a *API) alarmSchedule(ctx context.Context, p *common.ScheduleParams) (*common.ScheduleResult, error) {
	if p.ID == nil {
		return nil, invalid("Alarm ID is required")
	}
	if p.TriggerAtMillis == 0 {
		return nil, invalid("triggerAtMillis is required")
	}
	typ, err := alarm.ParseType(p.Type)
	if err != nil {
		return nil, rpcError(err)
	}
	al := alarm.Alarm{ID: *p.ID, Title: p.Title, Body: p.Body, Type: typ, TriggerAt: p.TriggerAtMillis}
	if err := a.sched.Schedule(ctx, al); err != nil {
		return nil, rpcError(err)
	}
	return &common.ScheduleResult{Success: true, AlarmID: al.ID, TriggerAtMillis: al.TriggerAt}, nil
}

func (a *API) alarmScheduleRepeating(ctx context.Context, p *common.RepeatingParams) (*common.ScheduleResult, error) {
	if p.ID == nil {
		return nil, invalid("Alarm ID is required")
	}
	if p.Hour == nil || p.Minute == nil {
		return nil, invalid("hour and minute are required")
	}
	typ, err := alarm.ParseType(p.Type)
	if err != nil {
		return nil, rpcError(err)
	}
	al, err := a.sched.ScheduleRepeating(ctx, alarm.Alarm{ID: *p.ID, Title: p.Title, Body: p.Body, Type: typ}, *p.Hour, *p.Minute)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.ScheduleResult{Success: true, AlarmID: al.ID, TriggerAtMillis: al.TriggerAt}, nil
}

func (a *API) alarmCancel(ctx context.Context, p *common.IDParams) (*common.CancelResult, error) {
	if p.ID == nil {
		return nil, invalid("Alarm ID is required")
	}
	ok, err := a.sched.Cancel(ctx, *p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.CancelResult{Success: true, Cancelled: ok}, nil
}

func (a *API) alarmList(ctx context.Context) (*common.ListResult, error) {
	pending, err := a.sched.Pending(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	res := &common.ListResult{Alarms: make([]common.AlarmInfo, 0, len(pending))}
	for _, al := range pending {
		res.Alarms = append(res.Alarms, AlarmInfo(al))
	}
	return res, nil
}

func (a *API) permissionsCheck(ctx context.Context) (*common.PermissionsResult, error) {
	st := a.perms.Query(ctx)
	return &common.PermissionsResult{
		HasPermissions:              st.AllGranted(),
		CanScheduleExactAlarms:      st.ExactTimerGranted,
		BatteryOptimizationDisabled: st.PowerExemptionGranted,
	}, nil
}

func (a *API) permissionsRequest(ctx context.Context) (*common.SuccessResult, error) {
	a.perms.RequestMissing(ctx, a.perms.Query(ctx))
	return &common.SuccessResult{Success: true}, nil
}

func (a *API) permissionsExplain(ctx context.Context) (*common.ExplanationResult, error) {
	return &common.ExplanationResult{Message: a.perms.Explain(a.perms.Query(ctx))}, nil
}

func (a *API) permissionsGrant(ctx context.Context, p *common.GrantParams) (*common.SuccessResult, error) {
	if err := a.perms.Grant(ctx, p.Capability); err != nil {
		return nil, rpcError(err)
	}
	return &common.SuccessResult{Success: true}, nil
}

func (a *API) ringStatus(_ context.Context) (*common.RingStatusResult, error) {
	res := RingStatus(a.ring.Status())
	return &res, nil
}

func (a *API) ringDismiss(ctx context.Context) (*common.SuccessResult, error) {
	return &common.SuccessResult{Success: a.ring.Dismiss(ctx)}, nil
}

func (a *API) ringSnooze(ctx context.Context) (*common.SnoozeResult, error) {
	next, err := a.ring.Snooze(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	if next.ID == 0 && next.TriggerAt == 0 {
		return &common.SnoozeResult{Success: false}, nil
	}
	return &common.SnoozeResult{Success: true, AlarmID: next.ID, TriggerAtMillis: next.TriggerAt}, nil
}

func (a *API) systemGetVersion(_ context.Context) (*common.VersionResult, error) {
	v := a.version
	return &v, nil
}

// AlarmInfo converts an alarm to its wire form.
func AlarmInfo(a alarm.Alarm) common.AlarmInfo {
	info := common.AlarmInfo{
		ID:              a.ID,
		Title:           a.DisplayTitle(),
		Body:            a.Body,
		Type:            string(a.Type),
		TriggerAtMillis: a.TriggerAt,
		OriginID:        a.OriginID,
	}
	if a.Repeat != nil {
		info.Daily = a.Repeat.String()
	}
	return info
}

// RingStatus converts a controller snapshot to its wire form.
func RingStatus(st ring.Status) common.RingStatusResult {
	if st.State != ring.StateRinging || st.Alarm == nil {
		return common.RingStatusResult{State: common.RingStateIdle}
	}
	info := AlarmInfo(*st.Alarm)
	return common.RingStatusResult{
		State:           common.RingStateRinging,
		SessionID:       st.SessionID,
		Alarm:           &info,
		StartedAtMillis: alarm.Millis(st.StartedAt),
		Degraded:        st.Degraded,
	}
}
