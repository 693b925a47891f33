package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
)

var (
	scheduleFlags = []cli.Flag{
		cli.IntFlag{Name: "id, i", Usage: "alarm id (required)"},
		cli.StringFlag{Name: "title, t", Usage: "alarm title (default: the type's label)"},
		cli.StringFlag{Name: "body, b", Usage: "text shown under the title"},
		cli.StringFlag{Name: "at", Usage: `local trigger time, "2006-01-02 15:04"`},
		cli.DurationFlag{Name: "in", Usage: "trigger after this delay, e.g. 10m"},
		cli.StringFlag{Name: "type", Value: "generic", Usage: "generic, medicine or meeting"},
	}
	repeatFlags = []cli.Flag{
		cli.IntFlag{Name: "id, i", Usage: "alarm id (required)"},
		cli.StringFlag{Name: "title, t", Usage: "alarm title (default: the type's label)"},
		cli.StringFlag{Name: "body, b", Usage: "text shown under the title"},
		cli.StringFlag{Name: "time", Usage: "daily local time, HH:MM"},
		cli.StringFlag{Name: "type", Value: "generic", Usage: "generic, medicine or meeting"},
	}
)

var (
	errWhenMissing  = errors.New("one of --at or --in is required")
	errWhenConflict = errors.New("--at and --in cannot be combined")
)

// now is swapped in tests.
var now = time.Now

// triggerTime resolves --at / --in against ref.
func triggerTime(at string, in time.Duration, ref time.Time) (time.Time, error) {
	switch {
	case at != "" && in != 0:
		return time.Time{}, errWhenConflict
	case at != "":
		t, err := time.ParseInLocation(DEF_SCHEDULE_LAYOUT, at, ref.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --at %q: %w", at, err)
		}
		return t, nil
	case in > 0:
		return ref.Add(in), nil
	case in < 0:
		return time.Time{}, fmt.Errorf("invalid --in %s: must be positive", in)
	}
	return time.Time{}, errWhenMissing
}

// parseClock parses "HH:MM".
func parseClock(s string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if hour, err = strconv.Atoi(h); err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	if minute, err = strconv.Atoi(m); err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// optionalID returns nil when --id was not given so the daemon reports it.
func optionalID(ctx *cli.Context) *int {
	if !ctx.IsSet("id") {
		return nil
	}
	id := ctx.Int("id")
	return &id
}

func schedule(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	at, err := triggerTime(ctx.String("at"), ctx.Duration("in"), now())
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	res, err := client.Schedule(c, &sharedCommon.ScheduleParams{
		ID:              optionalID(ctx),
		Title:           ctx.String("title"),
		Body:            ctx.String("body"),
		TriggerAtMillis: at.UnixMilli(),
		Type:            ctx.String("type"),
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "schedule", "alarm_schedule", err)
		return nil
	}
	fmt.Fprintf(outWriter(ctx), "Alarm %d scheduled for %s\n", res.AlarmID, formatMillis(res.TriggerAtMillis))
	return nil
}

func repeat(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	hour, minute, err := parseClock(ctx.String("time"))
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, err)
	}
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "repeat", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	res, err := client.ScheduleRepeating(c, &sharedCommon.RepeatingParams{
		ID:     optionalID(ctx),
		Title:  ctx.String("title"),
		Body:   ctx.String("body"),
		Hour:   &hour,
		Minute: &minute,
		Type:   ctx.String("type"),
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "repeat", "alarm_schedule_repeating", err)
		return nil
	}
	fmt.Fprintf(outWriter(ctx), "Alarm %d rings daily at %02d:%02d, next at %s\n",
		res.AlarmID, hour, minute, formatMillis(res.TriggerAtMillis))
	return nil
}

func cancel(ctx *cli.Context) error {
	arg := ctx.Args().First()
	if arg == "" || arg == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	id, err := strconv.Atoi(arg)
	if err != nil {
		return common.PrintErrWithCmdHelp(ctx, fmt.Errorf("invalid alarm id %q", arg))
	}
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	ok, err := client.Cancel(c, id)
	if err != nil {
		common.PrintRuntimeErr(ctx, "cancel", "alarm_cancel", err)
		return nil
	}
	if ok {
		fmt.Fprintf(outWriter(ctx), "Alarm %d cancelled\n", id)
	} else {
		fmt.Fprintf(outWriter(ctx), "Alarm %d was not pending\n", id)
	}
	return nil
}

func formatMillis(ms int64) string {
	if ms == 0 {
		return "-"
	}
	return time.UnixMilli(ms).Format("Mon 2006-01-02 15:04")
}
