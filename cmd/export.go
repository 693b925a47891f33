package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/alarm"
	ical "github.com/warpdl/warpalarm/internal/export"
)

var exportOut string

var exportFlags = []cli.Flag{
	cli.StringFlag{
		Name:        "out, o",
		Usage:       "write the calendar to this file instead of stdout",
		Destination: &exportOut,
	},
}

func export(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "export", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	infos, err := client.List(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "export", "alarm_list", err)
		return nil
	}
	alarms := make([]alarm.Alarm, 0, len(infos))
	for _, info := range infos {
		a, err := fromInfo(info)
		if err != nil {
			common.PrintRuntimeErr(ctx, "export", "convert", err)
			return nil
		}
		alarms = append(alarms, a)
	}

	var w io.Writer = outWriter(ctx)
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			common.PrintRuntimeErr(ctx, "export", "create_file", err)
			return nil
		}
		defer f.Close()
		w = f
	}
	if err := ical.Write(w, alarms, now()); err != nil {
		common.PrintRuntimeErr(ctx, "export", "write", err)
		return nil
	}
	if exportOut != "" {
		fmt.Fprintf(outWriter(ctx), "Exported %d alarm(s) to %s\n", len(alarms), exportOut)
	}
	return nil
}

// fromInfo rebuilds an alarm from its wire description.
func fromInfo(info sharedCommon.AlarmInfo) (alarm.Alarm, error) {
	typ, err := alarm.ParseType(info.Type)
	if err != nil {
		return alarm.Alarm{}, err
	}
	a := alarm.Alarm{
		ID:        info.ID,
		Title:     info.Title,
		Body:      info.Body,
		Type:      typ,
		TriggerAt: info.TriggerAtMillis,
		OriginID:  info.OriginID,
	}
	if info.Daily != "" {
		h, m, err := parseClock(info.Daily)
		if err != nil {
			return alarm.Alarm{}, fmt.Errorf("alarm %d: %w", info.ID, err)
		}
		a.Repeat = &alarm.Daily{Hour: h, Minute: m}
	}
	return a, nil
}
