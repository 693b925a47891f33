package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	alarms, err := client.List(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "list", "alarm_list", err)
		return nil
	}
	if len(alarms) == 0 {
		fmt.Fprintln(outWriter(ctx), "warpalarm: no pending alarms")
		return nil
	}
	printAlarms(outWriter(ctx), alarms)
	return nil
}

// printAlarms writes a table of alarms sorted by trigger time.
func printAlarms(w io.Writer, alarms []sharedCommon.AlarmInfo) {
	sorted := append([]sharedCommon.AlarmInfo(nil), alarms...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TriggerAtMillis < sorted[j].TriggerAtMillis
	})

	txt := "Here are your alarms:"
	txt += "\n\n---------------------------------------------------------------------"
	txt += "\n|   Id  |          Title           |       Next ring      | Repeats |"
	txt += "\n|-------|--------------------------|----------------------|---------|"
	for _, a := range sorted {
		title := a.Title
		if n := len(title); n > 24 {
			title = title[:21] + "..."
		}
		repeats := a.Daily
		if repeats == "" {
			repeats = "-"
		}
		if a.OriginID != nil {
			repeats = fmt.Sprintf("snz %d", *a.OriginID)
		}
		txt += fmt.Sprintf("\n|%s|%s|%s|%s|",
			common.Beaut(fmt.Sprint(a.ID), 7),
			common.Beaut(title, 26),
			common.Beaut(formatMillis(a.TriggerAtMillis), 22),
			common.Beaut(repeats, 9),
		)
	}
	txt += "\n" + strings.Repeat("-", 69)
	fmt.Fprintln(w, txt)
}
