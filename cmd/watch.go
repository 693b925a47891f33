package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
)

// nextAlarm returns the pending alarm with the earliest trigger time.
func nextAlarm(alarms []sharedCommon.AlarmInfo) (sharedCommon.AlarmInfo, bool) {
	if len(alarms) == 0 {
		return sharedCommon.AlarmInfo{}, false
	}
	sorted := append([]sharedCommon.AlarmInfo(nil), alarms...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].TriggerAtMillis < sorted[j].TriggerAtMillis
	})
	return sorted[0], true
}

func watch(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rang := make(chan sharedCommon.RingStatusResult, 1)
	client, err := connect(ctx, func(method string, st sharedCommon.RingStatusResult) {
		if method != sharedCommon.NotifyRingStarted {
			return
		}
		select {
		case rang <- st:
		default:
		}
	})
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	alarms, err := client.List(c)
	done()
	if err != nil {
		common.PrintRuntimeErr(ctx, "watch", "alarm_list", err)
		return nil
	}
	next, ok := nextAlarm(alarms)
	if !ok {
		fmt.Fprintln(outWriter(ctx), "warpalarm: no pending alarms")
		return nil
	}

	start := now()
	until := time.UnixMilli(next.TriggerAtMillis).Sub(start)
	p := mpb.NewWithContext(sigCtx, mpb.WithOutput(outWriter(ctx)), mpb.WithWidth(64))
	label := fmt.Sprintf("#%d %s", next.ID, next.Title)
	bar := common.InitCountdown(p, label, until)
	total := common.CountdownTotal(until)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	var ringing *sharedCommon.RingStatusResult
loop:
	for {
		select {
		case <-sigCtx.Done():
			bar.Abort(false)
			break loop
		case st := <-rang:
			ringing = &st
			bar.SetCurrent(total)
			break loop
		case <-ticker.C:
			elapsed := int64(now().Sub(start) / time.Second)
			if elapsed >= total {
				bar.SetCurrent(total)
				break loop
			}
			bar.SetCurrent(elapsed)
		}
	}
	p.Wait()
	if ringing != nil {
		printStatus(outWriter(ctx), ringing)
	}
	return nil
}
