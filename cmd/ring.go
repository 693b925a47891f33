package cmd

import (
	"fmt"
	"io"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
)

func dismiss(ctx *cli.Context) error {
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "dismiss", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	ok, err := client.Dismiss(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "dismiss", "ring_dismiss", err)
		return nil
	}
	if ok {
		fmt.Fprintln(outWriter(ctx), "Alarm dismissed")
	} else {
		fmt.Fprintln(outWriter(ctx), "No alarm is ringing")
	}
	return nil
}

func snooze(ctx *cli.Context) error {
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "snooze", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	res, err := client.Snooze(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "snooze", "ring_snooze", err)
		return nil
	}
	if !res.Success {
		fmt.Fprintln(outWriter(ctx), "No alarm is ringing")
		return nil
	}
	fmt.Fprintf(outWriter(ctx), "Snoozed as alarm %d until %s\n", res.AlarmID, formatMillis(res.TriggerAtMillis))
	return nil
}

func status(ctx *cli.Context) error {
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	st, err := client.RingStatus(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "status", "ring_status", err)
		return nil
	}
	printStatus(outWriter(ctx), st)
	return nil
}

func printStatus(w io.Writer, st *sharedCommon.RingStatusResult) {
	if st.State != sharedCommon.RingStateRinging || st.Alarm == nil {
		fmt.Fprintln(w, "Idle: no alarm is ringing")
		return
	}
	fmt.Fprintf(w, "Ringing: alarm %d %q since %s\n", st.Alarm.ID, st.Alarm.Title, formatMillis(st.StartedAtMillis))
	if st.Alarm.Body != "" {
		fmt.Fprintf(w, "  %s\n", st.Alarm.Body)
	}
	if st.Degraded {
		fmt.Fprintln(w, "  (degraded: some ringing channels are unavailable)")
	}
	fmt.Fprintf(w, "  session %s\n", st.SessionID)
}
