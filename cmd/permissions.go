package cmd

import (
	"fmt"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
)

func yesNo(b bool) string {
	if b {
		return "granted"
	}
	return "missing"
}

func permissionsCheck(ctx *cli.Context) error {
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	res, err := client.CheckPermissions(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "check", err)
		return nil
	}
	w := outWriter(ctx)
	fmt.Fprintf(w, "exact timers:     %s\n", yesNo(res.CanScheduleExactAlarms))
	fmt.Fprintf(w, "power exemption:  %s\n", yesNo(res.BatteryOptimizationDisabled))
	if !res.HasPermissions {
		fmt.Fprintln(w, "\nRun \"warpalarm permissions explain\" for details.")
	}
	return nil
}

func permissionsRequest(ctx *cli.Context) error {
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	if err := client.RequestPermissions(c); err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "request", err)
		return nil
	}
	fmt.Fprintln(outWriter(ctx), "Permission request sent; answer the prompt on your desktop.")
	return nil
}

func permissionsExplain(ctx *cli.Context) error {
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	msg, err := client.ExplainPermissions(c)
	if err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "explain", err)
		return nil
	}
	fmt.Fprintln(outWriter(ctx), msg)
	return nil
}

func permissionsGrant(ctx *cli.Context) error {
	capability := ctx.Args().First()
	if capability == "" || capability == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := connect(ctx, nil)
	if err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "new_client", err)
		return nil
	}
	defer client.Close()

	c, done := callContext()
	defer done()
	if err := client.GrantPermission(c, capability); err != nil {
		common.PrintRuntimeErr(ctx, "permissions", "grant", err)
		return nil
	}
	fmt.Fprintf(outWriter(ctx), "Granted %s\n", capability)
	return nil
}
