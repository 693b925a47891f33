// Package cmd implements the warpalarm command line: the daemon itself and
// the client commands that drive it over JSON-RPC.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

var currentBuildArgs BuildArgs

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "daemon-uri",
		Usage:  "connect to the daemon at this URI (unix:///path, tcp://host:port, pipe://name)",
		EnvVar: sharedCommon.DaemonURIEnv,
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := cli.App{
		Name:                  DEF_APP_NAME,
		HelpName:              DEF_APP_NAME,
		Usage:                 "Reliable alarms for the desktop.",
		Version:               fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType),
		UsageText:             "warpalarm <command> [arguments...]",
		Description:           DESCRIPTION,
		CustomAppHelpTemplate: HELP_TEMPL,
		OnUsageError:          common.UsageErrorCallback,
		Flags:                 globalFlags,
		Commands: []cli.Command{
			{
				Name:   "daemon",
				Usage:  "runs the alarm daemon in the foreground",
				Action: daemon,
				Flags:  daemonFlags,
			},
			{
				Name:               "schedule",
				Aliases:            []string{"s"},
				Usage:              "schedules a one-shot alarm",
				Description:        ScheduleDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             schedule,
				Flags:              scheduleFlags,
			},
			{
				Name:               "repeat",
				Usage:              "schedules an alarm that rings daily",
				Description:        RepeatDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             repeat,
				Flags:              repeatFlags,
			},
			{
				Name:               "cancel",
				Aliases:            []string{"c"},
				Usage:              "cancels a pending alarm",
				UsageText:          "<alarm id>",
				Description:        CancelDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             cancel,
			},
			{
				Name:               "list",
				Aliases:            []string{"l"},
				Usage:              "lists pending alarms",
				Description:        ListDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             list,
			},
			{
				Name:   "dismiss",
				Usage:  "stops the ringing alarm",
				Action: dismiss,
			},
			{
				Name:   "snooze",
				Usage:  "stops the ringing alarm and rings again in 5 minutes",
				Action: snooze,
			},
			{
				Name:               "status",
				Usage:              "shows whether an alarm is ringing",
				Description:        StatusDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             status,
			},
			{
				Name:        "permissions",
				Aliases:     []string{"p"},
				Usage:       "checks and grants alarm permissions",
				Description: PermissionsDescription,
				Subcommands: []cli.Command{
					{Name: "check", Usage: "shows granted capabilities", Action: permissionsCheck},
					{Name: "request", Usage: "asks for missing capabilities", Action: permissionsRequest},
					{Name: "explain", Usage: "explains what is missing", Action: permissionsExplain},
					{Name: "grant", Usage: "records a grant: exact or power", UsageText: "<exact|power>", Action: permissionsGrant},
				},
			},
			{
				Name:               "export",
				Usage:              "exports pending alarms as iCalendar",
				Description:        ExportDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				OnUsageError:       common.UsageErrorCallback,
				Action:             export,
				Flags:              exportFlags,
			},
			{
				Name:               "watch",
				Aliases:            []string{"w"},
				Usage:              "shows a countdown to the next alarm",
				Description:        WatchDescription,
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             watch,
			},
			{
				Name:   "stop-daemon",
				Usage:  "stops the running daemon",
				Action: stopDaemon,
			},
			{
				Name:    "help",
				Aliases: []string{"h"},
				Usage:   "prints the help message",
				Action:  common.Help,
			},
			{
				Name:               "version",
				Aliases:            []string{"v"},
				Usage:              "prints installed version of warpalarm",
				UsageText:          " ",
				CustomHelpTemplate: CMD_HELP_TEMPL,
				Action:             common.GetVersion,
			},
		},
		HideHelp:    true,
		HideVersion: true,
	}
	app.Commands = append(app.Commands, getPlatformCommands()...)
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}
