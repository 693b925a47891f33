package cmd

import "time"

const (
	DEF_CALL_TIMEOUT     = 10 * time.Second
	DEF_SHUTDOWN_TIMEOUT = 10 * time.Second
	DEF_SCHEDULE_LAYOUT  = "2006-01-02 15:04"
	DEF_APP_NAME         = "warpalarm"
)

const DESCRIPTION = `
WarpAlarm is a reliable alarm daemon for the desktop. Alarms are kept
in a durable store, survive daemon restarts, and ring with sound,
notification and a held wake lock until you dismiss or snooze them.
`

const (
	ScheduleDescription = `The schedule command registers a one-shot alarm. Give either
an absolute local time with --at or a delay with --in. Scheduling
an id that is already pending replaces it.

Example:
        warpalarm schedule --id 1 --title "Stand up" --in 45m
        warpalarm schedule --id 2 --type medicine --at "2027-01-05 08:00"

`
	RepeatDescription = `The repeat command registers an alarm that rings every day
at the given local time until cancelled.

Example:
        warpalarm repeat --id 3 --time 06:30 --title "Wake up"

`
	CancelDescription = `The cancel command removes a pending alarm together with
any snooze it produced.

Example:
        warpalarm cancel 1

`
	ListDescription = `The list command displays pending alarms ordered by
their next trigger time.

Example:
        warpalarm list

`
	StatusDescription = `The status command shows whether an alarm is ringing.

Example:
        warpalarm status

`
	PermissionsDescription = `The permissions command checks, requests, explains or
records the grants reliable alarms depend on: "exact" (exact
timers) and "power" (the daemon starts with your session).

Example:
        warpalarm permissions check
        warpalarm permissions grant exact

`
	ExportDescription = `The export command writes pending alarms as an iCalendar
file, to stdout or to --out.

Example:
        warpalarm export --out alarms.ics

`
	WatchDescription = `The watch command shows a countdown to the next alarm and
exits when it starts ringing.

Example:
        warpalarm watch

`
)
