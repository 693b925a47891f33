package cmd

import (
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli"
	"github.com/warpdl/warpalarm/cmd/common"
	sharedCommon "github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/config"
	runner "github.com/warpdl/warpalarm/internal/daemon"
	"github.com/warpdl/warpalarm/pkg/logger"
	"golang.org/x/sync/errgroup"
)

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config",
		Usage: "path to a config file (default: <config dir>/config.yaml)",
	},
}

// newDaemonLogger logs to stderr and, when configured, to a file.
func newDaemonLogger(logFile string) (logger.Logger, error) {
	console := logger.NewStandardLogger(log.New(os.Stderr, "[warpalarm] ", log.LstdFlags))
	if logFile == "" {
		return console, nil
	}
	fl, err := logger.NewFileLogger(logFile)
	if err != nil {
		return nil, err
	}
	return logger.NewMultiLogger(console, fl), nil
}

func daemon(ctx *cli.Context) error {
	dir, err := sharedCommon.EnsureConfigDir()
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "config_dir", err)
		return nil
	}
	cfg, err := config.Load(dir, ctx.String("config"))
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "load_config", err)
		return nil
	}
	l, err := newDaemonLogger(cfg.LogFile)
	if err != nil {
		common.PrintRuntimeErr(ctx, "daemon", "logger", err)
		return nil
	}
	defer l.Close()

	r := runner.New(&runner.Config{
		Name:            runner.DefaultName,
		DisplayName:     runner.DefaultDisplayName,
		LockPath:        filepath.Join(dir, runner.LockFileName),
		ShutdownTimeout: DEF_SHUTDOWN_TIMEOUT,
	}, nil)

	sigCtx, cancel := setupShutdownHandler()
	defer cancel()

	body := func(ctx context.Context) error {
		if err := WritePidFile(); err != nil {
			l.Warning("Failed to write PID file: %v", err)
		}
		defer RemovePidFile()

		c, err := initDaemonComponents(cfg, l)
		if err != nil {
			return err
		}
		defer c.Close()
		return serveDaemon(ctx, c)
	}
	handled, err := runAsService(r, body)
	if !handled && err == nil {
		err = r.Run(sigCtx, body)
	}
	switch {
	case errors.Is(err, runner.ErrLocked):
		common.PrintRuntimeErr(ctx, "daemon", "lock", errors.New("another warpalarm daemon is already running"))
		return nil
	case err != nil:
		common.PrintRuntimeErr(ctx, "daemon", "run", err)
		return nil
	}
	return nil
}

// serveDaemon runs the front ends until ctx is canceled or one of them
// fails.
func serveDaemon(ctx context.Context, c *DaemonComponents) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.Server.Start(gctx)
	})
	if c.Web != nil {
		g.Go(func() error {
			return c.Web.Start()
		})
		g.Go(func() error {
			<-gctx.Done()
			sctx, cancel := context.WithTimeout(context.Background(), DEF_SHUTDOWN_TIMEOUT)
			defer cancel()
			return c.Web.Shutdown(sctx)
		})
	}
	if c.Surface != nil {
		g.Go(func() error {
			if err := c.Surface.Listen(gctx); err != nil {
				c.logger.Warning("Notification actions unavailable: %v", err)
			}
			return nil
		})
	}
	return g.Wait()
}
