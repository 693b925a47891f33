package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"
	sharedCommon "github.com/warpdl/warpalarm/common"
	"github.com/warpdl/warpalarm/internal/alarm"
	"github.com/warpdl/warpalarm/internal/bus"
	"github.com/warpdl/warpalarm/internal/config"
	runner "github.com/warpdl/warpalarm/internal/daemon"
	"github.com/warpdl/warpalarm/internal/delivery"
	"github.com/warpdl/warpalarm/internal/metrics"
	"github.com/warpdl/warpalarm/internal/notify"
	"github.com/warpdl/warpalarm/internal/permission"
	"github.com/warpdl/warpalarm/internal/power"
	"github.com/warpdl/warpalarm/internal/ring"
	alarmsched "github.com/warpdl/warpalarm/internal/schedule"
	"github.com/warpdl/warpalarm/internal/secret"
	"github.com/warpdl/warpalarm/internal/server"
	"github.com/warpdl/warpalarm/internal/sound"
	"github.com/warpdl/warpalarm/internal/store"
	"github.com/warpdl/warpalarm/internal/timer"
	"github.com/warpdl/warpalarm/pkg/logger"
)

// DaemonComponents holds all initialized daemon components so they can be
// closed in reverse order of initialization.
type DaemonComponents struct {
	Store      *store.DB
	Registry   *prometheus.Registry
	Surface    *notify.DBusSurface
	Inhibitor  *power.LogindInhibitor
	Timers     *timer.Service
	Scheduler  *alarmsched.Scheduler
	Controller *ring.Controller
	Deliverer  *delivery.Deliverer
	Notifier   *server.RPCNotifier
	Server     *server.Server
	Web        *server.WebServer

	cancel context.CancelFunc
	logger logger.Logger
}

// Close releases all daemon component resources in reverse order of
// initialization.
func (c *DaemonComponents) Close() {
	if c.logger != nil {
		c.logger.Info("Shutting down daemon...")
	}
	if c.Web != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DEF_SHUTDOWN_TIMEOUT)
		if err := c.Web.Shutdown(ctx); err != nil && c.logger != nil {
			c.logger.Warning("web shutdown: %v", err)
		}
		cancel()
	}
	if c.Server != nil {
		_ = c.Server.Shutdown()
	}
	if c.cancel != nil {
		c.cancel()
	}
	if c.Timers != nil {
		c.Timers.Wait()
	}
	// after the timers drain, so a late fire cannot start a new session
	if c.Controller != nil {
		ctx, cancel := context.WithTimeout(context.Background(), DEF_SHUTDOWN_TIMEOUT)
		c.Controller.Close(ctx)
		cancel()
	}
	if c.Inhibitor != nil {
		_ = c.Inhibitor.Close()
	}
	if c.Surface != nil {
		_ = c.Surface.Close()
	}
	if c.Store != nil {
		_ = c.Store.Close()
	}
	if c.logger != nil {
		c.logger.Info("Daemon stopped")
	}
}

// probeSystemBus reports whether name is owned on the system bus.
func probeSystemBus(name string) permission.Probe {
	return func() bool {
		conn, err := bus.System()
		if err != nil {
			return false
		}
		defer conn.Close()
		return bus.NameHasOwner(conn, name)
	}
}

// initDaemonComponents wires the alarm lifecycle: the durable timer store,
// scheduling, delivery, ringing, notifications and the RPC front ends.
//
// On error, any partially initialized components are cleaned up before
// returning.
var initDaemonComponents = func(cfg *config.Config, log logger.Logger) (*DaemonComponents, error) {
	c := &DaemonComponents{logger: log}

	db, err := store.Open(cfg.StorePath)
	if err != nil {
		log.Error("Alarm store initialization failed: %v", err)
		return nil, err
	}
	c.Store = db

	c.Registry = prometheus.NewRegistry()
	m := metrics.MustNewMetrics(c.Registry)

	surfaces := notify.Multi{notify.NewLogSurface(log)}
	var prompter permission.Prompter
	if s, err := notify.NewDBusSurface(runner.DefaultDisplayName, log); err != nil {
		log.Warning("Desktop notifications unavailable: %v", err)
	} else {
		c.Surface = s
		surfaces = notify.Multi{s}
		prompter = s
	}

	sounds := sound.Resolver{
		Fs:        afero.NewOsFs(),
		Dir:       cfg.SoundDir,
		Preferred: cfg.SoundPreferred,
		Fallback:  cfg.SoundFallback,
	}

	var autostartApp permission.AutostartApp
	if app, err := permission.NewAutostartApp(runner.DefaultName, runner.DefaultDisplayName); err != nil {
		log.Warning("Session autostart unavailable: %v", err)
	} else {
		autostartApp = app
	}

	caps := permission.Detect(permission.Probes{
		ExactTimer:          func() bool { return true },
		ForegroundExecution: func() bool { return autostartApp != nil },
		Notifications:       func() bool { return c.Surface != nil },
		WakeInhibit:         probeSystemBus("org.freedesktop.login1"),
		Sound: func() bool {
			_, _, err := sounds.Resolve()
			return err == nil
		},
	})
	log.Info("Capabilities: %+v", caps)

	var inhibitor power.Inhibitor = power.NopInhibitor{}
	if caps.WakeInhibit {
		if inh, err := power.NewLogindInhibitor(runner.DefaultName); err != nil {
			log.Warning("Wake inhibitor unavailable: %v", err)
		} else {
			c.Inhibitor = inh
			inhibitor = inh
		}
	}

	host := permission.NewDesktopHost(caps, db, prompter, autostartApp, log)
	gate := permission.NewGate(host, log)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	// the timer service fires before the deliverer exists
	var deliverer *delivery.Deliverer
	c.Timers = timer.New(ctx, db, log, func(a alarm.Alarm) { deliverer.Fire(a) })
	c.Scheduler = alarmsched.New(gate, c.Timers, log, m)

	var player sound.Player
	if caps.Sound {
		player = sound.OtoPlayer{}
	}
	c.Controller = ring.NewController(ring.Options{
		Capabilities:  caps,
		Inhibitor:     inhibitor,
		Surface:       surfaces,
		Sounds:        sounds,
		Player:        player,
		Rescheduler:   c.Scheduler,
		Metrics:       m,
		WakeTimeout:   cfg.WakeTimeout,
		UIWakeTimeout: cfg.UIWakeTimeout,
	}, log)
	deliverer = delivery.New(cfg.DeliveryBudget, log, m,
		delivery.Ring(c.Controller),
		delivery.Fallback(surfaces, time.Now),
	)
	c.Deliverer = deliverer
	if c.Surface != nil {
		c.Surface.OnAction(c.Controller.HandleAction)
	}

	c.Notifier = server.NewRPCNotifier(log)
	c.Controller.Subscribe(c.Notifier.OnRingEvent)

	missed, err := c.Timers.Restore(ctx, time.Now())
	if err != nil {
		log.Error("Restoring alarms failed: %v", err)
		c.Close()
		return nil, err
	}
	if len(missed) > 0 {
		log.Warning("%d alarm(s) came due while the daemon was down; ringing now", len(missed))
	}

	api := server.NewAPI(c.Scheduler, gate, c.Controller, log, sharedCommon.VersionResult{
		Version:   currentBuildArgs.Version,
		Commit:    currentBuildArgs.Commit,
		BuildType: currentBuildArgs.BuildType,
	})
	methods := api.Methods()
	c.Server = server.NewServer(log, methods, c.Notifier, cfg.SocketPath, cfg.TCPPort)

	if cfg.RPCEnabled || cfg.MetricsEnabled {
		webCfg := server.WebConfig{
			ListenAll: cfg.RPCListenAll,
			Port:      cfg.RPCPort,
		}
		if cfg.RPCEnabled {
			token, err := secret.Token(secret.NewKeyring(), secret.NewFileStore(sharedCommon.ConfigDir()))
			if err != nil {
				log.Error("RPC token unavailable: %v", err)
				c.Close()
				return nil, fmt.Errorf("rpc token: %w", err)
			}
			webCfg.Secret = token
		}
		if cfg.MetricsEnabled {
			webCfg.Gatherer = c.Registry
		}
		c.Web = server.NewWebServer(log, methods, c.Notifier, webCfg)
	}
	return c, nil
}
