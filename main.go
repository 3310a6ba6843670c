package main

import (
	"context"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/delaneyj/toolbelt/embeddednats"
	"github.com/mark3labs/assassin-core/anticheat"
	"github.com/mark3labs/assassin-core/assignment"
	"github.com/mark3labs/assassin-core/config"
	"github.com/mark3labs/assassin-core/coordinator"
	"github.com/mark3labs/assassin-core/events"
	"github.com/mark3labs/assassin-core/httpapi"
	"github.com/mark3labs/assassin-core/killpipeline"
	"github.com/mark3labs/assassin-core/middleware"
	_ "github.com/mark3labs/assassin-core/migrations"
	"github.com/mark3labs/assassin-core/proximity"
	"github.com/mark3labs/assassin-core/safezone"
	"github.com/mark3labs/assassin-core/scheduler"
	"github.com/mark3labs/assassin-core/store"
	"github.com/mark3labs/assassin-core/utils"
	"github.com/mark3labs/assassin-core/zoneengine"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/plugins/migratecmd"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	rand.Seed(time.Now().UnixNano())

	cfg := config.Load()

	app := pocketbase.New()

	// Add hook for setting player codenames on creation
	app.OnRecordCreate("users").BindFunc(func(e *core.RecordEvent) error {
		if e.Record.Get("codename") == "" {
			codename := utils.GenerateCodename(rand.New(rand.NewSource(time.Now().UnixNano())))
			e.Record.Set("codename", codename)
			log.Info("generated codename for new player", "codename", codename)
		}
		return e.Next()
	})

	// Migrations
	// loosely check if it was executed using "go run"
	isGoRun := strings.HasPrefix(os.Args[0], "tmp/bin")

	migratecmd.MustRegister(app, app.RootCmd, migratecmd.Config{
		Automigrate: isGoRun,
	})

	// Setup embedded NATS server
	log.Info("Starting embedded NATS server")

	ns, err := embeddednats.New(
		context.Background(),
		embeddednats.WithDirectory(cfg.DataDir+"/nats"),
		embeddednats.WithNATSServerOptions(&server.Options{
			JetStream: true,
		}),
	)
	if err != nil {
		log.Fatal("Failed to create NATS server", "error", err)
	}
	ns.NatsServer.Start()
	ns.WaitForServer()
	log.Info("NATS server started")

	clientOpts := []nats.Option{
		nats.Name("assassin-core"),
		nats.InProcessServer(ns.NatsServer),
	}

	nc, err := nats.Connect(ns.NatsServer.ClientURL(), clientOpts...)
	if err != nil {
		log.Fatal("Failed to connect to NATS", "error", err)
	}
	defer nc.Drain()
	log.Info("Connected to NATS server", "url", ns.NatsServer.ClientURL())

	publisher := events.NewPublisher(nc)

	st := store.New(app)
	safezones := safezone.New(st)
	assign := assignment.New(st)
	antiCheat := anticheat.New(cfg.AntiCheatRatePerSecond, cfg.AntiCheatBurst)
	proximityEngine := proximity.New(st, safezones, publisher)
	zoneEngine := zoneengine.New(st, publisher)
	killPipeline := killpipeline.New(st, safezones, antiCheat, assign, publisher)
	coord := coordinator.New(st, assign, publisher)

	sched := scheduler.New(st, zoneEngine, proximityEngine, assign, scheduler.Config{
		TickInterval:        cfg.SchedulerTickInterval,
		TickDeadline:        cfg.SchedulerTickDeadline,
		LeaseTTL:            cfg.SchedulerLeaseTTL,
		MaxFanout:           cfg.SchedulerMaxFanout,
		ProximityIdleCutoff: cfg.ProximityCacheIdleEvict,
	})

	api := &httpapi.API{
		Store:        st,
		Coordinator:  coord,
		SafeZones:    safezones,
		KillPipeline: killPipeline,
		Proximity:    proximityEngine,
		ZoneEngine:   zoneEngine,
		Assignment:   assign,
		AntiCheat:    antiCheat,
	}

	log.Info("System status",
		"nats", "Running",
		"jetstream", "Ready",
		"scheduler", "Running",
		"httpapi", "Registered")

	middleware.AddCookieSessionMiddleware(app)

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		api.Register(se.Router)

		se.Router.GET("/metrics", func(e *core.RequestEvent) error {
			promhttp.Handler().ServeHTTP(e.Response, e.Request)
			return nil
		})

		return se.Next()
	})

	schedulerCtx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sched.Run(schedulerCtx)
	defer sched.Stop()

	if err := app.Start(); err != nil {
		log.Fatal("Application failed to start", "error", err)
	}
}
