package clicmds

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"net/http"
	_ "net/http/pprof"

	"github.com/pelletier/go-toml"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/extmon/activity"
	"gitlab.com/extmon/extmon"
	"gitlab.com/extmon/monitor"
	"gitlab.com/extmon/monitor/browser"
	"gitlab.com/extmon/store"
)

// screenshotMinInterval throttles captures so a noisy page can't flood the disk
const screenshotMinInterval = 2 * time.Second

// MonitorFlags for the monitor command
func MonitorFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "url",
			Usage: "url to navigate to after the browser starts",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "extension",
			Usage: "path to the unpacked extension to observe",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "config to use",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "extmontmp",
		},
		&cli.StringFlag{
			Name:  "chrome",
			Usage: "explicit chrome binary path",
			Value: "",
		},
		&cli.BoolFlag{
			Name:  "headless",
			Usage: "run the browser headless",
			Value: false,
		},
		&cli.BoolFlag{
			Name:  "profile",
			Usage: "enable to profile cpu/mem",
			Value: false,
		},
	}
}

// Monitor launches an instrumented browser with the extension loaded and
// records one monitoring session until interrupted.
func Monitor(ctx *cli.Context) error {
	if ctx.Bool("profile") {
		go func() {
			http.ListenAndServe(":6060", nil)
		}()
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	setupLogging(cfg.DataPath)

	reports := store.NewReportStore(cfg.DataPath + "/reports")
	if err := reports.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init report store")
		return err
	}
	defer reports.Close()

	session := monitor.NewSession(cfg, reports)

	launcher, err := browser.Launch(cfg)
	if err != nil {
		log.Error().Err(err).Msg("failed to launch browser")
		return err
	}
	defer launcher.Close()
	session.SetProfilePath(launcher.ProfileDir())

	if err := session.Start(activity.NewReader(launcher.ProfileDir())); err != nil {
		return err
	}

	relay := &domRelay{session: session, shotDir: cfg.DataPath + "/screenshots"}
	tab, err := launcher.Attach(session.Network(), relay)
	if err != nil {
		log.Error().Err(err).Msg("failed to attach to browser")
		return err
	}
	relay.setTab(tab)
	defer tab.Close()

	if cfg.URL != "" {
		navCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := tab.Navigate(navCtx, cfg.URL); err != nil {
			log.Warn().Str("url", cfg.URL).Err(err).Msg("initial navigation failed")
		}
		cancel()
	}

	statsDone := make(chan struct{})
	go logStats(session, statsDone)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	log.Info().Msg("Ctrl-C pressed, finalizing session")
	close(statsDone)

	report, err := session.Stop()
	if err != nil {
		log.Error().Err(err).Msg("session stop reported an error")
	}
	if report == nil {
		return err
	}

	har := session.HAR()
	if path, werr := store.WriteReportFile(cfg.DataPath+"/reports-json", report); werr != nil {
		log.Error().Err(werr).Msg("failed to export report")
	} else {
		log.Info().Str("path", path).Msg("report written")
	}
	if path, werr := store.WriteHARFile(cfg.DataPath+"/reports-json", report.ID, har); werr != nil {
		log.Error().Err(werr).Msg("failed to export archive")
	} else {
		log.Info().Str("path", path).Msg("archive written")
	}
	return err
}

func loadConfig(ctx *cli.Context) (*extmon.Config, error) {
	cfg := &extmon.Config{}
	if ctx.String("config") == "" {
		cfg = &extmon.Config{
			URL:           ctx.String("url"),
			ExtensionPath: ctx.String("extension"),
			DataPath:      ctx.String("datadir"),
			ChromePath:    ctx.String("chrome"),
			Headless:      ctx.Bool("headless"),
		}
		return cfg, nil
	}

	data, err := os.ReadFile(ctx.String("config"))
	if err != nil {
		return nil, err
	}
	if err := toml.NewDecoder(strings.NewReader(string(data))).Decode(cfg); err != nil {
		return nil, err
	}
	if cfg.URL == "" && ctx.String("url") != "" {
		cfg.URL = ctx.String("url")
	}
	if cfg.ExtensionPath == "" && ctx.String("extension") != "" {
		cfg.ExtensionPath = ctx.String("extension")
	}
	if cfg.DataPath == "" {
		cfg.DataPath = ctx.String("datadir")
	}
	return cfg, nil
}

func logStats(session *monitor.Session, done chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			stats := session.Stats()
			log.Info().
				Int("requests", stats.Requests).
				Int("extension_requests", stats.ExtensionRequests).
				Int("dom_events", stats.DomEvents).
				Int("activities", stats.Activities).
				Float64("rps", stats.RequestsPerSecond).
				Msg("session stats")
		}
	}
}

// domRelay forwards instrumentation events into the session and captures a
// screenshot on critical/high severity observations
type domRelay struct {
	session *monitor.Session
	shotDir string

	mu       sync.Mutex
	tab      *browser.Tab
	lastShot time.Time
}

func (r *domRelay) setTab(tab *browser.Tab) {
	r.mu.Lock()
	r.tab = tab
	r.mu.Unlock()
}

// DomEvent implements extmon.DomFeed
func (r *domRelay) DomEvent(ev *extmon.DomEvent) {
	r.session.DomEvent(ev)
	if ev == nil || (ev.Severity != extmon.SevCritical && ev.Severity != extmon.SevHigh) {
		return
	}

	r.mu.Lock()
	tab := r.tab
	throttled := time.Since(r.lastShot) < screenshotMinInterval
	if !throttled {
		r.lastShot = time.Now()
	}
	r.mu.Unlock()
	if tab == nil || throttled {
		return
	}

	shot, err := tab.CaptureToFile(r.shotDir, string(ev.Type), ev.URL)
	if err != nil {
		log.Debug().Err(err).Msg("screenshot capture failed")
		return
	}
	r.session.AddScreenshot(shot)
}
