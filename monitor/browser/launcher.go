// Package browser launches an instrumented chrome and translates debugger
// protocol events into monitor feeds.
package browser

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/wirepair/gcd"
	"gitlab.com/extmon/extmon"
)

var startupFlags = []string{
	"--enable-automation",
	"--test-type",
	"--disable-client-side-phishing-detection",
	"--disable-component-update",
	"--disable-infobars",
	"--disable-domain-reliability",
	"--disable-background-networking",
	"--disable-sync",
	"--disable-default-apps",
	"--disable-popup-blocking",
	"--disable-features=TranslateUI",
	"--disable-dev-shm-usage",
	"--no-sandbox",
	"--no-first-run",
	"--window-size=1024,768",
	"--safebrowsing-disable-auto-update",
	"--password-store=basic",
	// the activity log only exists with this flag, the activity reader
	// depends on it
	"--enable-extension-activity-logging",
	"--enable-logging",
	"--v=1",
	"about:blank",
}

// ErrNoChrome when no binary was configured and discovery failed
var ErrNoChrome = errors.New("no chrome binary found")

// Launcher owns one instrumented chrome process
type Launcher struct {
	g          *gcd.Gcd
	profileDir string
	port       string
}

// Launch chrome with the extension under observation loaded and activity
// logging enabled. The profile lives under the data path so the activity
// database survives for the reader.
func Launch(cfg *extmon.Config) (*Launcher, error) {
	chrome := cfg.ChromePath
	if chrome == "" {
		chrome = FindChrome()
	}
	if chrome == "" {
		return nil, ErrNoChrome
	}

	profileDir := filepath.Join(cfg.DataPath, "chrome-profile")
	if err := os.MkdirAll(profileDir, 0766); err != nil {
		return nil, errors.Wrap(err, "failed to create profile directory")
	}

	flags := make([]string, 0, len(startupFlags)+3)
	flags = append(flags, startupFlags...)
	if cfg.ExtensionPath != "" {
		flags = append(flags, "--disable-extensions-except="+cfg.ExtensionPath)
		flags = append(flags, "--load-extension="+cfg.ExtensionPath)
	}
	if cfg.Headless {
		flags = append(flags, "--headless=new")
	}

	b := gcd.NewChromeDebugger()
	b.AddFlags(flags)

	port := randPort()
	if err := b.StartProcess(chrome, profileDir, port); err != nil {
		return nil, errors.Wrap(err, "failed to start chrome")
	}

	log.Info().Str("chrome", chrome).Str("port", port).Str("profile", profileDir).Msg("chrome started")
	return &Launcher{g: b, profileDir: profileDir, port: port}, nil
}

// ProfileDir holding the activity database
func (l *Launcher) ProfileDir() string {
	return l.profileDir
}

// Port of the debugger endpoint
func (l *Launcher) Port() string {
	return l.port
}

// Attach to the first page target and wire it into the given feeds
func (l *Launcher) Attach(network extmon.NetworkFeed, dom extmon.DomFeed) (*Tab, error) {
	target, err := l.g.GetFirstTab()
	if err != nil {
		return nil, errors.Wrap(err, "failed to attach to page target")
	}
	return NewTab(l.g, target, network, dom)
}

// Close the chrome process. The profile directory is left behind, reports
// reference it.
func (l *Launcher) Close() error {
	if l.g == nil {
		return nil
	}
	if err := l.g.ExitProcess(); err != nil {
		log.Warn().Err(err).Msg("failed to exit chrome cleanly")
		return err
	}
	return nil
}
