package browser

import (
	"net"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"
)

// FindChrome on the FS
func FindChrome() string {
	switch runtime.GOOS {
	case "windows":
		return "C:\\Program Files (x86)\\Google\\Chrome\\Application\\chrome.exe"
	case "darwin":
		return "/Applications/Google Chrome.app/Contents/MacOS/Google Chrome"
	case "linux":
		for _, candidate := range []string{
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
		} {
			if _, err := os.Stat(candidate); err == nil {
				return candidate
			}
		}
		return "/usr/bin/chromium-browser"
	}
	return ""
}

func randPort() string {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		log.Warn().Err(err).Msg("unable to get port using default 9222")
		return "9222"
	}
	_, port, _ := net.SplitHostPort(l.Addr().String())
	l.Close()
	return port
}
