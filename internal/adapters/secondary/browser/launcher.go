package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fredcamaral/patterndeck/internal/domain/ports"
)

// ErrNoBrowser is returned when no candidate browser can be found
var ErrNoBrowser = errors.New("no supported browsers found on this system")

// Launcher opens the deck URL in a local browser
type Launcher struct {
	browsers  []Browser
	preferred string

	// lookPath and start are swapped out in tests
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
}

// Browser represents a browser configuration
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// NewLauncher creates a launcher. preferred is a browser name from the
// configuration; empty or "default" picks the first available browser.
func NewLauncher(preferred string) *Launcher {
	return &Launcher{
		browsers:  platformBrowsers(runtime.GOOS),
		preferred: preferred,
		lookPath:  exec.LookPath,
		start:     startDetached,
	}
}

// Launch opens a URL in the selected browser without waiting for it to exit
func (l *Launcher) Launch(url string, noOpen bool) error {
	if noOpen {
		return nil
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(browser.Command, browser.Args(url)...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}

	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the preferred browser if it is installed, otherwise
// the first candidate whose executable is in PATH.
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, ErrNoBrowser
	}

	if l.preferred != "" && !strings.EqualFold(l.preferred, "default") {
		for i := range l.browsers {
			candidate := l.browsers[i]
			if strings.EqualFold(candidate.Name, l.preferred) && l.available(candidate) {
				return &candidate, nil
			}
		}
	}

	for i := range l.browsers {
		candidate := l.browsers[i]
		if l.available(candidate) {
			return &candidate, nil
		}
	}

	return nil, ErrNoBrowser
}

func (l *Launcher) available(b Browser) bool {
	_, err := l.lookPath(b.Command)
	return err == nil
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed candidate table
	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't wait for browser to close
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

func urlOnly(url string) []string {
	return []string{url}
}

// platformBrowsers lists launch candidates for an OS in preference order
func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		return []Browser{
			{Name: "Default", Command: "open", Args: urlOnly},
			{Name: "Chrome", Command: "open", Args: func(url string) []string {
				return []string{"-a", "Google Chrome", url}
			}},
			{Name: "Safari", Command: "open", Args: func(url string) []string {
				return []string{"-a", "Safari", url}
			}},
			{Name: "Firefox", Command: "open", Args: func(url string) []string {
				return []string{"-a", "Firefox", url}
			}},
		}
	case "linux", "freebsd", "openbsd":
		return []Browser{
			{Name: "Default", Command: "xdg-open", Args: urlOnly},
			{Name: "Chrome", Command: "google-chrome", Args: urlOnly},
			{Name: "Chromium", Command: "chromium", Args: urlOnly},
			{Name: "Firefox", Command: "firefox", Args: urlOnly},
		}
	case "windows":
		return []Browser{
			{Name: "Default", Command: "rundll32", Args: func(url string) []string {
				return []string{"url.dll,FileProtocolHandler", url}
			}},
			{Name: "Chrome", Command: "cmd", Args: func(url string) []string {
				return []string{"/c", "start", "chrome", url}
			}},
			{Name: "Edge", Command: "cmd", Args: func(url string) []string {
				return []string{"/c", "start", "msedge", url}
			}},
		}
	default:
		return nil
	}
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
