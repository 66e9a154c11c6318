// Package browser opens the served site in the user's browser
package browser

import (
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/fredcamaral/vidwatch/internal/domain/ports"
)

// ErrNoOpener is returned when no known opener is installed
var ErrNoOpener = errors.New("no supported browser opener found on this system")

// opener is a command that hands a URL to a browser
type opener struct {
	name string
	cmd  string
	args []string
}

// Launcher implements ports.BrowserLauncher with the platform's opener
type Launcher struct {
	openers  []opener
	lookPath func(string) (string, error)
	start    func(*exec.Cmd) error
}

// NewLauncher creates a launcher for the current platform
func NewLauncher() *Launcher {
	return &Launcher{
		openers:  platformOpeners(runtime.GOOS),
		lookPath: exec.LookPath,
		start:    startDetached,
	}
}

// Open shows target in the first available browser. Only http(s) URLs
// are accepted since the URL becomes a command argument.
func (l *Launcher) Open(target string) error {
	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", target)
	}

	o, err := l.selectOpener()
	if err != nil {
		return err
	}

	args := append(append([]string(nil), o.args...), u.String())
	cmd := exec.Command(o.cmd, args...) // #nosec G204 - opener from a fixed table, URL validated above
	if err := l.start(cmd); err != nil {
		return fmt.Errorf("launching %s: %w", o.name, err)
	}
	return nil
}

// Detect returns the name of the opener Open would use
func (l *Launcher) Detect() (string, error) {
	o, err := l.selectOpener()
	if err != nil {
		return "", err
	}
	return o.name, nil
}

func (l *Launcher) selectOpener() (opener, error) {
	for _, o := range l.openers {
		if _, err := l.lookPath(o.cmd); err == nil {
			return o, nil
		}
	}
	return opener{}, ErrNoOpener
}

// startDetached starts cmd without waiting for the browser to exit
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func platformOpeners(goos string) []opener {
	switch goos {
	case "darwin":
		return []opener{{name: "open", cmd: "open"}}
	case "linux", "freebsd", "openbsd":
		return []opener{
			{name: "xdg-open", cmd: "xdg-open"},
			{name: "sensible-browser", cmd: "sensible-browser"},
			{name: "Firefox", cmd: "firefox"},
			{name: "Chrome", cmd: "google-chrome"},
		}
	case "windows":
		return []opener{{name: "default browser", cmd: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}}
	default:
		return nil
	}
}

var _ ports.BrowserLauncher = (*Launcher)(nil)
