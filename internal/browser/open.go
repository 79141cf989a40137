// Package browser hands a URL to the user's default browser. The dashboard
// has a web counterpart with screens the TUI does not carry (graphs, account
// management); the `iotdeck web` subcommand jumps there.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Open launches url in the default browser and returns without waiting.
func Open(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", url).Start()
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}
