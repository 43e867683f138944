package ui

import (
	"fmt"
	"os/exec"
	"runtime"
)

// OpenURL hands a URL to the operating system's default handler.
// Fire-and-forget: the browser process is not waited on, only the launch
// itself can fail.
func OpenURL(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", url, err)
	}
	return nil
}
