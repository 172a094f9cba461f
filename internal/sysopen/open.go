// open.go - Delegate a URL to the operating system's default handler

package sysopen

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// OpenURL opens the URL with the platform's default browser. Only web URLs
// are accepted; anything else is rejected before touching the shell.
func OpenURL(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("unsupported url scheme: %s", url)
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
