//go:build darwin

package notify

import (
	"fmt"
	"os/exec"
)

func platformSend(m message) error {
	script := fmt.Sprintf("display notification %q with title %q", m.body, m.title)
	return exec.Command("osascript", "-e", script).Run()
}
