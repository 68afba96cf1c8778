//go:build windows

package notify

import (
	"fmt"
	"os/exec"
	"strings"
)

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func platformSend(m message) error {
	script := fmt.Sprintf(`[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType=Windows Runtime] > $null; `+
		`$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02); `+
		`$texts = $template.GetElementsByTagName("text"); `+
		`$texts.Item(0).AppendChild($template.CreateTextNode(%s)) > $null; `+
		`$texts.Item(1).AppendChild($template.CreateTextNode(%s)) > $null; `+
		`[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%s).Show([Windows.UI.Notifications.ToastNotification]::new($template));`,
		psQuote(m.title), psQuote(m.body), psQuote(m.title))
	return exec.Command("powershell.exe", "-NoProfile", "-Command", script).Run()
}
