// Package notify posts desktop notifications for clipboard and file events of
// the annotation viewer.
package notify

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventOpen fires when an image is opened for annotation.
	EventOpen Event = "open"
	// EventCopy fires when shapes or a frame are copied to the clipboard.
	EventCopy Event = "copy"
	// EventPaste fires when shapes are pasted from the clipboard.
	EventPaste Event = "paste"
)

// Events lists every event in display order.
var Events = []Event{EventOpen, EventCopy, EventPaste}

// Preferences holds the notification title and per event body templates.
// Templates receive one %s argument.
type Preferences struct {
	Title     string
	Templates map[Event]string
}

// DefaultPreferences returns the built in titles and templates.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "annocanvas",
		Templates: map[Event]string{
			EventOpen:  "Opened %s",
			EventCopy:  "Copied %s to clipboard",
			EventPaste: "Pasted %s",
		},
	}
}

// LoadPreferences applies ANNOCANVAS_NOTIFY_* environment overrides to the
// defaults.
func LoadPreferences() Preferences {
	prefs := DefaultPreferences()
	if v := strings.TrimSpace(os.Getenv("ANNOCANVAS_NOTIFY_TITLE")); v != "" {
		prefs.Title = v
	}
	for _, e := range Events {
		key := "ANNOCANVAS_NOTIFY_" + strings.ToUpper(string(e)) + "_TEXT"
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			prefs.Templates[e] = v
		}
	}
	return prefs
}

type message struct {
	title string
	body  string
	icon  string
}

// Notifier sends notifications for the events enabled on it. A nil Notifier
// is valid and silent.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	log     *logrus.Logger
	send    func(message) error
}

// New returns a Notifier with every event disabled.
func New(prefs Preferences, log *logrus.Logger) *Notifier {
	templates := make(map[Event]string, len(prefs.Templates))
	for k, v := range prefs.Templates {
		templates[k] = v
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Notifier{
		prefs:   Preferences{Title: prefs.Title, Templates: templates},
		enabled: make(map[Event]bool),
		log:     log,
		send:    platformSend,
	}
}

// Enable toggles the notifier for event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	n.enabled[event] = enabled
}

// Enabled reports whether event produces notifications.
func (n *Notifier) Enabled(event Event) bool {
	return n != nil && n.enabled[event]
}

// Open notifies that path was opened, using the image as the icon when the
// platform supports it.
func (n *Notifier) Open(path string) {
	if !n.Enabled(EventOpen) {
		return
	}
	detail := strings.TrimSpace(path)
	icon := ""
	if abs, err := filepath.Abs(path); err == nil {
		detail = filepath.Base(abs)
		if _, err := os.Stat(abs); err == nil {
			icon = abs
		}
	}
	n.dispatch(EventOpen, detail, icon)
}

// Copy notifies that detail was copied.
func (n *Notifier) Copy(detail string) {
	n.dispatch(EventCopy, detail, "")
}

// Paste notifies that detail was pasted.
func (n *Notifier) Paste(detail string) {
	n.dispatch(EventPaste, detail, "")
}

func (n *Notifier) dispatch(event Event, detail, icon string) {
	if !n.Enabled(event) {
		return
	}
	template := strings.TrimSpace(n.prefs.Templates[event])
	if template == "" {
		return
	}
	body := strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
	if body == "" {
		return
	}
	if err := n.send(message{title: n.prefs.Title, body: body, icon: icon}); err != nil {
		n.log.WithField("event", event).Warnf("notification: %v", err)
	}
}

// Shapes formats a shape count for a notification body.
func Shapes(n int) string {
	if n == 1 {
		return "1 shape"
	}
	return fmt.Sprintf("%d shapes", n)
}
