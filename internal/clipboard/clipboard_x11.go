//go:build (linux || freebsd || openbsd || netbsd || dragonfly) && !cgo

package clipboard

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

var (
	initOnce sync.Once
	initErr  error
	owner    *selectionOwner
)

func ensureInit() error {
	initOnce.Do(func() {
		if !hasDisplay() {
			initErr = ErrNoDisplay
			return
		}
		owner, initErr = newSelectionOwner()
	})
	return initErr
}

// WriteImage offers img as image/png.
func WriteImage(img image.Image) error {
	if err := ensureInit(); err != nil {
		return wrap("write image", err)
	}
	data, err := encodePNG(img)
	if err != nil {
		return err
	}
	if err := owner.offer(map[xproto.Atom][]byte{owner.atoms.png: data}); err != nil {
		return wrap("write image", err)
	}
	return nil
}

// WriteText offers text as UTF8_STRING, text/plain and STRING.
func WriteText(text string) error {
	if err := ensureInit(); err != nil {
		return wrap("write text", err)
	}
	data := []byte(text)
	err := owner.offer(map[xproto.Atom][]byte{
		owner.atoms.utf8:      data,
		owner.atoms.textPlain: data,
		xproto.AtomString:     data,
	})
	if err != nil {
		return wrap("write text", err)
	}
	return nil
}

// ReadText returns the clipboard text, preferring UTF8_STRING over STRING.
func ReadText() (string, error) {
	if err := ensureInit(); err != nil {
		return "", wrap("read text", err)
	}
	data, err := owner.request(owner.atoms.utf8)
	if err != nil {
		if data, err = owner.request(xproto.AtomString); err != nil {
			return "", wrap("read text", err)
		}
	}
	data = bytes.TrimRight(data, "\x00")
	if len(data) == 0 {
		return "", wrap("read text", ErrNoText)
	}
	return string(data), nil
}

type atoms struct {
	clipboard xproto.Atom
	targets   xproto.Atom
	utf8      xproto.Atom
	textPlain xproto.Atom
	png       xproto.Atom
	property  xproto.Atom
}

// selectionOwner keeps a hidden window that owns CLIPBOARD and answers
// SelectionRequest events with whatever was offered last.
type selectionOwner struct {
	conn   *xgb.Conn
	window xproto.Window
	atoms  atoms

	mu     sync.RWMutex
	offers map[xproto.Atom][]byte
}

func newSelectionOwner() (*selectionOwner, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	const mask = xproto.EventMaskPropertyChange | xproto.EventMaskStructureNotify
	if err := xproto.CreateWindowChecked(conn, screen.RootDepth, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOutput, screen.RootVisual, xproto.CwEventMask, []uint32{mask}).Check(); err != nil {
		conn.Close()
		return nil, err
	}
	a, err := internAtoms(conn)
	if err != nil {
		xproto.DestroyWindow(conn, window)
		conn.Close()
		return nil, err
	}
	o := &selectionOwner{conn: conn, window: window, atoms: a}
	go o.serve()
	return o, nil
}

func internAtoms(conn *xgb.Conn) (atoms, error) {
	names := []string{"CLIPBOARD", "TARGETS", "UTF8_STRING", "text/plain;charset=utf-8", "image/png", "ANNOCANVAS_CLIPBOARD"}
	got := make([]xproto.Atom, len(names))
	for i, name := range names {
		reply, err := xproto.InternAtom(conn, false, uint16(len(name)), name).Reply()
		if err != nil {
			return atoms{}, fmt.Errorf("intern %s: %w", name, err)
		}
		got[i] = reply.Atom
	}
	return atoms{
		clipboard: got[0],
		targets:   got[1],
		utf8:      got[2],
		textPlain: got[3],
		png:       got[4],
		property:  got[5],
	}, nil
}

func (o *selectionOwner) offer(data map[xproto.Atom][]byte) error {
	o.mu.Lock()
	o.offers = data
	o.mu.Unlock()
	return xproto.SetSelectionOwnerChecked(o.conn, o.window, o.atoms.clipboard, xproto.TimeCurrentTime).Check()
}

func (o *selectionOwner) serve() {
	for {
		ev, err := o.conn.WaitForEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case xproto.SelectionRequestEvent:
			o.answer(e)
		case xproto.SelectionClearEvent:
			o.mu.Lock()
			o.offers = nil
			o.mu.Unlock()
		}
	}
}

func (o *selectionOwner) answer(e xproto.SelectionRequestEvent) {
	property := e.Property
	if property == xproto.AtomNone {
		property = e.Target
	}

	o.mu.RLock()
	defer o.mu.RUnlock()

	if e.Target == o.atoms.targets {
		targets := []xproto.Atom{o.atoms.targets}
		for atom := range o.offers {
			targets = append(targets, atom)
		}
		buf := make([]byte, len(targets)*4)
		for i, atom := range targets {
			xgb.Put32(buf[i*4:], uint32(atom))
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, xproto.AtomAtom, 32, uint32(len(targets)), buf)
	} else if data, ok := o.offers[e.Target]; ok {
		typ := e.Target
		if typ == o.atoms.textPlain || typ == xproto.AtomString {
			typ = o.atoms.utf8
		}
		xproto.ChangeProperty(o.conn, xproto.PropModeReplace, e.Requestor, property, typ, 8, uint32(len(data)), data)
	} else {
		property = xproto.AtomNone
	}

	notify := xproto.SelectionNotifyEvent{
		Time:      e.Time,
		Requestor: e.Requestor,
		Selection: e.Selection,
		Target:    e.Target,
		Property:  property,
	}
	_ = xproto.SendEvent(o.conn, false, e.Requestor, 0, string(notify.Bytes()))
}

// request converts the CLIPBOARD selection to target on a short-lived
// connection and waits for the owner's reply.
func (o *selectionOwner) request(target xproto.Atom) ([]byte, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	screen := xproto.Setup(conn).DefaultScreen(conn)
	window, err := xproto.NewWindowId(conn)
	if err != nil {
		return nil, err
	}
	if err := xproto.CreateWindowChecked(conn, 0, window, screen.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, xproto.CwEventMask, []uint32{xproto.EventMaskPropertyChange}).Check(); err != nil {
		return nil, err
	}
	defer xproto.DestroyWindow(conn, window)

	if err := xproto.ConvertSelectionChecked(conn, window, o.atoms.clipboard, target, o.atoms.property, xproto.TimeCurrentTime).Check(); err != nil {
		return nil, err
	}
	for {
		ev, err := conn.WaitForEvent()
		if err != nil {
			return nil, err
		}
		e, ok := ev.(xproto.SelectionNotifyEvent)
		if !ok {
			continue
		}
		if e.Property == xproto.AtomNone {
			return nil, fmt.Errorf("selection target %d unavailable", target)
		}
		reply, perr := xproto.GetProperty(conn, true, window, e.Property, xproto.GetPropertyTypeAny, 0, (1<<31)-1).Reply()
		if perr != nil {
			return nil, perr
		}
		return append([]byte(nil), reply.Value...), nil
	}
}
