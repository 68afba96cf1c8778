package shape

import (
	"bufio"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/example/annocanvas/internal/geom"
)

// FormatText renders shapes one per line as a quoted label followed by the
// vertices, for example:
//
//	"cat" 10,10 100,10 100,100 10,100
func FormatText(shapes []*Shape) string {
	var b strings.Builder
	for _, s := range shapes {
		b.WriteString(strconv.Quote(s.Label))
		for _, p := range s.Points {
			b.WriteByte(' ')
			b.WriteString(formatFloat(p.X))
			b.WriteByte(',')
			b.WriteString(formatFloat(p.Y))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// ParseText reads shapes written by FormatText. Blank lines and lines starting
// with '#' are skipped. Every parsed shape gets a fresh ID and is closed when
// it has at least three vertices.
func ParseText(text string) ([]*Shape, error) {
	var shapes []*Shape
	sc := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		s, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		shapes = append(shapes, s)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return shapes, nil
}

func parseLine(line string) (*Shape, error) {
	var label string
	if strings.HasPrefix(line, `"`) {
		quoted, err := strconv.QuotedPrefix(line)
		if err != nil {
			return nil, fmt.Errorf("label: %w", err)
		}
		label, _ = strconv.Unquote(quoted)
		line = line[len(quoted):]
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no vertices")
	}
	s := New()
	s.Label = label
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("vertex %q: want x,y", f)
		}
		x, err := strconv.ParseFloat(xs, 64)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", f, err)
		}
		y, err := strconv.ParseFloat(ys, 64)
		if err != nil {
			return nil, fmt.Errorf("vertex %q: %w", f, err)
		}
		if !finite(x) || !finite(y) {
			return nil, fmt.Errorf("vertex %q: coordinates must be finite", f)
		}
		s.AddPoint(geom.Pt(x, y))
	}
	if s.Len() >= 3 {
		s.Close()
	}
	return s, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
