package canvas

import (
	"fmt"
	"math"
	"strings"

	"github.com/example/annocanvas/internal/geom"
	"github.com/example/annocanvas/internal/shape"
)

// Strategy selects how clicks in create mode build a shape.
type Strategy int

const (
	// StrategyFourPoint appends one vertex per click and commits at four.
	StrategyFourPoint Strategy = iota
	// StrategyRectangle takes two opposite corners.
	StrategyRectangle
	// StrategyPolygon appends vertices until the first point is clicked again.
	StrategyPolygon
)

var strategyNames = map[Strategy]string{
	StrategyFourPoint: "four_point",
	StrategyRectangle: "rectangle",
	StrategyPolygon:   "polygon",
}

func (s Strategy) String() string {
	if n, ok := strategyNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts a config or CLI name into a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	n := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	switch n {
	case "four_point", "fourpoint", "":
		return StrategyFourPoint, nil
	case "rectangle", "rect", "square":
		return StrategyRectangle, nil
	case "polygon", "poly":
		return StrategyPolygon, nil
	}
	return StrategyFourPoint, fmt.Errorf("unknown strategy %q", name)
}

// drawer is implemented by each strategy.
type drawer interface {
	// addPoint places the preview end point into the in-progress shape.
	addPoint(c *Canvas, cur *shape.Shape, p geom.Point)
	// shouldFinalize reports whether cur is complete.
	shouldFinalize(cur *shape.Shape) bool
	// preview returns the rubber-band segment for pointer position p.
	preview(c *Canvas, cur *shape.Shape, p geom.Point) [2]geom.Point
	// snapsToStart reports whether the pointer is attracted to the first
	// vertex.
	snapsToStart() bool
	// reopen trims a committed shape that is being drawn again.
	reopen(cur *shape.Shape)
}

func (s Strategy) drawer() drawer {
	switch s {
	case StrategyRectangle:
		return rectangle{}
	case StrategyPolygon:
		return polygon{}
	}
	return fourPoint{}
}

type fourPoint struct{}

func (fourPoint) addPoint(_ *Canvas, cur *shape.Shape, p geom.Point) { cur.AddPoint(p) }

func (fourPoint) shouldFinalize(cur *shape.Shape) bool { return cur.Len() >= 4 }

func (fourPoint) preview(_ *Canvas, cur *shape.Shape, p geom.Point) [2]geom.Point {
	return [2]geom.Point{cur.Last(), p}
}

func (fourPoint) snapsToStart() bool { return true }

func (fourPoint) reopen(cur *shape.Shape) {
	if cur.Len() > 1 {
		cur.PopPoint()
	}
}

type rectangle struct{}

func (rectangle) addPoint(_ *Canvas, cur *shape.Shape, p geom.Point) {
	p0 := cur.First()
	cur.Points = []geom.Point{p0, geom.Pt(p.X, p0.Y), p, geom.Pt(p0.X, p.Y)}
}

func (rectangle) shouldFinalize(cur *shape.Shape) bool { return cur.Len() == 4 }

func (rectangle) preview(c *Canvas, cur *shape.Shape, p geom.Point) [2]geom.Point {
	p0 := cur.First()
	if c.square {
		p = squareCorner(p0, p)
	}
	return [2]geom.Point{p0, p}
}

func (rectangle) snapsToStart() bool { return false }

func (rectangle) reopen(cur *shape.Shape) { cur.Points = cur.Points[:1] }

// squareCorner returns the corner opposite p0 of the largest square that fits
// between p0 and p.
func squareCorner(p0, p geom.Point) geom.Point {
	d := p.Sub(p0)
	m := math.Min(math.Abs(d.X), math.Abs(d.Y))
	return p0.Add(geom.Pt(sign(d.X)*m, sign(d.Y)*m))
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

type polygon struct{}

func (polygon) addPoint(_ *Canvas, cur *shape.Shape, p geom.Point) {
	if cur.Len() >= 3 && p == cur.First() {
		cur.Close()
		return
	}
	cur.AddPoint(p)
}

func (polygon) shouldFinalize(cur *shape.Shape) bool { return cur.IsClosed() }

func (polygon) preview(_ *Canvas, cur *shape.Shape, p geom.Point) [2]geom.Point {
	return [2]geom.Point{cur.Last(), p}
}

func (polygon) snapsToStart() bool { return true }

func (polygon) reopen(*shape.Shape) {}
