package shape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/annocanvas/internal/geom"
)

func TestFormatText(t *testing.T) {
	a := rect(10, 10, 100, 100)
	a.Label = "cat"
	b := New(geom.Pt(0.5, 1), geom.Pt(2, 3))
	got := FormatText([]*Shape{a, b})
	assert.Equal(t, "\"cat\" 10,10 100,10 100,100 10,100\n\"\" 0.5,1 2,3\n", got)
}

func TestParseText(t *testing.T) {
	text := `# two shapes
"big \"dog\"" 10,10 100,10 100,100

1.5,2 3,4
`
	shapes, err := ParseText(text)
	require.NoError(t, err)
	require.Len(t, shapes, 2)

	assert.Equal(t, `big "dog"`, shapes[0].Label)
	assert.Equal(t, []geom.Point{{X: 10, Y: 10}, {X: 100, Y: 10}, {X: 100, Y: 100}}, shapes[0].Points)
	assert.True(t, shapes[0].IsClosed())

	assert.Empty(t, shapes[1].Label)
	assert.Equal(t, []geom.Point{{X: 1.5, Y: 2}, {X: 3, Y: 4}}, shapes[1].Points)
	assert.False(t, shapes[1].IsClosed())
	assert.NotEqual(t, shapes[0].ID, shapes[1].ID)
}

func TestParseTextErrors(t *testing.T) {
	tests := map[string]string{
		"no vertices":   `"cat"`,
		"missing comma": `10 20`,
		"bad number":    `1,x`,
		"unterminated":  `"cat 1,2`,
		"nan":           `"x" 0,0 50,NaN 50,50`,
		"inf":           `0,0 +Inf,0 50,50`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseText("\n" + in)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "line 2")
		})
	}
}

func TestTextRoundTrip(t *testing.T) {
	a := rect(1.25, 2, 30, 40)
	a.Label = "plate"
	in := []*Shape{a, rect(5, 5, 6, 6)}
	out, err := ParseText(FormatText(in))
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i := range in {
		assert.True(t, SamePoints(in[i], out[i]))
		assert.Equal(t, in[i].Label, out[i].Label)
	}
}
