// Package oscillator generates periodic waveforms from lookup tables with
// linear interpolation between entries.
package oscillator

import (
	"math"
	"strings"

	"github.com/rotisserie/eris"
)

// Shape selects a waveform table.
type Shape string

// Supported shapes. None is a constant 1 so an envelope passes through
// unchanged.
const (
	None     Shape = "none"
	Sine     Shape = "sine"
	Sawtooth Shape = "saw"
	Square   Shape = "square"
)

// Shapes lists the accepted shape names.
var Shapes = []Shape{None, Sine, Sawtooth, Square}

// ParseShape maps a name to a Shape.
func ParseShape(name string) (Shape, error) {
	s := Shape(strings.ToLower(strings.TrimSpace(name)))
	switch s {
	case None, Sine, Sawtooth, Square:
		return s, nil
	case "sawtooth":
		return Sawtooth, nil
	case "":
		return None, nil
	}
	return "", eris.Errorf("oscillator: unknown shape %q", name)
}

var (
	cosTable      = buildCos(512)
	sawtoothTable = buildSawtooth(512)
	squareTable   = buildSquare(128)
	noneTable     = []float64{1}
)

func buildCos(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		t[i] = math.Cos(float64(i) * 2.0 * math.Pi / float64(n))
	}
	return t
}

// buildSawtooth ramps from -1 to 1 across the table.
func buildSawtooth(n int) []float64 {
	t := make([]float64, n)
	k := 2.0 / (float64(n) - 1.0)
	for i := range t {
		t[i] = k*float64(i) - 1.0
	}
	return t
}

func buildSquare(n int) []float64 {
	t := make([]float64, n)
	for i := range t {
		if i <= n/2 {
			t[i] = -1.0
		} else {
			t[i] = 1.0
		}
	}
	return t
}

// LUT is a table-lookup oscillator. It is not safe for concurrent use.
type LUT struct {
	table  []float64
	xrange float64
	x      float64 // phase in table entries
	step   float64 // entries advanced per sample
}

// New returns an oscillator of the given shape at freq Hz for a stream at
// rate samples per second.
func New(shape Shape, freq float64, rate int) (*LUT, error) {
	var table []float64
	switch shape {
	case None:
		table = noneTable
	case Sine:
		table = cosTable
	case Sawtooth:
		table = sawtoothTable
	case Square:
		table = squareTable
	default:
		return nil, eris.Errorf("oscillator: unknown shape %q", shape)
	}
	return NewFromTable(table, freq, rate)
}

// NewFromTable returns an oscillator cycling through table once per period.
// The frequency must be below the sample rate so each sample advances less
// than one period.
func NewFromTable(table []float64, freq float64, rate int) (*LUT, error) {
	if len(table) == 0 {
		return nil, eris.New("oscillator: empty table")
	}
	if rate <= 0 {
		return nil, eris.Errorf("oscillator: bad sample rate %d", rate)
	}
	if math.IsNaN(freq) || freq < 0 || freq >= float64(rate) {
		return nil, eris.Errorf("oscillator: frequency %v outside [0, %d)", freq, rate)
	}
	return &LUT{
		table:  table,
		xrange: float64(len(table)),
		step:   freq * float64(len(table)) / float64(rate),
	}, nil
}

// Sample returns the value at the current phase and advances by one sample.
func (t *LUT) Sample() float64 {
	x0 := int(t.x)
	y0 := t.table[x0]
	var y1 float64
	if x0 == len(t.table)-1 {
		y1 = t.table[0]
	} else {
		y1 = t.table[x0+1]
	}
	y := y0 + (t.x-float64(x0))*(y1-y0)

	t.x += t.step
	if t.x >= t.xrange {
		t.x -= t.xrange
	}
	return y
}

// Phase returns the current position as a fraction of one period.
func (t *LUT) Phase() float64 {
	return t.x / t.xrange
}

// Reset returns the phase to the start of the table.
func (t *LUT) Reset() {
	t.x = 0
}
