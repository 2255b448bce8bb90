package curve

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultBlock = `0: 1.000000
1: 0.791543
2: 0.626541
3: 0.495934
4: 0.392554
5: 0.310723
6: 0.245951
7: 0.194681
8: 0.154098
9: 0.121976
10: 0.096549
11: 0.076423
12: 0.060492
13: 0.047882
14: 0.037901
15: 0.030000
`

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.InDelta(t, 0.03, p.Threshold, 1e-12)
	assert.Equal(t, 15, p.Steps)
	assert.Equal(t, 1.0, p.Start)
	assert.Equal(t, 0.0, p.End)
	assert.NoError(t, p.Validate())
}

func TestRate_SolvesPower(t *testing.T) {
	tests := []struct {
		threshold float64
		steps     int
	}{
		{0.03, 15},
		{0.5, 1},
		{0.02, 441},
		{0.999, 3},
		{1e-6, 1000},
	}
	for _, tt := range tests {
		r, err := Rate(tt.threshold, tt.steps)
		require.NoError(t, err)
		assert.Greater(t, r, 0.0)
		assert.Less(t, r, 1.0)
		assert.InEpsilon(t, tt.threshold, math.Pow(r, float64(tt.steps)), 1e-9,
			"threshold=%v steps=%d", tt.threshold, tt.steps)
	}
}

func TestRate_Errors(t *testing.T) {
	_, err := Rate(0, 15)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrDomain))

	_, err = Rate(-0.5, 15)
	assert.True(t, eris.Is(err, ErrDomain))

	_, err = Rate(math.NaN(), 15)
	assert.True(t, eris.Is(err, ErrDomain))

	_, err = Rate(0.03, 0)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrArithmetic))
	assert.False(t, eris.Is(err, ErrDomain))
}

func TestBlend(t *testing.T) {
	assert.InDelta(t, 0.25, Blend(0.75), 1e-12)
	assert.Equal(t, 0.0, Blend(1))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
		msg     string
	}{
		{"zero threshold", func(p *Params) { p.Threshold = 0 }, ErrDomain, "threshold must be positive"},
		{"negative threshold", func(p *Params) { p.Threshold = -1 }, ErrDomain, "threshold must be positive"},
		{"threshold one", func(p *Params) { p.Threshold = 1 }, ErrDomain, "threshold must be below 1"},
		{"zero steps", func(p *Params) { p.Steps = 0 }, ErrArithmetic, "step count must not be zero"},
		{"negative steps", func(p *Params) { p.Steps = -3 }, ErrDomain, "step count must be positive"},
		{"infinite start", func(p *Params) { p.Start = math.Inf(1) }, ErrDomain, "start value"},
		{"nan end", func(p *Params) { p.End = math.NaN() }, ErrDomain, "end value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			require.Error(t, err)
			assert.True(t, eris.Is(err, tt.wantErr))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestCompute_SequencesAgree(t *testing.T) {
	tests := []Params{
		DefaultParams(),
		{Threshold: 0.5, Steps: 1, Start: 10, End: 20},
		{Threshold: 0.02, Steps: 100, Start: 0, End: 1},
		{Threshold: 0.1, Steps: 7, Start: -3, End: 4},
		{Threshold: 0.3, Steps: 4, Start: 2, End: 2},
	}
	for _, p := range tests {
		c, err := Compute(p)
		require.NoError(t, err)

		require.Len(t, c.Iterative, p.Steps+1)
		require.Len(t, c.ClosedForm, p.Steps+1)

		// index 0 is the start value in both renderings
		assert.Equal(t, p.Start, c.ClosedForm[0].Value)
		assert.Equal(t, p.Start, c.Iterative[0].Value)

		last := p.Steps
		assert.InDelta(t, c.ClosedForm[last].Value, c.Iterative[last].Value, 1e-6)
		assert.InDelta(t, p.Final(), c.Iterative[last].Value, 1e-6)
		assert.InDelta(t, p.Final(), c.ClosedForm[last].Value, 1e-6)

		for i := range c.Iterative {
			assert.Equal(t, i, c.Iterative[i].Index)
			assert.Equal(t, i, c.ClosedForm[i].Index)
		}
		assert.Less(t, c.MaxDivergence(), 1e-9)
		assert.InDelta(t, 1-c.Rate, c.Blend, 1e-15)
	}
}

func TestCompute_Monotonic(t *testing.T) {
	down, err := Compute(Params{Threshold: 0.05, Steps: 20, Start: 5, End: -1})
	require.NoError(t, err)
	for _, seq := range [][]Point{down.Iterative, down.ClosedForm} {
		for i := 1; i < len(seq); i++ {
			assert.LessOrEqual(t, seq[i].Value, seq[i-1].Value, "index %d", i)
		}
	}

	up, err := Compute(Params{Threshold: 0.05, Steps: 20, Start: -1, End: 5})
	require.NoError(t, err)
	for _, seq := range [][]Point{up.Iterative, up.ClosedForm} {
		for i := 1; i < len(seq); i++ {
			assert.GreaterOrEqual(t, seq[i].Value, seq[i-1].Value, "index %d", i)
		}
	}
}

func TestCompute_InvalidParams(t *testing.T) {
	c, err := Compute(Params{Threshold: 0.03, Steps: 0, Start: 1})
	assert.Nil(t, c)
	assert.True(t, eris.Is(err, ErrArithmetic))

	c, err = Compute(Params{Threshold: -0.03, Steps: 15, Start: 1})
	assert.Nil(t, c)
	assert.True(t, eris.Is(err, ErrDomain))
}

func TestIterativeAndClosedForm(t *testing.T) {
	p := Params{Threshold: 0.25, Steps: 2, Start: 1, End: 0}

	it, err := Iterative(p)
	require.NoError(t, err)
	cf, err := ClosedForm(p)
	require.NoError(t, err)

	// r = 0.5: 1, 0.5, 0.25
	want := []float64{1, 0.5, 0.25}
	for i, w := range want {
		assert.InDelta(t, w, it[i].Value, 1e-12)
		assert.InDelta(t, w, cf[i].Value, 1e-12)
	}

	_, err = Iterative(Params{Threshold: 0, Steps: 2})
	assert.True(t, eris.Is(err, ErrDomain))
	_, err = ClosedForm(Params{Threshold: 0.5, Steps: 0})
	assert.True(t, eris.Is(err, ErrArithmetic))
}

func TestWriteBoth_DefaultRun(t *testing.T) {
	c, err := Compute(DefaultParams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.WriteBoth(&buf))

	out := buf.String()
	assert.Equal(t, defaultBlock+defaultBlock, out)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	assert.Len(t, lines, 32)
	assert.Equal(t, "0: 1.000000", lines[0])
	assert.Equal(t, "15: 0.030000", lines[15])
	assert.Equal(t, "0: 1.000000", lines[16])
	assert.Equal(t, "15: 0.030000", lines[31])
}

func TestWriteBoth_Idempotent(t *testing.T) {
	var a, b bytes.Buffer
	for _, buf := range []*bytes.Buffer{&a, &b} {
		c, err := Compute(DefaultParams())
		require.NoError(t, err)
		require.NoError(t, c.WriteBoth(buf))
	}
	assert.Equal(t, a.Bytes(), b.Bytes())
}

type failWriter struct{}

func (failWriter) Write([]byte) (int, error) { return 0, eris.New("disk full") }

func TestWrite_PropagatesError(t *testing.T) {
	err := Write(failWriter{}, []Point{{Index: 0, Value: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, nil))
	assert.Empty(t, buf.String())
}
