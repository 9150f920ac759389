package training

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/traingen/internal/config"
)

const testStartMs int64 = 1_700_000_000_000

// hundredths renders k/100 the way the shortest formatter should, using
// integer arithmetic only.
func hundredths(k int) string {
	s := fmt.Sprintf("%d.%02d", k/100, k%100)
	s = strings.TrimRight(s, "0")
	if strings.HasSuffix(s, ".") {
		s += "0"
	}
	return s
}

func smallSweepParams(ceiling float64) Params {
	p := DefaultParams()
	p.Ceiling = ceiling
	return p
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()

	want := Params{
		Floor:       0.0,
		Ceiling:     1.57,
		Threshold:   1.0472,
		Step:        0.01,
		Precision:   2,
		ClockStepMs: 5000,
		Format:      FormatShortest,
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("DefaultParams() mismatch (-want +got):\n%s", diff)
	}
}

func TestNewParams_FromDefaultsFile(t *testing.T) {
	p, err := NewParams(config.MustLoadDefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, DefaultParams(), p)
}

func TestNewParams_Invalid(t *testing.T) {
	cfg := config.DefaultGeneratorConfig()
	zero := 0.0
	cfg.Step = &zero

	_, err := NewParams(cfg)
	assert.Error(t, err)
}

func TestNext_Ascending(t *testing.T) {
	p := DefaultParams()

	cmd, next, ok := p.Next(p.Start(testStartMs))
	require.True(t, ok)
	assert.Equal(t, Command{Label: LabelOn, Value: 0.0, TimestampMs: testStartMs}, cmd)
	assert.True(t, next.Increasing)
	assert.InDelta(t, 0.01, next.Value, 1e-12)
	assert.Equal(t, testStartMs+5000, next.TimestampMs)
}

func TestNext_RoundsBeforeUse(t *testing.T) {
	p := DefaultParams()

	cmd, _, ok := p.Next(State{Value: 0.1 + 0.2, Increasing: true, TimestampMs: 0})
	require.True(t, ok)
	assert.Equal(t, 0.3, cmd.Value)
	assert.Equal(t, "train 1 0.3 0", cmd.String())
}

func TestNext_FlipsAtCeiling(t *testing.T) {
	p := DefaultParams()

	cmd, next, ok := p.Next(State{Value: 1.56 + 0.01, Increasing: true, TimestampMs: 10})
	require.True(t, ok)
	assert.Equal(t, 1.57, cmd.Value)
	assert.Equal(t, LabelOff, cmd.Label)
	assert.False(t, next.Increasing, "direction should flip at the ceiling")
	assert.InDelta(t, 1.56, next.Value, 1e-12)
}

func TestNext_NoHysteresisOnceDescending(t *testing.T) {
	p := DefaultParams()

	// Below the ceiling but already descending: keep going down.
	_, next, ok := p.Next(State{Value: 0.5, Increasing: false})
	require.True(t, ok)
	assert.False(t, next.Increasing)
	assert.InDelta(t, 0.49, next.Value, 1e-12)
}

func TestNext_TerminatesBelowFloor(t *testing.T) {
	p := DefaultParams()

	s := State{Value: 0.0 - 0.01, Increasing: false, TimestampMs: 42}
	cmd, next, ok := p.Next(s)
	assert.False(t, ok)
	assert.Equal(t, Command{}, cmd)
	assert.Equal(t, int64(42), next.TimestampMs, "terminating pass must not advance the clock")
}

func TestSequence_SmallSweep(t *testing.T) {
	cmds, err := Sequence(smallSweepParams(0.02), testStartMs)
	require.NoError(t, err)

	got := make([]string, len(cmds))
	for i, c := range cmds {
		got[i] = c.String()
	}

	T := testStartMs
	want := []string{
		fmt.Sprintf("train 1 0.0 %d", T),
		fmt.Sprintf("train 1 0.01 %d", T+5000),
		fmt.Sprintf("train 1 0.02 %d", T+10000),
		fmt.Sprintf("train 1 0.01 %d", T+15000),
		fmt.Sprintf("train 1 0.0 %d", T+20000),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("small sweep mismatch (-want +got):\n%s", diff)
	}
}

func TestSequence_FullSweep(t *testing.T) {
	p := DefaultParams()
	cmds, err := Sequence(p, testStartMs)
	require.NoError(t, err)

	// 158 values up (0.00..1.57), 157 back down, peak once.
	require.Len(t, cmds, 315)
	assert.Equal(t, p.ExpectedLineCount(), len(cmds))

	var want []string
	for k := 0; k <= 157; k++ {
		want = append(want, hundredths(k))
	}
	for k := 156; k >= 0; k-- {
		want = append(want, hundredths(k))
	}

	got := make([]string, len(cmds))
	for i, c := range cmds {
		got[i] = FormatValue(c.Value, FormatShortest, 2)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("value sequence mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "train 1 0.0 1700000000000", cmds[0].String())
	assert.Equal(t, "train -1 1.57 1700000785000", cmds[157].String())
	assert.Equal(t, "train 1 0.0 1700001570000", cmds[314].String())
}

func TestSequence_Properties(t *testing.T) {
	p := DefaultParams()
	cmds, err := Sequence(p, testStartMs)
	require.NoError(t, err)

	peak := 0
	for i, c := range cmds {
		// Clock advances by a fixed step per pass.
		assert.Equal(t, testStartMs+int64(i)*5000, c.TimestampMs, "line %d timestamp", i)

		// Labels follow the threshold.
		if c.Value < 1.0472 {
			assert.Equal(t, LabelOn, c.Label, "line %d value %v", i, c.Value)
		} else {
			assert.Equal(t, LabelOff, c.Label, "line %d value %v", i, c.Value)
		}

		assert.GreaterOrEqual(t, c.Value, 0.0)
		if c.Value > cmds[peak].Value {
			peak = i
		}
	}

	// Strictly up by one step to the peak, strictly down after it.
	for i := 1; i < len(cmds); i++ {
		delta := cmds[i].Value - cmds[i-1].Value
		if i <= peak {
			assert.InDelta(t, 0.01, delta, 1e-9, "ascending step at %d", i)
		} else {
			assert.InDelta(t, -0.01, delta, 1e-9, "descending step at %d", i)
		}
	}
	assert.Equal(t, 1.57, cmds[peak].Value)
}

func TestSequence_Deterministic(t *testing.T) {
	a, err := Sequence(DefaultParams(), 0)
	require.NoError(t, err)
	b, err := Sequence(DefaultParams(), 987654321)
	require.NoError(t, err)
	require.Len(t, b, len(a))

	for i := range a {
		assert.Equal(t, a[i].Value, b[i].Value)
		assert.Equal(t, a[i].Label, b[i].Label)
		assert.Equal(t, a[i].TimestampMs+987654321, b[i].TimestampMs)
	}
}

func TestSequence_LabelSplit(t *testing.T) {
	cmds, err := Sequence(DefaultParams(), 0)
	require.NoError(t, err)

	var on, off int
	for _, c := range cmds {
		if c.Label == LabelOn {
			on++
		} else {
			off++
		}
	}
	// 0.00..1.04 is 105 values, visited twice each.
	assert.Equal(t, 210, on)
	// 1.05..1.57 is 53 values, the peak once.
	assert.Equal(t, 105, off)
}

func TestExpectedLineCount(t *testing.T) {
	testCases := []struct {
		name    string
		floor   float64
		ceiling float64
		step    float64
		want    int
	}{
		{"defaults", 0, 1.57, 0.01, 315},
		{"small", 0, 0.02, 0.01, 5},
		{"single_step", 0, 0.01, 0.01, 3},
		{"off_grid_ceiling", 0, 0.025, 0.01, 7},
		{"coarse_step", 0, 1.5, 0.5, 7},
		{"raised_floor", 0.5, 1.0, 0.1, 11},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParams()
			p.Floor, p.Ceiling, p.Step = tc.floor, tc.ceiling, tc.step
			assert.Equal(t, tc.want, p.ExpectedLineCount())

			cmds, err := Sequence(p, 0)
			require.NoError(t, err)
			assert.Len(t, cmds, tc.want)
			assert.Equal(t, tc.floor, cmds[0].Value)
			assert.Equal(t, tc.floor, cmds[len(cmds)-1].Value)
		})
	}
}

func TestSequence_OffGridStepRoundsStoredValue(t *testing.T) {
	p := DefaultParams()
	// 0.015 is stored just below 0.015, so the first step rounds down.
	p.Step = 0.015

	cmds, err := Sequence(p, 0)
	require.NoError(t, err)
	require.Len(t, cmds, 241)

	got := make([]string, 4)
	for i := range got {
		got[i] = FormatValue(cmds[i].Value, FormatShortest, 2)
	}
	assert.Equal(t, []string{"0.0", "0.01", "0.03", "0.04"}, got)
}

func TestSequence_GuardsRunawaySweep(t *testing.T) {
	p := DefaultParams()
	// A step that rounds away never moves the sweep; this only happens with
	// params that skipped config validation.
	p.Step = 0.001

	cmds, err := Sequence(p, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not terminate")
	assert.NotEmpty(t, cmds)
	for _, c := range cmds {
		assert.Equal(t, 0.0, c.Value)
	}
}
