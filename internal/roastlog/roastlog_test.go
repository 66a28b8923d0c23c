package roastlog

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"

	"roastlog/internal/models"
)

func f64(v float64) *float64 { return &v }
func iptr(v int) *int        { return &v }

func ev(kind models.EventKind, off int, temp *float64) models.RoastEvent {
	return models.RoastEvent{Kind: kind, TimeOffsetSeconds: off, TemperatureF: temp}
}

// scenarioEvents is a complete roast, deliberately shuffled.
func scenarioEvents() []models.RoastEvent {
	return []models.RoastEvent{
		ev(models.KindEnd, 720, nil),
		ev(models.KindSet, 240, f64(300)),
		ev(models.KindCool, 700, f64(410)),
		ev(models.KindSet, 0, f64(200)),
		ev(models.KindFirstCrack, 480, nil),
		ev(models.KindSet, 600, f64(420)),
	}
}

func permutations(in []models.RoastEvent) [][]models.RoastEvent {
	if len(in) <= 1 {
		return [][]models.RoastEvent{slices.Clone(in)}
	}
	var out [][]models.RoastEvent
	for i := range in {
		rest := make([]models.RoastEvent, 0, len(in)-1)
		rest = append(rest, in[:i]...)
		rest = append(rest, in[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]models.RoastEvent{in[i]}, p...))
		}
	}
	return out
}

func offsets(events []models.RoastEvent) []int {
	out := make([]int, len(events))
	for i, e := range events {
		out[i] = e.TimeOffsetSeconds
	}
	return out
}

func TestOrdered_PermutationInvariant(t *testing.T) {
	t.Parallel()

	base := scenarioEvents()
	want := []int{0, 240, 480, 600, 700, 720}
	wantPoints := slices.Collect(ResampleForCurve(base, ModeLive).Points)
	wantMarkers := slices.Collect(ResampleForCurve(base, ModeLive).Markers)

	for _, p := range permutations(base) {
		if got := offsets(Ordered(p)); !slices.Equal(got, want) {
			t.Fatalf("Ordered offsets = %v, want %v", got, want)
		}
		if d := ComputeDuration(p, models.RoastSession{}); d != KnownSeconds(700) {
			t.Fatalf("duration = %v, want 11:40", d)
		}
		if fc := MilestoneOffset(p, models.KindFirstCrack); fc != KnownSeconds(480) {
			t.Fatalf("first crack = %v", fc)
		}
		c := ResampleForCurve(p, ModeLive)
		if got := slices.Collect(c.Points); !reflect.DeepEqual(got, wantPoints) {
			t.Fatalf("points = %v, want %v", got, wantPoints)
		}
		if got := slices.Collect(c.Markers); !reflect.DeepEqual(got, wantMarkers) {
			t.Fatalf("markers = %v, want %v", got, wantMarkers)
		}
	}
}

func TestOrdered_StableAndDoesNotMutate(t *testing.T) {
	t.Parallel()

	in := []models.RoastEvent{
		{ID: "c", TimeOffsetSeconds: 60},
		{ID: "a", TimeOffsetSeconds: 30},
		{ID: "b", TimeOffsetSeconds: 30},
	}
	snapshot := slices.Clone(in)

	got := Ordered(in)
	ids := []string{got[0].ID, got[1].ID, got[2].ID}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Fatalf("order = %v, want [a b c]", ids)
	}
	if !reflect.DeepEqual(in, snapshot) {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestComputeDuration(t *testing.T) {
	t.Parallel()

	created := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		events  []models.RoastEvent
		session models.RoastSession
		want    Seconds
		display string
	}{
		{
			name:    "cool wins over end",
			events:  []models.RoastEvent{ev(models.KindEnd, 650, nil), ev(models.KindCool, 600, nil)},
			want:    KnownSeconds(600),
			display: "10:00",
		},
		{
			name:    "earliest cool",
			events:  []models.RoastEvent{ev(models.KindCool, 640, nil), ev(models.KindCool, 610, nil)},
			want:    KnownSeconds(610),
			display: "10:10",
		},
		{
			name:    "end without cool",
			events:  []models.RoastEvent{ev(models.KindSet, 0, f64(200)), ev(models.KindEnd, 65, nil)},
			want:    KnownSeconds(65),
			display: "1:05",
		},
		{
			name:    "drop alone does not end the roast",
			events:  []models.RoastEvent{ev(models.KindDrop, 500, nil)},
			session: models.RoastSession{CreatedAt: created, UpdatedAt: created.Add(90 * time.Second)},
			want:    KnownSeconds(90),
			display: "1:30",
		},
		{
			name:    "session timestamps fallback",
			session: models.RoastSession{CreatedAt: created, UpdatedAt: created.Add(125*time.Second + 700*time.Millisecond)},
			want:    KnownSeconds(125),
			display: "2:05",
		},
		{
			name:    "negative span clamps to zero",
			session: models.RoastSession{CreatedAt: created, UpdatedAt: created.Add(-time.Minute)},
			want:    KnownSeconds(0),
			display: "0:00",
		},
		{
			name:    "missing updatedAt is unknown",
			session: models.RoastSession{CreatedAt: created},
			want:    Unknown,
			display: NotAvailable,
		},
		{
			name:    "nothing at all is unknown",
			want:    Unknown,
			display: NotAvailable,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := ComputeDuration(tc.events, tc.session)
			if got != tc.want {
				t.Fatalf("ComputeDuration = %#v, want %#v", got, tc.want)
			}
			if got.String() != tc.display {
				t.Fatalf("display = %q, want %q", got.String(), tc.display)
			}
		})
	}
}

func TestUnknownIsNotZero(t *testing.T) {
	t.Parallel()

	if Unknown == KnownSeconds(0) {
		t.Fatalf("Unknown must differ from a real zero")
	}
	if _, ok := Unknown.Value(); ok {
		t.Fatalf("Unknown reports known")
	}
	b, err := json.Marshal(Unknown)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"seconds":null,"display":"N/A"}` {
		t.Fatalf("unknown json = %s", b)
	}
	b, _ = json.Marshal(KnownSeconds(0))
	if string(b) != `{"seconds":0,"display":"0:00"}` {
		t.Fatalf("zero json = %s", b)
	}
}

func TestMilestoneOffset(t *testing.T) {
	t.Parallel()

	events := []models.RoastEvent{
		ev(models.KindFirstCrack, 500, nil),
		ev(models.KindDryEnd, 250, nil),
		ev(models.KindFirstCrack, 480, nil),
	}
	if got := MilestoneOffset(events, models.KindFirstCrack); got != KnownSeconds(480) {
		t.Fatalf("first crack = %v, want 8:00", got)
	}
	if got := MilestoneOffset(events, models.KindSecondCrack); got.Known() {
		t.Fatalf("second crack should be not reached, got %v", got)
	}
	if got := MilestoneOffset(nil, models.KindDryEnd); got != Unknown {
		t.Fatalf("empty log = %v", got)
	}
}

func TestReachedMilestones(t *testing.T) {
	t.Parallel()

	got := ReachedMilestones(scenarioEvents())
	want := []models.EventKind{models.KindFirstCrack, models.KindCool, models.KindEnd}
	if !slices.Equal(got, want) {
		t.Fatalf("milestones = %v, want %v", got, want)
	}
}

func TestClassifyPhase(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		events []models.RoastEvent
		want   Phase
	}{
		{"empty", nil, PhaseNotStarted},
		{"charge only", []models.RoastEvent{ev(models.KindSet, 0, f64(390))}, PhaseCharging},
		{"drying", []models.RoastEvent{ev(models.KindSet, 0, nil), ev(models.KindSet, 90, f64(250))}, PhaseDrying},
		{"maillard", []models.RoastEvent{ev(models.KindDryEnd, 260, nil)}, PhaseMaillard},
		{"first crack", []models.RoastEvent{ev(models.KindDryEnd, 260, nil), ev(models.KindFirstCrack, 480, nil)}, PhaseFirstCrack},
		{"second crack without first", []models.RoastEvent{ev(models.KindSecondCrack, 600, nil)}, PhaseSecondCrack},
		{"drop", []models.RoastEvent{ev(models.KindFirstCrack, 480, nil), ev(models.KindDrop, 620, nil)}, PhaseCooling},
		{"complete", scenarioEvents(), PhaseComplete},
	}
	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()
			if got := ClassifyPhase(c.events); got != c.want {
				t.Fatalf("ClassifyPhase = %q, want %q", got, c.want)
			}
		})
	}
}

func TestResampleForCurve_SelectsRawSamples(t *testing.T) {
	t.Parallel()

	c := ResampleForCurve(scenarioEvents(), ModeHistorical)

	wantPoints := []Point{{0, 200}, {240, 300}, {600, 420}, {700, 410}}
	if got := slices.Collect(c.Points); !reflect.DeepEqual(got, wantPoints) {
		t.Fatalf("points = %v, want %v", got, wantPoints)
	}
	// restartable
	if got := slices.Collect(c.Points); !reflect.DeepEqual(got, wantPoints) {
		t.Fatalf("second pass points = %v", got)
	}

	markers := slices.Collect(c.Markers)
	if len(markers) != 3 {
		t.Fatalf("markers = %+v, want 3", markers)
	}
	fc := markers[0]
	if fc.Kind != models.KindFirstCrack || fc.OffsetSeconds != 480 || fc.TemperatureF == nil || *fc.TemperatureF != 300 {
		t.Fatalf("first crack marker = %+v", fc)
	}
	if cool := markers[1]; cool.TemperatureF == nil || *cool.TemperatureF != 410 {
		t.Fatalf("cool marker should carry its own reading: %+v", cool)
	}
}

func TestResampleForCurve_ModeChangesMarkersOnly(t *testing.T) {
	t.Parallel()

	events := []models.RoastEvent{
		{Kind: models.KindSet, TimeOffsetSeconds: 0, TemperatureF: f64(380), FanLevel: iptr(3), HeatLevel: iptr(9)},
		{Kind: models.KindSet, TimeOffsetSeconds: 30, TemperatureF: f64(210)},
		{Kind: models.KindSet, TimeOffsetSeconds: 120, HeatLevel: iptr(7)},
		{Kind: models.KindDryEnd, TimeOffsetSeconds: 250},
	}
	live := ResampleForCurve(events, ModeLive)
	hist := ResampleForCurve(events, ModeHistorical)

	if !reflect.DeepEqual(slices.Collect(live.Points), slices.Collect(hist.Points)) {
		t.Fatalf("points must not depend on mode")
	}
	if n := len(slices.Collect(hist.Markers)); n != 1 {
		t.Fatalf("historical markers = %d, want 1", n)
	}
	lm := slices.Collect(live.Markers)
	if len(lm) != 3 {
		t.Fatalf("live markers = %+v, want 3", lm)
	}
	if lm[1].HeatLevel == nil || *lm[1].HeatLevel != 7 || lm[1].TemperatureF == nil || *lm[1].TemperatureF != 210 {
		t.Fatalf("heat change marker = %+v", lm[1])
	}
}

func TestResampleForCurve_MarkerWithoutAnySample(t *testing.T) {
	t.Parallel()

	c := ResampleForCurve([]models.RoastEvent{ev(models.KindFirstCrack, 10, nil)}, ModeHistorical)
	m := slices.Collect(c.Markers)
	if len(m) != 1 || m[0].TemperatureF != nil {
		t.Fatalf("marker = %+v, want nil temperature", m)
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Mode{"": ModeHistorical, "LIVE": ModeLive, " comparison ": ModeHistorical} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseMode("3d"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestRateOfRise(t *testing.T) {
	t.Parallel()

	pts := slices.Values([]Point{{0, 200}, {60, 215}, {60, 216}, {90, 226}})
	got := slices.Collect(RateOfRise(pts))
	want := []RORPoint{{60, 15}, {90, 20}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ror = %v, want %v", got, want)
	}
	for _, r := range got {
		if math.IsNaN(r.DegreesPerMinute) || math.IsInf(r.DegreesPerMinute, 0) {
			t.Fatalf("non-finite ror %v", r)
		}
	}
	if got := slices.Collect(RateOfRise(slices.Values([]Point{{0, 200}}))); len(got) != 0 {
		t.Fatalf("single sample ror = %v", got)
	}
}

func TestWeightLossPct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		before, after *float64
		want          string
	}{
		{"both present", f64(250), f64(212.5), "15.0%"},
		{"after missing", f64(250), nil, NotAvailable},
		{"before missing", nil, f64(200), NotAvailable},
		{"before zero", f64(0), f64(0), NotAvailable},
	}
	for _, tc := range tests {
		got := WeightLossPct(models.RoastSession{WeightBeforeG: tc.before, WeightAfterG: tc.after})
		if got.String() != tc.want {
			t.Fatalf("%s: got %q, want %q", tc.name, got.String(), tc.want)
		}
	}

	p := WeightLossPct(models.RoastSession{WeightBeforeG: f64(300), WeightAfterG: f64(251)})
	v, ok := p.Value()
	if !ok || math.Abs(v-16.333333333333332) > 1e-9 {
		t.Fatalf("full precision lost: %v", v)
	}
	if p.Rounded() != 16.3 {
		t.Fatalf("rounded = %v", p.Rounded())
	}
}

func TestEventInput_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		in    EventInput
		field string
	}{
		{"ok", EventInput{Kind: "set", TimeOffsetSeconds: iptr(0), FanLevel: iptr(9)}, ""},
		{"unknown kind", EventInput{Kind: "CHARGE", TimeOffsetSeconds: iptr(0)}, "kind"},
		{"missing offset", EventInput{Kind: "SET"}, "time_offset_seconds"},
		{"negative offset", EventInput{Kind: "SET", TimeOffsetSeconds: iptr(-1)}, "time_offset_seconds"},
		{"nan temperature", EventInput{Kind: "SET", TimeOffsetSeconds: iptr(5), TemperatureF: f64(math.NaN())}, "temperature_f"},
		{"fan too high", EventInput{Kind: "SET", TimeOffsetSeconds: iptr(5), FanLevel: iptr(10)}, "fan_level"},
		{"heat negative", EventInput{Kind: "SET", TimeOffsetSeconds: iptr(5), HeatLevel: iptr(-1)}, "heat_level"},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.in.Validate()
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("field = %q, want %q", ve.Field, tc.field)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	note := "smells like bread"
	e, err := NewEvent("r1", EventInput{Kind: " dry_end ", TimeOffsetSeconds: iptr(255), Note: &note})
	if err != nil {
		t.Fatalf("NewEvent: %v", err)
	}
	if e.RoastID != "r1" || e.Kind != models.KindDryEnd || e.TimeOffsetSeconds != 255 || e.Note == nil || *e.Note != note {
		t.Fatalf("unexpected event: %+v", e)
	}
	if _, err := NewEvent("r1", EventInput{Kind: "SET"}); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestSummarize_EndToEnd(t *testing.T) {
	t.Parallel()

	s := Summarize(scenarioEvents(), models.RoastSession{WeightBeforeG: f64(250), WeightAfterG: f64(212.5)})

	if s.Duration.String() != "11:40" {
		t.Fatalf("duration = %v", s.Duration)
	}
	if s.FirstCrack != KnownSeconds(480) {
		t.Fatalf("first crack = %v", s.FirstCrack)
	}
	if s.SecondCrack.Known() {
		t.Fatalf("second crack should be unknown")
	}
	if s.Development != KnownSeconds(220) {
		t.Fatalf("development = %v", s.Development)
	}
	if s.WeightLoss.String() != "15.0%" {
		t.Fatalf("weight loss = %v", s.WeightLoss)
	}
	if s.Phase != PhaseComplete || s.EventCount != 6 || s.SampleCount != 4 {
		t.Fatalf("unexpected summary: %+v", s)
	}
	if s.PeakROR == nil || *s.PeakROR != (RORPoint{240, 25}) {
		t.Fatalf("peak ror = %+v", s.PeakROR)
	}
	if s.LastROR == nil || s.LastROR.OffsetSeconds != 700 || math.Abs(s.LastROR.DegreesPerMinute+6) > 1e-9 {
		t.Fatalf("last ror = %+v", s.LastROR)
	}

	ror := slices.Collect(RateOfRise(ResampleForCurve(scenarioEvents(), ModeHistorical).Points))
	if ror[0].DegreesPerMinute != 25 {
		t.Fatalf("ror 0->240 = %v, want 25", ror[0].DegreesPerMinute)
	}
}

func TestSummarize_EmptyLog(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, models.RoastSession{})
	if s.Duration.Known() || s.DevelopmentPct.Known() || s.WeightLoss.Known() {
		t.Fatalf("expected unknowns, got %+v", s)
	}
	if s.PeakROR != nil || s.LastROR != nil || s.Phase != PhaseNotStarted {
		t.Fatalf("unexpected summary: %+v", s)
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back map[string]any
	_ = json.Unmarshal(b, &back)
	if back["milestones"] == nil {
		t.Fatalf("milestones should serialize as [] not null: %s", b)
	}
}
