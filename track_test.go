package bonerig

import (
	"errors"
	"math"
	"testing"
)

// --- curves ---

func TestCurveLinearAndStepped(t *testing.T) {
	for _, rate := range []float64{0, 0.25, 0.5, 1} {
		assertNear(t, "linear", Linear.Apply(rate), rate)
		assertNear(t, "stepped", Stepped.Apply(rate), 0)
	}
}

func TestCurveBezierEndpoints(t *testing.T) {
	c := Bezier(0.25, 0.1, 0.25, 1)
	if got := c.Apply(0); math.Abs(got) > 1e-6 {
		t.Errorf("Apply(0) = %v, want 0", got)
	}
	if got := c.Apply(1); math.Abs(got-1) > 1e-6 {
		t.Errorf("Apply(1) = %v, want 1", got)
	}
}

func TestCurveBezierOnDiagonalIsLinear(t *testing.T) {
	c := Bezier(1.0/3, 1.0/3, 2.0/3, 2.0/3)
	for _, rate := range []float64{0.1, 0.3, 0.5, 0.8} {
		if got := c.Apply(rate); math.Abs(got-rate) > 1e-6 {
			t.Errorf("Apply(%v) = %v, want %v", rate, got, rate)
		}
	}
}

func TestCurveBezierEaseInIsSlowFirst(t *testing.T) {
	c := Bezier(0.42, 0, 1, 1)
	if got := c.Apply(0.25); got >= 0.25 {
		t.Errorf("ease-in Apply(0.25) = %v, want < 0.25", got)
	}
	prev := 0.0
	for i := 1; i <= 20; i++ {
		got := c.Apply(float64(i) / 20)
		if got < prev-1e-9 {
			t.Fatalf("ease-in not monotonic at %d: %v < %v", i, got, prev)
		}
		prev = got
	}
}

func TestCurveEased(t *testing.T) {
	if got := Eased("linear").Apply(0.4); math.Abs(got-0.4) > 1e-6 {
		t.Errorf("linear ease = %v, want 0.4", got)
	}
	if got := Eased("inQuad").Apply(0.5); math.Abs(got-0.25) > 1e-6 {
		t.Errorf("inQuad(0.5) = %v, want 0.25", got)
	}
	if got := Eased("no-such-ease").Apply(0.7); got != 0.7 {
		t.Errorf("unknown ease = %v, want linear 0.7", got)
	}
}

// --- KeyframeTrack ---

func TestNewKeyframeTrackParsesPath(t *testing.T) {
	tr := NewKeyframeTrack("upper.arm.rotation")
	if tr.BoneName != "upper.arm" || tr.Property != "rotation" || tr.Type != PropertyRotation {
		t.Errorf("parsed %q %q %v", tr.BoneName, tr.Property, tr.Type)
	}
	if got := NewKeyframeTrack("tint.alpha").Type; got != PropertyColor {
		t.Errorf("alpha type = %v, want COLOR", got)
	}
	if got := NewKeyframeTrack("hip.shearX").Type; got != PropertyGeneric {
		t.Errorf("shear type = %v, want GENERIC", got)
	}
	if _, _, ok := SplitTargetPath("nodot"); ok {
		t.Error("path without a dot should not split")
	}
}

func TestEvaluateEmptyTrack(t *testing.T) {
	if _, ok := NewKeyframeTrack("a.x").Evaluate(1); ok {
		t.Error("empty track should report no value")
	}
}

func TestEvaluateClampsOutsideRange(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(1, 10, Linear)
	tr.SetKeyframe(3, 30, Linear)

	for _, time := range []float64{-5, 0, 1} {
		v, _ := tr.Evaluate(time)
		assertNear(t, "before first", v, 10)
	}
	for _, time := range []float64{3, 4, 100} {
		v, _ := tr.Evaluate(time)
		assertNear(t, "after last", v, 30)
	}
	v, _ := tr.Evaluate(2)
	assertNear(t, "middle", v, 20)
}

func TestEvaluateStepped(t *testing.T) {
	tr := NewKeyframeTrack("a.y")
	tr.SetKeyframe(0, 5, Stepped)
	tr.SetKeyframe(1, 9, Linear)
	for _, time := range []float64{0, 0.2, 0.5, 0.999} {
		v, _ := tr.Evaluate(time)
		assertNear(t, "stepped hold", v, 5)
	}
	v, _ := tr.Evaluate(1)
	assertNear(t, "at next key", v, 9)
}

func TestEvaluateRotationShortestPath(t *testing.T) {
	tr := NewKeyframeTrack("a.rotation")
	tr.SetKeyframe(0, 170, Linear)
	tr.SetKeyframe(1, -170, Linear)
	v, _ := tr.Evaluate(0.5)
	assertNear(t, "|rotation|", math.Abs(v), 180)
	v, _ = tr.Evaluate(0.25)
	assertNear(t, "quarter", v, 175)
}

func TestEvaluateUsesPreviousKeyCurve(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(0, 0, Eased("inQuad"))
	tr.SetKeyframe(2, 100, Stepped)
	v, _ := tr.Evaluate(1)
	if math.Abs(v-25) > 1e-3 {
		t.Errorf("eased value = %v, want 25", v)
	}
}

func TestSetKeyframeSortedInsert(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	for _, time := range []float64{2, 0.5, 3, 1, 0} {
		tr.SetKeyframe(time, time*10, Linear)
	}
	keys := tr.Keyframes()
	if len(keys) != 5 {
		t.Fatalf("len = %d, want 5", len(keys))
	}
	for i := 1; i < len(keys); i++ {
		if keys[i].Time <= keys[i-1].Time {
			t.Fatalf("keys not sorted: %v", keys)
		}
	}
	assertNear(t, "start", tr.StartTime(), 0)
	assertNear(t, "end", tr.EndTime(), 3)
}

func TestSetKeyframeReplacesWithinEpsilon(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(1, 10, Linear)
	tr.SetKeyframe(1.0004, 20, Stepped)
	if tr.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tr.Len())
	}
	k := tr.Keyframes()[0]
	assertNear(t, "time", k.Time, 1)
	assertNear(t, "value", k.Value, 20)
	if !k.Curve.IsStepped() {
		t.Error("curve should be replaced too")
	}

	tr.SetKeyframe(1.01, 30, Linear)
	if tr.Len() != 2 {
		t.Errorf("Len = %d, want 2", tr.Len())
	}
}

func TestSetKeyframeOneEpsilonApartStaysSorted(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(1-KeyframeTimeEpsilon, 1, Linear)
	tr.SetKeyframe(1, 2, Linear)
	tr.SetKeyframe(0.9996, 3, Linear)

	keys := tr.Keyframes()
	if len(keys) != 2 {
		t.Fatalf("keys = %v, want 2", keys)
	}
	if keys[0].Time >= keys[1].Time {
		t.Fatalf("keys not sorted: %v", keys)
	}
	assertNear(t, "replaced from below", keys[1].Value, 3)
	v, _ := tr.Evaluate(5)
	assertNear(t, "last key", v, 3)
}

func TestEvaluateNaNReadsFirstKey(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(0, 4, Linear)
	tr.SetKeyframe(1, 8, Linear)
	v, ok := tr.Evaluate(math.NaN())
	if !ok {
		t.Fatal("NaN time should still read a value")
	}
	assertNear(t, "NaN", v, 4)
}

func TestRemoveKeyframe(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(0, 1, Linear)
	tr.SetKeyframe(1, 2, Linear)
	if !tr.RemoveKeyframe(1.0002) {
		t.Fatal("RemoveKeyframe within epsilon failed")
	}
	if tr.RemoveKeyframe(5) {
		t.Error("RemoveKeyframe on missing time succeeded")
	}
	if tr.Len() != 1 {
		t.Errorf("Len = %d, want 1", tr.Len())
	}
}

func TestShiftAndScaleKeyframes(t *testing.T) {
	tr := NewKeyframeTrack("a.x")
	tr.SetKeyframe(0, 0, Linear)
	tr.SetKeyframe(1, 10, Linear)

	tr.Shift(0.5)
	assertNear(t, "shift start", tr.StartTime(), 0.5)
	assertNear(t, "shift end", tr.EndTime(), 1.5)

	if err := tr.Scale(2); err != nil {
		t.Fatalf("Scale: %v", err)
	}
	assertNear(t, "scale start", tr.StartTime(), 1)
	assertNear(t, "scale end", tr.EndTime(), 3)

	if err := tr.Scale(-1); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("negative scale err = %v, want ErrInvalidScale", err)
	}
	if err := tr.Scale(0); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("zero scale err = %v, want ErrInvalidScale", err)
	}
	assertNear(t, "unchanged end", tr.EndTime(), 3)
}
