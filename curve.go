package bonerig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
)

// CurveType selects the interpolation kernel between a key and the next.
type CurveType uint8

const (
	CurveLinear CurveType = iota
	CurveStepped
	CurveBezier
	CurveEased
)

// Curve shapes the segment that starts at the key owning it. Data holds the
// two bezier control points; the end points are fixed at (0,0) and (1,1).
// Ease names a kernel from EaseFuncs.
type Curve struct {
	Type CurveType
	Data [2]mgl64.Vec2
	Ease string
}

// Linear is the default curve.
var Linear = Curve{Type: CurveLinear}

// Stepped holds the previous key's value until the next key.
var Stepped = Curve{Type: CurveStepped}

// Bezier returns a cubic bezier curve with control points (x1,y1) and (x2,y2).
func Bezier(x1, y1, x2, y2 float64) Curve {
	return Curve{Type: CurveBezier, Data: [2]mgl64.Vec2{{x1, y1}, {x2, y2}}}
}

// Eased returns a curve backed by the named easing kernel.
func Eased(name string) Curve {
	return Curve{Type: CurveEased, Ease: name}
}

// EaseFuncs lists the kernels an Eased curve may name.
var EaseFuncs = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"outElastic":   ease.OutElastic,
	"outBounce":    ease.OutBounce,
	"inOutElastic": ease.InOutElastic,
}

// IsStepped reports whether the curve ignores progress.
func (c Curve) IsStepped() bool {
	return c.Type == CurveStepped
}

// Apply maps progress in [0,1] to eased progress.
func (c Curve) Apply(rate float64) float64 {
	switch c.Type {
	case CurveStepped:
		return 0
	case CurveBezier:
		return evalY(c.Data, findX(c.Data, rate))
	case CurveEased:
		fn, ok := EaseFuncs[c.Ease]
		if !ok {
			return rate
		}
		return float64(fn(float32(rate), 0, 1, 1))
	default:
		return rate
	}
}

func bezier(p1, p2, rate float64) float64 {
	inv := 1 - rate
	return 3*inv*inv*rate*p1 + 3*inv*rate*rate*p2 + rate*rate*rate
}

func bezierSlope(p1, p2, rate float64) float64 {
	inv := 1 - rate
	return 3*inv*inv*p1 + 6*inv*rate*(p2-p1) + 3*rate*rate*(1-p2)
}

func evalY(data [2]mgl64.Vec2, rate float64) float64 {
	return bezier(data[0].Y(), data[1].Y(), rate)
}

// findX solves x(u) = rate for the bezier parameter u with Newton's method.
func findX(data [2]mgl64.Vec2, rate float64) float64 {
	x1, x2 := data[0].X(), data[1].X()
	u := rate
	for i := 0; i < bezierIterations; i++ {
		err := bezier(x1, x2, u) - rate
		if math.Abs(err) < bezierEpsilon {
			break
		}
		slope := bezierSlope(x1, x2, u)
		if math.Abs(slope) < bezierEpsilon {
			break
		}
		u -= err / slope
	}
	return mgl64.Clamp(u, 0, 1)
}
