package bonerig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform2D is a 2D affine transform stored as components. Angles are in
// degrees; Rotation is kept in (-180, 180].
type Transform2D struct {
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	ShearX   float64
	ShearY   float64
}

// IdentityTransform returns the transform that maps every point to itself.
func IdentityTransform() Transform2D {
	return Transform2D{ScaleX: 1, ScaleY: 1}
}

// NormalizeAngle wraps deg into (-180, 180].
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// LerpAngle interpolates between two angles along the shortest arc.
func LerpAngle(from, to, t float64) float64 {
	return NormalizeAngle(from + NormalizeAngle(to-from)*t)
}

// Position returns the translation as a vector.
func (t Transform2D) Position() mgl64.Vec2 {
	return mgl64.Vec2{t.X, t.Y}
}

// Multiply composes t (parent) with child and returns parent∘child.
func (t Transform2D) Multiply(child Transform2D) Transform2D {
	return t.MultiplyWithInheritance(child, true, true)
}

// MultiplyWithInheritance composes t (parent) with child. When inheritRotation
// is false the parent rotation affects neither the child's rotation nor its
// offset; when inheritScale is false the parent scale is dropped from both the
// offset and the resulting scale. Shear is summed, which only holds for small
// shear values.
func (t Transform2D) MultiplyWithInheritance(child Transform2D, inheritRotation, inheritScale bool) Transform2D {
	sx, sy := 1.0, 1.0
	if inheritScale {
		sx, sy = t.ScaleX, t.ScaleY
	}
	offset := mgl64.Vec2{child.X * sx, child.Y * sy}
	if inheritRotation {
		offset = mgl64.Rotate2D(mgl64.DegToRad(t.Rotation)).Mul2x1(offset)
	}

	res := Transform2D{
		X:        t.X + offset.X(),
		Y:        t.Y + offset.Y(),
		Rotation: NormalizeAngle(child.Rotation),
		ScaleX:   child.ScaleX,
		ScaleY:   child.ScaleY,
		ShearX:   t.ShearX + child.ShearX,
		ShearY:   t.ShearY + child.ShearY,
	}
	if inheritRotation {
		res.Rotation = NormalizeAngle(t.Rotation + child.Rotation)
	}
	if inheritScale {
		res.ScaleX *= t.ScaleX
		res.ScaleY *= t.ScaleY
	}
	return res
}

// TransformPoint maps a local point to the transform's parent space:
// shear, scale, rotation, then translation.
func (t Transform2D) TransformPoint(p mgl64.Vec2) mgl64.Vec2 {
	x, y := p.X(), p.Y()
	if t.ShearX != 0 || t.ShearY != 0 {
		x, y = x+y*math.Tan(mgl64.DegToRad(t.ShearX)), y+x*math.Tan(mgl64.DegToRad(t.ShearY))
	}
	v := mgl64.Vec2{x * t.ScaleX, y * t.ScaleY}
	v = mgl64.Rotate2D(mgl64.DegToRad(t.Rotation)).Mul2x1(v)
	return v.Add(t.Position())
}

// InverseTransformPoint undoes TransformPoint. The shear step is inverted
// by subtraction, so the result is exact only for negligible shear. A zero
// scale axis maps to 0.
func (t Transform2D) InverseTransformPoint(p mgl64.Vec2) mgl64.Vec2 {
	v := mgl64.Rotate2D(-mgl64.DegToRad(t.Rotation)).Mul2x1(p.Sub(t.Position()))
	x, y := safeDiv(v.X(), t.ScaleX), safeDiv(v.Y(), t.ScaleY)
	if t.ShearX != 0 || t.ShearY != 0 {
		x, y = x-y*math.Tan(mgl64.DegToRad(t.ShearX)), y-x*math.Tan(mgl64.DegToRad(t.ShearY))
	}
	return mgl64.Vec2{x, y}
}

// Lerp interpolates each component toward other; rotation takes the
// shortest arc.
func (t Transform2D) Lerp(other Transform2D, alpha float64) Transform2D {
	return Transform2D{
		X:        Lerp(t.X, other.X, alpha),
		Y:        Lerp(t.Y, other.Y, alpha),
		Rotation: LerpAngle(t.Rotation, other.Rotation, alpha),
		ScaleX:   Lerp(t.ScaleX, other.ScaleX, alpha),
		ScaleY:   Lerp(t.ScaleY, other.ScaleY, alpha),
		ShearX:   Lerp(t.ShearX, other.ShearX, alpha),
		ShearY:   Lerp(t.ShearY, other.ShearY, alpha),
	}
}

// Lerp is ordinary linear interpolation.
func Lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}

func safeDiv(a, b float64) float64 {
	if math.Abs(b) < epsilon {
		return 0
	}
	return a / b
}
