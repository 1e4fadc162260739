package bonerig

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// TransformConstraint pulls the world rotation, position and scale of its
// bones toward the target bone's, shifted by fixed offsets. A zero mix leaves
// that channel alone.
type TransformConstraint struct {
	Name   string
	Bones  []BoneID
	Target BoneID

	RotateMix    float64
	TranslateMix float64
	ScaleMix     float64

	OffsetRotation float64
	OffsetX        float64 // in the target's space
	OffsetY        float64
	OffsetScaleX   float64 // added to the target's world scale
	OffsetScaleY   float64
}

// NewTransformConstraint returns a constraint with every mix at 1 and no
// offsets.
func NewTransformConstraint(name string, target BoneID, bones ...BoneID) *TransformConstraint {
	return &TransformConstraint{
		Name:         name,
		Bones:        bones,
		Target:       target,
		RotateMix:    1,
		TranslateMix: 1,
		ScaleMix:     1,
	}
}

// Validate checks the constraint against sk.
func (c *TransformConstraint) Validate(sk *Skeleton) error {
	if len(c.Bones) == 0 {
		return fmt.Errorf("transform %q: empty bone list: %w", c.Name, ErrInvalidConstraint)
	}
	for _, mix := range []float64{c.RotateMix, c.TranslateMix, c.ScaleMix} {
		if mix < 0 || mix > 1 {
			return fmt.Errorf("transform %q: mix %v outside [0,1]: %w", c.Name, mix, ErrInvalidConstraint)
		}
	}
	if sk.Bone(c.Target) == nil {
		return fmt.Errorf("transform %q: target %d: %w", c.Name, c.Target, ErrUnknownBone)
	}
	for _, id := range c.Bones {
		if sk.Bone(id) == nil {
			return fmt.Errorf("transform %q: bone %d: %w", c.Name, id, ErrUnknownBone)
		}
		if id == c.Target {
			return fmt.Errorf("transform %q: target is constrained: %w", c.Name, ErrInvalidConstraint)
		}
	}
	return nil
}

// References reports whether the constraint uses id as target or bone.
func (c *TransformConstraint) References(id BoneID) bool {
	if c.Target == id {
		return true
	}
	for _, b := range c.Bones {
		if b == id {
			return true
		}
	}
	return false
}

func (c *TransformConstraint) bonesLive(sk *Skeleton) bool {
	if sk.Bone(c.Target) == nil {
		return false
	}
	for _, id := range c.Bones {
		if sk.Bone(id) == nil {
			return false
		}
	}
	return true
}

// Apply rewrites each bone's local transform so its world transform moves
// toward the goal, then recomputes that bone's subtree. The target's world
// transform must be current.
func (c *TransformConstraint) Apply(sk *Skeleton) {
	target := sk.Bone(c.Target)
	if target == nil {
		return
	}
	tw := target.world
	rotation := tw.Rotation + c.OffsetRotation
	pos := tw.TransformPoint(mgl64.Vec2{c.OffsetX, c.OffsetY})
	scaleX, scaleY := tw.ScaleX+c.OffsetScaleX, tw.ScaleY+c.OffsetScaleY

	for _, id := range c.Bones {
		bone := sk.Bone(id)
		if bone == nil {
			continue
		}
		world := bone.world
		if c.RotateMix > 0 {
			delta := NormalizeAngle(rotation - world.Rotation)
			bone.Local.Rotation = NormalizeAngle(bone.Local.Rotation + delta*c.RotateMix)
		}
		if c.TranslateMix > 0 {
			goal := world.Position().Add(pos.Sub(world.Position()).Mul(c.TranslateMix))
			local := sk.localPosition(bone, goal)
			bone.Local.X, bone.Local.Y = local.X(), local.Y()
		}
		if c.ScaleMix > 0 {
			bone.Local.ScaleX *= scaleRatio(world.ScaleX, scaleX, c.ScaleMix)
			bone.Local.ScaleY *= scaleRatio(world.ScaleY, scaleY, c.ScaleMix)
		}
		sk.ComputeWorldTransform(id)
	}
}

// localPosition returns the local offset that places bone's origin at the
// world point p, honouring the bone's inheritance flags.
func (s *Skeleton) localPosition(bone *Bone, p mgl64.Vec2) mgl64.Vec2 {
	parent := s.Bone(bone.parent)
	if parent == nil {
		return p
	}
	pw := parent.world
	d := p.Sub(pw.Position())
	if bone.InheritRotation {
		d = mgl64.Rotate2D(-mgl64.DegToRad(pw.Rotation)).Mul2x1(d)
	}
	if bone.InheritScale {
		d = mgl64.Vec2{safeDiv(d.X(), pw.ScaleX), safeDiv(d.Y(), pw.ScaleY)}
	}
	return d
}

func scaleRatio(current, goal, mix float64) float64 {
	if math.Abs(current) < epsilon {
		return 1
	}
	return (goal/current-1)*mix + 1
}
