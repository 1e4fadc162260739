package bonerig

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// IKConstraint bends a chain of bones so its end reaches toward Target.
// Bones is ordered root first. One bone points at the target, two bones are
// solved analytically and longer chains use CCD.
type IKConstraint struct {
	Name   string
	Bones  []BoneID
	Target BoneID

	Mix          float64 // 0 leaves the pose alone, 1 applies it fully
	BendPositive bool
	Compress     bool
	Stretch      bool
	Softness     float64

	MaxIterations int     // CCD passes
	Tolerance     float64 // CCD stop distance
}

// NewIKConstraint returns a constraint with full mix, positive bend, ten CCD
// iterations and the minimum tolerance.
func NewIKConstraint(name string, target BoneID, bones ...BoneID) *IKConstraint {
	return &IKConstraint{
		Name:          name,
		Bones:         bones,
		Target:        target,
		Mix:           1,
		BendPositive:  true,
		MaxIterations: 10,
		Tolerance:     MinIKTolerance,
	}
}

// Validate checks the constraint against sk.
func (c *IKConstraint) Validate(sk *Skeleton) error {
	switch {
	case len(c.Bones) == 0:
		return fmt.Errorf("ik %q: empty chain: %w", c.Name, ErrInvalidConstraint)
	case c.Mix < 0 || c.Mix > 1:
		return fmt.Errorf("ik %q: mix %v outside [0,1]: %w", c.Name, c.Mix, ErrInvalidConstraint)
	case c.Softness < 0:
		return fmt.Errorf("ik %q: negative softness: %w", c.Name, ErrInvalidConstraint)
	case c.MaxIterations < 1:
		return fmt.Errorf("ik %q: max iterations %d: %w", c.Name, c.MaxIterations, ErrInvalidConstraint)
	case c.Tolerance < MinIKTolerance:
		return fmt.Errorf("ik %q: tolerance %v below %v: %w", c.Name, c.Tolerance, MinIKTolerance, ErrInvalidConstraint)
	}
	if sk.Bone(c.Target) == nil {
		return fmt.Errorf("ik %q: target %d: %w", c.Name, c.Target, ErrUnknownBone)
	}
	for _, id := range c.Bones {
		if sk.Bone(id) == nil {
			return fmt.Errorf("ik %q: bone %d: %w", c.Name, id, ErrUnknownBone)
		}
		if id == c.Target {
			return fmt.Errorf("ik %q: target is part of the chain: %w", c.Name, ErrInvalidConstraint)
		}
	}
	return nil
}

// References reports whether the constraint uses id as target or chain bone.
func (c *IKConstraint) References(id BoneID) bool {
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

func (c *IKConstraint) bendDirection() float64 {
	if c.BendPositive {
		return 1
	}
	return -1
}

// Apply writes local rotations (and stretch scale) onto the chain and
// refreshes the chain's own world transforms. Bones hanging off the chain
// keep stale world transforms until the subtree is recomputed.
func (c *IKConstraint) Apply(sk *Skeleton) {
	if c.Mix <= 0 {
		return
	}
	target := sk.Bone(c.Target)
	if target == nil {
		return
	}
	bones := make([]*Bone, 0, len(c.Bones))
	for _, id := range c.Bones {
		b := sk.Bone(id)
		if b == nil {
			return
		}
		bones = append(bones, b)
	}
	goal := target.world.Position()
	switch len(bones) {
	case 0:
	case 1:
		c.apply1(sk, bones[0], goal)
	case 2:
		c.apply2(sk, bones[0], bones[1], goal)
	default:
		c.applyCCD(sk, bones, goal)
	}
}

func (c *IKConstraint) apply1(sk *Skeleton, bone *Bone, goal mgl64.Vec2) {
	world := bone.world
	d := goal.Sub(world.Position())
	dist := d.Len()
	if dist < epsilon {
		return
	}
	delta := NormalizeAngle(mgl64.RadToDeg(math.Atan2(d.Y(), d.X())) - world.Rotation)
	bone.Local.Rotation = NormalizeAngle(bone.Local.Rotation + delta*c.Mix)

	if (c.Stretch || c.Compress) && bone.Length > epsilon {
		length := bone.Length * math.Abs(world.ScaleX)
		if length > epsilon && ((c.Stretch && dist > length) || (c.Compress && dist < length)) {
			s := (dist/length-1)*c.Mix + 1
			bone.Local.ScaleX *= s
		}
	}
	sk.UpdateBoneWorldTransform(bone.ID)
}

// apply2 treats the parent as the segment from its origin to the child's
// origin, so an elbow offset from the parent's tip is honoured.
func (c *IKConstraint) apply2(sk *Skeleton, parent, child *Bone, goal mgl64.Vec2) {
	elbow := mgl64.Vec2{child.Local.X, child.Local.Y}
	if child.InheritScale {
		elbow = mgl64.Vec2{elbow.X() * parent.world.ScaleX, elbow.Y() * parent.world.ScaleY}
	}
	l1 := elbow.Len()
	l2 := child.Length * math.Abs(child.world.ScaleX)
	if l1 < epsilon || l2 < epsilon {
		c.apply1(sk, parent, goal)
		return
	}
	bend := c.bendDirection()
	origin := parent.world.Position()
	t := goal.Sub(origin)
	d := t.Len()

	phi := math.Atan2(elbow.Y(), elbow.X()) // elbow direction in parent space

	var a1, a2 float64 // radians: origin-to-elbow world angle, child angle relative to it
	if d < epsilon {
		a1 = mgl64.DegToRad(parent.world.Rotation) + phi
		a2 = math.Pi * bend
	} else {
		if soft := l1 + l2 - c.Softness; c.Softness > 0 && d > soft {
			softD := (d - soft) / c.Softness
			eased := soft + c.Softness*(1-math.Exp(-softD))
			t = t.Mul(eased / d)
			d = eased
		}
		dd := d * d
		cos := (dd - l1*l1 - l2*l2) / (2 * l1 * l2)
		switch {
		case cos < -1:
			a2 = math.Pi * bend
		case cos > 1:
			a2 = 0
			if c.Stretch && d > l1+l2 {
				s := (d/(l1+l2)-1)*c.Mix + 1
				parent.Local.ScaleX *= s
				parent.Local.ScaleY *= s
			}
		default:
			a2 = math.Acos(cos) * bend
		}
		cc := l1 + l2*math.Cos(a2)
		ss := l2 * math.Sin(a2)
		a1 = math.Atan2(t.Y()*cc-t.X()*ss, t.X()*cc+t.Y()*ss)
	}

	delta1 := NormalizeAngle(mgl64.RadToDeg(a1-phi) - parent.world.Rotation)
	parent.Local.Rotation = NormalizeAngle(parent.Local.Rotation + delta1*c.Mix)

	childTarget := mgl64.RadToDeg(a2 + phi)
	if !child.InheritRotation {
		childTarget = mgl64.RadToDeg(a1 + a2)
	}
	delta2 := NormalizeAngle(childTarget - child.Local.Rotation)
	child.Local.Rotation = NormalizeAngle(child.Local.Rotation + delta2*c.Mix)

	sk.UpdateBoneWorldTransform(parent.ID)
	sk.UpdateBoneWorldTransform(child.ID)
}

func (c *IKConstraint) applyCCD(sk *Skeleton, bones []*Bone, goal mgl64.Vec2) {
	tol2 := c.Tolerance * c.Tolerance
	end := len(bones) - 1
	for iter := 0; iter < c.MaxIterations; iter++ {
		if lenSqr(refreshChain(sk, bones, 0).Sub(goal)) < tol2 {
			return
		}
		for i := end; i >= 0; i-- {
			bone := bones[i]
			tip := refreshChain(sk, bones, i+1)
			origin := bone.world.Position()
			toTip := tip.Sub(origin)
			toGoal := goal.Sub(origin)
			if lenSqr(toTip) < epsilon || lenSqr(toGoal) < epsilon {
				continue
			}
			delta := NormalizeAngle(mgl64.RadToDeg(math.Atan2(toGoal.Y(), toGoal.X()) - math.Atan2(toTip.Y(), toTip.X())))
			bone.Local.Rotation = NormalizeAngle(bone.Local.Rotation + delta*c.Mix)
			sk.UpdateBoneWorldTransform(bone.ID)
		}
	}
	refreshChain(sk, bones, 1)
}

// refreshChain recomputes the world transforms of bones[from:] one by one
// and returns the end effector's tip.
func refreshChain(sk *Skeleton, bones []*Bone, from int) mgl64.Vec2 {
	for _, b := range bones[min(from, len(bones)):] {
		sk.UpdateBoneWorldTransform(b.ID)
	}
	return effectorTip(bones[len(bones)-1])
}

func lenSqr(v mgl64.Vec2) float64 {
	return v.Dot(v)
}

func effectorTip(b *Bone) mgl64.Vec2 {
	length := b.Length * b.world.ScaleX
	dir := mgl64.Rotate2D(mgl64.DegToRad(b.world.Rotation)).Mul2x1(mgl64.Vec2{length, 0})
	return b.world.Position().Add(dir)
}

// IKManager runs a skeleton's constraints: IK constraints in insertion
// order, then transform constraints in insertion order.
type IKManager struct {
	skeleton    *Skeleton
	constraints []*IKConstraint
	transforms  []*TransformConstraint
}

// NewIKManager creates a manager for sk.
func NewIKManager(sk *Skeleton) *IKManager {
	return &IKManager{skeleton: sk}
}

func (m *IKManager) nameTaken(name string) bool {
	return m.Find(name) != nil || m.FindTransform(name) != nil
}

// Add validates c and appends it.
func (m *IKManager) Add(c *IKConstraint) error {
	if m.nameTaken(c.Name) {
		return fmt.Errorf("add ik %q: %w", c.Name, ErrDuplicateName)
	}
	if err := c.Validate(m.skeleton); err != nil {
		return err
	}
	m.constraints = append(m.constraints, c)
	return nil
}

// AddTransform validates c and appends it.
func (m *IKManager) AddTransform(c *TransformConstraint) error {
	if m.nameTaken(c.Name) {
		return fmt.Errorf("add transform %q: %w", c.Name, ErrDuplicateName)
	}
	if err := c.Validate(m.skeleton); err != nil {
		return err
	}
	m.transforms = append(m.transforms, c)
	return nil
}

// Find returns the IK constraint called name, or nil.
func (m *IKManager) Find(name string) *IKConstraint {
	for _, c := range m.constraints {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// FindTransform returns the transform constraint called name, or nil.
func (m *IKManager) FindTransform(name string) *TransformConstraint {
	for _, c := range m.transforms {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Remove drops the constraint of either kind called name and reports
// whether it existed.
func (m *IKManager) Remove(name string) bool {
	for i, c := range m.constraints {
		if c.Name == name {
			m.constraints = append(m.constraints[:i], m.constraints[i+1:]...)
			return true
		}
	}
	for i, c := range m.transforms {
		if c.Name == name {
			m.transforms = append(m.transforms[:i], m.transforms[i+1:]...)
			return true
		}
	}
	return false
}

// Constraints returns the IK constraints in application order.
func (m *IKManager) Constraints() []*IKConstraint {
	return append([]*IKConstraint(nil), m.constraints...)
}

// TransformConstraints returns the transform constraints in application
// order.
func (m *IKManager) TransformConstraints() []*TransformConstraint {
	return append([]*TransformConstraint(nil), m.transforms...)
}

// References reports whether any constraint uses id.
func (m *IKManager) References(id BoneID) bool {
	for _, c := range m.constraints {
		if c.References(id) {
			return true
		}
	}
	for _, c := range m.transforms {
		if c.References(id) {
			return true
		}
	}
	return false
}

// PruneBones drops every constraint whose target or bones are no longer in
// the skeleton and returns their names.
func (m *IKManager) PruneBones() []string {
	dropped := make([]string, 0)
	kept := m.constraints[:0]
	for _, c := range m.constraints {
		if !c.bonesLive(m.skeleton) {
			dropped = append(dropped, c.Name)
			continue
		}
		kept = append(kept, c)
	}
	m.constraints = kept

	keptTransforms := m.transforms[:0]
	for _, c := range m.transforms {
		if !c.bonesLive(m.skeleton) {
			dropped = append(dropped, c.Name)
			continue
		}
		keptTransforms = append(keptTransforms, c)
	}
	m.transforms = keptTransforms
	return dropped
}

func (c *IKConstraint) bonesLive(sk *Skeleton) bool {
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

// Apply solves every constraint in order. After each IK constraint the
// chain's subtree is recomputed so later constraints see the adjusted pose.
// World transforms must be current before the call.
func (m *IKManager) Apply() {
	for _, c := range m.constraints {
		c.Apply(m.skeleton)
		if len(c.Bones) > 0 {
			m.skeleton.ComputeWorldTransform(c.Bones[0])
		}
	}
	for _, c := range m.transforms {
		c.Apply(m.skeleton)
	}
}
