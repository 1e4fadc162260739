package bonerig

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type ikRig struct {
	sk     *Skeleton
	root   BoneID
	target *Bone
}

func newIKRig(t *testing.T, targetX, targetY float64) *ikRig {
	t.Helper()
	sk := NewSkeleton("ik")
	root := mustAddBone(t, sk, newBone("root", 0, 0, 0, 0), NoBone)
	target := newBone("target", targetX, targetY, 0, 0)
	mustAddBone(t, sk, target, root)
	return &ikRig{sk: sk, root: root, target: target}
}

// chain adds n bones of the given length laid out along +X.
func (r *ikRig) chain(t *testing.T, n int, length float64) []BoneID {
	t.Helper()
	ids := make([]BoneID, 0, n)
	parent := r.root
	for i := 0; i < n; i++ {
		x := length
		if i == 0 {
			x = 0
		}
		parent = mustAddBone(t, r.sk, newBone(string(rune('a'+i)), x, 0, 0, length), parent)
		ids = append(ids, parent)
	}
	r.sk.UpdateWorldTransforms()
	return ids
}

func (r *ikRig) solve(t *testing.T, c *IKConstraint) {
	t.Helper()
	m := NewIKManager(r.sk)
	if err := m.Add(c); err != nil {
		t.Fatalf("Add: %v", err)
	}
	m.Apply()
}

func TestIKSingleBonePointsAtTarget(t *testing.T) {
	r := newIKRig(t, 0, 10)
	ids := r.chain(t, 1, 5)
	r.solve(t, NewIKConstraint("aim", r.target.ID, ids...))

	bone := r.sk.Bone(ids[0])
	assertNear(t, "rotation", bone.Local.Rotation, 90)
	assertVec(t, "tip", bone.WorldTip(), mgl64.Vec2{0, 5}, 1e-9)
	assertNear(t, "scaleX", bone.Local.ScaleX, 1)
}

func TestIKSingleBoneMix(t *testing.T) {
	r := newIKRig(t, 0, 10)
	ids := r.chain(t, 1, 5)
	c := NewIKConstraint("aim", r.target.ID, ids...)
	c.Mix = 0.5
	r.solve(t, c)
	assertNear(t, "half mix", r.sk.Bone(ids[0]).Local.Rotation, 45)
}

func TestIKMixZeroLeavesPose(t *testing.T) {
	r := newIKRig(t, 0, 10)
	ids := r.chain(t, 2, 5)
	before := r.sk.Bone(ids[1]).World()
	c := NewIKConstraint("off", r.target.ID, ids...)
	c.Mix = 0
	r.solve(t, c)
	if got := r.sk.Bone(ids[1]).World(); got != before {
		t.Errorf("world changed with mix 0: %+v", got)
	}
}

func TestIKSingleBoneStretchAndCompress(t *testing.T) {
	r := newIKRig(t, 10, 0)
	ids := r.chain(t, 1, 5)
	c := NewIKConstraint("reach", r.target.ID, ids...)
	c.Stretch = true
	r.solve(t, c)
	assertNear(t, "stretched", r.sk.Bone(ids[0]).Local.ScaleX, 2)

	r = newIKRig(t, 2, 0)
	ids = r.chain(t, 1, 5)
	c = NewIKConstraint("near", r.target.ID, ids...)
	c.Stretch = true
	r.solve(t, c)
	assertNear(t, "stretch only", r.sk.Bone(ids[0]).Local.ScaleX, 1)

	r = newIKRig(t, 2, 0)
	ids = r.chain(t, 1, 5)
	c = NewIKConstraint("squash", r.target.ID, ids...)
	c.Compress = true
	r.solve(t, c)
	assertNear(t, "compressed", r.sk.Bone(ids[0]).Local.ScaleX, 0.4)
}

func TestIKTwoBoneReachesTarget(t *testing.T) {
	r := newIKRig(t, 60, 0)
	ids := r.chain(t, 2, 50)
	r.solve(t, NewIKConstraint("leg", r.target.ID, ids...))

	lower := r.sk.Bone(ids[1])
	assertVec(t, "elbow", lower.World().Position(), mgl64.Vec2{30, -40}, 1e-6)
	assertVec(t, "tip", lower.WorldTip(), mgl64.Vec2{60, 0}, 1e-6)
}

func TestIKTwoBoneBendDirection(t *testing.T) {
	r := newIKRig(t, 60, 0)
	ids := r.chain(t, 2, 50)
	c := NewIKConstraint("leg", r.target.ID, ids...)
	c.BendPositive = false
	r.solve(t, c)

	lower := r.sk.Bone(ids[1])
	assertVec(t, "elbow", lower.World().Position(), mgl64.Vec2{30, 40}, 1e-6)
	assertVec(t, "tip", lower.WorldTip(), mgl64.Vec2{60, 0}, 1e-6)
}

func TestIKTwoBoneFullyExtended(t *testing.T) {
	r := newIKRig(t, 60, 80)
	ids := r.chain(t, 2, 50)
	r.solve(t, NewIKConstraint("arm", r.target.ID, ids...))

	lower := r.sk.Bone(ids[1])
	assertVec(t, "tip", lower.WorldTip(), mgl64.Vec2{60, 80}, 1e-6)
	assertAngle(t, "straight", lower.Local.Rotation, 0)
}

func TestIKTwoBoneOutOfReach(t *testing.T) {
	r := newIKRig(t, 200, 0)
	ids := r.chain(t, 2, 50)
	r.solve(t, NewIKConstraint("arm", r.target.ID, ids...))
	lower := r.sk.Bone(ids[1])
	assertVec(t, "straight tip", lower.WorldTip(), mgl64.Vec2{100, 0}, 1e-6)

	r = newIKRig(t, 200, 0)
	ids = r.chain(t, 2, 50)
	c := NewIKConstraint("arm", r.target.ID, ids...)
	c.Stretch = true
	r.solve(t, c)
	lower = r.sk.Bone(ids[1])
	assertNear(t, "parent scale", r.sk.Bone(ids[0]).Local.ScaleX, 2)
	assertVec(t, "elbow", lower.World().Position(), mgl64.Vec2{100, 0}, 1e-6)
	assertNear(t, "inherited scale", lower.World().ScaleX, 2)
}

func TestIKTwoBoneSoftness(t *testing.T) {
	r := newIKRig(t, 200, 0)
	ids := r.chain(t, 2, 50)
	c := NewIKConstraint("soft", r.target.ID, ids...)
	c.Softness = 10
	r.solve(t, c)

	tip := r.sk.Bone(ids[1]).WorldTip()
	if tip.X() >= 100 || tip.X() < 99.99 {
		t.Errorf("soft tip x = %v, want just short of 100", tip.X())
	}
	if math.Abs(tip.Y()) > 1e-6 {
		t.Errorf("soft tip y = %v, want 0", tip.Y())
	}
}

func TestIKTwoBoneOffsetElbow(t *testing.T) {
	r := newIKRig(t, 60, 0)
	upper := mustAddBone(t, r.sk, newBone("upper", 0, 0, 0, 50), r.root)
	lower := newBone("lower", 40, 30, 0, 50)
	mustAddBone(t, r.sk, lower, upper)
	r.sk.UpdateWorldTransforms()
	r.solve(t, NewIKConstraint("leg", r.target.ID, upper, lower.ID))

	assertAngle(t, "upper", r.sk.Bone(upper).Local.Rotation, -90)
	assertVec(t, "elbow", lower.World().Position(), mgl64.Vec2{30, -40}, 1e-6)
	assertVec(t, "tip", lower.WorldTip(), mgl64.Vec2{60, 0}, 1e-6)
}

func TestIKCCDLeavesChainCurrent(t *testing.T) {
	r := newIKRig(t, 30, 40)
	ids := r.chain(t, 4, 25)
	c := NewIKConstraint("tail", r.target.ID, ids...)
	c.MaxIterations = 1
	c.Apply(r.sk)

	end := r.sk.Bone(ids[3])
	tip := end.WorldTip()
	r.sk.UpdateWorldTransforms()
	assertVec(t, "tip after Apply", tip, end.WorldTip(), 1e-9)
}

func TestIKCCDConverges(t *testing.T) {
	r := newIKRig(t, 30, 40)
	ids := r.chain(t, 4, 25)
	c := NewIKConstraint("tail", r.target.ID, ids...)
	c.Tolerance = 1
	r.solve(t, c)

	tip := r.sk.Bone(ids[3]).WorldTip()
	if d := tip.Sub(mgl64.Vec2{30, 40}).Len(); d > 1 {
		t.Errorf("CCD tip %v is %v from target", tip, d)
	}
}

func TestIKValidate(t *testing.T) {
	r := newIKRig(t, 1, 1)
	ids := r.chain(t, 2, 10)

	cases := map[string]struct {
		c    *IKConstraint
		want error
	}{
		"empty chain":     {NewIKConstraint("e", r.target.ID), ErrInvalidConstraint},
		"target in chain": {NewIKConstraint("t", ids[1], ids...), ErrInvalidConstraint},
		"unknown bone":    {NewIKConstraint("u", r.target.ID, ids[0], BoneID(99)), ErrUnknownBone},
		"unknown target":  {NewIKConstraint("g", BoneID(42), ids...), ErrUnknownBone},
	}
	for name, tc := range cases {
		if err := tc.c.Validate(r.sk); !errors.Is(err, tc.want) {
			t.Errorf("%s: err = %v, want %v", name, err, tc.want)
		}
	}

	bad := NewIKConstraint("m", r.target.ID, ids...)
	bad.Mix = 1.5
	if err := bad.Validate(r.sk); !errors.Is(err, ErrInvalidConstraint) {
		t.Errorf("mix: err = %v", err)
	}
	bad = NewIKConstraint("tol", r.target.ID, ids...)
	bad.Tolerance = 0
	if err := bad.Validate(r.sk); !errors.Is(err, ErrInvalidConstraint) {
		t.Errorf("tolerance: err = %v", err)
	}
	if err := NewIKConstraint("ok", r.target.ID, ids...).Validate(r.sk); err != nil {
		t.Errorf("valid constraint: %v", err)
	}
}

func TestIKManagerNamesAndPrune(t *testing.T) {
	r := newIKRig(t, 1, 1)
	ids := r.chain(t, 2, 10)
	m := NewIKManager(r.sk)
	if err := m.Add(NewIKConstraint("leg", r.target.ID, ids...)); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(NewIKConstraint("aim", r.target.ID, ids[0])); err != nil {
		t.Fatal(err)
	}
	if err := m.Add(NewIKConstraint("leg", r.target.ID, ids[0])); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("duplicate err = %v", err)
	}
	if !m.References(ids[1]) {
		t.Error("manager should reference the lower bone")
	}

	r.sk.RemoveBone(ids[1])
	dropped := m.PruneBones()
	if len(dropped) != 1 || dropped[0] != "leg" {
		t.Errorf("dropped = %v, want [leg]", dropped)
	}
	if m.Find("leg") != nil || m.Find("aim") == nil {
		t.Error("prune kept the wrong constraints")
	}
	if !m.Remove("aim") || m.Remove("aim") {
		t.Error("Remove should succeed once")
	}
	if len(m.Constraints()) != 0 {
		t.Errorf("constraints left: %d", len(m.Constraints()))
	}
}
