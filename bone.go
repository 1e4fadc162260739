package bonerig

import "github.com/go-gl/mathgl/mgl64"

// BoneID is a stable handle into a Skeleton's bone arena. IDs are never
// reused after a bone is removed.
type BoneID int

// NoBone marks the absence of a bone (a root's parent, an unbound slot).
const NoBone BoneID = -1

// TransformMode names the inheritance combinations rig files use.
type TransformMode uint8

const (
	TransformNormal TransformMode = iota
	TransformOnlyTranslation
	TransformNoRotationOrReflection
	TransformNoScale
	TransformNoScaleOrReflection
)

// Bone is a node of the skeleton tree. Its world transform is a cache that
// the owning Skeleton recomputes from the root down.
type Bone struct {
	ID   BoneID
	Name string

	parent   BoneID
	children []BoneID

	Local Transform2D
	Setup Transform2D // rest pose
	world Transform2D

	Length          float64
	InheritRotation bool
	InheritScale    bool
	DrawOrder       int
	Color           mgl64.Vec4 // editor tint
}

// NewBone creates a standalone bone with identity transforms that inherits
// both rotation and scale from its parent.
func NewBone(name string) *Bone {
	return &Bone{
		ID:              NoBone,
		Name:            name,
		parent:          NoBone,
		Local:           IdentityTransform(),
		Setup:           IdentityTransform(),
		world:           IdentityTransform(),
		InheritRotation: true,
		InheritScale:    true,
		Color:           mgl64.Vec4{1, 1, 1, 1},
	}
}

// Parent returns the parent's ID, or NoBone for a root or detached bone.
func (b *Bone) Parent() BoneID {
	return b.parent
}

// Children returns the child IDs in insertion order.
func (b *Bone) Children() []BoneID {
	return append([]BoneID(nil), b.children...)
}

// World returns the last computed world transform.
func (b *Bone) World() Transform2D {
	return b.world
}

// WorldTip returns the world-space end of the bone: the origin plus Length
// along the world rotation.
func (b *Bone) WorldTip() mgl64.Vec2 {
	dir := mgl64.Rotate2D(mgl64.DegToRad(b.world.Rotation)).Mul2x1(mgl64.Vec2{b.Length, 0})
	return b.world.Position().Add(dir)
}

// SetTransformMode sets the inheritance flags from a rig-file mode.
func (b *Bone) SetTransformMode(mode TransformMode) {
	switch mode {
	case TransformOnlyTranslation:
		b.InheritRotation, b.InheritScale = false, false
	case TransformNoRotationOrReflection:
		b.InheritRotation, b.InheritScale = false, true
	case TransformNoScale, TransformNoScaleOrReflection:
		b.InheritRotation, b.InheritScale = true, false
	default:
		b.InheritRotation, b.InheritScale = true, true
	}
}

// SetToSetupPose copies the rest pose into the local transform.
func (b *Bone) SetToSetupPose() {
	b.Local = b.Setup
}

func (b *Bone) removeChild(id BoneID) {
	for i, c := range b.children {
		if c == id {
			b.children = append(b.children[:i], b.children[i+1:]...)
			return
		}
	}
}
