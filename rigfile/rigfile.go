// Package rigfile reads YAML rig documents into a bonerig skeleton, its
// animation clips and its IK and transform constraints.
package rigfile

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v2"

	"bonerig"
)

var ErrInvalidDocument = errors.New("rigfile: invalid document")

// Rig is a built document.
type Rig struct {
	Skeleton *bonerig.Skeleton
	Clips    map[string]*bonerig.AnimationClip
	IK       *bonerig.IKManager
}

// ClipNames returns the clip names sorted.
func (r *Rig) ClipNames() []string {
	res := make([]string, 0, len(r.Clips))
	for name := range r.Clips {
		res = append(res, name)
	}
	sort.Strings(res)
	return res
}

// RemoveBone removes a bone subtree and drops the tracks and constraints
// that pointed into it.
func (r *Rig) RemoveBone(name string) []string {
	bone := r.Skeleton.FindBone(name)
	if bone == nil {
		return nil
	}
	removed := r.Skeleton.RemoveBone(bone.ID)
	for _, clip := range r.Clips {
		clip.PruneTargets(removed)
	}
	r.IK.PruneBones()
	return removed
}

// Parse decodes a rig document without building it.
func Parse(data []byte) (*SkelData, error) {
	res := &SkelData{}
	if err := yaml.UnmarshalStrict(data, res); err != nil {
		return nil, fmt.Errorf("rigfile: decode: %w", err)
	}
	return res, nil
}

// Load reads and builds the rig document at path.
func Load(path string) (*Rig, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rigfile: read %s: %w", path, err)
	}
	data, err := Parse(bytes)
	if err != nil {
		return nil, err
	}
	rig, err := data.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rig, nil
}

// Build creates the skeleton, clips and constraints the document describes
// and leaves the skeleton posed in its setup pose with world transforms
// computed.
func (d *SkelData) Build() (*Rig, error) {
	sk := bonerig.NewSkeleton(d.Name)
	for _, item := range d.Bones {
		if err := addBone(sk, item); err != nil {
			return nil, err
		}
	}
	for i, item := range d.Slots {
		if err := addSlot(sk, i, item); err != nil {
			return nil, err
		}
	}
	sk.UpdateWorldTransforms()

	ik := bonerig.NewIKManager(sk)
	for _, item := range d.IK {
		c, err := newIKConstraint(sk, item)
		if err != nil {
			return nil, err
		}
		if err := ik.Add(c); err != nil {
			return nil, fmt.Errorf("rigfile: %w", err)
		}
	}
	for _, item := range d.Transforms {
		c, err := newTransformConstraint(sk, item)
		if err != nil {
			return nil, err
		}
		if err := ik.AddTransform(c); err != nil {
			return nil, fmt.Errorf("rigfile: %w", err)
		}
	}

	clips := make(map[string]*bonerig.AnimationClip, len(d.Animations))
	for _, item := range d.Animations {
		if _, ok := clips[item.Name]; ok {
			return nil, fmt.Errorf("rigfile: animation %q: %w", item.Name, bonerig.ErrDuplicateName)
		}
		clip, err := newClip(item)
		if err != nil {
			return nil, err
		}
		clips[item.Name] = clip
	}
	return &Rig{Skeleton: sk, Clips: clips, IK: ik}, nil
}

var transformModes = map[string]bonerig.TransformMode{
	"":                       bonerig.TransformNormal,
	"normal":                 bonerig.TransformNormal,
	"onlyTranslation":        bonerig.TransformOnlyTranslation,
	"noRotationOrReflection": bonerig.TransformNoRotationOrReflection,
	"noScale":                bonerig.TransformNoScale,
	"noScaleOrReflection":    bonerig.TransformNoScaleOrReflection,
}

func addBone(sk *bonerig.Skeleton, item *BoneData) error {
	mode, ok := transformModes[item.Transform]
	if !ok {
		return fmt.Errorf("rigfile: bone %q: transform %q: %w", item.Name, item.Transform, ErrInvalidDocument)
	}
	parent := bonerig.NoBone
	if item.Parent != "" {
		p := sk.FindBone(item.Parent)
		if p == nil { // parents must come first
			return fmt.Errorf("rigfile: bone %q: parent %q: %w", item.Name, item.Parent, bonerig.ErrUnknownBone)
		}
		parent = p.ID
	}
	bone := bonerig.NewBone(item.Name)
	bone.Local = bonerig.Transform2D{
		X:        item.X,
		Y:        item.Y,
		Rotation: bonerig.NormalizeAngle(item.Rotation),
		ScaleX:   item.ScaleX,
		ScaleY:   item.ScaleY,
		ShearX:   item.ShearX,
		ShearY:   item.ShearY,
	}
	bone.Setup = bone.Local
	bone.Length = item.Length
	bone.SetTransformMode(mode)
	bone.Color = item.Color.vec(bone.Color)
	if _, err := sk.AddBone(bone, parent); err != nil {
		return fmt.Errorf("rigfile: %w", err)
	}
	return nil
}

var blendModes = map[string]bonerig.BlendMode{
	"":         bonerig.BlendNormal,
	"normal":   bonerig.BlendNormal,
	"additive": bonerig.BlendAdditive,
	"multiply": bonerig.BlendMultiply,
	"screen":   bonerig.BlendScreen,
}

func addSlot(sk *bonerig.Skeleton, index int, item *SlotData) error {
	blend, ok := blendModes[item.Blend]
	if !ok {
		return fmt.Errorf("rigfile: slot %q: blend %q: %w", item.Name, item.Blend, ErrInvalidDocument)
	}
	bone := sk.FindBone(item.Bone)
	if bone == nil {
		return fmt.Errorf("rigfile: slot %q: bone %q: %w", item.Name, item.Bone, bonerig.ErrUnknownBone)
	}
	slot := bonerig.NewSlot(item.Name, bone.ID)
	slot.BlendMode = blend
	slot.Color = item.Color.vec(slot.Color)
	slot.SetupColor = slot.Color
	slot.DrawOrder = index
	if item.Order != nil {
		slot.DrawOrder = *item.Order
	}
	if item.Attachment != nil {
		att, err := newAttachment(item.Name, item.Attachment)
		if err != nil {
			return err
		}
		slot.Attachment = att
	}
	if err := sk.AddSlot(slot); err != nil {
		return fmt.Errorf("rigfile: %w", err)
	}
	return nil
}

func newAttachment(slot string, item *AttachmentData) (bonerig.Attachment, error) {
	name := item.Name
	if name == "" {
		name = slot
	}
	switch item.Type {
	case AttachmentRegion:
		path := item.Path
		if path == "" {
			path = name
		}
		return &bonerig.RegionAttachment{
			Name:     name,
			Path:     path,
			X:        item.X,
			Y:        item.Y,
			Rotation: item.Rotation,
			ScaleX:   item.ScaleX,
			ScaleY:   item.ScaleY,
			Width:    item.Width,
			Height:   item.Height,
			Color:    item.Color.vec(mgl64.Vec4{1, 1, 1, 1}),
		}, nil
	case AttachmentBoundingBox:
		if len(item.Vertices) < 3 {
			return nil, fmt.Errorf("rigfile: slot %q: bounding box needs 3 vertices: %w", slot, ErrInvalidDocument)
		}
		vertices := make([]mgl64.Vec2, len(item.Vertices))
		for i, v := range item.Vertices {
			vertices[i] = mgl64.Vec2{v[0], v[1]}
		}
		return &bonerig.BoundingBoxAttachment{Name: name, Vertices: vertices}, nil
	case AttachmentPoint:
		return &bonerig.PointAttachment{Name: name, X: item.X, Y: item.Y, Rotation: item.Rotation}, nil
	default:
		return nil, fmt.Errorf("rigfile: slot %q: attachment type %q: %w", slot, item.Type, ErrInvalidDocument)
	}
}

// lookupBones resolves a constraint's target and bone names.
func lookupBones(sk *bonerig.Skeleton, kind, name, targetName string, names []string) (bonerig.BoneID, []bonerig.BoneID, error) {
	target := sk.FindBone(targetName)
	if target == nil {
		return bonerig.NoBone, nil, fmt.Errorf("rigfile: %s %q: target %q: %w", kind, name, targetName, bonerig.ErrUnknownBone)
	}
	bones := make([]bonerig.BoneID, 0, len(names))
	for _, n := range names {
		b := sk.FindBone(n)
		if b == nil {
			return bonerig.NoBone, nil, fmt.Errorf("rigfile: %s %q: bone %q: %w", kind, name, n, bonerig.ErrUnknownBone)
		}
		bones = append(bones, b.ID)
	}
	return target.ID, bones, nil
}

func newIKConstraint(sk *bonerig.Skeleton, item *IKData) (*bonerig.IKConstraint, error) {
	target, bones, err := lookupBones(sk, "ik", item.Name, item.Target, item.Bones)
	if err != nil {
		return nil, err
	}
	c := bonerig.NewIKConstraint(item.Name, target, bones...)
	c.Mix = item.Mix
	c.BendPositive = item.BendPositive
	c.Compress = item.Compress
	c.Stretch = item.Stretch
	c.Softness = item.Softness
	c.MaxIterations = item.MaxIterations
	c.Tolerance = item.Tolerance
	return c, nil
}

func newTransformConstraint(sk *bonerig.Skeleton, item *TransformData) (*bonerig.TransformConstraint, error) {
	target, bones, err := lookupBones(sk, "transform", item.Name, item.Target, item.Bones)
	if err != nil {
		return nil, err
	}
	c := bonerig.NewTransformConstraint(item.Name, target, bones...)
	c.RotateMix = item.RotateMix
	c.TranslateMix = item.TranslateMix
	c.ScaleMix = item.ScaleMix
	c.OffsetRotation = item.OffsetRotation
	c.OffsetX, c.OffsetY = item.OffsetX, item.OffsetY
	c.OffsetScaleX, c.OffsetScaleY = item.OffsetScaleX, item.OffsetScaleY
	return c, nil
}

func newClip(item *AnimationData) (*bonerig.AnimationClip, error) {
	clip := bonerig.NewAnimationClip(item.Name, item.Duration)
	clip.Looping = item.Loop
	for _, td := range item.Tracks {
		if _, _, ok := bonerig.SplitTargetPath(td.Target); !ok {
			return nil, fmt.Errorf("rigfile: animation %q: target %q: %w", item.Name, td.Target, ErrInvalidDocument)
		}
		track := clip.EnsureTrack(td.Target)
		for _, kd := range td.Keys {
			curve, err := newCurve(kd)
			if err != nil {
				return nil, fmt.Errorf("rigfile: animation %q: %s at %v: %w", item.Name, td.Target, kd.Time, err)
			}
			track.SetKeyframe(kd.Time, kd.Value, curve)
		}
	}
	for _, ed := range item.Events {
		clip.AddEvent(bonerig.AnimationEvent{
			Time:   ed.Time,
			Name:   ed.Name,
			Int:    ed.Int,
			Float:  ed.Float,
			String: ed.String,
		})
	}
	if item.Duration <= 0 {
		clip.RecalculateDuration()
	}
	return clip, nil
}

func newCurve(kd *KeyData) (bonerig.Curve, error) {
	switch kd.Curve {
	case "", "linear":
		return bonerig.Linear, nil
	case "stepped":
		return bonerig.Stepped, nil
	case "bezier":
		b := kd.Bezier
		return bonerig.Bezier(b[0], b[1], b[2], b[3]), nil
	}
	if _, ok := bonerig.EaseFuncs[kd.Curve]; !ok {
		return bonerig.Curve{}, fmt.Errorf("curve %q: %w", kd.Curve, ErrInvalidDocument)
	}
	return bonerig.Eased(kd.Curve), nil
}
