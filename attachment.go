package bonerig

import "github.com/go-gl/mathgl/mgl64"

// AttachmentKind identifies the concrete type behind an Attachment.
type AttachmentKind uint8

const (
	AttachmentRegion AttachmentKind = iota
	AttachmentBoundingBox
	AttachmentPoint
)

// Attachment is what a slot shows. The set of implementations is closed:
// RegionAttachment, BoundingBoxAttachment and PointAttachment.
type Attachment interface {
	AttachmentName() string
	attachment()
}

// RegionAttachment is a rectangular image placed relative to its bone.
type RegionAttachment struct {
	Name     string
	Path     string
	X, Y     float64
	Rotation float64
	ScaleX   float64
	ScaleY   float64
	Width    float64
	Height   float64
	Color    mgl64.Vec4
}

// BoundingBoxAttachment is a polygon in bone space used for hit testing.
type BoundingBoxAttachment struct {
	Name     string
	Vertices []mgl64.Vec2
}

// PointAttachment is a single oriented point in bone space.
type PointAttachment struct {
	Name     string
	X, Y     float64
	Rotation float64
}

func (a *RegionAttachment) AttachmentName() string      { return a.Name }
func (a *BoundingBoxAttachment) AttachmentName() string { return a.Name }
func (a *PointAttachment) AttachmentName() string       { return a.Name }

func (*RegionAttachment) attachment()      {}
func (*BoundingBoxAttachment) attachment() {}
func (*PointAttachment) attachment()       {}

// AttachmentKindOf reports the kind of a. ok is false for nil.
func AttachmentKindOf(a Attachment) (kind AttachmentKind, ok bool) {
	switch a.(type) {
	case *RegionAttachment:
		return AttachmentRegion, true
	case *BoundingBoxAttachment:
		return AttachmentBoundingBox, true
	case *PointAttachment:
		return AttachmentPoint, true
	default:
		return 0, false
	}
}

// CloneAttachment returns a deep copy of a.
func CloneAttachment(a Attachment) Attachment {
	switch v := a.(type) {
	case *RegionAttachment:
		c := *v
		return &c
	case *BoundingBoxAttachment:
		c := *v
		c.Vertices = append([]mgl64.Vec2(nil), v.Vertices...)
		return &c
	case *PointAttachment:
		c := *v
		return &c
	default:
		return nil
	}
}

// LocalTransform is the region's placement relative to its bone.
func (a *RegionAttachment) LocalTransform() Transform2D {
	return Transform2D{X: a.X, Y: a.Y, Rotation: a.Rotation, ScaleX: a.ScaleX, ScaleY: a.ScaleY}
}

// WorldCorners returns the quad corners of the region under the bone's world
// transform, counter-clockwise from the top-left.
func (a *RegionAttachment) WorldCorners(bone Transform2D) [4]mgl64.Vec2 {
	place := bone.Multiply(a.LocalTransform())
	w, h := a.Width/2, a.Height/2
	return [4]mgl64.Vec2{
		place.TransformPoint(mgl64.Vec2{-w, h}),
		place.TransformPoint(mgl64.Vec2{w, h}),
		place.TransformPoint(mgl64.Vec2{w, -h}),
		place.TransformPoint(mgl64.Vec2{-w, -h}),
	}
}

// WorldVertices maps the polygon to world space.
func (a *BoundingBoxAttachment) WorldVertices(bone Transform2D) []mgl64.Vec2 {
	res := make([]mgl64.Vec2, 0, len(a.Vertices))
	for _, v := range a.Vertices {
		res = append(res, bone.TransformPoint(v))
	}
	return res
}

// WorldPosition maps the point to world space.
func (a *PointAttachment) WorldPosition(bone Transform2D) mgl64.Vec2 {
	return bone.TransformPoint(mgl64.Vec2{a.X, a.Y})
}
