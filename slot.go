package bonerig

import "github.com/go-gl/mathgl/mgl64"

// BlendMode selects how a slot's attachment is composited.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiply
	BlendScreen
)

// Slot binds an attachment to a bone. Draw order is independent of the bone
// tree.
type Slot struct {
	ID         int
	Name       string
	Bone       BoneID
	Attachment Attachment
	DrawOrder  int
	BlendMode  BlendMode
	Color      mgl64.Vec4 // rgba tint

	SetupColor      mgl64.Vec4
	SetupAttachment Attachment
}

// NewSlot creates a slot on bone with a white tint.
func NewSlot(name string, bone BoneID) *Slot {
	return &Slot{
		Name:       name,
		Bone:       bone,
		Color:      mgl64.Vec4{1, 1, 1, 1},
		SetupColor: mgl64.Vec4{1, 1, 1, 1},
	}
}

// SetToSetupPose restores the setup color and attachment.
func (s *Slot) SetToSetupPose() {
	s.Color = s.SetupColor
	s.Attachment = CloneAttachment(s.SetupAttachment)
}

func colorChannel(property string) (int, bool) {
	switch property {
	case "red":
		return 0, true
	case "green":
		return 1, true
	case "blue":
		return 2, true
	case "alpha":
		return 3, true
	default:
		return 0, false
	}
}
