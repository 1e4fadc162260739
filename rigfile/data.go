package rigfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// SkelData is the top-level rig document.
type SkelData struct {
	Name       string           `yaml:"name"`
	Bones      []*BoneData      `yaml:"bones"` // parents before children, first is root
	Slots      []*SlotData      `yaml:"slots"`
	IK         []*IKData        `yaml:"ik"`
	Transforms []*TransformData `yaml:"transforms"`
	Animations []*AnimationData `yaml:"animations"`
}

type BoneData struct {
	Name      string  `yaml:"name"`
	Parent    string  `yaml:"parent"`
	X         float64 `yaml:"x"`
	Y         float64 `yaml:"y"`
	Rotation  float64 `yaml:"rotation"`
	ScaleX    float64 `yaml:"scaleX"`
	ScaleY    float64 `yaml:"scaleY"`
	ShearX    float64 `yaml:"shearX"`
	ShearY    float64 `yaml:"shearY"`
	Length    float64 `yaml:"length"`
	Transform string  `yaml:"transform"` // normal, onlyTranslation, noRotationOrReflection, noScale, noScaleOrReflection
	Color     *Color  `yaml:"color"`
}

func (b *BoneData) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain BoneData
	p := plain{ScaleX: 1, ScaleY: 1}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*b = BoneData(p)
	return nil
}

type SlotData struct {
	Name       string          `yaml:"name"`
	Bone       string          `yaml:"bone"`
	Color      *Color          `yaml:"color"`
	Blend      string          `yaml:"blend"` // normal, additive, multiply, screen
	Order      *int            `yaml:"order"` // defaults to the slot's index
	Attachment *AttachmentData `yaml:"attachment"`
}

const (
	AttachmentRegion      = "region"
	AttachmentBoundingBox = "boundingbox"
	AttachmentPoint       = "point"
)

type AttachmentData struct {
	Type string `yaml:"type"`
	Name string `yaml:"name"`
	// region
	Path   string  `yaml:"path"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	ScaleX float64 `yaml:"scaleX"`
	ScaleY float64 `yaml:"scaleY"`
	Color  *Color  `yaml:"color"`
	// region and point
	X        float64 `yaml:"x"`
	Y        float64 `yaml:"y"`
	Rotation float64 `yaml:"rotation"`
	// boundingbox
	Vertices [][2]float64 `yaml:"vertices"`
}

func (a *AttachmentData) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain AttachmentData
	p := plain{Type: AttachmentRegion, ScaleX: 1, ScaleY: 1}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*a = AttachmentData(p)
	return nil
}

type IKData struct {
	Name          string   `yaml:"name"`
	Bones         []string `yaml:"bones"`
	Target        string   `yaml:"target"`
	Mix           float64  `yaml:"mix"`
	BendPositive  bool     `yaml:"bendPositive"`
	Compress      bool     `yaml:"compress"`
	Stretch       bool     `yaml:"stretch"`
	Softness      float64  `yaml:"softness"`
	MaxIterations int      `yaml:"iterations"`
	Tolerance     float64  `yaml:"tolerance"`
}

func (d *IKData) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain IKData
	p := plain{Mix: 1, BendPositive: true, MaxIterations: 10, Tolerance: 0.001}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*d = IKData(p)
	return nil
}

// TransformData describes a transform constraint. Mixes default to 1.
type TransformData struct {
	Name           string   `yaml:"name"`
	Bones          []string `yaml:"bones"`
	Target         string   `yaml:"target"`
	RotateMix      float64  `yaml:"rotateMix"`
	TranslateMix   float64  `yaml:"translateMix"`
	ScaleMix       float64  `yaml:"scaleMix"`
	OffsetRotation float64  `yaml:"rotation"`
	OffsetX        float64  `yaml:"x"`
	OffsetY        float64  `yaml:"y"`
	OffsetScaleX   float64  `yaml:"scaleX"`
	OffsetScaleY   float64  `yaml:"scaleY"`
}

func (d *TransformData) UnmarshalYAML(unmarshal func(interface{}) error) error {
	type plain TransformData
	p := plain{RotateMix: 1, TranslateMix: 1, ScaleMix: 1}
	if err := unmarshal(&p); err != nil {
		return err
	}
	*d = TransformData(p)
	return nil
}

type AnimationData struct {
	Name     string       `yaml:"name"`
	Duration float64      `yaml:"duration"` // 0 derives it from the last key or event
	Loop     bool         `yaml:"loop"`
	Tracks   []*TrackData `yaml:"tracks"`
	Events   []*EventData `yaml:"events"`
}

type TrackData struct {
	Target string     `yaml:"target"` // name.property
	Keys   []*KeyData `yaml:"keys"`
}

type KeyData struct {
	Time  float64 `yaml:"time"`
	Value float64 `yaml:"value"`
	// linear (default), stepped, bezier or an easing name such as inOutQuad
	Curve  string     `yaml:"curve"`
	Bezier [4]float64 `yaml:"bezier"`
}

type EventData struct {
	Time   float64 `yaml:"time"`
	Name   string  `yaml:"name"`
	Int    int     `yaml:"int"`
	Float  float64 `yaml:"float"`
	String string  `yaml:"string"`
}

// Color is an rgba tint. In YAML it is either a hex string ("ff8800" or
// "ff8800cc") or a list of three or four channels in [0,1].
type Color mgl64.Vec4

func (c *Color) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var hex string
	if err := unmarshal(&hex); err == nil {
		v, err := parseHexColor(hex)
		if err != nil {
			return err
		}
		*c = v
		return nil
	}
	var channels []float64
	if err := unmarshal(&channels); err != nil {
		return fmt.Errorf("color: want hex string or channel list: %w", err)
	}
	switch len(channels) {
	case 3:
		*c = Color{channels[0], channels[1], channels[2], 1}
	case 4:
		*c = Color{channels[0], channels[1], channels[2], channels[3]}
	default:
		return fmt.Errorf("color: %d channels: %w", len(channels), ErrInvalidDocument)
	}
	return nil
}

func parseHexColor(hex string) (Color, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("color %q: %w", hex, ErrInvalidDocument)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", hex, ErrInvalidDocument)
	}
	return Color{
		float64(n>>24&0xff) / 255,
		float64(n>>16&0xff) / 255,
		float64(n>>8&0xff) / 255,
		float64(n&0xff) / 255,
	}, nil
}

func (c *Color) vec(def mgl64.Vec4) mgl64.Vec4 {
	if c == nil {
		return def
	}
	return mgl64.Vec4(*c)
}
