package bonerig

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// PropertyType groups the properties a track can drive.
type PropertyType uint8

const (
	PropertyGeneric PropertyType = iota
	PropertyTranslation
	PropertyRotation
	PropertyScale
	PropertyColor
)

func (p PropertyType) String() string {
	switch p {
	case PropertyTranslation:
		return "TRANSLATION"
	case PropertyRotation:
		return "ROTATION"
	case PropertyScale:
		return "SCALE"
	case PropertyColor:
		return "COLOR"
	default:
		return "GENERIC"
	}
}

// PropertyTypeOf classifies a property name.
func PropertyTypeOf(property string) PropertyType {
	switch property {
	case "x", "y":
		return PropertyTranslation
	case "rotation":
		return PropertyRotation
	case "scaleX", "scaleY":
		return PropertyScale
	case "alpha", "red", "green", "blue":
		return PropertyColor
	default:
		return PropertyGeneric
	}
}

// SplitTargetPath splits "<name>.<property>" at the last dot. ok is false
// when either side is empty.
func SplitTargetPath(path string) (name, property string, ok bool) {
	i := strings.LastIndexByte(path, '.')
	if i <= 0 || i == len(path)-1 {
		return "", "", false
	}
	return path[:i], path[i+1:], true
}

// TargetPath joins a bone or slot name with a property.
func TargetPath(name, property string) string {
	return name + "." + property
}

// Keyframe is one sample of a track. Curve shapes the segment toward the
// next key.
type Keyframe struct {
	Time  float64
	Value float64
	Curve Curve
}

// KeyframeTrack is a time-sorted list of samples for one scalar property.
// Key times are unique.
type KeyframeTrack struct {
	TargetPath string
	BoneName   string
	Property   string
	Type       PropertyType

	keys []Keyframe
}

// NewKeyframeTrack creates an empty track for a "<name>.<property>" path.
// A path without a dot keeps the whole string as the name.
func NewKeyframeTrack(targetPath string) *KeyframeTrack {
	name, property, ok := SplitTargetPath(targetPath)
	if !ok {
		name = targetPath
	}
	return &KeyframeTrack{
		TargetPath: targetPath,
		BoneName:   name,
		Property:   property,
		Type:       PropertyTypeOf(property),
	}
}

// SetKeyframe replaces the key within KeyframeTimeEpsilon of time, or inserts
// a new one in order.
func (t *KeyframeTrack) SetKeyframe(time, value float64, curve Curve) {
	i := sort.Search(len(t.keys), func(i int) bool { return t.keys[i].Time >= time })
	key := Keyframe{Time: time, Value: value, Curve: curve}
	// the neighbours on either side are the only replacement candidates
	for _, j := range []int{i, i - 1} {
		if j >= 0 && j < len(t.keys) && math.Abs(t.keys[j].Time-time) < KeyframeTimeEpsilon {
			key.Time = t.keys[j].Time
			t.keys[j] = key
			return
		}
	}
	t.keys = append(t.keys, Keyframe{})
	copy(t.keys[i+1:], t.keys[i:])
	t.keys[i] = key
}

// RemoveKeyframe removes the key within KeyframeTimeEpsilon of time and
// reports whether one existed.
func (t *KeyframeTrack) RemoveKeyframe(time float64) bool {
	for i, k := range t.keys {
		if math.Abs(k.Time-time) < KeyframeTimeEpsilon {
			t.keys = append(t.keys[:i], t.keys[i+1:]...)
			return true
		}
	}
	return false
}

// Keyframes returns a copy of the keys in time order.
func (t *KeyframeTrack) Keyframes() []Keyframe {
	return append([]Keyframe(nil), t.keys...)
}

// Len returns the number of keys.
func (t *KeyframeTrack) Len() int {
	return len(t.keys)
}

// StartTime returns the first key's time, or 0 for an empty track.
func (t *KeyframeTrack) StartTime() float64 {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[0].Time
}

// EndTime returns the last key's time, or 0 for an empty track.
func (t *KeyframeTrack) EndTime() float64 {
	if len(t.keys) == 0 {
		return 0
	}
	return t.keys[len(t.keys)-1].Time
}

// Evaluate samples the track at time. Outside the key range the nearest end
// value is held, and a NaN time reads the first key. ok is false for an
// empty track.
func (t *KeyframeTrack) Evaluate(time float64) (value float64, ok bool) {
	n := len(t.keys)
	if n == 0 {
		return 0, false
	}
	if time <= t.keys[0].Time || math.IsNaN(time) {
		return t.keys[0].Value, true
	}
	if time >= t.keys[n-1].Time {
		return t.keys[n-1].Value, true
	}
	next := sort.Search(n, func(i int) bool { return t.keys[i].Time > time })
	pre := t.keys[next-1]
	post := t.keys[next]
	if pre.Curve.IsStepped() {
		return pre.Value, true
	}
	rate := pre.Curve.Apply((time - pre.Time) / (post.Time - pre.Time))
	return t.lerp(pre.Value, post.Value, rate), true
}

func (t *KeyframeTrack) lerp(from, to, rate float64) float64 {
	if t.Type == PropertyRotation {
		return LerpAngle(from, to, rate)
	}
	return Lerp(from, to, rate)
}

// Shift adds delta to every key time.
func (t *KeyframeTrack) Shift(delta float64) {
	for i := range t.keys {
		t.keys[i].Time += delta
	}
}

// Scale multiplies every key time by factor, which must be positive to keep
// the keys sorted.
func (t *KeyframeTrack) Scale(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("scale track %q by %v: %w", t.TargetPath, factor, ErrInvalidScale)
	}
	for i := range t.keys {
		t.keys[i].Time *= factor
	}
	return nil
}
