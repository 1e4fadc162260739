package bonerig

import (
	"fmt"
	"sort"
)

// AnimationEvent is a named marker fired when playback passes its time.
type AnimationEvent struct {
	Time   float64
	Name   string
	Int    int
	Float  float64
	String string
}

// AnimationClip is a named set of keyframe tracks plus timed events. Times
// are in seconds.
type AnimationClip struct {
	ID       string
	Name     string
	Duration float64
	Looping  bool

	tracks map[string]*KeyframeTrack
	events []AnimationEvent
}

// NewAnimationClip creates an empty clip. The ID defaults to the name.
func NewAnimationClip(name string, duration float64) *AnimationClip {
	return &AnimationClip{
		ID:       name,
		Name:     name,
		Duration: duration,
		tracks:   make(map[string]*KeyframeTrack),
	}
}

// AddTrack stores track under its target path, replacing any previous one.
func (c *AnimationClip) AddTrack(track *KeyframeTrack) {
	c.tracks[track.TargetPath] = track
}

// Track returns the track for path, or nil.
func (c *AnimationClip) Track(path string) *KeyframeTrack {
	return c.tracks[path]
}

// EnsureTrack returns the track for path, creating it if needed.
func (c *AnimationClip) EnsureTrack(path string) *KeyframeTrack {
	if t, ok := c.tracks[path]; ok {
		return t
	}
	t := NewKeyframeTrack(path)
	c.tracks[path] = t
	return t
}

// RemoveTrack deletes the track for path and reports whether it existed.
func (c *AnimationClip) RemoveTrack(path string) bool {
	if _, ok := c.tracks[path]; !ok {
		return false
	}
	delete(c.tracks, path)
	return true
}

// Tracks returns every track sorted by target path.
func (c *AnimationClip) Tracks() []*KeyframeTrack {
	res := make([]*KeyframeTrack, 0, len(c.tracks))
	for _, t := range c.tracks {
		res = append(res, t)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].TargetPath < res[j].TargetPath
	})
	return res
}

// BoneNames returns the distinct bone or slot names the tracks target,
// sorted.
func (c *AnimationClip) BoneNames() []string {
	seen := make(map[string]bool)
	res := make([]string, 0)
	for _, t := range c.tracks {
		if !seen[t.BoneName] {
			seen[t.BoneName] = true
			res = append(res, t.BoneName)
		}
	}
	sort.Strings(res)
	return res
}

// Timeline returns the tracks targeting boneName, sorted by path.
func (c *AnimationClip) Timeline(boneName string) []*KeyframeTrack {
	res := make([]*KeyframeTrack, 0)
	for _, t := range c.Tracks() {
		if t.BoneName == boneName {
			res = append(res, t)
		}
	}
	return res
}

// PruneTargets removes every track aimed at one of names and returns how
// many were removed. Pass the result of Skeleton.RemoveBone.
func (c *AnimationClip) PruneTargets(names []string) int {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	count := 0
	for path, t := range c.tracks {
		if drop[t.BoneName] {
			delete(c.tracks, path)
			count++
		}
	}
	return count
}

// AddEvent inserts ev after any events at the same time.
func (c *AnimationClip) AddEvent(ev AnimationEvent) {
	i := sort.Search(len(c.events), func(i int) bool { return c.events[i].Time > ev.Time })
	c.events = append(c.events, AnimationEvent{})
	copy(c.events[i+1:], c.events[i:])
	c.events[i] = ev
}

// Events returns the events in time order.
func (c *AnimationClip) Events() []AnimationEvent {
	return append([]AnimationEvent(nil), c.events...)
}

// eventsIn calls fn for each event with from <= time < to, or time <= to
// when inclusive is set.
func (c *AnimationClip) eventsIn(from, to float64, inclusive bool, fn func(AnimationEvent)) {
	for _, ev := range c.events {
		if ev.Time < from {
			continue
		}
		if ev.Time > to || (ev.Time == to && !inclusive) {
			break
		}
		fn(ev)
	}
}

// RecalculateDuration sets Duration to the latest key or event time.
func (c *AnimationClip) RecalculateDuration() float64 {
	duration := 0.0
	for _, t := range c.tracks {
		duration = max(duration, t.EndTime())
	}
	if n := len(c.events); n > 0 {
		duration = max(duration, c.events[n-1].Time)
	}
	c.Duration = duration
	return duration
}

// ScaleTime retimes every track and event by factor.
func (c *AnimationClip) ScaleTime(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("scale clip %q by %v: %w", c.Name, factor, ErrInvalidScale)
	}
	for _, t := range c.tracks {
		if err := t.Scale(factor); err != nil {
			return err
		}
	}
	for i := range c.events {
		c.events[i].Time *= factor
	}
	c.Duration *= factor
	return nil
}

// Apply evaluates every track at time and writes the values onto sk. With
// alpha below 1 each value is blended from the property's current value.
// Unknown names and properties are skipped.
func (c *AnimationClip) Apply(sk *Skeleton, time, alpha float64) {
	for _, t := range c.tracks {
		value, ok := t.Evaluate(time)
		if !ok {
			continue
		}
		if bone := sk.FindBone(t.BoneName); bone != nil {
			applyBoneProperty(bone, t.Property, value, alpha)
		} else if slot := sk.FindSlot(t.BoneName); slot != nil {
			applySlotProperty(slot, t.Property, value, alpha)
		}
	}
}

func applyBoneProperty(bone *Bone, property string, value, alpha float64) {
	var field *float64
	local := &bone.Local
	switch property {
	case "x":
		field = &local.X
	case "y":
		field = &local.Y
	case "rotation":
		if alpha >= 1 {
			local.Rotation = NormalizeAngle(value)
		} else {
			local.Rotation = LerpAngle(local.Rotation, value, alpha)
		}
		return
	case "scaleX":
		field = &local.ScaleX
	case "scaleY":
		field = &local.ScaleY
	case "shearX":
		field = &local.ShearX
	case "shearY":
		field = &local.ShearY
	default:
		return
	}
	*field = blend(*field, value, alpha)
}

func applySlotProperty(slot *Slot, property string, value, alpha float64) {
	i, ok := colorChannel(property)
	if !ok {
		return
	}
	slot.Color[i] = blend(slot.Color[i], value, alpha)
}

func blend(current, value, alpha float64) float64 {
	if alpha >= 1 {
		return value
	}
	return Lerp(current, value, alpha)
}
