package bonerig

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func clipSkeleton(t *testing.T) (*Skeleton, *Bone, *Slot) {
	t.Helper()
	sk := NewSkeleton("rig")
	root := mustAddBone(t, sk, newBone("root", 0, 0, 0, 10), NoBone)
	arm := NewBone("arm")
	arm.Length = 20
	armID := mustAddBone(t, sk, arm, root)
	slot := NewSlot("sleeve", armID)
	if err := sk.AddSlot(slot); err != nil {
		t.Fatal(err)
	}
	return sk, arm, slot
}

func TestClipApplyWritesBoneProperties(t *testing.T) {
	sk, arm, _ := clipSkeleton(t)
	clip := NewAnimationClip("wave", 1)
	for prop, v := range map[string]float64{
		"x": 3, "y": -4, "rotation": 190, "scaleX": 2, "scaleY": 0.5, "shearX": 7, "shearY": -7,
	} {
		clip.EnsureTrack(TargetPath("arm", prop)).SetKeyframe(0, v, Linear)
	}

	clip.Apply(sk, 0.5, 1)

	l := arm.Local
	assertNear(t, "x", l.X, 3)
	assertNear(t, "y", l.Y, -4)
	assertNear(t, "rotation", l.Rotation, -170)
	assertNear(t, "scaleX", l.ScaleX, 2)
	assertNear(t, "scaleY", l.ScaleY, 0.5)
	assertNear(t, "shearX", l.ShearX, 7)
	assertNear(t, "shearY", l.ShearY, -7)
}

func TestClipApplyBlendsWithAlpha(t *testing.T) {
	sk, arm, _ := clipSkeleton(t)
	arm.Local.X = 10
	arm.Local.Rotation = 170
	clip := NewAnimationClip("blend", 1)
	clip.EnsureTrack("arm.x").SetKeyframe(0, 20, Linear)
	clip.EnsureTrack("arm.rotation").SetKeyframe(0, -170, Linear)

	clip.Apply(sk, 0, 0.5)

	assertNear(t, "x", arm.Local.X, 15)
	assertAngle(t, "rotation", arm.Local.Rotation, 180)
}

func TestClipApplySlotColor(t *testing.T) {
	sk, _, slot := clipSkeleton(t)
	clip := NewAnimationClip("fade", 1)
	clip.EnsureTrack("sleeve.alpha").SetKeyframe(0, 1, Linear)
	clip.EnsureTrack("sleeve.alpha").SetKeyframe(1, 0, Linear)
	clip.EnsureTrack("sleeve.red").SetKeyframe(0, 0.25, Linear)

	clip.Apply(sk, 0.5, 1)
	assertNear(t, "alpha", slot.Color[3], 0.5)
	assertNear(t, "red", slot.Color[0], 0.25)

	clip.Apply(sk, 1, 0.5)
	assertNear(t, "blended alpha", slot.Color[3], 0.25)
}

func TestClipApplyIgnoresUnknownTargets(t *testing.T) {
	sk, arm, slot := clipSkeleton(t)
	before := arm.Local
	clip := NewAnimationClip("noise", 1)
	clip.EnsureTrack("arm.wobble").SetKeyframe(0, 99, Linear)
	clip.EnsureTrack("ghost.x").SetKeyframe(0, 99, Linear)
	clip.EnsureTrack("sleeve.x").SetKeyframe(0, 99, Linear)
	clip.EnsureTrack("arm.y") // empty track is skipped

	clip.Apply(sk, 0, 1)

	if arm.Local != before {
		t.Errorf("arm local changed: %+v", arm.Local)
	}
	if slot.Color != (mgl64.Vec4{1, 1, 1, 1}) {
		t.Errorf("slot color changed: %v", slot.Color)
	}
}

func TestClipTrackEnumeration(t *testing.T) {
	clip := NewAnimationClip("walk", 2)
	clip.EnsureTrack("leg.rotation").SetKeyframe(0, 0, Linear)
	clip.EnsureTrack("arm.x").SetKeyframe(0, 0, Linear)
	clip.EnsureTrack("arm.rotation").SetKeyframe(1.5, 0, Linear)
	clip.AddTrack(NewKeyframeTrack("sleeve.alpha"))

	tracks := clip.Tracks()
	if len(tracks) != 4 || tracks[0].TargetPath != "arm.rotation" || tracks[3].TargetPath != "sleeve.alpha" {
		t.Errorf("Tracks order wrong: %d tracks, first %q", len(tracks), tracks[0].TargetPath)
	}
	names := clip.BoneNames()
	if len(names) != 3 || names[0] != "arm" || names[1] != "leg" || names[2] != "sleeve" {
		t.Errorf("BoneNames = %v", names)
	}
	if tl := clip.Timeline("arm"); len(tl) != 2 {
		t.Errorf("Timeline(arm) = %d tracks, want 2", len(tl))
	}
	if clip.Track("nope.x") != nil {
		t.Error("Track on missing path should be nil")
	}
	if !clip.RemoveTrack("leg.rotation") || clip.RemoveTrack("leg.rotation") {
		t.Error("RemoveTrack should succeed once")
	}
}

func TestClipPruneTargets(t *testing.T) {
	sk, _, _ := clipSkeleton(t)
	clip := NewAnimationClip("c", 1)
	clip.EnsureTrack("arm.x").SetKeyframe(0, 1, Linear)
	clip.EnsureTrack("arm.rotation").SetKeyframe(0, 1, Linear)
	clip.EnsureTrack("root.x").SetKeyframe(0, 1, Linear)

	removed := sk.RemoveBone(sk.FindBone("arm").ID)
	if n := clip.PruneTargets(removed); n != 2 {
		t.Errorf("pruned %d tracks, want 2", n)
	}
	if len(clip.Tracks()) != 1 {
		t.Errorf("remaining tracks = %d, want 1", len(clip.Tracks()))
	}
}

func TestClipEventsSortedAndDuration(t *testing.T) {
	clip := NewAnimationClip("c", 0)
	clip.AddEvent(AnimationEvent{Time: 0.8, Name: "late"})
	clip.AddEvent(AnimationEvent{Time: 0.2, Name: "early"})
	clip.AddEvent(AnimationEvent{Time: 0.2, Name: "early-2"})
	clip.EnsureTrack("a.x").SetKeyframe(0.5, 1, Linear)

	evs := clip.Events()
	if evs[0].Name != "early" || evs[1].Name != "early-2" || evs[2].Name != "late" {
		t.Errorf("events = %v", evs)
	}
	assertNear(t, "duration", clip.RecalculateDuration(), 0.8)
}

func TestClipScaleTime(t *testing.T) {
	clip := NewAnimationClip("c", 1)
	clip.EnsureTrack("a.x").SetKeyframe(1, 1, Linear)
	clip.AddEvent(AnimationEvent{Time: 0.5})
	if err := clip.ScaleTime(2); err != nil {
		t.Fatal(err)
	}
	assertNear(t, "duration", clip.Duration, 2)
	assertNear(t, "key", clip.Track("a.x").EndTime(), 2)
	assertNear(t, "event", clip.Events()[0].Time, 1)
	if err := clip.ScaleTime(-1); !errors.Is(err, ErrInvalidScale) {
		t.Errorf("err = %v, want ErrInvalidScale", err)
	}
}
