package bonerig

import "errors"

var (
	// ErrDuplicateName is returned when a bone, slot or constraint name is
	// already registered.
	ErrDuplicateName = errors.New("bonerig: duplicate name")
	// ErrUnknownBone is returned when a BoneID does not name a live bone.
	ErrUnknownBone = errors.New("bonerig: unknown bone")
	// ErrCycle is returned when a reparent would make a bone its own ancestor.
	ErrCycle = errors.New("bonerig: parent would create a cycle")
	// ErrInvalidScale is returned when keyframe times are scaled by a
	// non-positive factor.
	ErrInvalidScale = errors.New("bonerig: scale factor must be positive")
	// ErrInvalidConstraint is returned for out-of-range constraint settings.
	ErrInvalidConstraint = errors.New("bonerig: invalid constraint")
)
