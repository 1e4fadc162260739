// Package bonerig is the pose core of a 2D skeletal animation rig: a bone
// tree with inherited transforms, keyframe clips played by an
// [AnimationState], and IK and transform constraints run by an [IKManager].
//
// A frame is computed by the caller in a fixed order:
//
//	sk.SetToSetupPose()
//	state.Update(dt)
//	sk.UpdateWorldTransforms()
//	constraints.Apply()
//
// after which every [Bone.World] is current and ready to draw.
//
// # Bones
//
// Bones live in an arena owned by the [Skeleton] and are addressed by
// [BoneID]. IDs are never reused, so a stale ID simply fails to resolve.
// Angles are in degrees, normalized to (-180, 180].
//
// # Animation
//
// An [AnimationClip] maps target paths such as "arm.rotation" or
// "sleeve.alpha" to [KeyframeTrack]s. Paths naming a missing bone or slot
// are skipped when the clip is applied.
//
// Nothing in the package is safe for concurrent use.
package bonerig
