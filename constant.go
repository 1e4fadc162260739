package bonerig

const (
	epsilon = 1e-9

	// KeyframeTimeEpsilon is the window within which SetKeyframe replaces an
	// existing key instead of inserting a new one.
	KeyframeTimeEpsilon = 0.001

	// BoundsPadding is added on every side of Skeleton.Bounds.
	BoundsPadding = 20.0

	// MinIKTolerance is the smallest tolerance an IKConstraint accepts.
	MinIKTolerance = 0.001

	bezierIterations = 8
	bezierEpsilon    = 1e-6
)
