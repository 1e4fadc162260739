package bonerig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Rect is an axis-aligned box.
type Rect struct {
	Min, Max mgl64.Vec2
}

// Width returns the horizontal extent.
func (r Rect) Width() float64 { return r.Max.X() - r.Min.X() }

// Height returns the vertical extent.
func (r Rect) Height() float64 { return r.Max.Y() - r.Min.Y() }

// Center returns the midpoint.
func (r Rect) Center() mgl64.Vec2 {
	return r.Min.Add(r.Max).Mul(0.5)
}

// Bounds returns the box around every bone's world origin and tip, padded by
// BoundsPadding. ok is false when the skeleton has no bones.
func (s *Skeleton) Bounds() (r Rect, ok bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range s.bones {
		if b == nil {
			continue
		}
		ok = true
		for _, p := range [2]mgl64.Vec2{b.world.Position(), b.WorldTip()} {
			minX, minY = math.Min(minX, p.X()), math.Min(minY, p.Y())
			maxX, maxY = math.Max(maxX, p.X()), math.Max(maxY, p.Y())
		}
	}
	if !ok {
		return Rect{}, false
	}
	return Rect{
		Min: mgl64.Vec2{minX - BoundsPadding, minY - BoundsPadding},
		Max: mgl64.Vec2{maxX + BoundsPadding, maxY + BoundsPadding},
	}, true
}

// Center returns the middle of Bounds, or the origin for an empty skeleton.
func (s *Skeleton) Center() mgl64.Vec2 {
	r, ok := s.Bounds()
	if !ok {
		return mgl64.Vec2{}
	}
	return r.Center()
}
