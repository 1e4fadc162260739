package main

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
)

func handleErr(err error) {
	if err != nil {
		panic(err)
	}
}

func vec4Mul(v1, v2 mgl64.Vec4) mgl64.Vec4 {
	return mgl64.Vec4{v1.X() * v2.X(), v1.Y() * v2.Y(), v1.Z() * v2.Z(), v1.W() * v2.W()}
}

// newVertex samples the centre of the 3x3 white image so quads never pick up
// edge texels.
func newVertex(dx, dy float32) ebiten.Vertex {
	return ebiten.Vertex{
		DstX:   dx,
		DstY:   dy,
		SrcX:   1.5,
		SrcY:   1.5,
		ColorR: 1,
		ColorG: 1,
		ColorB: 1,
		ColorA: 1,
	}
}
