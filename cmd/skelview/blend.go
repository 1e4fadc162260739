package main

import (
	"github.com/hajimehoshi/ebiten/v2"

	"bonerig"
)

var blendMap = map[bonerig.BlendMode]ebiten.Blend{
	bonerig.BlendNormal:   ebiten.BlendSourceOver,
	bonerig.BlendAdditive: ebiten.BlendLighter,
	bonerig.BlendMultiply: {
		// src * dst, background dropped
		BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
		BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
		BlendFactorDestinationRGB:   ebiten.BlendFactorZero,
		BlendFactorDestinationAlpha: ebiten.BlendFactorZero,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
	bonerig.BlendScreen: {
		// src + dst * (1 - src)
		BlendFactorSourceRGB:        ebiten.BlendFactorOne,
		BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
		BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
		BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
		BlendOperationRGB:           ebiten.BlendOperationAdd,
		BlendOperationAlpha:         ebiten.BlendOperationAdd,
	},
}

func ebitenBlend(mode bonerig.BlendMode) ebiten.Blend {
	if b, ok := blendMap[mode]; ok {
		return b
	}
	return ebiten.BlendSourceOver
}
