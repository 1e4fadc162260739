package main

import (
	"fmt"
	"image/color"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"bonerig"
	"bonerig/rigfile"
)

// Options configures a Game. A zero Scale or Speed means 1.
type Options struct {
	Clip   string
	Scale  float64
	Speed  float64
	IK     bool
	Width  int
	Height int
}

var (
	boneColor  = color.RGBA{0xff, 0xd5, 0x4f, 0xff}
	boxColor   = color.RGBA{0xe5, 0x39, 0x35, 0xff}
	pointColor = color.RGBA{0x29, 0xb6, 0xf6, 0xff}
	background = color.RGBA{0x26, 0x32, 0x38, 0xff}
)

type Game struct {
	Rig       *rigfile.Rig
	State     *bonerig.AnimationState
	Clips     []string
	ClipIndex int
	Pos       mgl64.Vec2 // screen position of the rig origin
	Scale     float64
	IK        bool
	Paused    bool
	ShowBones bool

	white  *ebiten.Image
	option *colorm.DrawTrianglesOptions
	colorM colorm.ColorM
}

func NewGame(rig *rigfile.Rig, opts Options) (*Game, error) {
	if opts.Scale <= 0 {
		opts.Scale = 1
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	res := &Game{
		Rig:       rig,
		State:     bonerig.NewAnimationState(rig.Skeleton),
		Clips:     rig.ClipNames(),
		Pos:       mgl64.Vec2{float64(opts.Width) / 2, float64(opts.Height) * 0.8},
		Scale:     opts.Scale,
		IK:        opts.IK,
		ShowBones: true,
		white:     ebiten.NewImage(3, 3),
		option:    &colorm.DrawTrianglesOptions{},
	}
	res.white.Fill(color.White)
	res.State.TimeScale = opts.Speed
	res.State.AddListener(logListener())

	if len(res.Clips) == 0 {
		return res, nil
	}
	if opts.Clip != "" {
		index := -1
		for i, name := range res.Clips {
			if name == opts.Clip {
				index = i
			}
		}
		if index < 0 {
			return nil, fmt.Errorf("clip %q not in %v", opts.Clip, res.Clips)
		}
		res.ClipIndex = index
	}
	res.playClip(res.ClipIndex)
	return res, nil
}

func logListener() bonerig.Listener {
	return bonerig.Listener{
		Start: func(e *bonerig.TrackEntry) {
			log.Printf("track %d: start %s", e.TrackIndex, e.Animation.Name)
		},
		Complete: func(e *bonerig.TrackEntry) {
			log.Printf("track %d: complete %s", e.TrackIndex, e.Animation.Name)
		},
		Loop: func(e *bonerig.TrackEntry) {
			log.Printf("track %d: loop %s", e.TrackIndex, e.Animation.Name)
		},
		Event: func(e *bonerig.TrackEntry, ev bonerig.AnimationEvent) {
			log.Printf("track %d: event %s at %.3f (%d %g %q)", e.TrackIndex, ev.Name, ev.Time, ev.Int, ev.Float, ev.String)
		},
	}
}

func (g *Game) playClip(index int) {
	clip := g.Rig.Clips[g.Clips[index]]
	g.ClipIndex = index
	g.State.SetAnimation(0, clip, clip.Looping)
}

// switchClip moves delta clips along the sorted clip list, wrapping around.
func (g *Game) switchClip(delta int) {
	n := len(g.Clips)
	if n == 0 {
		return
	}
	g.playClip(((g.ClipIndex+delta)%n + n) % n)
}

// step poses the rig for one frame: setup pose, animation, world transforms,
// then IK.
func (g *Game) step(dt float64) {
	sk := g.Rig.Skeleton
	sk.SetToSetupPose()
	if g.Paused {
		dt = 0
	}
	g.State.Update(dt)
	sk.UpdateWorldTransforms()
	if g.IK {
		g.Rig.IK.Apply()
	}
}

func (g *Game) Update() error {
	if ebiten.IsKeyPressed(ebiten.KeyW) {
		g.Pos[1]--
	} else if ebiten.IsKeyPressed(ebiten.KeyS) {
		g.Pos[1]++
	} else if ebiten.IsKeyPressed(ebiten.KeyA) {
		g.Pos[0]--
	} else if ebiten.IsKeyPressed(ebiten.KeyD) {
		g.Pos[0]++
	} else if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		log.Printf("origin at %v", g.Pos)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyJ) {
		g.switchClip(-1)
	} else if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		g.switchClip(1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyI) {
		g.IK = !g.IK
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.ShowBones = !g.ShowBones
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.Paused = !g.Paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		g.State.TimeScale *= 2
	} else if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		g.State.TimeScale /= 2
	}
	g.step(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	sk := g.Rig.Skeleton
	for _, slot := range sk.SlotsInDrawOrder() {
		g.drawSlot(slot, screen)
	}
	if g.ShowBones {
		for _, bone := range sk.BonesInOrder() {
			g.drawBone(bone, screen)
		}
	}
	ebitenutil.DebugPrint(screen, g.status())
}

func (g *Game) status() string {
	name, time := "-", 0.0
	if entry := g.State.Current(0); entry != nil {
		name, time = entry.Animation.Name, entry.Time
	}
	return fmt.Sprintf("%s  %.2fs  x%.2f  ik:%v  paused:%v  fps:%.0f",
		name, time, g.State.TimeScale, g.IK, g.Paused, ebiten.ActualFPS())
}

// toScreen maps rig space (y up) to screen space (y down).
func (g *Game) toScreen(p mgl64.Vec2) (float32, float32) {
	return float32(g.Pos.X() + p.X()*g.Scale), float32(g.Pos.Y() - p.Y()*g.Scale)
}

func (g *Game) regionVertices(region *bonerig.RegionAttachment, bone *bonerig.Bone) ([]ebiten.Vertex, []uint16) {
	corners := region.WorldCorners(bone.World())
	vertices := make([]ebiten.Vertex, 0, len(corners))
	for _, c := range corners {
		x, y := g.toScreen(c)
		vertices = append(vertices, newVertex(x, y))
	}
	return vertices, []uint16{0, 1, 2, 0, 2, 3}
}

func (g *Game) drawSlot(slot *bonerig.Slot, screen *ebiten.Image) {
	bone := g.Rig.Skeleton.Bone(slot.Bone)
	if bone == nil || slot.Attachment == nil {
		return
	}
	switch att := slot.Attachment.(type) {
	case *bonerig.RegionAttachment:
		vertices, indices := g.regionVertices(att, bone)
		clr := vec4Mul(slot.Color, att.Color)
		g.colorM.Reset()
		g.colorM.Scale(clr[0], clr[1], clr[2], clr[3])
		g.option.Blend = ebitenBlend(slot.BlendMode)
		colorm.DrawTriangles(screen, vertices, indices, g.white, g.colorM, g.option)
	case *bonerig.BoundingBoxAttachment:
		if !g.ShowBones {
			return
		}
		points := att.WorldVertices(bone.World())
		for i, p := range points {
			q := points[(i+1)%len(points)]
			x0, y0 := g.toScreen(p)
			x1, y1 := g.toScreen(q)
			vector.StrokeLine(screen, x0, y0, x1, y1, 1, boxColor, true)
		}
	case *bonerig.PointAttachment:
		x, y := g.toScreen(att.WorldPosition(bone.World()))
		vector.DrawFilledCircle(screen, x, y, 3, pointColor, true)
	}
}

func (g *Game) drawBone(bone *bonerig.Bone, screen *ebiten.Image) {
	x0, y0 := g.toScreen(bone.World().Position())
	if bone.Length > 0 {
		x1, y1 := g.toScreen(bone.WorldTip())
		vector.StrokeLine(screen, x0, y0, x1, y1, 2, boneColor, true)
	}
	vector.DrawFilledCircle(screen, x0, y0, 2.5, boneColor, true)
}

func (g *Game) Layout(w, h int) (int, int) {
	return w, h
}
