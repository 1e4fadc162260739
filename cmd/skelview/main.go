// Command skelview plays the clips of a rig file in a window.
//
//	skelview -rig rigs/walker.yaml -clip walk -ik
//
// WASD moves the rig, J/K switch clips, I toggles IK, B toggles the bone
// overlay, Space pauses and the arrow keys change the playback speed.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"bonerig/rigfile"
)

var (
	rigPath   string
	clipName  string
	viewScale float64
	speed     float64
	useIK     bool
	width     int
	height    int
)

func parseFlags() {
	flag.StringVar(&rigPath, "rig", "rigs/walker.yaml",
		"Path to the YAML rig file.")
	flag.StringVar(&clipName, "clip", "",
		"Clip to start with. Defaults to the first clip by name.")
	flag.Float64Var(&viewScale, "scale", 2,
		"Pixels per rig unit.")
	flag.Float64Var(&speed, "speed", 1,
		"Playback time scale.")
	flag.BoolVar(&useIK, "ik", true,
		"Apply the rig's IK constraints after each animation step.")
	flag.IntVar(&width, "width", 1280, "Window width.")
	flag.IntVar(&height, "height", 720, "Window height.")

	flag.Parse()
}

func main() {
	parseFlags()
	log.SetFlags(0)
	log.SetPrefix("[skelview] ")

	rig, err := rigfile.Load(rigPath)
	handleErr(err)
	game, err := NewGame(rig, Options{
		Clip:   clipName,
		Scale:  viewScale,
		Speed:  speed,
		IK:     useIK,
		Width:  width,
		Height: height,
	})
	handleErr(err)

	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle("skelview - " + rig.Skeleton.Name)
	handleErr(ebiten.RunGame(game))
}
