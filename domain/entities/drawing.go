package entities

// DrawPhase is a legacy immediate-mode drawing phase.
type DrawPhase int

const (
	DrawFirstScene      DrawPhase = 0
	DrawTerrain         DrawPhase = 5
	DrawAirports        DrawPhase = 10
	DrawVectors         DrawPhase = 15
	DrawObjects         DrawPhase = 20
	DrawAirplanes       DrawPhase = 25
	DrawLastScene       DrawPhase = 30
	DrawModern3D        DrawPhase = 31
	DrawFirstCockpit    DrawPhase = 35
	DrawPanel           DrawPhase = 40
	DrawGauges          DrawPhase = 45
	DrawWindow          DrawPhase = 50
	DrawLastCockpit     DrawPhase = 55
	DrawLocalMap3D      DrawPhase = 100
	DrawLocalMap2D      DrawPhase = 101
	DrawLocalMapProfile DrawPhase = 102
)

// DrawInfo positions an object instance in local OpenGL coordinates.
type DrawInfo struct {
	X       float32
	Y       float32
	Z       float32
	Pitch   float32
	Heading float32
	Roll    float32
}

// CameraPosition is the camera state the override callback may change.
type CameraPosition struct {
	X       float32
	Y       float32
	Z       float32
	Pitch   float32
	Heading float32
	Roll    float32
	Zoom    float32
}

// CameraDuration tells the host how long an override lasts.
type CameraDuration int

const (
	// CameraUntilViewChanges ends the override when the user picks a view.
	CameraUntilViewChanges CameraDuration = 1
	// CameraForever keeps the override until it is released.
	CameraForever CameraDuration = 2
)
