// Package cinecalc derives camera, composition and technical parameters for
// shot templates that do not specify them explicitly. Everything here is
// pure and deterministic: fixed lookup tables, small adjustments, clamping.
package cinecalc

import (
	"math"

	"shotforge/internal/domain"
)

var angleAzimuth = map[domain.Angle]float64{
	domain.AngleFront:        0,
	domain.Angle3QLeft:       -35,
	domain.Angle3QRight:      35,
	domain.Angle45Left:       -45,
	domain.Angle45Right:      45,
	domain.AngleProfileLeft:  -90,
	domain.AngleProfileRight: 90,
	domain.Angle135Left:      -135,
	domain.Angle135Right:     135,
	domain.AngleBack:         180,
}

var baseDistance = map[int]float64{
	35: 3.4,
	50: 2.1,
	85: 1.5,
}

var cropMultiplier = map[domain.Crop]float64{
	domain.CropFull:  1.0,
	domain.Crop3Q:    0.8,
	domain.CropMCU:   0.65,
	domain.CropCU:    0.55,
	domain.CropHands: 0.4,
}

// AzimuthFromAngle maps a named angle to its camera azimuth in degrees.
// Unknown angles resolve to front (0), but the catalog rejects those before
// they ever reach the calculator.
func AzimuthFromAngle(angle domain.Angle) float64 {
	return angleAzimuth[angle]
}

// ElevationFor returns the camera elevation in degrees for a crop and scene
// type. Close crops tilt up slightly to flatter the subject, full-body shots
// tilt down; emotional scenes tilt further up for vulnerability and action
// scenes down for power. The result is clamped to [-15,15].
func ElevationFor(crop domain.Crop, scene domain.SceneType) float64 {
	elev := 0.0
	switch crop {
	case domain.CropCU, domain.CropMCU:
		elev += 2
	case domain.CropFull:
		elev -= 5
	}
	switch scene {
	case domain.SceneEmotional:
		elev += 3
	case domain.SceneAction:
		elev -= 3
	}
	return clamp(elev, -15, 15)
}

// DistanceFor computes the camera-to-subject distance in meters:
// baseDistance[lens] * cropMultiplier[crop] * (1 + (5-intimacy)*0.1),
// rounded to one decimal. Intimacy outside [1,10] is clamped first.
func DistanceFor(lensMm int, crop domain.Crop, intimacy int) float64 {
	base, ok := baseDistance[lensMm]
	if !ok {
		base = baseDistance[50]
	}
	mult, ok := cropMultiplier[crop]
	if !ok {
		mult = 1.0
	}
	level := clamp(float64(intimacy), 1, 10)
	d := base * mult * (1 + (5-level)*0.1)
	return math.Round(d*10) / 10
}

// SubjectYaw returns how far the subject turns to compensate for the camera
// azimuth. Dialogue scenes compensate harder (the subject faces a partner),
// emotional scenes less (a withdrawn posture reads stronger).
func SubjectYaw(cameraAzimuth float64, scene domain.SceneType) float64 {
	comp := 0.7
	switch scene {
	case domain.SceneDialogue:
		comp = 0.8
	case domain.SceneEmotional:
		comp = 0.6
	}
	return -cameraAzimuth * comp
}

// GazeFor picks the subject's gaze direction. Near-frontal shots look to
// camera; past profile the subject looks away unless the scene is dialogue.
func GazeFor(azimuth float64, scene domain.SceneType, intimacy int) domain.Gaze {
	abs := math.Abs(azimuth)
	if abs <= 15 {
		return domain.GazeToCamera
	}
	if abs > 75 && scene != domain.SceneDialogue {
		return domain.GazeAway
	}
	return domain.GazeToCamera
}

// ThirdsFor places the subject horizontally. Establishing shots stay
// centered; otherwise the subject sits opposite the camera offset so they
// look into empty frame.
func ThirdsFor(azimuth float64, scene domain.SceneType) domain.Thirds {
	if scene == domain.SceneEstablishing || math.Abs(azimuth) <= 15 {
		return domain.ThirdsCentered
	}
	if azimuth < 0 {
		return domain.ThirdsRightThird
	}
	return domain.ThirdsLeftThird
}

// HeadroomFor picks vertical framing tightness. Emotional scenes tighten one
// step, establishing scenes loosen one step.
func HeadroomFor(crop domain.Crop, scene domain.SceneType) domain.Headroom {
	var h domain.Headroom
	switch crop {
	case domain.CropCU, domain.CropHands:
		h = domain.HeadroomTight
	case domain.CropFull:
		h = domain.HeadroomLoose
	default:
		h = domain.HeadroomEqual
	}
	switch scene {
	case domain.SceneEmotional:
		if h == domain.HeadroomEqual {
			h = domain.HeadroomTight
		}
	case domain.SceneEstablishing:
		if h == domain.HeadroomEqual {
			h = domain.HeadroomLoose
		}
	}
	return h
}

// FStopFor derives the aperture from lens, crop and intimacy. Longer lenses
// and tighter crops shoot shallower; high intimacy opens a further 0.2 stop.
// Clamped to [1.4,8.0], rounded to one decimal.
func FStopFor(lensMm int, crop domain.Crop, intimacy int) float64 {
	base := 2.8
	switch lensMm {
	case 35:
		base = 4.0
	case 85:
		base = 2.0
	}
	switch crop {
	case domain.CropCU:
		base -= 0.6
	case domain.CropMCU:
		base -= 0.3
	case domain.CropFull:
		base += 1.2
	}
	if intimacy >= 7 {
		base -= 0.2
	}
	return math.Round(clamp(base, 1.4, 8.0)*10) / 10
}

// ISOFor derives sensitivity from the scene type.
func ISOFor(scene domain.SceneType) int {
	switch scene {
	case domain.SceneEstablishing:
		return 100
	case domain.SceneEmotional:
		return 400
	case domain.SceneAction:
		return 800
	default:
		return 200
	}
}

// ShutterFor derives shutter speed from the dynamism slider (1..10).
func ShutterFor(dynamism int) string {
	switch {
	case dynamism >= 8:
		return "1/1000"
	case dynamism >= 6:
		return "1/500"
	case dynamism >= 4:
		return "1/250"
	default:
		return "1/125"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
