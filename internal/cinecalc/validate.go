package cinecalc

import (
	"fmt"
	"math"

	"shotforge/internal/domain"
)

// Report annotates a derived parameter set with plausibility findings.
// Validation never fails hard: implausible combinations still render, they
// just carry warnings and suggestions for the caller.
type Report struct {
	Valid       bool
	Warnings    []string
	Suggestions []string
}

// Validate flags implausible parameter combinations for a shot.
func Validate(tpl domain.ShotTemplate, d Derived) Report {
	rep := Report{Valid: true}

	if d.Camera.DistanceM < 0.5 {
		rep.warn(fmt.Sprintf("distance %.1fm is closer than 0.5m; expect lens distortion", d.Camera.DistanceM))
	}
	if d.Camera.DistanceM > 5 {
		rep.warn(fmt.Sprintf("distance %.1fm is beyond 5m; subject detail will suffer", d.Camera.DistanceM))
	}
	if math.Abs(d.Camera.ElevationDeg) > 20 {
		rep.warn(fmt.Sprintf("elevation %.1f° is unusually steep for portrait work", d.Camera.ElevationDeg))
	}
	if d.Composition.Gaze == domain.GazeToCamera && math.Abs(d.Camera.AzimuthDeg) > 60 {
		rep.warn(fmt.Sprintf("gaze to_camera at %.0f° azimuth strains the neck", d.Camera.AzimuthDeg))
		rep.suggest("use gaze \"away\" for azimuths beyond 60°")
	}
	if d.Composition.Headroom == domain.HeadroomTight && (tpl.Crop == domain.CropFull || tpl.Crop == domain.Crop3Q) {
		rep.warn(fmt.Sprintf("tight headroom fights the wide %s crop", tpl.Crop))
		rep.suggest("loosen headroom for full and 3q crops")
	}

	return rep
}

func (r *Report) warn(msg string) {
	r.Valid = false
	r.Warnings = append(r.Warnings, msg)
}

func (r *Report) suggest(msg string) {
	r.Suggestions = append(r.Suggestions, msg)
}
