package cinecalc

import "shotforge/internal/domain"

// Derived bundles the fully resolved parameters for one shot. The pipeline
// never consumes a template with holes; Derive fills every field a template
// leaves unset.
type Derived struct {
	Camera      domain.CameraParams
	Composition domain.CompositionParams
	Technical   domain.TechnicalParams
	SubjectYaw  float64
}

// Derive resolves the camera, composition and technical parameters for a
// template under a given scene context. Explicit template values always win;
// only unset fields are calculated.
func Derive(tpl domain.ShotTemplate, scene domain.SceneType, intimacy, dynamism int) Derived {
	if intimacy == 0 {
		intimacy = 5
	}
	if dynamism == 0 {
		dynamism = 5
	}

	cam := tpl.Camera
	if !cam.AzimuthSet {
		cam.AzimuthDeg = AzimuthFromAngle(tpl.Angle)
		cam.AzimuthSet = true
	}
	if !cam.ElevationSet {
		cam.ElevationDeg = ElevationFor(tpl.Crop, scene)
		cam.ElevationSet = true
	}
	if cam.DistanceM == 0 {
		cam.DistanceM = DistanceFor(tpl.LensMm, tpl.Crop, intimacy)
	}

	comp := tpl.Composition
	if comp.Thirds == "" {
		comp.Thirds = ThirdsFor(cam.AzimuthDeg, scene)
	}
	if comp.Headroom == "" {
		comp.Headroom = HeadroomFor(tpl.Crop, scene)
	}
	if comp.Gaze == "" {
		comp.Gaze = GazeFor(cam.AzimuthDeg, scene, intimacy)
	}

	tech := tpl.Technical
	if tech.FStop == 0 {
		tech.FStop = FStopFor(tpl.LensMm, tpl.Crop, intimacy)
	}
	if tech.ISO == 0 {
		tech.ISO = ISOFor(scene)
	}
	if tech.ShutterSpeed == "" {
		tech.ShutterSpeed = ShutterFor(dynamism)
	}

	return Derived{
		Camera:      cam,
		Composition: comp,
		Technical:   tech,
		SubjectYaw:  SubjectYaw(cam.AzimuthDeg, scene),
	}
}
