package domain

import "fmt"

// Angle enumerates the supported camera angles relative to the subject.
type Angle string

const (
	AngleFront        Angle = "front"
	Angle3QLeft       Angle = "3q_left"
	Angle3QRight      Angle = "3q_right"
	Angle45Left       Angle = "45_left"
	Angle45Right      Angle = "45_right"
	AngleProfileLeft  Angle = "profile_left"
	AngleProfileRight Angle = "profile_right"
	Angle135Left      Angle = "135_left"
	Angle135Right     Angle = "135_right"
	AngleBack         Angle = "back"
)

// Crop enumerates the supported framing crops.
type Crop string

const (
	CropFull  Crop = "full"
	Crop3Q    Crop = "3q"
	CropMCU   Crop = "mcu"
	CropCU    Crop = "cu"
	CropHands Crop = "hands"
)

// Thirds enumerates horizontal subject placement.
type Thirds string

const (
	ThirdsCentered   Thirds = "centered"
	ThirdsLeftThird  Thirds = "left_third"
	ThirdsRightThird Thirds = "right_third"
)

// Headroom enumerates vertical framing tightness above the subject.
type Headroom string

const (
	HeadroomTight Headroom = "tight"
	HeadroomEqual Headroom = "equal"
	HeadroomLoose Headroom = "loose"
)

// Gaze enumerates where the subject is looking.
type Gaze string

const (
	GazeToCamera Gaze = "to_camera"
	GazeAway     Gaze = "away"
	GazeDown     Gaze = "down"
)

// SceneType classifies the narrative purpose of a shot or scene.
type SceneType string

const (
	SceneDialogue     SceneType = "dialogue"
	SceneAction       SceneType = "action"
	SceneEmotional    SceneType = "emotional"
	SceneEstablishing SceneType = "establishing"
	SceneTransition   SceneType = "transition"
)

// EmotionalTone classifies the mood of a scene description.
type EmotionalTone string

const (
	ToneNeutral       EmotionalTone = "neutral"
	ToneTense         EmotionalTone = "tense"
	ToneIntimate      EmotionalTone = "intimate"
	ToneDramatic      EmotionalTone = "dramatic"
	ToneContemplative EmotionalTone = "contemplative"
)

// CameraParams positions the camera relative to the subject. A zero
// DistanceM means "derive from lens and crop"; azimuth and elevation use
// explicit Set flags because 0 is a meaningful value for both.
type CameraParams struct {
	AzimuthDeg   float64
	AzimuthSet   bool
	ElevationDeg float64
	ElevationSet bool
	DistanceM    float64
}

// CompositionParams describes framing rules for a shot.
type CompositionParams struct {
	Thirds   Thirds
	Headroom Headroom
	Gaze     Gaze
}

// TechnicalParams captures exposure settings rendered into prompts.
type TechnicalParams struct {
	FStop        float64
	ISO          int
	ShutterSpeed string
}

// ShotTemplate is the immutable definition of one reference shot. Templates
// are validated when the catalog loads them and never mutated afterwards.
type ShotTemplate struct {
	ID              string
	LensMm          int
	Angle           Angle
	Crop            Crop
	Expression      string
	Pose            string
	Camera          CameraParams
	Composition     CompositionParams
	Technical       TechnicalParams
	ReferenceWeight float64
	Priority        int
	PromptTemplate  string
	SceneTypes      []SceneType
}

var validLenses = map[int]bool{35: true, 50: true, 85: true}

var validAngles = map[Angle]bool{
	AngleFront: true, Angle3QLeft: true, Angle3QRight: true,
	Angle45Left: true, Angle45Right: true,
	AngleProfileLeft: true, AngleProfileRight: true,
	Angle135Left: true, Angle135Right: true, AngleBack: true,
}

var validCrops = map[Crop]bool{
	CropFull: true, Crop3Q: true, CropMCU: true, CropCU: true, CropHands: true,
}

// Validate range-checks every field the pipeline depends on. It wraps
// ErrInvalidShot so callers can classify rejections with errors.Is.
func (t ShotTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidShot)
	}
	if !validLenses[t.LensMm] {
		return fmt.Errorf("%w: shot %s: lens %dmm not in {35,50,85}", ErrInvalidShot, t.ID, t.LensMm)
	}
	if !validAngles[t.Angle] {
		return fmt.Errorf("%w: shot %s: unknown angle %q", ErrInvalidShot, t.ID, t.Angle)
	}
	if !validCrops[t.Crop] {
		return fmt.Errorf("%w: shot %s: unknown crop %q", ErrInvalidShot, t.ID, t.Crop)
	}
	if t.Camera.AzimuthSet && (t.Camera.AzimuthDeg < -180 || t.Camera.AzimuthDeg > 180) {
		return fmt.Errorf("%w: shot %s: azimuth %.1f outside [-180,180]", ErrInvalidShot, t.ID, t.Camera.AzimuthDeg)
	}
	if t.Camera.ElevationSet && (t.Camera.ElevationDeg < -90 || t.Camera.ElevationDeg > 90) {
		return fmt.Errorf("%w: shot %s: elevation %.1f outside [-90,90]", ErrInvalidShot, t.ID, t.Camera.ElevationDeg)
	}
	if t.Camera.DistanceM != 0 && (t.Camera.DistanceM <= 0 || t.Camera.DistanceM > 10) {
		return fmt.Errorf("%w: shot %s: distance %.1f outside (0,10]", ErrInvalidShot, t.ID, t.Camera.DistanceM)
	}
	if t.ReferenceWeight < 0.85 || t.ReferenceWeight > 0.95 {
		return fmt.Errorf("%w: shot %s: reference weight %.2f outside [0.85,0.95]", ErrInvalidShot, t.ID, t.ReferenceWeight)
	}
	if t.Priority < 1 || t.Priority > 10 {
		return fmt.Errorf("%w: shot %s: priority %d outside [1,10]", ErrInvalidShot, t.ID, t.Priority)
	}
	return nil
}

// MatchesScene reports whether the template is tagged for the scene type.
func (t ShotTemplate) MatchesScene(scene SceneType) bool {
	for _, s := range t.SceneTypes {
		if s == scene {
			return true
		}
	}
	return false
}
