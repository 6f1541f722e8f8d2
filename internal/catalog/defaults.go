package catalog

import "shotforge/internal/domain"

// defaultPrompt is the shared template for reference shots. Placeholders are
// resolved by the pipeline from subject attributes and derived parameters.
const defaultPrompt = "Photorealistic reference portrait of {name}. {traits}. " +
	"Expression: {expression}. Pose: {pose}. " +
	"Shot on a {lens_mm}mm lens at f/{f_stop}, ISO {iso}, {shutter}, {crop} framing, " +
	"camera azimuth {azimuth_deg} degrees, elevation {elevation_deg} degrees, " +
	"distance {distance_m}m. Subject placed {thirds} with {headroom} headroom, gaze {gaze}. " +
	"Neutral studio background, consistent identity with the reference image."

const handsPrompt = "Photorealistic detail study of the hands of {name}. {traits}. " +
	"Pose: {pose}. Shot on a {lens_mm}mm macro-capable lens at f/{f_stop}, ISO {iso}, " +
	"{shutter}, distance {distance_m}m. Neutral studio background."

// DefaultTemplates returns the built-in reference shot set. The priority-1
// and priority-2 entries form the core set together with the priority-3
// turnaround shots; higher priorities are optional coverage.
func DefaultTemplates() []domain.ShotTemplate {
	return []domain.ShotTemplate{
		// Core identity shots.
		shot("core-front-cu", 85, domain.AngleFront, domain.CropCU, "neutral, relaxed", "facing camera, shoulders square", 0.95, 1,
			domain.SceneDialogue, domain.SceneEmotional),
		shot("core-front-mcu", 50, domain.AngleFront, domain.CropMCU, "soft, approachable", "facing camera, slight lean", 0.95, 1,
			domain.SceneDialogue),
		shot("core-front-full", 35, domain.AngleFront, domain.CropFull, "neutral", "standing at ease, arms relaxed", 0.93, 1,
			domain.SceneEstablishing, domain.SceneAction),
		// Core turnaround.
		shot("core-3q-left-mcu", 50, domain.Angle3QLeft, domain.CropMCU, "attentive", "torso turned, head toward camera", 0.92, 2,
			domain.SceneDialogue),
		shot("core-3q-right-mcu", 50, domain.Angle3QRight, domain.CropMCU, "attentive", "torso turned, head toward camera", 0.92, 2,
			domain.SceneDialogue),
		shot("core-profile-left-cu", 85, domain.AngleProfileLeft, domain.CropCU, "contemplative", "true profile, chin level", 0.90, 2,
			domain.SceneEmotional, domain.SceneTransition),
		shot("core-profile-right-cu", 85, domain.AngleProfileRight, domain.CropCU, "contemplative", "true profile, chin level", 0.90, 2,
			domain.SceneEmotional, domain.SceneTransition),
		shot("core-back-full", 35, domain.AngleBack, domain.CropFull, "unreadable", "facing away, weight on one leg", 0.88, 3,
			domain.SceneEstablishing, domain.SceneTransition),
		shot("core-45-left-3q", 35, domain.Angle45Left, domain.Crop3Q, "determined", "mid-stride, leading shoulder forward", 0.90, 3,
			domain.SceneAction),
		shot("core-45-right-3q", 35, domain.Angle45Right, domain.Crop3Q, "determined", "mid-stride, leading shoulder forward", 0.90, 3,
			domain.SceneAction),
		// Expression range.
		shot("expr-joy-cu", 85, domain.AngleFront, domain.CropCU, "genuine smile, eyes crinkled", "head tilted slightly", 0.90, 4,
			domain.SceneDialogue, domain.SceneEmotional),
		shot("expr-grief-cu", 85, domain.Angle3QLeft, domain.CropCU, "grief, eyes lowered", "shoulders drawn in", 0.90, 4,
			domain.SceneEmotional),
		shot("expr-anger-mcu", 50, domain.AngleFront, domain.CropMCU, "controlled anger, jaw set", "leaning into camera", 0.90, 4,
			domain.SceneAction, domain.SceneDialogue),
		shot("expr-fear-mcu", 50, domain.Angle45Right, domain.CropMCU, "alarm, eyes wide", "half turned as if interrupted", 0.89, 5,
			domain.SceneAction, domain.SceneEmotional),
		shot("expr-resolve-cu", 85, domain.Angle3QRight, domain.CropCU, "quiet resolve", "chin raised a touch", 0.90, 5,
			domain.SceneDialogue, domain.SceneEmotional),
		// Optional coverage.
		shot("pose-seated-3q", 50, domain.Angle3QLeft, domain.Crop3Q, "at rest", "seated, forearms on knees", 0.88, 6,
			domain.SceneDialogue, domain.SceneTransition),
		shot("pose-walking-full", 35, domain.Angle135Left, domain.CropFull, "purposeful", "walking away, glancing back", 0.88, 7,
			domain.SceneTransition, domain.SceneEstablishing),
		shot("pose-action-full", 35, domain.Angle45Left, domain.CropFull, "exertion", "dynamic lunge, coat in motion", 0.89, 7,
			domain.SceneAction),
		shot("detail-hands", 50, domain.AngleFront, domain.CropHands, "", "hands clasped, fingers interlaced", 0.85, 8,
			domain.SceneEmotional, domain.SceneTransition),
		shot("pose-lowlight-mcu", 85, domain.Angle135Right, domain.CropMCU, "guarded", "looking over shoulder", 0.88, 9,
			domain.SceneTransition),
	}
}

func shot(id string, lens int, angle domain.Angle, crop domain.Crop, expression, pose string, weight float64, priority int, scenes ...domain.SceneType) domain.ShotTemplate {
	prompt := defaultPrompt
	if crop == domain.CropHands {
		prompt = handsPrompt
	}
	return domain.ShotTemplate{
		ID:              id,
		LensMm:          lens,
		Angle:           angle,
		Crop:            crop,
		Expression:      expression,
		Pose:            pose,
		ReferenceWeight: weight,
		Priority:        priority,
		PromptTemplate:  prompt,
		SceneTypes:      scenes,
	}
}

// Default builds the catalog from the built-in template set.
func Default() (*InMemory, error) {
	return NewInMemory(DefaultTemplates())
}
