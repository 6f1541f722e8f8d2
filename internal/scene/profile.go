package scene

import "shotforge/internal/domain"

// PreferenceProfile is the ephemeral shooting preference derived from a
// classified scene. It is recomputed per query and never persisted.
type PreferenceProfile struct {
	SceneType          domain.SceneType
	EmotionalTone      domain.EmotionalTone
	PreferredLenses    []int
	PreferredCrops     []domain.Crop
	PreferredAzimuths  []float64
	IntimacyLevel      int
	DynamismLevel      int
	EmotionalIntensity int
	Confidence         float64
}

var baseProfiles = map[domain.SceneType]PreferenceProfile{
	domain.SceneDialogue: {
		PreferredLenses:    []int{50, 85},
		PreferredCrops:     []domain.Crop{domain.CropMCU, domain.CropCU},
		PreferredAzimuths:  []float64{0, -35, 35},
		IntimacyLevel:      6,
		DynamismLevel:      3,
		EmotionalIntensity: 5,
	},
	domain.SceneAction: {
		PreferredLenses:    []int{35},
		PreferredCrops:     []domain.Crop{domain.CropFull, domain.Crop3Q},
		PreferredAzimuths:  []float64{-45, 45, -135, 135},
		IntimacyLevel:      3,
		DynamismLevel:      9,
		EmotionalIntensity: 6,
	},
	domain.SceneEmotional: {
		PreferredLenses:    []int{85},
		PreferredCrops:     []domain.Crop{domain.CropCU, domain.CropMCU},
		PreferredAzimuths:  []float64{0, -35, 35, -90, 90},
		IntimacyLevel:      8,
		DynamismLevel:      2,
		EmotionalIntensity: 9,
	},
	domain.SceneEstablishing: {
		PreferredLenses:    []int{35},
		PreferredCrops:     []domain.Crop{domain.CropFull},
		PreferredAzimuths:  []float64{0, 180},
		IntimacyLevel:      2,
		DynamismLevel:      4,
		EmotionalIntensity: 3,
	},
	domain.SceneTransition: {
		PreferredLenses:    []int{35, 50},
		PreferredCrops:     []domain.Crop{domain.CropFull, domain.Crop3Q},
		PreferredAzimuths:  []float64{-135, 135, 180},
		IntimacyLevel:      3,
		DynamismLevel:      5,
		EmotionalIntensity: 4,
	},
}

// ProfileFor builds the preference profile for a classified scene. The tone
// nudges the sliders within [1,10]; the lens/crop/azimuth sets come from the
// scene type alone.
func ProfileFor(analysis Analysis) PreferenceProfile {
	p := baseProfiles[analysis.SceneType]
	p.SceneType = analysis.SceneType
	p.EmotionalTone = analysis.EmotionalTone
	p.Confidence = analysis.Confidence

	switch analysis.EmotionalTone {
	case domain.ToneIntimate:
		p.IntimacyLevel += 2
	case domain.ToneTense:
		p.DynamismLevel += 2
	case domain.ToneDramatic:
		p.EmotionalIntensity++
	case domain.ToneContemplative:
		p.DynamismLevel -= 2
	}
	p.IntimacyLevel = clampLevel(p.IntimacyLevel)
	p.DynamismLevel = clampLevel(p.DynamismLevel)
	p.EmotionalIntensity = clampLevel(p.EmotionalIntensity)
	return p
}

func clampLevel(v int) int {
	if v < 1 {
		return 1
	}
	if v > 10 {
		return 10
	}
	return v
}

func (p PreferenceProfile) prefersLens(lensMm int) bool {
	for _, l := range p.PreferredLenses {
		if l == lensMm {
			return true
		}
	}
	return false
}

func (p PreferenceProfile) prefersCrop(crop domain.Crop) bool {
	for _, c := range p.PreferredCrops {
		if c == crop {
			return true
		}
	}
	return false
}
