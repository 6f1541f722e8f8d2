package scene

import (
	"testing"

	"shotforge/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		description string
		wantScene   domain.SceneType
		wantTone    domain.EmotionalTone
	}{
		{
			"emotional with intimate tone",
			"An intimate dialogue, an emotional revelation between old friends",
			domain.SceneEmotional,
			domain.ToneIntimate,
		},
		{
			"action with tense tone",
			"A rooftop chase, the fight spills into a sprint through danger",
			domain.SceneAction,
			domain.ToneTense,
		},
		{
			"establishing",
			"She arrives at the city, skyline and cityscape in the distance",
			domain.SceneEstablishing,
			domain.ToneNeutral,
		},
		{
			"transition with contemplative tone",
			"Later, he walks away alone, lost in memory",
			domain.SceneTransition,
			domain.ToneContemplative,
		},
		{
			"plain dialogue",
			"Two characters talk over coffee about the case",
			domain.SceneDialogue,
			domain.ToneNeutral,
		},
		{
			"no keywords falls back to dialogue neutral",
			"A scene.",
			domain.SceneDialogue,
			domain.ToneNeutral,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.description)
			if got.SceneType != tt.wantScene {
				t.Errorf("SceneType = %s, want %s", got.SceneType, tt.wantScene)
			}
			if got.EmotionalTone != tt.wantTone {
				t.Errorf("EmotionalTone = %s, want %s", got.EmotionalTone, tt.wantTone)
			}
		})
	}
}

func TestClassifyConfidence(t *testing.T) {
	none := Classify("nothing recognizable here")
	if none.Confidence != 0.25 {
		t.Errorf("no-match confidence = %v, want 0.25 floor", none.Confidence)
	}

	weak := Classify("a conversation")
	strong := Classify("an emotional confession, tears and grief, a vulnerable revelation")
	if strong.Confidence <= weak.Confidence {
		t.Errorf("more keyword hits should raise confidence: weak=%v strong=%v", weak.Confidence, strong.Confidence)
	}
	if strong.Confidence >= 1 {
		t.Errorf("confidence must stay below 1, got %v", strong.Confidence)
	}
}

func TestProfileForAppliesToneNudges(t *testing.T) {
	base := ProfileFor(Analysis{SceneType: domain.SceneEmotional, EmotionalTone: domain.ToneNeutral})
	intimate := ProfileFor(Analysis{SceneType: domain.SceneEmotional, EmotionalTone: domain.ToneIntimate})
	if intimate.IntimacyLevel != clampLevel(base.IntimacyLevel+2) {
		t.Errorf("intimate tone: intimacy = %d, want %d", intimate.IntimacyLevel, clampLevel(base.IntimacyLevel+2))
	}

	contemplative := ProfileFor(Analysis{SceneType: domain.SceneAction, EmotionalTone: domain.ToneContemplative})
	if contemplative.DynamismLevel != 7 {
		t.Errorf("contemplative tone on action: dynamism = %d, want 7", contemplative.DynamismLevel)
	}

	if got := ProfileFor(Analysis{SceneType: domain.SceneEmotional, EmotionalTone: domain.ToneIntimate}); got.IntimacyLevel > 10 {
		t.Errorf("intimacy exceeded scale: %d", got.IntimacyLevel)
	}
}

func TestProfileForCarriesSceneSets(t *testing.T) {
	p := ProfileFor(Analysis{SceneType: domain.SceneEmotional, EmotionalTone: domain.ToneIntimate, Confidence: 0.6})
	if !p.prefersLens(85) || p.prefersLens(35) {
		t.Errorf("emotional profile lenses = %v, want 85 only", p.PreferredLenses)
	}
	if !p.prefersCrop(domain.CropCU) || p.prefersCrop(domain.CropFull) {
		t.Errorf("emotional profile crops = %v", p.PreferredCrops)
	}
	if p.Confidence != 0.6 {
		t.Errorf("profile confidence = %v, want analysis confidence", p.Confidence)
	}
}
