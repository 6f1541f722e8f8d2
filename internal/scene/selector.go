package scene

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shotforge/internal/cinecalc"
	"shotforge/internal/domain"
	"shotforge/internal/infra"
)

// Scoring weights per factor; they sum to 1.0.
const (
	weightSceneType   = 0.25
	weightLens        = 0.20
	weightCrop        = 0.20
	weightAngle       = 0.15
	weightTone        = 0.10
	weightComposition = 0.05
	weightQuality     = 0.05
)

const maxAlternatives = 3

// FactorScore records one weighted component of a candidate's score.
type FactorScore struct {
	Name     string
	Raw      float64
	Weighted float64
}

// RankedImage pairs a pool image with its score and explanation.
type RankedImage struct {
	Image     domain.GeneratedImage
	Template  domain.ShotTemplate
	Score     float64
	Factors   []FactorScore
	Reasoning string
}

// Selection is the selector's answer for one query.
type Selection struct {
	NoCandidates bool
	Best         *RankedImage
	Alternatives []RankedImage
	Analysis     Analysis
	Profile      PreferenceProfile
	Confidence   float64
	PoolSize     int
	MeanScore    float64
}

// Filter optionally narrows the candidate pool before scoring. Zero values
// match everything.
type Filter struct {
	Crops      []domain.Crop
	Angles     []domain.Angle
	MinQuality float64
}

func (f Filter) admits(img domain.GeneratedImage, tpl domain.ShotTemplate) bool {
	if f.MinQuality > 0 && img.QualityScore < f.MinQuality {
		return false
	}
	if len(f.Crops) > 0 {
		ok := false
		for _, c := range f.Crops {
			if c == tpl.Crop {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(f.Angles) > 0 {
		ok := false
		for _, a := range f.Angles {
			if a == tpl.Angle {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// Selector ranks a subject's generated images against a scene description.
type Selector struct {
	images  domain.ImageRepository
	catalog domain.ShotCatalog
	logger  infra.Logger
}

// NewSelector wires the selector to the image pool and the shot catalog.
func NewSelector(images domain.ImageRepository, catalog domain.ShotCatalog, logger infra.Logger) *Selector {
	return &Selector{images: images, catalog: catalog, logger: logger}
}

// Select classifies the description, derives a preference profile, scores
// every image in the subject's pool and returns the best match with up to
// three alternatives. An empty (or filtered-empty) pool is an expected
// condition and yields a typed NoCandidates result, not an error.
func (s *Selector) Select(ctx context.Context, subjectID, description string, filter Filter) (*Selection, error) {
	analysis := Classify(description)
	profile := ProfileFor(analysis)

	pool, err := s.images.ListBySubject(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("selector: load image pool: %w", err)
	}
	if len(pool) == 0 {
		return &Selection{NoCandidates: true, Analysis: analysis, Profile: profile}, nil
	}

	ranked := make([]RankedImage, 0, len(pool))
	for _, img := range pool {
		tpl, err := s.catalog.Get(ctx, img.ShotTemplateID)
		if err != nil {
			s.logger.Warn().Str("shot_template_id", img.ShotTemplateID).
				Str("asset_ref", img.AssetRef).
				Msg("selector: image references unknown template, skipping")
			continue
		}
		if !filter.admits(img, tpl) {
			continue
		}
		ranked = append(ranked, scoreCandidate(img, tpl, profile))
	}
	if len(ranked) == 0 {
		return &Selection{NoCandidates: true, Analysis: analysis, Profile: profile}, nil
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Image.QualityScore > ranked[j].Image.QualityScore
	})

	var mean float64
	for _, r := range ranked {
		mean += r.Score
	}
	mean /= float64(len(ranked))

	alts := ranked[1:]
	if len(alts) > maxAlternatives {
		alts = alts[:maxAlternatives]
	}

	return &Selection{
		Best:         &ranked[0],
		Alternatives: alts,
		Analysis:     analysis,
		Profile:      profile,
		Confidence:   ranked[0].Score / 100,
		PoolSize:     len(ranked),
		MeanScore:    math.Round(mean*10) / 10,
	}, nil
}

func scoreCandidate(img domain.GeneratedImage, tpl domain.ShotTemplate, profile PreferenceProfile) RankedImage {
	azimuth := tpl.Camera.AzimuthDeg
	if !tpl.Camera.AzimuthSet {
		azimuth = cinecalc.AzimuthFromAngle(tpl.Angle)
	}

	factors := []FactorScore{
		factor("scene type", sceneTypeScore(tpl, profile.SceneType), weightSceneType),
		factor("lens", lensScore(tpl.LensMm, profile), weightLens),
		factor("crop", cropScore(tpl.Crop, profile), weightCrop),
		factor("angle", angleScore(azimuth, profile.PreferredAzimuths), weightAngle),
		factor("emotional tone", toneScore(tpl.Crop, profile.EmotionalTone), weightTone),
		factor("composition", compositionScore(tpl, azimuth, profile.SceneType), weightComposition),
		factor("quality", img.QualityScore, weightQuality),
	}

	total := 0.0
	for _, f := range factors {
		total += f.Weighted
	}
	total = math.Round(total*10) / 10

	return RankedImage{
		Image:     img,
		Template:  tpl,
		Score:     total,
		Factors:   factors,
		Reasoning: buildReasoning(tpl, img, profile, factors),
	}
}

func factor(name string, raw, weight float64) FactorScore {
	return FactorScore{Name: name, Raw: raw, Weighted: raw * weight}
}

func sceneTypeScore(tpl domain.ShotTemplate, scene domain.SceneType) float64 {
	if tpl.MatchesScene(scene) {
		return 100
	}
	return 30
}

func lensScore(lensMm int, profile PreferenceProfile) float64 {
	if profile.prefersLens(lensMm) {
		return 100
	}
	return 40
}

func cropScore(crop domain.Crop, profile PreferenceProfile) float64 {
	if profile.prefersCrop(crop) {
		return 100
	}
	return 35
}

func angleScore(azimuth float64, preferred []float64) float64 {
	best := 360.0
	for _, p := range preferred {
		if d := math.Abs(azimuth - p); d < best {
			best = d
		}
	}
	switch {
	case best <= 15:
		return 100
	case best <= 45:
		return 70
	case best <= 90:
		return 45
	default:
		return 25
	}
}

// toneAffinity maps emotional tones to the crops that carry them best.
var toneAffinity = map[domain.EmotionalTone][]domain.Crop{
	domain.ToneIntimate:      {domain.CropCU},
	domain.ToneTense:         {domain.CropMCU, domain.CropCU},
	domain.ToneDramatic:      {domain.CropCU, domain.CropMCU},
	domain.ToneContemplative: {domain.CropMCU, domain.Crop3Q},
}

func toneScore(crop domain.Crop, tone domain.EmotionalTone) float64 {
	crops, ok := toneAffinity[tone]
	if !ok {
		return 70 // neutral: any crop serves
	}
	for _, c := range crops {
		if c == crop {
			return 100
		}
	}
	return 50
}

func compositionScore(tpl domain.ShotTemplate, azimuth float64, scene domain.SceneType) float64 {
	wantThirds := cinecalc.ThirdsFor(azimuth, scene)
	wantHeadroom := cinecalc.HeadroomFor(tpl.Crop, scene)
	score := 50.0
	if tpl.Composition.Thirds == "" || tpl.Composition.Thirds == wantThirds {
		score += 25
	}
	if tpl.Composition.Headroom == "" || tpl.Composition.Headroom == wantHeadroom {
		score += 25
	}
	return score
}

var titleCaser = cases.Title(language.English)

// buildReasoning explains a score from its strongest weighted factors.
func buildReasoning(tpl domain.ShotTemplate, img domain.GeneratedImage, profile PreferenceProfile, factors []FactorScore) string {
	ordered := make([]FactorScore, len(factors))
	copy(ordered, factors)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Weighted > ordered[j].Weighted
	})

	var parts []string
	for _, f := range ordered[:3] {
		switch f.Name {
		case "scene type":
			parts = append(parts, fmt.Sprintf("shot is tagged for %s work", profile.SceneType))
		case "lens":
			parts = append(parts, fmt.Sprintf("%dmm lens suits %s scenes", tpl.LensMm, profile.SceneType))
		case "crop":
			parts = append(parts, fmt.Sprintf("%s crop matches the preferred framing", strings.ToUpper(string(tpl.Crop))))
		case "angle":
			parts = append(parts, fmt.Sprintf("%s angle sits near the preferred azimuths", tpl.Angle))
		case "emotional tone":
			parts = append(parts, fmt.Sprintf("framing carries the %s tone", profile.EmotionalTone))
		case "composition":
			parts = append(parts, "composition agrees with the derived framing rules")
		case "quality":
			parts = append(parts, fmt.Sprintf("high quality score (%.0f)", img.QualityScore))
		}
	}
	return titleCaser.String(string(profile.SceneType)) + " reference: " + strings.Join(parts, "; ")
}
