// Package scene classifies free-text scene descriptions and selects the
// best-matching reference image from a subject's generated pool.
package scene

import (
	"strings"

	"shotforge/internal/domain"
)

var sceneKeywords = map[domain.SceneType][]string{
	domain.SceneDialogue: {
		"dialogue", "conversation", "talk", "speak", "says", "asks",
		"argue", "discussion", "interview", "negotiation",
	},
	domain.SceneAction: {
		"action", "fight", "run", "chase", "battle", "attack",
		"leap", "explosion", "sprint", "struggle", "escape",
	},
	domain.SceneEmotional: {
		"emotional", "cry", "tears", "grief", "love", "intimate",
		"revelation", "heartbreak", "confession", "vulnerable", "mourn",
	},
	domain.SceneEstablishing: {
		"establishing", "arrives", "cityscape", "landscape", "skyline",
		"location", "exterior", "overlook", "vista",
	},
	domain.SceneTransition: {
		"transition", "later", "meanwhile", "leaves", "departs",
		"montage", "passage", "walks away",
	},
}

// toneOrder fixes tie-breaking for tone classification.
var toneOrder = []domain.EmotionalTone{
	domain.ToneTense, domain.ToneIntimate, domain.ToneDramatic, domain.ToneContemplative,
}

var toneKeywords = map[domain.EmotionalTone][]string{
	domain.ToneTense: {
		"tense", "threat", "danger", "standoff", "nervous", "suspense", "fear",
	},
	domain.ToneIntimate: {
		"intimate", "tender", "close", "whisper", "gentle", "quiet moment",
	},
	domain.ToneDramatic: {
		"dramatic", "revelation", "betrayal", "shock", "confront", "climax",
	},
	domain.ToneContemplative: {
		"contemplative", "reflect", "alone", "memory", "ponder", "stillness",
	},
}

// Analysis is the result of classifying a scene description.
type Analysis struct {
	SceneType     domain.SceneType
	EmotionalTone domain.EmotionalTone
	Matched       []string
	Confidence    float64
}

// Classify scans the description for the keyword sets of each scene type and
// tone. Majority match wins; a tie (or no match at all) falls back to
// dialogue and neutral, the most common case in practice.
func Classify(description string) Analysis {
	text := strings.ToLower(description)

	sceneType := domain.SceneDialogue
	best := 0
	var matched []string
	// Iterate in a fixed order so ties resolve deterministically.
	for _, st := range []domain.SceneType{
		domain.SceneDialogue, domain.SceneAction, domain.SceneEmotional,
		domain.SceneEstablishing, domain.SceneTransition,
	} {
		count, hits := countHits(text, sceneKeywords[st])
		if count > best {
			best = count
			sceneType = st
			matched = hits
		}
	}

	tone := domain.ToneNeutral
	bestTone := 0
	for _, t := range toneOrder {
		count, _ := countHits(text, toneKeywords[t])
		if count > bestTone {
			bestTone = count
			tone = t
		}
	}

	confidence := float64(best) / float64(best+2)
	if best == 0 {
		confidence = 0.25
	}

	return Analysis{
		SceneType:     sceneType,
		EmotionalTone: tone,
		Matched:       matched,
		Confidence:    confidence,
	}
}

func countHits(text string, keywords []string) (int, []string) {
	count := 0
	var hits []string
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			count++
			hits = append(hits, kw)
		}
	}
	return count, hits
}
