package pipeline

import (
	"fmt"
	"strings"

	"shotforge/internal/cinecalc"
	"shotforge/internal/domain"
)

// RenderPrompt fills a shot template's prompt placeholders from subject
// attributes and the fully derived shot parameters. Unknown placeholders are
// left untouched so template mistakes stay visible in the stored prompt.
func RenderPrompt(tpl domain.ShotTemplate, subj *domain.Subject, d cinecalc.Derived) string {
	replacer := strings.NewReplacer(
		"{name}", subj.Name,
		"{traits}", strings.Join(subj.Traits, ", "),
		"{personality}", subj.Personality,
		"{expression}", tpl.Expression,
		"{pose}", tpl.Pose,
		"{lens_mm}", fmt.Sprintf("%d", tpl.LensMm),
		"{crop}", string(tpl.Crop),
		"{azimuth_deg}", fmt.Sprintf("%.0f", d.Camera.AzimuthDeg),
		"{elevation_deg}", fmt.Sprintf("%.0f", d.Camera.ElevationDeg),
		"{distance_m}", fmt.Sprintf("%.1f", d.Camera.DistanceM),
		"{subject_yaw}", fmt.Sprintf("%.0f", d.SubjectYaw),
		"{thirds}", string(d.Composition.Thirds),
		"{headroom}", string(d.Composition.Headroom),
		"{gaze}", string(d.Composition.Gaze),
		"{f_stop}", fmt.Sprintf("%.1f", d.Technical.FStop),
		"{iso}", fmt.Sprintf("%d", d.Technical.ISO),
		"{shutter}", d.Technical.ShutterSpeed,
	)
	return replacer.Replace(tpl.PromptTemplate)
}
