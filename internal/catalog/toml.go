package catalog

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"shotforge/internal/domain"
)

// catalogFile is the on-disk TOML shape. Numeric camera fields are pointers
// so "absent" and "zero" stay distinguishable; absent values are derived by
// the parameter calculator at pipeline time.
type catalogFile struct {
	Shots []shotEntry `toml:"shots"`
}

type shotEntry struct {
	ID              string   `toml:"id"`
	LensMm          int      `toml:"lens_mm"`
	Angle           string   `toml:"angle"`
	Crop            string   `toml:"crop"`
	Expression      string   `toml:"expression"`
	Pose            string   `toml:"pose"`
	AzimuthDeg      *float64 `toml:"azimuth_deg"`
	ElevationDeg    *float64 `toml:"elevation_deg"`
	DistanceM       float64  `toml:"distance_m"`
	Thirds          string   `toml:"thirds"`
	Headroom        string   `toml:"headroom"`
	Gaze            string   `toml:"gaze"`
	FStop           float64  `toml:"f_stop"`
	ISO             int      `toml:"iso"`
	ShutterSpeed    string   `toml:"shutter_speed"`
	ReferenceWeight float64  `toml:"reference_weight"`
	Priority        int      `toml:"priority"`
	PromptTemplate  string   `toml:"prompt_template"`
	SceneTypes      []string `toml:"scene_types"`
}

// Load reads a shot catalog from a TOML file and validates it. Loading the
// same file twice yields the same catalog.
func Load(path string) (*InMemory, error) {
	var file catalogFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	if len(file.Shots) == 0 {
		return nil, fmt.Errorf("catalog: %s defines no shots", path)
	}
	templates := make([]domain.ShotTemplate, 0, len(file.Shots))
	for _, entry := range file.Shots {
		templates = append(templates, entry.toTemplate())
	}
	return NewInMemory(templates)
}

func (e shotEntry) toTemplate() domain.ShotTemplate {
	tpl := domain.ShotTemplate{
		ID:         e.ID,
		LensMm:     e.LensMm,
		Angle:      domain.Angle(e.Angle),
		Crop:       domain.Crop(e.Crop),
		Expression: e.Expression,
		Pose:       e.Pose,
		Camera: domain.CameraParams{
			DistanceM: e.DistanceM,
		},
		Composition: domain.CompositionParams{
			Thirds:   domain.Thirds(e.Thirds),
			Headroom: domain.Headroom(e.Headroom),
			Gaze:     domain.Gaze(e.Gaze),
		},
		Technical: domain.TechnicalParams{
			FStop:        e.FStop,
			ISO:          e.ISO,
			ShutterSpeed: e.ShutterSpeed,
		},
		ReferenceWeight: e.ReferenceWeight,
		Priority:        e.Priority,
		PromptTemplate:  e.PromptTemplate,
	}
	if e.AzimuthDeg != nil {
		tpl.Camera.AzimuthDeg = *e.AzimuthDeg
		tpl.Camera.AzimuthSet = true
	}
	if e.ElevationDeg != nil {
		tpl.Camera.ElevationDeg = *e.ElevationDeg
		tpl.Camera.ElevationSet = true
	}
	if tpl.PromptTemplate == "" {
		tpl.PromptTemplate = defaultPrompt
	}
	for _, s := range e.SceneTypes {
		tpl.SceneTypes = append(tpl.SceneTypes, domain.SceneType(s))
	}
	return tpl
}
