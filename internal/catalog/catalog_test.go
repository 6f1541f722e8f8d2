package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"shotforge/internal/domain"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if c.Size() == 0 {
		t.Fatal("default catalog is empty")
	}

	core, err := c.CoreSet(context.Background())
	if err != nil {
		t.Fatalf("CoreSet() error: %v", err)
	}
	if len(core) == 0 {
		t.Fatal("default catalog has no core set")
	}
	for _, tpl := range core {
		if tpl.Priority > CorePriorityCutoff {
			t.Errorf("core set contains %s with priority %d", tpl.ID, tpl.Priority)
		}
	}
}

func TestNewInMemoryRejectsDuplicateIDs(t *testing.T) {
	templates := DefaultTemplates()
	templates = append(templates, templates[0])
	_, err := NewInMemory(templates)
	if !errors.Is(err, domain.ErrInvalidShot) {
		t.Fatalf("error = %v, want ErrInvalidShot for duplicate id", err)
	}
}

func TestNewInMemoryRejectsRangeViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ShotTemplate)
	}{
		{"bad lens", func(tpl *domain.ShotTemplate) { tpl.LensMm = 135 }},
		{"bad angle", func(tpl *domain.ShotTemplate) { tpl.Angle = "dutch" }},
		{"bad crop", func(tpl *domain.ShotTemplate) { tpl.Crop = "ecu" }},
		{"azimuth out of range", func(tpl *domain.ShotTemplate) {
			tpl.Camera.AzimuthDeg = 200
			tpl.Camera.AzimuthSet = true
		}},
		{"elevation out of range", func(tpl *domain.ShotTemplate) {
			tpl.Camera.ElevationDeg = -95
			tpl.Camera.ElevationSet = true
		}},
		{"distance out of range", func(tpl *domain.ShotTemplate) { tpl.Camera.DistanceM = 12 }},
		{"weight too low", func(tpl *domain.ShotTemplate) { tpl.ReferenceWeight = 0.5 }},
		{"weight too high", func(tpl *domain.ShotTemplate) { tpl.ReferenceWeight = 0.99 }},
		{"priority too high", func(tpl *domain.ShotTemplate) { tpl.Priority = 11 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := shot("bad-shot", 50, domain.AngleFront, domain.CropMCU, "neutral", "standing", 0.9, 5)
			tt.mutate(&tpl)
			if _, err := NewInMemory([]domain.ShotTemplate{tpl}); !errors.Is(err, domain.ErrInvalidShot) {
				t.Errorf("error = %v, want ErrInvalidShot", err)
			}
		})
	}
}

func TestListIsSortedAndFiltered(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	all, err := c.List(ctx, domain.ShotFilter{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Priority > all[i].Priority {
			t.Fatalf("list not sorted by priority: %s(%d) before %s(%d)",
				all[i-1].ID, all[i-1].Priority, all[i].ID, all[i].Priority)
		}
	}

	cus, err := c.List(ctx, domain.ShotFilter{Crops: []domain.Crop{domain.CropCU}})
	if err != nil {
		t.Fatal(err)
	}
	if len(cus) == 0 {
		t.Fatal("expected cu shots in default catalog")
	}
	for _, tpl := range cus {
		if tpl.Crop != domain.CropCU {
			t.Errorf("filter leaked %s with crop %s", tpl.ID, tpl.Crop)
		}
	}

	emotional, err := c.List(ctx, domain.ShotFilter{SceneType: domain.SceneEmotional})
	if err != nil {
		t.Fatal(err)
	}
	for _, tpl := range emotional {
		if !tpl.MatchesScene(domain.SceneEmotional) {
			t.Errorf("scene filter leaked %s", tpl.ID)
		}
	}

	byID, err := c.List(ctx, domain.ShotFilter{IDs: []string{"core-front-cu", "detail-hands"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(byID) != 2 {
		t.Errorf("id filter returned %d shots, want 2", len(byID))
	}
}

func TestGetUnknownTemplate(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Get(context.Background(), "no-such-shot"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

const testCatalogTOML = `
[[shots]]
id = "toml-front-cu"
lens_mm = 85
angle = "front"
crop = "cu"
expression = "neutral"
pose = "facing camera"
reference_weight = 0.95
priority = 1
scene_types = ["dialogue", "emotional"]

[[shots]]
id = "toml-profile"
lens_mm = 85
angle = "profile_left"
crop = "cu"
azimuth_deg = -90.0
elevation_deg = 0.0
reference_weight = 0.90
priority = 4
scene_types = ["emotional"]
`

func TestLoadTOMLCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shots.toml")
	if err := os.WriteFile(path, []byte(testCatalogTOML), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", c.Size())
	}

	// Loading twice yields the same catalog.
	again, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if again.Size() != c.Size() {
		t.Errorf("second load size %d != first %d", again.Size(), c.Size())
	}

	tpl, err := c.Get(context.Background(), "toml-front-cu")
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Camera.AzimuthSet {
		t.Error("absent azimuth_deg must stay unset for derivation")
	}
	if tpl.PromptTemplate == "" {
		t.Error("missing prompt_template should fall back to the default prompt")
	}
	if len(tpl.SceneTypes) != 2 || tpl.SceneTypes[0] != domain.SceneDialogue {
		t.Errorf("scene types = %v", tpl.SceneTypes)
	}

	profile, err := c.Get(context.Background(), "toml-profile")
	if err != nil {
		t.Fatal(err)
	}
	if !profile.Camera.AzimuthSet || profile.Camera.AzimuthDeg != -90 {
		t.Errorf("explicit azimuth lost: %+v", profile.Camera)
	}
	if !profile.Camera.ElevationSet || profile.Camera.ElevationDeg != 0 {
		t.Error("explicit zero elevation must be distinguishable from absent")
	}
}

func TestLoadRejectsEmptyCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.toml")
	if err := os.WriteFile(path, []byte("# no shots\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for catalog without shots")
	}
}

func TestLoadRejectsInvalidShot(t *testing.T) {
	bad := `
[[shots]]
id = "bad"
lens_mm = 24
angle = "front"
crop = "cu"
reference_weight = 0.9
priority = 1
`
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, domain.ErrInvalidShot) {
		t.Errorf("error = %v, want ErrInvalidShot", err)
	}
}
