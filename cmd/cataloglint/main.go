// Command cataloglint validates a TOML shot catalog before deployment. It
// loads the file through the same code path the API uses, derives the full
// parameter set for every shot and prints any plausibility warnings.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"shotforge/internal/catalog"
	"shotforge/internal/cinecalc"
	"shotforge/internal/domain"
)

func main() {
	var (
		pathFlag  string
		sceneFlag string
	)
	flag.StringVar(&pathFlag, "catalog", "", "path to the TOML shot catalog (required)")
	flag.StringVar(&sceneFlag, "scene", string(domain.SceneDialogue), "scene type used for parameter derivation")
	flag.Parse()

	path := strings.TrimSpace(pathFlag)
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: cataloglint -catalog <file.toml> [-scene dialogue]")
		os.Exit(2)
	}
	sceneType := domain.SceneType(strings.TrimSpace(sceneFlag))

	shots, err := catalog.Load(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "catalog invalid: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	templates, err := shots.List(ctx, domain.ShotFilter{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "list catalog: %v\n", err)
		os.Exit(1)
	}
	core, err := shots.CoreSet(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "resolve core set: %v\n", err)
		os.Exit(1)
	}

	warnings := 0
	for _, tpl := range templates {
		derived := cinecalc.Derive(tpl, sceneType, 0, 0)
		report := cinecalc.Validate(tpl, derived)
		if report.Valid {
			continue
		}
		for _, w := range report.Warnings {
			fmt.Printf("%s: warning: %s\n", tpl.ID, w)
			warnings++
		}
		for _, s := range report.Suggestions {
			fmt.Printf("%s: suggestion: %s\n", tpl.ID, s)
		}
	}

	fmt.Printf("catalog ok: %d shots, %d in core set, %d warnings\n", len(templates), len(core), warnings)
	if len(core) == 0 {
		fmt.Fprintln(os.Stderr, "catalog has no core set shots (priority <= 3); core_set jobs will run empty")
		os.Exit(1)
	}
}
