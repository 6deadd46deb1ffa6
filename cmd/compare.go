package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/assets"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/config"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/export"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/models"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/raster"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/score"
	"github.com/spf13/cobra"
)

var compareFlags struct {
	shape     string
	reference string
	input     string
	strategy  string
	dmax      float64
	debugDir  string
	report    string
	json      bool
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Score a drawing against a reference shape",
	Run:   compareDrawing,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	f := compareCmd.Flags()
	f.StringVarP(&compareFlags.shape, "shape", "s", "", "Name of the reference shape")
	f.StringVarP(&compareFlags.reference, "reference", "r", "", "Drawing file to use as the reference instead of a shape")
	f.StringVarP(&compareFlags.input, "input", "i", "-", "Drawing file to score (- for stdin)")
	f.StringVar(&compareFlags.strategy, "strategy", "", fmt.Sprintf("Scoring strategy %v", score.Names()))
	f.Float64Var(&compareFlags.dmax, "dmax", 0, "Procrustes distance that scores zero")
	f.StringVar(&compareFlags.debugDir, "debug-dir", "", "Write reference, user and overlay PNGs here")
	f.StringVar(&compareFlags.report, "report", "", "Write a PDF report to this path")
	f.BoolVar(&compareFlags.json, "json", false, "Print the result as JSON")
	compareCmd.MarkFlagsMutuallyExclusive("shape", "reference")
	_ = compareCmd.RegisterFlagCompletionFunc("strategy", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return score.Names(), cobra.ShellCompDirectiveNoFileComp
	})
}

func compareDrawing(cmd *cobra.Command, args []string) {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("Failed to load settings: ", err)
	}
	if cmd.Flags().Changed("strategy") {
		settings.Strategy = compareFlags.strategy
	}
	if cmd.Flags().Changed("dmax") {
		if !(compareFlags.dmax > 0) {
			log.Fatalf("Invalid --dmax %v, must be positive", compareFlags.dmax)
		}
		settings.DMax = compareFlags.dmax
	}
	if compareFlags.debugDir != "" {
		settings.DebugDir = compareFlags.debugDir
	}

	userFile, err := readDrawingFile(compareFlags.input)
	if err != nil {
		log.Fatal("Failed to read drawing: ", err)
	}

	var reference models.Drawing
	switch {
	case compareFlags.reference != "":
		refFile, err := readDrawingFile(compareFlags.reference)
		if err != nil {
			log.Fatal("Failed to read reference: ", err)
		}
		reference = refFile.Drawing()
	case compareFlags.shape != "":
		table, err := loadShapes(settings)
		if err != nil {
			log.Fatal(err)
		}
		d, ok := table.Get(compareFlags.shape)
		if !ok {
			log.Fatalf("Unknown shape %q, available: %v", compareFlags.shape, table.Names())
		}
		reference = assets.FitToCanvas(d, float64(userFile.Width), float64(userFile.Height), settings.CanvasPadding)
	default:
		log.Fatal("Please specify --shape or --reference")
	}

	strategy, err := score.New(settings.Strategy, settings.Scoring())
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	in := score.Input{
		Reference: reference,
		User:      userFile.Drawing(),
		Width:     userFile.Width,
		Height:    userFile.Height,
	}
	res, err := strategy.Score(ctx, in)
	if err != nil {
		log.Fatal("Comparison failed: ", err)
	}

	if compareFlags.report != "" {
		if err := writeReport(compareFlags.report, settings, in, res); err != nil {
			log.Fatal("Failed to write report: ", err)
		}
	}

	if compareFlags.json {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			log.Fatal(err)
		}
		return
	}
	fmt.Printf("Score: %d%% (%s)\n", res.Percent(), res.Strategy)
	for _, p := range res.Artifacts {
		fmt.Println("Wrote", p)
	}
}

// writeReport renders the PDF report. Raster strategies get an overlay
// image; the overlay is always drawn with the thin and thick pens.
func writeReport(path string, settings *config.Settings, in score.Input, res score.Result) error {
	report := export.Report{
		Shape:     compareFlags.shape,
		Result:    res,
		Reference: in.Reference,
		User:      in.User,
	}
	coverage, err := score.New(score.StrategyCoverage, settings.Scoring())
	if err != nil {
		return err
	}
	r, err := coverage.(*score.CoverageStrategy).Render(in)
	if err != nil {
		return err
	}
	report.Overlay = raster.Overlay(r.Reference, r.User, raster.Highlight)
	return export.WritePDF(path, report)
}
