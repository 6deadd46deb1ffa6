package cmd

import (
	"fmt"
	"log"
	"math"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/config"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/stroke"
	"github.com/spf13/cobra"
)

var recogniseFlags struct {
	input       string
	minAccuracy float64
}

// Shorter drawings are too noisy to match.
const minRecognisePoints = 5

var recogniseCmd = &cobra.Command{
	Use:     "recognise",
	Aliases: []string{"recognize"},
	Short:   "Guess which shape a drawing is",
	Run:     recogniseDrawing,
}

func init() {
	rootCmd.AddCommand(recogniseCmd)
	recogniseCmd.Flags().StringVarP(&recogniseFlags.input, "input", "i", "-", "Drawing file to recognise (- for stdin)")
	recogniseCmd.Flags().Float64Var(&recogniseFlags.minAccuracy, "min-accuracy", 60, "Lowest accuracy (0-100) reported as a match")
}

func recogniseDrawing(cmd *cobra.Command, args []string) {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("Failed to load settings: ", err)
	}
	table, err := loadShapes(settings)
	if err != nil {
		log.Fatal(err)
	}
	f, err := readDrawingFile(recogniseFlags.input)
	if err != nil {
		log.Fatal("Failed to read drawing: ", err)
	}

	points := f.Drawing().Points()
	if len(points) < minRecognisePoints {
		log.Fatalf("Drawing too short to recognise (%d points)", len(points))
	}

	name, distance := stroke.Recognise(points, table.Templates(), settings.ResampleCount)
	if name == "" {
		log.Fatal("No shapes to compare against")
	}
	accuracy := stroke.AccuracyFromDistance(distance, settings.DMax)
	if accuracy < recogniseFlags.minAccuracy {
		fmt.Printf("No confident match (closest: %s, %d%%)\n", name, int(math.Round(accuracy)))
		return
	}
	fmt.Printf("Best match: %s (distance %.4f, %d%%)\n", name, distance, int(math.Round(accuracy)))
}
