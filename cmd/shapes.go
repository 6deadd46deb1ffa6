package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/assets"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/config"
	"github.com/ThatOtherAndrew/Sketchmatch/internal/references"
	"github.com/spf13/cobra"
)

var shapesDir string

var shapesCmd = &cobra.Command{
	Use:   "shapes",
	Short: "List the reference shapes available to trace",
	Run:   listShapes,
}

func init() {
	rootCmd.AddCommand(shapesCmd)
	rootCmd.PersistentFlags().StringVar(&shapesDir, "shapes-dir", "", "Directory of extra .xml or .svg shapes")
}

// loadShapes merges the built-in shapes with those in --shapes-dir and the
// references saved with learn. Later sources win on name clashes.
func loadShapes(settings *config.Settings) (*assets.Table, error) {
	table, err := assets.LoadBuiltin()
	if err != nil {
		return nil, fmt.Errorf("failed to load built-in shapes: %w", err)
	}
	if shapesDir != "" {
		extra, err := assets.Load(os.DirFS(shapesDir), settings.SampleStep)
		if err != nil {
			return nil, err
		}
		table = table.With(extra.Drawings())
	}
	refs, err := references.LoadReferences()
	if err != nil {
		return nil, fmt.Errorf("failed to load references: %w", err)
	}
	return table.With(references.Drawings(refs)), nil
}

func listShapes(cmd *cobra.Command, args []string) {
	settings, err := config.LoadSettings()
	if err != nil {
		log.Fatal("Failed to load settings: ", err)
	}
	table, err := loadShapes(settings)
	if err != nil {
		log.Fatal(err)
	}

	names := table.Names()
	if len(names) == 0 {
		fmt.Println("No shapes available")
		return
	}
	fmt.Println("Available shapes:")
	for _, name := range names {
		d, _ := table.Get(name)
		fmt.Printf("   %s (%d strokes)\n", name, len(d))
	}
}
