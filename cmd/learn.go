package cmd

import (
	"fmt"
	"log"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/references"
	"github.com/spf13/cobra"
)

var learnInput string

var learnCmd = &cobra.Command{
	Use:   "learn [name]",
	Short: "Save a drawing as a custom reference shape",
	Args:  cobra.ExactArgs(1),
	Run:   learnReference,
}

func init() {
	rootCmd.AddCommand(learnCmd)
	learnCmd.Flags().StringVarP(&learnInput, "input", "i", "-", "Drawing file to save (- for stdin)")
}

func learnReference(cmd *cobra.Command, args []string) {
	f, err := readDrawingFile(learnInput)
	if err != nil {
		log.Fatal("Failed to read drawing: ", err)
	}
	if len(f.Drawing()) == 0 {
		log.Fatalf("Drawing %s has no strokes", learnInput)
	}
	if err := references.SaveReference(args[0], f.Strokes); err != nil {
		log.Fatal("Failed to save reference: ", err)
	}
	fmt.Println("Saved reference:", args[0])
}
