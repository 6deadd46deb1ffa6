package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/references"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove [name]",
	Short: "Remove a custom reference shape by name",
	Run:   removeReference,
	ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		refs, err := references.LoadReferences()
		if err != nil || len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		names := make([]string, 0, len(refs))
		for _, r := range refs {
			names = append(names, r.Name)
		}
		return names, cobra.ShellCompDirectiveNoFileComp
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func removeReference(cmd *cobra.Command, args []string) {
	if len(args) <= 0 {
		log.Fatalf("Please specify a reference")
	}
	if err := references.RemoveReference(args[0]); err != nil {
		if errors.Is(err, references.ErrNotFound) {
			log.Fatalf("Reference not found: %s", args[0])
		}
		log.Fatal("Failed to remove reference: ", err)
	}
	fmt.Println("Removed reference:", args[0])
}
