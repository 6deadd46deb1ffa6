package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ThatOtherAndrew/Sketchmatch/internal/server"
	"github.com/spf13/cobra"
)

var discoverTimeout time.Duration

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find sketchmatch servers on the local network",
	Run:   discover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().DurationVar(&discoverTimeout, "timeout", 2*time.Second, "How long to wait for answers")
}

func discover(cmd *cobra.Command, args []string) {
	addrs, err := server.Discover(context.Background(), discoverTimeout)
	if err != nil {
		log.Fatal("Discovery failed: ", err)
	}
	if len(addrs) == 0 {
		fmt.Println("No servers found")
		return
	}
	for _, a := range addrs {
		fmt.Println("  ", a)
	}
}
