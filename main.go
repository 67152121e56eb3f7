// main is the entry point for the peakfinder CLI.
package main

import (
	"fmt"
	"os"

	"github.com/mountjawa/peakfinder/cmd"
	"github.com/mountjawa/peakfinder/internal/history"
)

func main() {
	cmd.SetHistoryManager(history.Manager)
	defer history.CloseHistory()

	if err := cmd.Execute(); err != nil {
		fmt.Println("❌", err)
		history.CloseHistory()
		os.Exit(1)
	}
}
