package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/uiverify/uiverify/run"
)

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to marshal JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

func printMessage(msg string) {
	fmt.Println(msg)
}

// printRunResult prints a human-readable summary of one run.
func printRunResult(rec *run.Run, assets []*run.Asset) {
	fmt.Printf("Run:      %s\n", rec.ID)
	fmt.Printf("Scenario: %s\n", rec.ScenarioName)
	fmt.Printf("Status:   %s\n", rec.Status)
	if rec.FailedStep != nil {
		fmt.Printf("Failed:   step %d\n", *rec.FailedStep)
	}
	if rec.Notes != "" && rec.Status != run.StatusPassed {
		fmt.Printf("Notes:    %s\n", rec.Notes)
	}
	if rec.StartedAt != nil && rec.CompletedAt != nil {
		fmt.Printf("Duration: %s\n", rec.CompletedAt.Sub(*rec.StartedAt).Round(time.Millisecond))
	}
	for _, asset := range assets {
		fmt.Printf("Artifact: %s (%d bytes)\n", asset.AssetPath, asset.FileSize)
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}
