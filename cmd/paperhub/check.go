package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/paperhub/paperhub/internal/storage"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check vector coverage and freshness",
	Long: `Check vector coverage and freshness.

Every paper is classified against the configured model: current,
missing a vector, stale (title or abstract changed since embedding),
or embedded with a different model. Stale and mismatched vectors make
recommendations drift, so their presence fails the check.`,
	RunE: runCheck,
}

// CheckResult is the response for the check command.
type CheckResult struct {
	Status         string  `json:"status"`
	Papers         int     `json:"papers"`
	WithVector     int     `json:"with_vector"`
	Missing        int     `json:"missing"`
	Stale          int     `json:"stale"`
	ModelMismatch  int     `json:"model_mismatch"`
	MissingIDs     []int64 `json:"missing_ids,omitempty"`
	StaleIDs       []int64 `json:"stale_ids,omitempty"`
	MismatchIDs    []int64 `json:"mismatch_ids,omitempty"`
	Model          string  `json:"model"`
	Recommendation string  `json:"recommendation,omitempty"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	settings := mustResolveSettings(mustFindLibrary())
	store := mustOpenStore(ctx, settings)
	defer store.Close()

	vs, err := storage.VectorStatus(ctx, store, settings.Model)
	if err != nil {
		exitWithError(ExitError, "checking vectors: %v", err)
	}

	status := "healthy"
	var recommendation string
	exitCode := ExitSuccess

	switch {
	case vs.Stale > 0 || vs.ModelMismatch > 0:
		status = "stale"
		recommendation = "Run 'paperhub embed --stale' to refresh outdated vectors"
		exitCode = ExitStaleVectors
	case vs.Missing > 0:
		status = "incomplete"
		recommendation = "Run 'paperhub embed' to embed the remaining papers"
	}

	result := CheckResult{
		Status:         status,
		Papers:         vs.Papers,
		WithVector:     vs.WithVector,
		Missing:        vs.Missing,
		Stale:          vs.Stale,
		ModelMismatch:  vs.ModelMismatch,
		Model:          settings.Model,
		Recommendation: recommendation,
	}

	// Echo the offending ids only while the list stays readable.
	if n := len(vs.MissingIDs); n > 0 && n <= 10 {
		result.MissingIDs = vs.MissingIDs
	}
	if n := len(vs.StaleIDs); n > 0 && n <= 10 {
		result.StaleIDs = vs.StaleIDs
	}
	if n := len(vs.MismatchIDs); n > 0 && n <= 10 {
		result.MismatchIDs = vs.MismatchIDs
	}

	if humanOutput {
		fmt.Printf("Vector status: %s\n\n", status)
		fmt.Printf("Papers:\n")
		fmt.Printf("  Total: %d\n", vs.Papers)
		fmt.Printf("  With vector: %d\n", vs.WithVector)
		fmt.Printf("  Missing: %d\n", vs.Missing)
		fmt.Printf("  Stale: %d\n", vs.Stale)
		fmt.Printf("  Model mismatch: %d\n", vs.ModelMismatch)
		fmt.Printf("\nModel: %s\n", settings.Model)
		if recommendation != "" {
			fmt.Printf("\n%s\n", recommendation)
		}
	} else {
		outputJSON(result)
	}

	if exitCode != ExitSuccess {
		os.Exit(exitCode)
	}
	return nil
}
