// =============================================================================
// Sheet Consolidator - Main Entry Point
// =============================================================================
//
// USAGE:
//   consolidator run        - Consolidate the input directory into one report
//   consolidator validate   - Check configuration and list input files
//   consolidator version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Loading, cleaning, aggregation and report output
//   - pkg/           : Shared file system utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sheet-consolidator/cmd"
)

func main() {
	cmd.Execute()
}
