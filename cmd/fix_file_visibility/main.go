// One-shot repair: walks every stored file and moves objects whose bucket no
// longer matches their asset's status. Safe to re-run.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/brandlight/ims-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	report, err := a.Services.Maintenance.FixAllFiles(ctx)
	if err != nil {
		a.Log.Error("File visibility reconciliation failed", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Done",
		"scanned", report.Scanned,
		"moved", report.Moved,
		"failed", report.Failed,
	)
}
