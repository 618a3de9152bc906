package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/safeopen"
	"go.uber.org/multierr"

	"github.com/benz9527/xtree/workload"
)

// writeReport stores the report as xtree-report-<strategy>.json beneath dir.
// The file name never escapes dir.
func writeReport(dir string, report *workload.Report) (filename string, err error) {
	filename = fmt.Sprintf("xtree-report-%s.json", report.Strategy)
	f, err := safeopen.OpenFileBeneath(dir, filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return "", err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return filename, enc.Encode(report)
}
