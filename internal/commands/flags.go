package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// dateRange holds the --start/--end flags.
type dateRange struct {
	start string
	end   string
}

func (r *dateRange) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.start, "start", "", "first date included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.end, "end", "", "last date included (YYYY-MM-DD)")
}

func (r *dateRange) parse() (start, end time.Time, err error) {
	if r.start != "" {
		if start, err = time.Parse(time.DateOnly, r.start); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
		}
	}
	if r.end != "" {
		if end, err = time.Parse(time.DateOnly, r.end); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
		}
	}
	return start, end, nil
}
