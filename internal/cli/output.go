package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/domain/query"
	"github.com/GriffinCanCode/AgentOS/agentregistry/internal/shared/types"
)

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func newFormatter(opts *RootOptions, w io.Writer) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: w}
}

// JSON writes v as indented JSON
func (f *OutputFormatter) JSON(v any) error {
	data, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(f.Writer, string(data))
	return err
}

// Agents prints a table of agents, or the slice itself in JSON mode
func (f *OutputFormatter) Agents(agents []types.Agent) error {
	if f.Format == "json" {
		return f.JSON(agents)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSTATUS\tVERSION\tCAPABILITIES")
	for _, a := range agents {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID, a.Name, a.Type, a.Status, a.Version, strings.Join(a.Capabilities, ","))
	}
	return tw.Flush()
}

// Page prints one query page followed by its position
func (f *OutputFormatter) Page(res query.Result) error {
	if f.Format == "json" {
		return f.JSON(res)
	}
	if err := f.Agents(res.Items); err != nil {
		return err
	}
	p := res.Pagination
	_, err := fmt.Fprintf(f.Writer, "\npage %d/%d, %d total\n", p.Page, max(p.TotalPages, 1), p.Total)
	return err
}

// Stats prints registry statistics
func (f *OutputFormatter) Stats(s types.RegistryStats) error {
	if f.Format == "json" {
		return f.JSON(s)
	}
	tw := tabwriter.NewWriter(f.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "total\t%d\n", s.Total)
	fmt.Fprintf(tw, "active\t%d\n", s.Active)
	fmt.Fprintf(tw, "inactive\t%d\n", s.Inactive)
	fmt.Fprintf(tw, "verified\t%d\n", s.Verified)
	fmt.Fprintf(tw, "on chain\t%d\n", s.OnChain)
	fmt.Fprintf(tw, "average rating\t%.2f (%d rated)\n", s.AverageRating, s.Rated)
	fmt.Fprintf(tw, "contracts\t%d\n", s.Contracts)
	for _, status := range slices.Sorted(maps.Keys(s.ByStatus)) {
		fmt.Fprintf(tw, "status %s\t%d\n", status, s.ByStatus[status])
	}
	return tw.Flush()
}

// Message prints a one-line confirmation, or {"message": ...} in JSON mode
func (f *OutputFormatter) Message(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if f.Format == "json" {
		return f.JSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(f.Writer, msg)
	return err
}
