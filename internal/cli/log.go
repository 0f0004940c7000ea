package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nvoss/flacward/internal/report"
)

var (
	logTailLines   int
	queryIndexPath string
	queryStatus    string
	queryLimit     int
)

func init() {
	rootCmd.AddCommand(logCmd)
	logCmd.AddCommand(logTailCmd)
	logCmd.AddCommand(logQueryCmd)
	logTailCmd.Flags().IntVarP(&logTailLines, "lines", "n", 10, "Number of recent records to show")
	logQueryCmd.Flags().StringVar(&queryIndexPath, "index", "", "Path to the sqlite index (required)")
	logQueryCmd.Flags().StringVar(&queryStatus, "status", "", "Filter by terminal status (e.g. RECOVERED)")
	logQueryCmd.Flags().IntVarP(&queryLimit, "limit", "n", 50, "Maximum records to return")
	logQueryCmd.MarkFlagRequired("index")
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Inspect the audit log",
}

var logTailCmd = &cobra.Command{
	Use:   "tail <audit-log.csv>",
	Short: "Show recent audit records",
	Args:  cobra.ExactArgs(1),
	RunE:  runLogTail,
}

var logQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the sqlite audit index",
	Long: "Queries the optional sqlite index written by scan --index.\n" +
		"The CSV log remains the source of truth; the index exists for this.",
	RunE: runLogQuery,
}

func runLogTail(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read audit log: %w", err)
		}
		rows = append(rows, row)
	}
	if len(rows) <= 1 {
		fmt.Println("log is empty")
		return nil
	}

	// Row 0 is the header.
	records := rows[1:]
	start := len(records) - logTailLines
	if start < 0 {
		start = 0
	}
	for _, row := range records[start:] {
		printRow(row)
	}
	return nil
}

func printRow(row []string) {
	if len(row) < 13 {
		fmt.Println(strings.Join(row, ","))
		return
	}
	line := fmt.Sprintf("%-16s %s", row[2], row[1])
	if row[3] != "" {
		line += fmt.Sprintf("  (%s)", row[3])
	}
	if row[12] != "" {
		line += "  -> " + row[12]
	}
	fmt.Println(line)
}

func runLogQuery(cmd *cobra.Command, args []string) error {
	ix, err := report.OpenIndex(queryIndexPath)
	if err != nil {
		return err
	}
	defer ix.Close()

	recs, err := ix.Query(cmd.Context(), queryStatus, queryLimit)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no matching records")
		return nil
	}
	for _, r := range recs {
		line := fmt.Sprintf("%-16s %s", r.Status, r.Rel)
		if r.Reason != "" {
			line += fmt.Sprintf("  (%s)", r.Reason)
		}
		if r.Output != "" {
			line += "  -> " + r.Output
		}
		fmt.Println(line)
	}
	return nil
}
