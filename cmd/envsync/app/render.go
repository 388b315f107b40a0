package app

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/usecase"
)

const (
	outputTable = "table"
	outputJSON  = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func blockingCount(deps []promotion.ResourceDependency) int {
	n := 0
	for _, d := range deps {
		if d.IsBlocking {
			n++
		}
	}
	return n
}

// renderDiff prints one row per resource followed by the totals
func renderDiff(w io.Writer, resp *usecase.DiffResponse, format string) error {
	if format == outputJSON {
		return writeJSON(w, resp)
	}

	table := tablewriter.NewWriter(w)
	table.Header("TYPE", "RESOURCE", "NAME", "ADDED", "MODIFIED", "DELETED", "BLOCKING")
	for _, r := range resp.Resources {
		if err := table.Append([]string{
			string(r.ResourceType),
			r.ResourceID(),
			r.ResourceName(),
			strconv.Itoa(r.Summary.Added),
			strconv.Itoa(r.Summary.Modified),
			strconv.Itoa(r.Summary.Deleted),
			strconv.Itoa(blockingCount(r.Dependencies)),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d resources, %d changes\n", resp.Summary.TotalEntities, resp.Summary.TotalChanges)
	return err
}

// renderPublish prints one row per processed resource followed by the totals
func renderPublish(w io.Writer, resp *usecase.PublishResponse, format string) error {
	if format == outputJSON {
		return writeJSON(w, resp)
	}

	table := tablewriter.NewWriter(w)
	table.Header("TYPE", "RESOURCE", "NAME", "OUTCOME", "DETAIL")
	for _, result := range resp.Results {
		rt := string(result.ResourceType)
		var rows [][]string
		for _, s := range result.Successful {
			rows = append(rows, []string{rt, s.ResourceID, s.ResourceName, string(s.Action), ""})
		}
		for _, s := range result.Skipped {
			rows = append(rows, []string{rt, s.ResourceID, s.ResourceName, "skipped", s.Reason})
		}
		for _, f := range result.Failed {
			rows = append(rows, []string{rt, f.ResourceID, f.ResourceName, "failed", f.Error})
		}
		for _, row := range rows {
			if err := table.Append(row); err != nil {
				return err
			}
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	s := resp.Summary
	_, err := fmt.Fprintf(w, "%d resources: %d successful, %d skipped, %d failed\n",
		s.Resources, s.Successful, s.Skipped, s.Failed)
	return err
}
