package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"
	"sort"
	"time"

	"github.com/phrazzld/tasktrack/internal/domain"
	"github.com/phrazzld/tasktrack/internal/query"
	"github.com/phrazzld/tasktrack/internal/store"
	"github.com/spf13/pflag"
)

type command struct {
	summary string
	run     func(ctx context.Context, app *application, args []string, stdout io.Writer) error
}

var commands = map[string]command{
	"stats":   {"show file counts, total size and the newest backup", runStats},
	"backup":  {"snapshot one collection, or every collection in the structured format", runBackup},
	"prune":   {"remove backups older than --days (default storage.retention_days)", runPrune},
	"sync":    {"copy collections between the structured and opaque formats", runSync},
	"summary": {"summarize stored tasks by state, due date and owner", runSummary},
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: tasktrack [--config FILE] [--root DIR] [--log-level LEVEL] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %-8s %s\n", name, commands[name].summary)
	}
}

func newFlagSet(name string, stdout io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stdout)
	return fs
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func runStats(ctx context.Context, app *application, args []string, stdout io.Writer) error {
	if err := newFlagSet("stats", stdout).Parse(args); err != nil {
		return err
	}

	stats, err := app.persistence.Statistics(ctx)
	if err != nil {
		return err
	}

	out := struct {
		StructuredFiles int        `json:"structured_files"`
		OpaqueFiles     int        `json:"opaque_files"`
		Backups         int        `json:"backups"`
		TotalBytes      int64      `json:"total_bytes"`
		TotalMB         float64    `json:"total_mb"`
		LatestBackup    *time.Time `json:"latest_backup,omitempty"`
	}{
		StructuredFiles: stats.StructuredFiles,
		OpaqueFiles:     stats.OpaqueFiles,
		Backups:         stats.Backups,
		TotalBytes:      stats.TotalBytes,
		TotalMB:         stats.TotalMB(),
	}
	if stats.HasBackups() {
		out.LatestBackup = &stats.LatestBackup
	}
	return writeJSON(stdout, out)
}

type snapshotView struct {
	Collection store.CollectionName `json:"collection"`
	Format     store.Format         `json:"format"`
	Path       string               `json:"path"`
	Bytes      int64                `json:"bytes"`
}

func viewSnapshot(s store.Snapshot) snapshotView {
	return snapshotView{Collection: s.Collection, Format: s.Format, Path: s.Path, Bytes: s.Size}
}

func runBackup(ctx context.Context, app *application, args []string, stdout io.Writer) error {
	fs := newFlagSet("backup", stdout)
	collection := fs.String("collection", "", "collection to back up (users, tasks); all when empty")
	format := fs.String("format", "", "format of the file to copy (default storage.default_format)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *collection == "" {
		report, err := app.persistence.CreateFullBackup(ctx)
		snaps := make([]snapshotView, len(report.Snapshots))
		for i, s := range report.Snapshots {
			snaps[i] = viewSnapshot(s)
		}
		if werr := writeJSON(stdout, map[string]any{"snapshots": snaps, "skipped": report.Skipped}); werr != nil {
			return werr
		}
		return err
	}

	name := store.CollectionName(*collection)
	f, err := parseOptionalFormat(*format)
	if err != nil {
		return err
	}
	snap, found, err := app.persistence.CreateBackup(ctx, name, f)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", store.ErrNoData, name)
	}
	return writeJSON(stdout, viewSnapshot(snap))
}

func runPrune(ctx context.Context, app *application, args []string, stdout io.Writer) error {
	fs := newFlagSet("prune", stdout)
	days := fs.Int("days", app.config.Storage.RetentionDays, "remove backups older than this many days")
	if err := fs.Parse(args); err != nil {
		return err
	}

	removed, err := app.persistence.PruneBackups(ctx, *days)
	if err != nil {
		return err
	}
	return writeJSON(stdout, map[string]int{"removed": removed, "days": *days})
}

func runSync(ctx context.Context, app *application, args []string, stdout io.Writer) error {
	if err := newFlagSet("sync", stdout).Parse(args); err != nil {
		return err
	}

	report, err := app.persistence.SynchronizeFormats(ctx)
	if werr := writeJSON(stdout, map[string]any{
		"to_opaque":     report.ToOpaque,
		"to_structured": report.ToStructured,
	}); werr != nil {
		return werr
	}
	return err
}

type taskSummary struct {
	Total    int                      `json:"total"`
	ByState  map[domain.TaskState]int `json:"by_state"`
	Overdue  []string                 `json:"overdue"`
	DueSoon  []string                 `json:"due_soon"`
	Matching []string                 `json:"matching,omitempty"`
	Windows  []query.WindowStats      `json:"windows"`
	Owners   map[string]ownerSummary  `json:"owners,omitempty"`
	Calendar map[int]string           `json:"calendar,omitempty"`
	NextIDs  []string                 `json:"next_ids,omitempty"`
}

type ownerSummary struct {
	Name       string `json:"name"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
}

func runSummary(ctx context.Context, app *application, args []string, stdout io.Writer) error {
	fs := newFlagSet("summary", stdout)
	format := fs.String("format", "", "format to read (default storage.default_format)")
	window := fs.Int("window", app.config.Query.WindowSize, "tasks per statistics window")
	dueSoon := fs.Int("due-soon", app.config.Query.DueSoonDays, "days ahead that count as due soon")
	filter := fs.String("filter", "", `expression selecting tasks, e.g. 'State == "pending" && Priority == "high"'`)
	month := fs.String("month", "", "calendar month to project, as YYYY-MM")
	ids := fs.Int("ids", 0, "preview this many identifiers from the configured prefix")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, err := parseOptionalFormat(*format)
	if err != nil {
		return err
	}
	tasks, err := app.persistence.LoadTasks(ctx, f)
	if errors.Is(err, store.ErrNoData) {
		tasks = nil
	} else if err != nil {
		return err
	}
	users, err := app.persistence.LoadUsers(ctx, f)
	if errors.Is(err, store.ErrNoData) {
		users = nil
	} else if err != nil {
		return err
	}

	now := time.Now()
	all := slices.Values(tasks)
	out := taskSummary{
		Total:   len(tasks),
		ByState: make(map[domain.TaskState]int),
		Overdue: taskIDs(query.Overdue(all, now)),
		DueSoon: taskIDs(query.DueWithin(all, now, *dueSoon)),
		Windows: slices.Collect(query.WindowedStats(all, *window)),
	}
	for _, state := range domain.TaskStates() {
		out.ByState[state] = len(slices.Collect(query.ByState(all, state)))
	}

	if *filter != "" {
		pred, err := query.ExprPredicate(*filter, now)
		if err != nil {
			return err
		}
		out.Matching = taskIDs(query.Filter(all, pred))
	}

	if len(users) > 0 {
		out.Owners = make(map[string]ownerSummary, len(users))
		for entry := range query.UsersWithTasks(slices.Values(users), all) {
			out.Owners[entry.User.ID] = ownerSummary{
				Name:       entry.User.Name,
				Pending:    len(entry.Pending),
				InProgress: len(entry.InProgress),
				Completed:  len(entry.Completed),
			}
		}
	}

	if *month != "" {
		m, err := time.ParseInLocation("2006-01", *month, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --month %q: %w", *month, err)
		}
		out.Calendar = make(map[int]string)
		for day := range query.Calendar(all, m.Year(), m.Month(), time.Local) {
			out.Calendar[day.Day] = day.Summary
		}
	}

	if *ids > 0 {
		seq := query.NewIDSequence(app.config.Query.IDPrefix)
		for id := range seq.All() {
			out.NextIDs = append(out.NextIDs, id)
			if len(out.NextIDs) == *ids {
				break
			}
		}
	}

	return writeJSON(stdout, out)
}

func parseOptionalFormat(s string) (store.Format, error) {
	if s == "" {
		return "", nil
	}
	return store.ParseFormat(s)
}

func taskIDs(seq iter.Seq[*domain.Task]) []string {
	out := []string{}
	for t := range seq {
		out = append(out, t.ID)
	}
	return out
}
