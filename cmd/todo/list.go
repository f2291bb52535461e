package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"mytasks/internal/tasks"
)

var errUnknownSort = errors.New("unknown sort")

func newListCmd(opts *options) *cobra.Command {
	var filter, sortBy string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print tasks without starting the UI",
		Long: `Print tasks without starting the UI.

--sort reorders the stored list the same way the UI sort keys do:
done, doing and notdone move that state first; deadline sorts by date.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, ok := tasks.ParseCriteria(filter)
			if !ok {
				return fmt.Errorf("unknown filter %q", filter)
			}
			a, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer a.Close()

			if sortBy != "" {
				if err := applySort(a.store, sortBy); err != nil {
					return err
				}
			}
			printTasks(cmd.OutOrStdout(), a.store.Filter(criteria))
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "all", "all, done, notdone or doing")
	cmd.Flags().StringVar(&sortBy, "sort", "", "done, doing, notdone or deadline")
	return cmd
}

func applySort(store *tasks.Store, by string) error {
	switch strings.ToLower(strings.TrimSpace(by)) {
	case "deadline", "due":
		_, err := store.SortByDeadline()
		return err
	}
	st, ok := tasks.ParseState(by)
	if !ok {
		return fmt.Errorf("%w %q", errUnknownSort, by)
	}
	_, err := store.SortByState(st)
	return err
}

func printTasks(w io.Writer, list []tasks.Task) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No tasks matching the criteria")
		return
	}
	for i, t := range list {
		deadline := t.Deadline.String()
		if deadline == "" {
			deadline = "-"
		}
		fmt.Fprintf(w, "%4d  %-16s %-10s  %s\n", i+1, t.State, deadline, oneLine(t.Title))
		if t.Summary != "" {
			fmt.Fprintf(w, "      %s\n", oneLine(t.Summary))
		}
	}
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
