package main

import (
	"codeberg.org/miketth/kleboard/pkg/kle"
	"codeberg.org/miketth/kleboard/pkg/multilayout"
	"fmt"
	"github.com/spf13/cobra"
	"strconv"
	"strings"
)

func (a *app) layoutsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "layouts [file]",
		Short: "List the multilayout options of a layout and the variant picked by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbd, err := readKeyboard(cmd, args)
			if err != nil {
				return err
			}
			groups, err := multilayout.GroupByMultilayout(kbd.Keys)
			if err != nil {
				return err
			}
			labels, err := multilayout.Labels(kbd.Keys)
			if err != nil {
				a.log.Warnw("layout names incomplete", "error", err)
				labels = nil
			}

			w := cmd.OutOrStdout()
			st := newStyler(w)
			fmt.Fprintln(w, st.render(titleStyle, fmt.Sprintf("%s: %d keys, %d multilayout options", kbd.Meta.Name, len(kbd.Keys), len(groups))))

			for _, idx := range groups.Indices() {
				variants := groups[idx]
				name := fmt.Sprintf("option %d", idx)
				var options []string
				if idx < len(labels) {
					name = labels[idx].Name
					options = labels[idx].Options
				}
				fmt.Fprintf(w, "%s %s\n", st.render(dimStyle, fmt.Sprintf("[%d]", idx)), st.render(nameStyle, name))

				picked := largest(variants)
				for v, keys := range variants {
					line := fmt.Sprintf("  %d: %d keys", v, len(keys))
					if v < len(options) {
						line += " " + options[v]
					}
					if v == picked {
						line = st.render(selectedStyle, line+" (default)")
					}
					fmt.Fprintln(w, line)
				}
			}
			return nil
		},
	}
}

// largest mirrors the canonical choice: most keys, lowest value on ties.
func largest(variants [][]kle.Key) int {
	best := 0
	for v, keys := range variants {
		if len(keys) > len(variants[best]) {
			best = v
		}
	}
	return best
}

func (a *app) resolveCmd() *cobra.Command {
	var selection string
	cmd := &cobra.Command{
		Use:   "resolve [file]",
		Short: "Collapse multilayout options into one layout",
		Long: `Without --select every option takes its largest variant. With --select
one variant value per option index is given, e.g. --select 1,0,2.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kbd, err := readKeyboard(cmd, args)
			if err != nil {
				return err
			}

			if selection == "" {
				out, err := multilayout.ResolveCanonical(kbd)
				if err != nil {
					return err
				}
				return writeCompact(cmd.OutOrStdout(), out)
			}

			selections, err := parseSelections(selection)
			if err != nil {
				return err
			}
			keys, err := multilayout.ResolveSelection(kbd, selections)
			if err != nil {
				return err
			}
			out := kbd.Clone()
			out.Keys = keys
			return writeCompact(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVarP(&selection, "select", "s", "", "comma separated variant value per option index")
	return cmd
}

func parseSelections(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse selection %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}
