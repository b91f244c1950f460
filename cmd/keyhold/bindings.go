package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/llehouerou/keyhold/internal/keymap"
	"github.com/llehouerou/keyhold/internal/settings"
)

const customMarker = "*"

func newBindingsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bindings",
		Short: "List every action with its effective key",
		Long: `List every action with its effective key. Keys set in the bindings file
rather than defaulted are marked with ` + customMarker + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := opts.store()
			if err != nil {
				return err
			}
			st, err := store.Load(cmd.Context())
			if err != nil {
				return err
			}
			printBindings(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newBindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bind <action> <key>",
		Short: "Bind an action to a key",
		Example: `  keyhold bind scroll-down j
  keyhold bind seek-forward " "`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := keymap.ParseAction(args[0])
			if err != nil {
				return err
			}
			store, err := opts.store()
			if err != nil {
				return err
			}
			st, err := store.Bind(cmd.Context(), action, args[1])
			if err != nil {
				return err
			}
			printBindings(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newUnbindCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "unbind <action>",
		Short: "Disable an action so its key reaches the document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := keymap.ParseAction(args[0])
			if err != nil {
				return err
			}
			store, err := opts.store()
			if err != nil {
				return err
			}
			st, err := store.Unbind(cmd.Context(), action)
			if err != nil {
				return err
			}
			printBindings(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func newResetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset [action...]",
		Short: "Restore default keys, for the given actions or for everything",
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := make([]keymap.Action, 0, len(args))
			for _, name := range args {
				action, err := keymap.ParseAction(name)
				if err != nil {
					return err
				}
				actions = append(actions, action)
			}
			store, err := opts.store()
			if err != nil {
				return err
			}
			st, err := store.Reset(cmd.Context(), actions...)
			if err != nil {
				return err
			}
			printBindings(cmd.OutOrStdout(), st)
			return nil
		},
	}
}

func printBindings(w io.Writer, st keymap.Settings) {
	st = st.Normalized()
	rows := make([][]string, 0, len(keymap.Actions))
	for _, b := range settings.Effective(st) {
		mark := ""
		if b.Custom {
			mark = customMarker
		}
		rows = append(rows, []string{string(b.Action), keymap.FormatKey(b.Key), mark, b.Action.Description()})
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("ACTION", "KEY", "", "DESCRIPTION").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "scroll speed %d, arrow keys as seek %t, arrow keys scroll %t\n",
		st.ScrollSpeed, st.ArrowKeysAsSeek, st.ArrowKeysScroll)
}
