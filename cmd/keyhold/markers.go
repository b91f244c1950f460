package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/llehouerou/keyhold/internal/state"
)

func newMarkersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "markers",
		Short: "Inspect or clear saved reading positions",
	}
	cmd.AddCommand(newMarkersListCmd())
	cmd.AddCommand(newMarkersClearCmd())
	return cmd
}

func newMarkersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved positions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			markers, err := openMarkers()
			if err != nil {
				return err
			}
			defer markers.Close()

			list, err := markers.ListMarkers()
			if err != nil {
				return err
			}
			printMarkers(cmd.OutOrStdout(), list)
			return nil
		},
	}
}

func newMarkersClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [file]",
		Short: "Forget the saved position of one document, or of every document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			markers, err := openMarkers()
			if err != nil {
				return err
			}
			defer markers.Close()

			out := cmd.OutOrStdout()
			if len(args) == 0 {
				n, err := markers.ClearMarkers()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Cleared %d %s\n", n, plural(n, "marker"))
				return nil
			}

			path, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			found, err := markers.ClearMarker(path)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no marker for %s", path)
			}
			fmt.Fprintf(out, "Cleared marker for %s\n", path)
			return nil
		},
	}
}

func printMarkers(w io.Writer, list []state.Marker) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No saved positions")
		return
	}
	rows := make([][]string, 0, len(list))
	for _, mk := range list {
		liked := ""
		if mk.Liked {
			liked = "♥"
		}
		media := ""
		if mk.MediaPosition != nil {
			media = mk.MediaPosition.Truncate(time.Second).String()
		}
		rows = append(rows, []string{
			mk.Title,
			strconv.Itoa(int(mk.Offset) + 1),
			media,
			liked,
			humanize.Time(mk.UpdatedAt),
			mk.ContentID,
		})
	}
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers("TITLE", "LINE", "MEDIA", "", "UPDATED", "PATH").
		Rows(rows...)
	fmt.Fprintln(w, t.String())
}

func plural(n int64, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
