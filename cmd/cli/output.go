package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/and161185/policydesk/internal/errs"
	"github.com/and161185/policydesk/internal/pages"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

// noticeError carries a page notice out of RunE so main prints it verbatim.
type noticeError struct{ text string }

func (e *noticeError) Error() string { return e.text }

// errorLine is the single stderr line for a failed command.
func errorLine(err error) string {
	var ne *noticeError
	if errors.As(err, &ne) {
		return "error: " + ne.text
	}
	return "error: " + errs.Message(err, err.Error())
}

// notify prints a success notice to stderr or turns an error notice into the command's error.
func notify(cmd *cobra.Command, n pages.Notice) error {
	if n.Failed() {
		return &noticeError{text: n.Text}
	}
	fmt.Fprintln(cmd.ErrOrStderr(), n.Text)
	return nil
}

// noticeErr is notify for the optional notice of a load flow.
func noticeErr(n *pages.Notice) error {
	if n == nil {
		return nil
	}
	return &noticeError{text: n.Text}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// emit writes v as JSON under --json, otherwise as a table built by rows.
func (a *app) emit(cmd *cobra.Command, v any, headers []string, rows func() [][]string) error {
	if a.asJSON {
		return printJSON(cmd.OutOrStdout(), v)
	}
	r := rows()
	if len(r) == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "nothing to show")
		return nil
	}
	return printTable(cmd.OutOrStdout(), headers, r)
}
