package main

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	tagbump "github.com/bcomnes/tagbump/pkg"
)

// reporter prints the human-facing summary. Styles are bound to a renderer
// for the actual writer, so redirected output carries no escape codes.
type reporter struct {
	out io.Writer

	title lipgloss.Style
	label lipgloss.Style
}

func newReporter(out io.Writer) *reporter {
	r := lipgloss.NewRenderer(out)
	return &reporter{
		out:   out,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		label: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (r *reporter) summary(meta tagbump.ReleaseMeta, dry bool) {
	if dry {
		fmt.Fprintln(r.out, r.title.Render("Dry run complete, no files were modified."))
	} else {
		fmt.Fprintln(r.out, r.title.Render("Release successful!"))
	}
	r.field("Old Version:", meta.OldVersion)
	r.field("New Version:", meta.NewVersion)
	r.field("Tag:        ", meta.Tag)
	if dry {
		r.field("Remotes:    ", fmt.Sprint(meta.Remotes))
	} else {
		r.field("Pushed To:  ", fmt.Sprint(meta.Pushed))
	}

	if len(meta.UpdatedFiles) > 0 {
		if dry {
			fmt.Fprintln(r.out, "Files that would be updated:")
		} else {
			fmt.Fprintln(r.out, "Files updated:")
		}
		for _, f := range meta.UpdatedFiles {
			fmt.Fprintf(r.out, "  %s\n", f)
		}
	}
	if dry && len(meta.Commands) > 0 {
		fmt.Fprintln(r.out, "Commands that would run:")
		for _, c := range meta.Commands {
			fmt.Fprintf(r.out, "  %s\n", c)
		}
	}
}

func (r *reporter) field(name, value string) {
	fmt.Fprintf(r.out, "%s %s\n", r.label.Render(name), value)
}

// timing prints the completion line and wall-clock times in the
// "H:MM:SS" run-time format.
func (r *reporter) timing(start, end time.Time, code int) {
	if code == tagbump.ExitOK {
		fmt.Fprintln(r.out, "...Successful completion.")
	} else {
		fmt.Fprintf(r.out, "...Completion Failure of %d\n", code)
	}
	fmt.Fprintf(r.out, "Start Time: %s\n", start.Format(time.ANSIC))
	fmt.Fprintf(r.out, "End   Time: %s\n", end.Format(time.ANSIC))
	fmt.Fprintf(r.out, "run   Time: %s\n", formatElapsed(end.Sub(start)))
}

func formatElapsed(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
