package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/deepnoodle-ai/hostbridge"
	"github.com/fatih/color"
)

var (
	// promptStyle for the repl prompt
	promptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("42"))

	// contStyle for continuation lines
	contStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// dimStyle for trace output
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// errorStyle for failed trace events
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// bannerStyle for the repl banner
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("42")).
			Padding(0, 1)
)

func printBanner(w io.Writer, s *session) {
	content := fmt.Sprintf("%s %s\n%s %s.%s\n%s",
		dimStyle.Render("Backend:"), s.config.Backend,
		dimStyle.Render("Defer:"), s.config.Names.DeferTable, s.config.Names.DeferField,
		dimStyle.Render("Ctrl-D to exit"),
	)
	fmt.Fprintln(w, bannerStyle.Render(content))
}

func statusf(w io.Writer, attr color.Attribute, format string, args ...any) {
	color.New(attr).Fprintf(w, format+"\n", args...)
}

// traceCallbacks prints bridge activity as it happens.
type traceCallbacks struct {
	hostbridge.BaseCallbacks
	w io.Writer
}

func newTraceCallbacks(w io.Writer) *traceCallbacks {
	return &traceCallbacks{w: w}
}

func (t *traceCallbacks) AfterCall(event *hostbridge.CallEvent) {
	line := fmt.Sprintf("call %s(%d args) %s", event.Global, event.Args, event.Duration)
	if event.Error != nil {
		fmt.Fprintln(t.w, errorStyle.Render(line+": "+event.Error.Error()))
		return
	}
	fmt.Fprintln(t.w, dimStyle.Render(line))
}

func (t *traceCallbacks) AfterSchedule(event *hostbridge.ScheduleEvent) {
	line := fmt.Sprintf("schedule %s.%s ref=%d %s", event.Table, event.Field, event.Ref, event.Duration)
	if event.Error != nil {
		fmt.Fprintln(t.w, errorStyle.Render(line+": "+event.Error.Error()))
		return
	}
	fmt.Fprintln(t.w, dimStyle.Render(line))
}
