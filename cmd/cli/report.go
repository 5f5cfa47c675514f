package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/limaJavier/labtimetabling/pkg/engine"
	"github.com/limaJavier/labtimetabling/pkg/model"
	"github.com/limaJavier/labtimetabling/pkg/schedule"
	"github.com/limaJavier/labtimetabling/pkg/solver"
)

func printResult(out io.Writer, result engine.SolveResult) {
	fmt.Fprintf(out, "Run: %v\n", result.RunID)
	fmt.Fprintf(out, "Status: %v\n", result.Status)
	fmt.Fprintf(out, "Sessions: %v\n", len(result.Schedule.Sessions))
	fmt.Fprintf(out, "Unresolved: %v\n", len(result.Unresolved))
	fmt.Fprintf(out, "Steps: %v\n", result.Steps)
	fmt.Fprintf(out, "Duration: %v\n", result.Duration)
	if result.Committed {
		fmt.Fprintf(out, "Committed version: %v\n", result.Schedule.Version)
	}
	if result.Affected != nil {
		fmt.Fprintf(out, "Affected: %v\n", strings.Join(result.Affected, " "))
	}
	if result.Escalated {
		fmt.Fprintln(out, "Escalated to a full solve")
	}
	for _, diagnostic := range result.Diagnostics {
		printDiagnostic(out, diagnostic)
	}
}

func printDiagnostic(out io.Writer, diagnostic solver.Diagnostic) {
	target := diagnostic.Subject
	if diagnostic.Session != "" {
		target = diagnostic.Session
	}
	fmt.Fprintf(out, "  [%v] %v: %v\n", diagnostic.Class, target, diagnostic.Message)
}

func printSessions(out io.Writer, sessions []schedule.Session) {
	for _, session := range sessions {
		fmt.Fprintf(out, "%-9v %v-%v  %-8v %-12v %-8v %-8v %v\n",
			model.DayNames[session.Day], session.Start, session.End, session.Room, session.Subject, session.Group, session.Professor, session.Id)
	}
}

func printDiff(out io.Writer, diff schedule.Diff) {
	if diff.Empty() {
		fmt.Fprintln(out, "No changes")
		return
	}
	for _, session := range diff.Added {
		fmt.Fprintf(out, "+ %v %v %v %v\n", session.Id, session.Slot, session.Room, session.Professor)
	}
	for _, session := range diff.Removed {
		fmt.Fprintf(out, "- %v %v %v %v\n", session.Id, session.Slot, session.Room, session.Professor)
	}
	for _, move := range diff.Moved {
		fmt.Fprintf(out, "~ %v %v %v %v -> %v %v %v\n", move.Before.Id,
			move.Before.Slot, move.Before.Room, move.Before.Professor,
			move.After.Slot, move.After.Room, move.After.Professor)
	}
}
