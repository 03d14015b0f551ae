package main

import (
	"strings"
	"testing"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
)

func TestRenderCounters(t *testing.T) {
	report := &entities.BatchReport{
		Counters: map[entities.Status]int{
			entities.StatusActive:             7,
			entities.StatusPermanentlyBlocked: 2,
		},
	}

	out := renderCounters(report)

	for _, status := range entities.Statuses {
		if !strings.Contains(out, string(status)) {
			t.Errorf("output is missing %s:\n%s", status, out)
		}
	}
	// go-pretty upper-cases footers by default
	if !strings.Contains(out, "TOTAL") || !strings.Contains(out, "9") {
		t.Errorf("output is missing the total:\n%s", out)
	}

	active := strings.Index(out, "active")
	errorRow := strings.Index(out, "error")
	if active < 0 || errorRow < active {
		t.Errorf("categories are not in report order:\n%s", out)
	}
}

func TestRenderResults(t *testing.T) {
	report := &entities.BatchReport{
		Results: []entities.AccountResult{
			{Path: "a.json", Phone: "+155****1234", Status: entities.StatusRecovered, Attempts: 2},
			{Path: "b.json", Phone: "+155****5678", Status: entities.StatusError, Detail: "connect: timeout"},
		},
	}

	out := renderResults(report)
	for _, want := range []string{"a.json", "b.json", "recovered", "connect: timeout", "+155****5678"} {
		if !strings.Contains(out, want) {
			t.Errorf("output is missing %q:\n%s", want, out)
		}
	}
}

func TestRootCommand_HasRun(t *testing.T) {
	root := newRootCommand()
	cmd, _, err := root.Find([]string{"run"})
	if err != nil {
		t.Fatalf("Find(run) error = %v", err)
	}
	if cmd.Flags().Lookup("dir") == nil {
		t.Error("run command has no --dir flag")
	}
}
