package model

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type IssueKind string

const (
	InvalidEntity IssueKind = "invalid-entity"
	NoProfessor   IssueKind = "no-professor"
	NoRoom        IssueKind = "no-room"
	NoValidWeek   IssueKind = "no-valid-week"
	EmptyDomain   IssueKind = "empty-domain"
)

// Issue names the subject (and session, when known) whose domain cannot be built
type Issue struct {
	Kind    IssueKind
	Subject string
	Session string
	Detail  string
}

func (issue Issue) String() string {
	target := issue.Subject
	if issue.Session != "" {
		target = issue.Session
	}
	if target == "" {
		return fmt.Sprintf("%v: %v", issue.Kind, issue.Detail)
	}
	return fmt.Sprintf("%v %v: %v", issue.Kind, target, issue.Detail)
}

// ConfigurationError reports catalog data that cannot produce a valid domain. It is not fatal, the caller fixes the catalog and retries
type ConfigurationError struct {
	Issues []Issue
}

func (err *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %v", strings.Join(lo.Map(err.Issues, func(issue Issue, _ int) string { return issue.String() }), "; "))
}

// Subjects returns the offending subjects without duplicates, in issue order
func (err *ConfigurationError) Subjects() []string {
	subjects := lo.FilterMap(err.Issues, func(issue Issue, _ int) (string, bool) { return issue.Subject, issue.Subject != "" })
	return lo.Uniq(subjects)
}
