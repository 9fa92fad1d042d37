package services

import (
	"strings"

	types "github.com/brandlight/ims-backend/internal/domain"
	"github.com/brandlight/ims-backend/internal/pkg/apierr"
)

// Button styling hints for transition actions, consumed by the review UI.
const (
	TransitionStylePrimary = "primary"
	TransitionStyleDanger  = "danger"
	TransitionStyleDefault = "default"
)

// Transition is one edge of the review workflow: perform Action while the
// asset sits in State and it moves to NextState. AllowedRoles is the set of
// roles that may perform the action; an empty set means any authenticated
// user.
type Transition struct {
	State        string   `json:"state"`
	Action       string   `json:"action"`
	NextState    string   `json:"next_state"`
	Style        string   `json:"style"`
	AllowedRoles []string `json:"allowed_roles,omitempty"`
}

// WorkflowEngine answers two questions: which actions are available from a
// state for a role, and what state does an action lead to. It holds no asset
// state of its own.
type WorkflowEngine interface {
	ListTransitions(state, role string) []Transition
	Apply(state, action, role string) (Transition, error)
	States() []string
}

type workflowEngine struct {
	transitions []Transition
}

// NewDefaultWorkflowEngine builds the three-stage review pipeline: peer
// review, head-of-department approval, then final sign-off by the brand
// manager. Each review stage can reject, and a rejected asset can be revised
// back to Draft by its contributors.
func NewDefaultWorkflowEngine() WorkflowEngine {
	reviewers := []string{types.RoleReviewer, types.RoleHOD, types.RoleBrandManager, types.RoleAdmin}
	hods := []string{types.RoleHOD, types.RoleBrandManager, types.RoleAdmin}
	managers := []string{types.RoleBrandManager, types.RoleAdmin}

	table := []Transition{
		{State: types.StatusDraft, Action: "Submit for Review", NextState: types.StatusPeerReview},

		{State: types.StatusPeerReview, Action: "Approve", NextState: types.StatusHODApproval, AllowedRoles: reviewers},
		{State: types.StatusPeerReview, Action: "Reject", NextState: types.StatusRejected, AllowedRoles: reviewers},

		{State: types.StatusHODApproval, Action: "Approve", NextState: types.StatusFinalSignoff, AllowedRoles: hods},
		{State: types.StatusHODApproval, Action: "Reject", NextState: types.StatusRejected, AllowedRoles: hods},

		{State: types.StatusFinalSignoff, Action: "Approve", NextState: types.StatusApproved, AllowedRoles: managers},
		{State: types.StatusFinalSignoff, Action: "Reject", NextState: types.StatusRejected, AllowedRoles: managers},

		{State: types.StatusRejected, Action: "Revise", NextState: types.StatusDraft},
	}
	for i := range table {
		table[i].Style = styleForAction(table[i].Action)
	}
	return &workflowEngine{transitions: table}
}

// styleForAction mirrors the review UI convention: approvals and submissions
// are primary buttons, rejections are danger, everything else default.
func styleForAction(action string) string {
	a := strings.ToLower(strings.TrimSpace(action))
	switch {
	case strings.HasPrefix(a, "approve"), strings.HasPrefix(a, "submit"):
		return TransitionStylePrimary
	case strings.HasPrefix(a, "reject"):
		return TransitionStyleDanger
	default:
		return TransitionStyleDefault
	}
}

func roleAllowed(allowed []string, role string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, r := range allowed {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

func (e *workflowEngine) ListTransitions(state, role string) []Transition {
	state = strings.TrimSpace(state)
	if state == "" {
		state = types.StatusDraft
	}
	out := []Transition{}
	for _, t := range e.transitions {
		if t.State != state {
			continue
		}
		if !roleAllowed(t.AllowedRoles, role) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func (e *workflowEngine) Apply(state, action, role string) (Transition, error) {
	state = strings.TrimSpace(state)
	if state == "" {
		state = types.StatusDraft
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return Transition{}, apierr.Validation("missing workflow action")
	}
	for _, t := range e.transitions {
		if t.State != state || !strings.EqualFold(t.Action, action) {
			continue
		}
		if !roleAllowed(t.AllowedRoles, role) {
			return Transition{}, apierr.PermissionDenied("role %q may not perform %q on an asset in %q", role, t.Action, state)
		}
		return t, nil
	}
	return Transition{}, apierr.InvalidTransition("no transition %q from state %q", action, state)
}

func (e *workflowEngine) States() []string {
	seen := map[string]bool{}
	out := []string{}
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, t := range e.transitions {
		add(t.State)
		add(t.NextState)
	}
	return out
}
