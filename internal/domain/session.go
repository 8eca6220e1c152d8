// Package domain contains core brain platform entities and rules.
package domain

// PurposeAction is the role a simulator session plays for a brain version.
type PurposeAction string

// Purpose actions understood by the platform.
const (
	PurposeActionTrain    PurposeAction = "Train"
	PurposeActionAssess   PurposeAction = "Assess"
	PurposeActionInactive PurposeAction = "Inactive"
)

// Purpose describes the binding between a simulator session and a brain
// version concept.
type Purpose struct {
	// Action is what the session does for the brain version.
	Action PurposeAction

	// BrainName is the brain the session is bound to.
	BrainName string

	// BrainVersion is the bound brain version.
	BrainVersion int

	// ConceptName is the concept the session trains or assesses.
	ConceptName string
}

// SimulatorSession represents a live simulator connection in a workspace.
// This is a domain entity - it has no knowledge of wire formats; the
// brainapi adapter translates raw session records into this shape.
type SimulatorSession struct {
	// SessionID is the unique identifier of the session.
	SessionID string

	// SimulatorName is the name the simulator registered under.
	SimulatorName string

	// Purpose is the session's current binding, zero-valued when unbound.
	Purpose Purpose
}

// Unbound reports whether the session has no active brain binding.
func (s SimulatorSession) Unbound() bool {
	return s.Purpose.Action == PurposeActionInactive || s.Purpose.Action == ""
}
