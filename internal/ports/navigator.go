package ports

// ButtonBar holds the renderer's navigation elements. Any of them may be nil
// when the renderer has not painted them.
type ButtonBar struct {
	Previous Element
	Next     Element
	Bar      Element
}

// Navigator is the outbound side of the tour-rendering collaborator: the
// calls the engine makes to move or end the walkthrough.
type Navigator interface {
	// Next advances the walkthrough to the following step.
	Next()

	// Exit ends the walkthrough.
	Exit()

	// Buttons returns the renderer's navigation elements.
	Buttons() ButtonBar

	// Completed reports whether the walkthrough ended by advancing past its
	// last step rather than by an explicit exit.
	Completed() bool
}
