package prewhiten

import "github.com/rotisserie/eris"

var (
	// ErrInvalidSettings is returned by NewRunner for out of range options.
	ErrInvalidSettings = eris.New("prewhiten: invalid settings")

	// ErrInvalidHookResponse is returned when a custom fit hook returns an
	// incomplete response.
	ErrInvalidHookResponse = eris.New("prewhiten: invalid fit hook response")
)
