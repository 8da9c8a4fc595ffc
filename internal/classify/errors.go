package classify

import "fmt"

// InsufficientDataError reports that the labeled subset is too small
// to fit a model. Training halts rather than producing a degenerate
// classifier.
type InsufficientDataError struct {
	Labeled int
	Min     int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("classify: %d labeled rows, need at least %d to train", e.Labeled, e.Min)
}

// ConfigurationMismatchError reports a feature configuration that does
// not match the schema the artifact was trained with. It is surfaced,
// never silently coerced by guessing column names.
type ConfigurationMismatchError struct {
	Bound string
	Got   string
}

func (e *ConfigurationMismatchError) Error() string {
	return fmt.Sprintf("classify: feature configuration %q does not match artifact schema %q", e.Got, e.Bound)
}
