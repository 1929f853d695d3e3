package venv

const (
	// MarkerDir is the directory inside an environment holding the marker file
	MarkerDir = "bin"
	// MarkerFile is the file whose presence identifies an environment
	MarkerFile = "ruyi-activate"
	// PromptKey prefixes the line carrying the environment label
	PromptKey = "RUYI_VENV_PROMPT="
	// MaxDepth bounds how far below the root candidates are looked for
	MaxDepth = 2
)

// Environment is a discovered virtual environment
type Environment struct {
	Path  string `yaml:"path"`  // Slash-separated path relative to the scanned root
	Label string `yaml:"label"` // Prompt text extracted from the marker file
}

// SkipReason explains why a candidate did not produce an Environment
type SkipReason string

const (
	SkipNone             SkipReason = ""
	SkipUnsafePath       SkipReason = "unsafe-path"
	SkipNoMarker         SkipReason = "no-marker"
	SkipMarkerUnreadable SkipReason = "marker-unreadable"
	SkipNoPrompt         SkipReason = "no-prompt"
)

// warns reports whether a skip is worth a warning; a missing marker or
// prompt line is the normal case for ordinary directories.
func (r SkipReason) warns() bool {
	switch r {
	case SkipUnsafePath, SkipMarkerUnreadable:
		return true
	}
	return false
}

// outcome is the evaluation result of a single candidate
type outcome struct {
	candidate string
	env       *Environment
	reason    SkipReason
	err       error
}
