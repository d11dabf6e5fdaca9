package recipe

// Source records how confident we are in a generated suggestion
type Source string

const (
	// SourceParsed means the model returned JSON that matched the schema
	SourceParsed Source = "parsed"
	// SourceHeuristic means free text was split into steps
	SourceHeuristic Source = "heuristic"
	// SourceFallback means static data was returned
	SourceFallback Source = "fallback"
)

// Generation is the outcome of one generation attempt
type Generation struct {
	Source     Source
	Suggestion Suggestion
	// Raw is the model output, empty for fallbacks that never reached the model
	Raw string
	// Cause is the error that forced a heuristic or fallback result
	Cause error
}

// Degraded reports whether the suggestion did not come from parsed model output
func (g Generation) Degraded() bool {
	return g.Source != SourceParsed
}
