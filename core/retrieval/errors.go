package retrieval

import "fmt"

// Track names used in degraded-search errors
const (
	TrackVector   = "vector"
	TrackKeyword  = "keyword"
	TrackSemantic = "semantic"
)

// TrackError reports the failure of a single search track. Keyword and
// semantic track errors are logged and skipped; a vector track error routes
// the query to the plain vector fallback.
type TrackError struct {
	Track string
	Err   error
}

func (e *TrackError) Error() string {
	return fmt.Sprintf("%s track failed: %v", e.Track, e.Err)
}

func (e *TrackError) Unwrap() error {
	return e.Err
}
