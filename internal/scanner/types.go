package scanner

// MatchedItem is a junk folder found during one scan
type MatchedItem struct {
	Path    string // absolute, under the resolved scan root
	RelPath string // slash-separated, relative to the scan root
	Type    string // the matched folder name, e.g. node_modules
	Size    int64
}

// SkipReason says why the walker did not look inside a directory
type SkipReason int

const (
	SkipExcluded SkipReason = iota
	SkipProtected
	SkipIgnoreMarker
	SkipInaccessible
)

// String returns the reason name used in logs
func (r SkipReason) String() string {
	switch r {
	case SkipExcluded:
		return "excluded"
	case SkipProtected:
		return "protected"
	case SkipIgnoreMarker:
		return "ignore-marker"
	case SkipInaccessible:
		return "inaccessible"
	default:
		return "unknown"
	}
}

// SkipEvent records one pruned subtree
type SkipEvent struct {
	Path   string
	Reason SkipReason
	Err    error // set for SkipInaccessible
}

// ScanResult represents the result of a scan operation
type ScanResult struct {
	Root        string
	Items       []MatchedItem
	TotalSize   int64
	DirsVisited int
	Skipped     []SkipEvent

	IndexPath   string // empty when the index is disabled
	IndexHits   int
	IndexMisses int
	IndexError  error // load or save problem, never fatal
}

// Paths returns the absolute paths of all matched items
func (r *ScanResult) Paths() []string {
	paths := make([]string, 0, len(r.Items))
	for _, item := range r.Items {
		paths = append(paths, item.Path)
	}
	return paths
}

// SkippedFor returns the skip events with the given reason
func (r *ScanResult) SkippedFor(reason SkipReason) []SkipEvent {
	var events []SkipEvent
	for _, ev := range r.Skipped {
		if ev.Reason == reason {
			events = append(events, ev)
		}
	}
	return events
}
