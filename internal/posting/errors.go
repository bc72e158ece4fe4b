package posting

import "fmt"

// MalformedRecordError reports a raw record that cannot be normalized into a
// Posting. The normalizer skips such records; one bad record never aborts the
// rest of the batch.
type MalformedRecordError struct {
	Source Source
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed %s record: %s", e.Source, e.Reason)
}
