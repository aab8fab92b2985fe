package plan

import (
	"fmt"
	"strconv"
	"strings"
)

// Naming describes the filename scheme shared by the remote sequence and the
// local output: prefix, zero-padded numeric ID of fixed width, extension.
type Naming struct {
	Prefix string
	Width  int
	Ext    string
}

// DefaultNaming returns the scheme used by the DOJ document sets.
func DefaultNaming() Naming {
	return Naming{Prefix: "EFTA", Width: 8, Ext: ".pdf"}
}

// Filename renders the filename for an ID, e.g. EFTA00000001.pdf.
func (n Naming) Filename(id int) string {
	return fmt.Sprintf("%s%0*d%s", n.Prefix, n.Width, id, n.Ext)
}

// ParseID extracts the numeric ID from a filename produced by this scheme.
// Anything that does not match exactly (wrong prefix, extension, width, or
// non-digit characters) returns false.
func (n Naming) ParseID(name string) (int, bool) {
	if !strings.HasPrefix(name, n.Prefix) || !strings.HasSuffix(name, n.Ext) {
		return 0, false
	}
	digits := name[len(n.Prefix) : len(name)-len(n.Ext)]
	if len(digits) != n.Width {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	id, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Job is one document to fetch. Created once by the planner, consumed by
// exactly one worker.
type Job struct {
	ID       int
	Filename string
	URL      string
}

// Outstanding returns one job per ID in [start, end] that is not already
// present, in ascending ID order. It is a pure function of its inputs.
func Outstanding(start, end int, existing map[int]bool, naming Naming, baseURL, dataset string) []Job {
	var jobs []Job
	for id := start; id <= end; id++ {
		if existing[id] {
			continue
		}
		name := naming.Filename(id)
		jobs = append(jobs, Job{
			ID:       id,
			Filename: name,
			URL:      baseURL + dataset + name,
		})
	}
	return jobs
}
