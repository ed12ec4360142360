// Package core orchestrates the per-request ingestion pipeline: receive the
// payload, stage it, invoke the thickness processor, and guarantee cleanup
// and audit entries on every path.
//
// This package has no HTTP dependencies and can be driven by any transport.
package core

import (
	"context"

	"github.com/ShirinGhmm/Thickness-files/internal/thickness"
)

// Operation identifies which processor method a request runs.
type Operation string

const (
	// OpTable returns the full parsed table.
	OpTable Operation = "table"

	// OpDatabaseValues returns database-ready aggregate values.
	OpDatabaseValues Operation = "databasevalues"

	// OpValidation returns a validity verdict.
	OpValidation Operation = "validation"
)

// PlaceholderNoArtifact is reported as the problematic file when a failure
// happened before any artifact was staged.
const PlaceholderNoArtifact = "Temporary file not created"

// ErrorRecord is the normalized failure payload. A request produces either
// an ErrorRecord or its operation's result, never both. ProblematicFile is
// the staged artifact path when staging succeeded before the failure,
// otherwise PlaceholderNoArtifact.
type ErrorRecord struct {
	Error           string `json:"error"`
	ProblematicFile string `json:"problematic_file"`
}

// AggregateSink receives aggregate values produced by the databasevalues
// operations. Implemented by store.AggregateStore; nil disables persistence.
type AggregateSink interface {
	SaveAggregates(ctx context.Context, format string, agg *thickness.AggregateValues) error
}
