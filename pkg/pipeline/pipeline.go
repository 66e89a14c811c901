// Package pipeline runs the load → build → export flow shared by the CLI and
// the HTTP server.
//
// # Stages
//
//  1. Load: decode a JSON skeleton record ([skelio.ReadJSON])
//  2. Build: split it into components and root one skeleton per component
//  3. Export: render SWC, DOT and SVG artifacts per component plus a JSON
//     summary of the whole forest
//
// Each stage can be run on its own through the [Runner] methods, or all at
// once with [Runner.Execute]:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Input:   data,
//	    Formats: []string{"swc", "json"},
//	})
//	for _, a := range result.Artifacts {
//	    os.WriteFile(a.Name, a.Data, 0o644)
//	}
//
// Execute caches the complete artifact bundle under a key derived from the
// input bytes and every option that changes the output.
//
// [skelio.ReadJSON]: github.com/matzehuels/meshskel/pkg/io.ReadJSON
package pipeline

import (
	"io"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/meshskel/pkg/cache"
	"github.com/matzehuels/meshskel/pkg/errors"
	"github.com/matzehuels/meshskel/pkg/forest"
	skelio "github.com/matzehuels/meshskel/pkg/io"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale converts nanometre coordinates to micrometres in SWC output.
	DefaultScale = skelio.DefaultScale

	// DefaultTTL is how long a cached artifact bundle stays valid.
	DefaultTTL = 7 * 24 * time.Hour
)

// Format constants for output formats.
const (
	FormatSWC  = "swc"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// DefaultFormats is used when Options.Formats is empty.
var DefaultFormats = []string{FormatSWC}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
type Options struct {
	// Load options
	Source            string `json:"source,omitempty"` // display name for logs
	Input             []byte `json:"-"`
	UseSmoothVertices bool   `json:"smooth,omitempty"`
	// Root overrides the record's root, in original vertex numbering.
	Root *int `json:"root,omitempty"`

	// Export options
	Formats []string          `json:"formats,omitempty"`
	Scale   float64           `json:"scale,omitempty"`
	Header  map[string]string `json:"header,omitempty"`
	Reduced bool              `json:"reduced,omitempty"` // dot and svg only

	// Radius and Label fill the SWC radius and type columns for skeletons
	// without "radius" or "label" vertex properties. Zero Radius means
	// skelio.DefaultRadius and nil Label means skelio.LabelDendrite.
	Radius float64 `json:"radius,omitempty"`
	Label  *int    `json:"label,omitempty"`

	// Cache options
	Refresh bool          `json:"refresh,omitempty"`
	TTL     time.Duration `json:"-"`

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger `json:"-"`

	validated bool
}

// Artifact is one exported file.
type Artifact struct {
	Name      string `json:"name"`
	Format    string `json:"format"`
	Component int    `json:"component"` // -1 for forest-wide artifacts
	Data      []byte `json:"data"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Forest is nil when the whole bundle came from the cache.
	Forest    *forest.Forest
	Summary   skelio.Summary
	Artifacts []Artifact
	Stats     Stats
	CacheHit  bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Vertices   int
	Edges      int
	Components int
	LoadTime   time.Duration
	BuildTime  time.Duration
	ExportTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Input) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "input is empty")
	}
	if o.Root != nil && *o.Root < 0 {
		return errors.New(errors.ErrCodeInvalidRoot, "root %d is negative", *o.Root)
	}
	if err := o.exportDefaults(); err != nil {
		return err
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Source == "" {
		o.Source = "input"
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// exportDefaults covers the options the export stage reads, so that an
// already built forest can be exported without the input bytes.
func (o *Options) exportDefaults() error {
	if len(o.Formats) == 0 {
		o.Formats = slices.Clone(DefaultFormats)
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.Formats = slices.Compact(slices.Sorted(slices.Values(o.Formats)))

	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if err := errors.ValidateScaling(o.Scale); err != nil {
		return err
	}
	for k := range o.Header {
		if err := errors.ValidateHeaderKey(k); err != nil {
			return err
		}
	}
	if o.Radius < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "radius must not be negative, got %v", o.Radius)
	}
	if o.Label != nil && *o.Label < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "label must not be negative, got %d", *o.Label)
	}
	return nil
}

// Wants reports whether format was requested.
func (o *Options) Wants(format string) bool {
	return slices.Contains(o.Formats, format)
}

// ForestKeyOpts returns cache key options for the load and build stages.
func (o *Options) ForestKeyOpts() cache.ForestKeyOpts {
	return cache.ForestKeyOpts{UseSmoothVertices: o.UseSmoothVertices, Root: o.Root}
}

// ArtifactKeyOpts returns cache key options for the artifact bundle.
func (o *Options) ArtifactKeyOpts() cache.ArtifactKeyOpts {
	formats := slices.Clone(o.Formats)
	slices.Sort(formats)
	return cache.ArtifactKeyOpts{
		Format:    strings.Join(formats, ","),
		Component: -1,
		Scale:     o.Scale,
		Header:    maps.Clone(o.Header),
		Radius:    o.Radius,
		Label:     o.Label,
		Reduced:   o.Reduced,
	}
}
