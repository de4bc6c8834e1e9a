// Package xlpkg reads, edits and writes spreadsheet packages (.xlsx).
package xlpkg

import (
	"github.com/creasty/defaults"
	"go.uber.org/zap"
)

// LoadMode selects when worksheet bodies are parsed.
type LoadMode string

const (
	// ModeEager parses every sheet while reading.
	ModeEager LoadMode = "eager"
	// ModeLazy parses a sheet on first access.
	ModeLazy LoadMode = "lazy"
)

// Options configures reading and writing.
type Options struct {
	// Mode specifies when sheets are materialized (eager, lazy).
	Mode LoadMode `default:"eager" yaml:"mode"`
	// Parallelism bounds the number of sheets materialized at once.
	Parallelism int `default:"4" yaml:"parallelism"`
	// Logger receives debug events. Nil disables logging.
	Logger *zap.Logger `yaml:"-"`
}

// DefaultOptions returns default options.
func DefaultOptions() Options {
	var o Options
	_ = defaults.Set(&o)
	o.Logger = zap.NewNop()
	return o
}

func (o Options) withDefaults() Options {
	_ = defaults.Set(&o)
	if o.Parallelism < 1 {
		o.Parallelism = 1
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ExtractMode represents the extraction mode.
type ExtractMode string

const (
	// ExtractLight extracts cells and table candidates only (no shapes or charts).
	ExtractLight ExtractMode = "light"
	// ExtractStandard extracts cells, shapes with text or connectors, charts, and table candidates.
	ExtractStandard ExtractMode = "standard"
	// ExtractVerbose extracts all data including every shape and cell hyperlinks.
	ExtractVerbose ExtractMode = "verbose"
)

// ExtractOptions configures extraction behavior.
type ExtractOptions struct {
	// Mode specifies the extraction mode (light, standard, verbose).
	Mode ExtractMode `default:"standard" yaml:"mode"`
	// IncludeLinks specifies whether to include cell hyperlinks.
	// If nil, defaults to true for verbose mode, false otherwise.
	IncludeLinks *bool `yaml:"include_links"`
	// IncludePrintAreas specifies whether to include print areas.
	// If nil, defaults to false for light mode, true otherwise.
	IncludePrintAreas *bool `yaml:"include_print_areas"`
}

// DefaultExtractOptions returns default extraction options.
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Mode: ExtractStandard,
	}
}

// ShouldIncludeLinks returns whether to include cell hyperlinks.
func (o ExtractOptions) ShouldIncludeLinks() bool {
	if o.IncludeLinks != nil {
		return *o.IncludeLinks
	}
	return o.Mode == ExtractVerbose
}

// ShouldIncludePrintAreas returns whether to include print areas.
func (o ExtractOptions) ShouldIncludePrintAreas() bool {
	if o.IncludePrintAreas != nil {
		return *o.IncludePrintAreas
	}
	return o.Mode != ExtractLight
}
