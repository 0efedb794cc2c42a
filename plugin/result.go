package plugin

import "sort"

// Result accumulates the outcome of validating one plugin. It is created
// by the orchestrator when an entry is accepted, mutated during
// validation, and immutable once the orchestrator returns it to the
// driver's aggregate.
type Result struct {
	Name            string
	Tier            Tier
	URL             string
	Errors          []string
	Warnings        []string
	NetworkDetected bool
	DetectedDomains map[string]bool
	Commands        map[string]bool
}

// NewResult creates a Result for the given entry.
func NewResult(name string, tier Tier, url string) *Result {
	return &Result{
		Name:            name,
		Tier:            tier,
		URL:             url,
		DetectedDomains: map[string]bool{},
		Commands:        map[string]bool{},
	}
}

func (r *Result) AddError(msg string)   { r.Errors = append(r.Errors, msg) }
func (r *Result) AddWarning(msg string) { r.Warnings = append(r.Warnings, msg) }

// Passed reports whether the plugin has no errors.
func (r *Result) Passed() bool { return len(r.Errors) == 0 }

// DomainList returns the detected domains in sorted order.
func (r *Result) DomainList() []string {
	out := make([]string, 0, len(r.DetectedDomains))
	for d := range r.DetectedDomains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// CommandList returns the collected command names in sorted order.
func (r *Result) CommandList() []string {
	out := make([]string, 0, len(r.Commands))
	for c := range r.Commands {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Record is the immutable, renderer-facing projection of a Result plus
// its originating Entry, produced once by the marketplace driver after
// aggregation. The catalog generator never re-derives it from raw scan
// state.
type Record struct {
	Name            string
	Tier            Tier
	Tags            []string
	URL             string
	Version         string
	Description     string
	Passed          bool
	ErrorCount      int
	WarningCount    int
	DetectedDomains []string
	Commands        []string
}

// NewRecord projects a Result and its Entry/Manifest into a Record.
func NewRecord(e Entry, m *Manifest, r *Result) Record {
	rec := Record{
		Name:            r.Name,
		Tier:            r.Tier,
		Tags:            e.Tags,
		URL:             r.URL,
		Passed:          r.Passed(),
		ErrorCount:      len(r.Errors),
		WarningCount:    len(r.Warnings),
		DetectedDomains: r.DomainList(),
		Commands:        r.CommandList(),
	}
	if m != nil {
		rec.Version = m.Version
		rec.Description = m.Description
	}
	return rec
}
