package compat

import (
	"fmt"
	"strings"
)

// Status is the terminal compatibility verdict of one dependency.
type Status int

const (
	// StatusNotFound means no source could classify the dependency.
	StatusNotFound Status = iota
	// StatusSupported means the dependency works with the New Architecture.
	StatusSupported
	// StatusNotSupported means the dependency is known not to work with it.
	StatusNotSupported
)

// Statuses lists every status in display order.
var Statuses = []Status{StatusSupported, StatusNotSupported, StatusNotFound}

func (s Status) String() string {
	switch s {
	case StatusSupported:
		return "supported"
	case StatusNotSupported:
		return "not-supported"
	case StatusNotFound:
		return "not-found"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// ParseStatus parses the text form produced by [Status.String].
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "supported":
		return StatusSupported, nil
	case "not-supported", "notsupported", "unsupported":
		return StatusNotSupported, nil
	case "not-found", "notfound", "unknown":
		return StatusNotFound, nil
	}
	return StatusNotFound, fmt.Errorf("unknown status %q", s)
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Source names the stage that produced a verdict.
type Source string

const (
	SourceDirectory Source = "directory"
	SourceManifest  Source = "source"
	SourceNone      Source = "none"
)

// Classification is the outcome of inspecting a dependency's own manifest.
type Classification int

const (
	// Unresolved means no candidate branch yielded a manifest.
	Unresolved Classification = iota
	// FullJS means no declared dependency carries a native marker.
	FullJS
	// NativeDeps means at least one declared dependency carries a native marker.
	NativeDeps
)

func (c Classification) String() string {
	switch c {
	case FullJS:
		return "full-js"
	case NativeDeps:
		return "native-deps"
	case Unresolved:
		return "unresolved"
	}
	return fmt.Sprintf("Classification(%d)", int(c))
}

// Status maps the classification to its verdict. Values outside the three
// classifications map to StatusNotFound.
func (c Classification) Status() Status {
	switch c {
	case FullJS:
		return StatusSupported
	case NativeDeps:
		return StatusNotSupported
	case Unresolved:
		return StatusNotFound
	}
	return StatusNotFound
}
