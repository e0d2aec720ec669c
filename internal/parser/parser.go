package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ChickenPige0n/prpr/internal/game"
)

// Parser translates one serialized chart format into the unified model.
// Parse is all-or-nothing: on error no partial chart is returned.
type Parser interface {
	Parse(data []byte) (*game.Chart, error)
}

// Format tags the serialized chart formats the loader can declare.
type Format string

const (
	FormatRpe Format = "rpe"
	FormatPgr Format = "pgr"
	FormatPec Format = "pec"
)

// New returns the adapter for a declared format tag.
func New(format Format) (Parser, error) {
	switch format {
	case FormatRpe:
		return &RpeParser{}, nil
	case FormatPgr:
		return &PgrParser{}, nil
	case FormatPec:
		return &PecParser{}, nil
	}
	return nil, fmt.Errorf("unknown chart format %q", format)
}

// Detect guesses the format from the file name and content, for hosts
// that do not carry an explicit tag. JSON documents with an RPE META
// block are rpe, other JSON is pgr, anything else is pec.
func Detect(name string, data []byte) Format {
	if strings.HasSuffix(name, ".pec") {
		return FormatPec
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if bytes.Contains(trimmed, []byte(`"META"`)) {
			return FormatRpe
		}
		return FormatPgr
	}
	return FormatPec
}

// ErrorKind classifies chart load failures.
type ErrorKind uint8

const (
	MalformedStructure ErrorKind = iota
	UnsupportedFeature
	OutOfRangeValue
)

func (k ErrorKind) String() string {
	switch k {
	case MalformedStructure:
		return "malformed structure"
	case UnsupportedFeature:
		return "unsupported feature"
	case OutOfRangeValue:
		return "out of range value"
	}
	return "unknown"
}

// ParseError is the only error kind a format adapter surfaces.
type ParseError struct {
	Format Format
	Kind   ErrorKind
	Detail string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s chart: %s: %s", e.Format, e.Kind, e.Detail)
}

func malformed(f Format, format string, args ...interface{}) error {
	return &ParseError{Format: f, Kind: MalformedStructure, Detail: fmt.Sprintf(format, args...)}
}

func unsupported(f Format, format string, args ...interface{}) error {
	return &ParseError{Format: f, Kind: UnsupportedFeature, Detail: fmt.Sprintf(format, args...)}
}

func outOfRange(f Format, format string, args ...interface{}) error {
	return &ParseError{Format: f, Kind: OutOfRangeValue, Detail: fmt.Sprintf(format, args...)}
}

// validate runs the model invariants and folds a violation into a
// parse-time failure so it never reaches the simulator.
func validate(f Format, chart *game.Chart) (*game.Chart, error) {
	if err := chart.Validate(); nil != err {
		return nil, malformed(f, "invariant violation: %v", err)
	}
	return chart, nil
}
