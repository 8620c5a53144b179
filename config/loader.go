// Package config loads and validates a host machine profile from CUE,
// producing the host.Profile an interpreter run is seeded from.
//
// Grounded on roach88-nysm/brutalist/internal/cli/loader.go's
// compile-schema / build-value / validate / decode shape, generalised from
// loading a directory of user-authored concept/sync specs into unifying one
// embedded schema (with its defaults) against an optional user override.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/dfinlay/gcodelib/host"
)

//go:embed schema.cue
var schemaSource string

// LoadError mirrors the teacher's LoadError: a position-free diagnostic for
// a CUE build or validation failure.
type LoadError struct {
	Message string
}

func (e *LoadError) Error() string { return e.Message }

// Default returns the profile produced by the schema's own defaults, with
// no override applied.
func Default() (host.Profile, error) {
	return LoadOverride("")
}

// LoadFile reads a CUE override document from path and unifies it with the
// schema before decoding.
func LoadFile(path string) (host.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return host.Profile{}, &LoadError{Message: fmt.Sprintf("reading profile %s: %v", path, err)}
	}
	return LoadOverride(string(data))
}

// LoadOverride unifies an optional CUE override document (already-read
// source, not a path) with the embedded schema and decodes the result into
// a host.Profile. An empty override yields the schema's own defaults.
func LoadOverride(override string) (host.Profile, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource)
	if err := schema.Err(); err != nil {
		return host.Profile{}, &LoadError{Message: fmt.Sprintf("compiling profile schema: %v", err)}
	}

	value := schema
	if override != "" {
		ov := ctx.CompileString(override)
		if err := ov.Err(); err != nil {
			return host.Profile{}, &LoadError{Message: fmt.Sprintf("compiling profile override: %v", err)}
		}
		value = schema.Unify(ov)
	}

	if err := value.Validate(cue.Concrete(true)); err != nil {
		return host.Profile{}, &LoadError{Message: fmt.Sprintf("validating profile: %v", err)}
	}

	var decoded struct {
		Home struct{ X, Y, Z float64 } `json:"home"`
		Second struct{ X, Y, Z float64 } `json:"second"`
		Work struct{ X, Y, Z float64 } `json:"work"`
		WorkActive bool    `json:"workActive"`
		CoordSys   int     `json:"coordSys"`
		Units      string  `json:"units"`
		SpindleRPM float64 `json:"spindleRPM"`
	}
	if err := value.Decode(&decoded); err != nil {
		return host.Profile{}, &LoadError{Message: fmt.Sprintf("decoding profile: %v", err)}
	}

	return host.Profile{
		Home:       host.Position{X: decoded.Home.X, Y: decoded.Home.Y, Z: decoded.Home.Z},
		Second:     host.Position{X: decoded.Second.X, Y: decoded.Second.Y, Z: decoded.Second.Z},
		Work:       host.Position{X: decoded.Work.X, Y: decoded.Work.Y, Z: decoded.Work.Z},
		WorkActive: decoded.WorkActive,
		CoordSys:   decoded.CoordSys,
		Units:      decoded.Units,
		SpindleRPM: decoded.SpindleRPM,
	}, nil
}
