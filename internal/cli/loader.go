package cli

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"

	"github.com/provtrace/provtrace/internal/provenance"
)

//go:embed schema.cue
var eventSchemaCUE string

// EventDocument is a batch of provenance events as authored in a YAML
// fixture file.
type EventDocument struct {
	Events []provenance.EventRecord `yaml:"events"`
}

// LoadEventDocument reads a YAML event fixture, validates it against the
// embedded CUE schema, and returns the canonicalized records.
//
// Validation happens on the raw document BEFORE decoding into Go types, so
// unknown fields, wrong types and out-of-vocabulary event types are
// rejected with file positions instead of being silently zeroed by the
// YAML decoder.
func LoadEventDocument(path string) (*EventDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read event document: %w", err)
	}

	if err := validateEventDocument(path, data); err != nil {
		return nil, err
	}

	var doc EventDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode event document: %w", err)
	}

	for i, rec := range doc.Events {
		doc.Events[i] = provenance.Canonicalize(rec)
		if err := doc.Events[i].Validate(); err != nil {
			return nil, fmt.Errorf("event document %s: events[%d]: %w", path, i, err)
		}
	}

	return &doc, nil
}

// validateEventDocument unifies the raw YAML with the #Document schema.
func validateEventDocument(path string, data []byte) error {
	ctx := cuecontext.New()

	schema := ctx.CompileString(eventSchemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile event schema: %w", err)
	}
	document := schema.LookupPath(cue.ParsePath("#Document"))
	if err := document.Err(); err != nil {
		return fmt.Errorf("lookup #Document: %w", err)
	}

	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return fmt.Errorf("parse event document %s: %w", path, err)
	}
	value := ctx.BuildFile(file)
	if err := value.Err(); err != nil {
		return fmt.Errorf("build event document %s: %w", path, err)
	}

	if err := document.Unify(value).Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid event document %s:\n%s", path, cueerrors.Details(err, nil))
	}
	return nil
}
