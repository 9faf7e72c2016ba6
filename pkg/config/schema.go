package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/workforcedata/occsearch/pkg/document"
	"github.com/workforcedata/occsearch/pkg/search"
)

// SchemaFile is the YAML document that overrides the built-in taxonomy
// schemas, document rules and score threshold. Omitted sections keep their
// defaults.
//
//	min_score: 0.5
//	schemas:
//	  - kind: soc
//	    title_suffix: SOC Title
//	    code_suffix: SOC Code
//	rules:
//	  subsets:
//	    - file: wda_hpo_lists.json
//	  strip:
//	    - file: pa_idol.json
//	      array: pages
//	      field: text
type SchemaFile struct {
	MinScore *float64        `yaml:"min_score"`
	Schemas  []search.Schema `yaml:"schemas"`
	Rules    *document.Rules `yaml:"rules"`
}

// LoadSchemaFile reads and strictly decodes the schema file at path
func LoadSchemaFile(path string) (*SchemaFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	return parseSchemaFile(data)
}

func parseSchemaFile(data []byte) (*SchemaFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file SchemaFile
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse schema file: %w", err)
	}
	return &file, nil
}

func (f *SchemaFile) applyTo(cfg *SearchConfig) {
	if f.MinScore != nil {
		cfg.MinScore = *f.MinScore
	}
	if len(f.Schemas) > 0 {
		cfg.Schemas = f.Schemas
	}
	if f.Rules != nil {
		cfg.Rules = *f.Rules
	}
}
