package narrative

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed story.schema.json
var storySchema string

type storyFile struct {
	Title string `yaml:"title"`
	Steps []Step `yaml:"steps"`
}

// Load reads a YAML (or JSON) story file.
func Load(path string) (Story, error) {
	if strings.TrimSpace(path) == "" {
		return Story{}, fmt.Errorf("%w: story path is empty", ErrInvalidStory)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return Story{}, fmt.Errorf("read story failed: %w", err)
	}
	return Parse(raw)
}

// Parse validates raw against the story schema, then decodes it strictly.
func Parse(raw []byte) (Story, error) {
	if err := validateStory(raw); err != nil {
		return Story{}, err
	}
	var file storyFile
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return Story{}, fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	return NewStory(file.Title, file.Steps)
}

func validateStory(raw []byte) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	// Round-trip through encoding/json so the validator sees JSON types.
	buf, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	var inst any
	if err := json.Unmarshal(buf, &inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	schema, err := compileSchema()
	if err != nil {
		return err
	}
	if err := schema.Validate(inst); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}
	return nil
}

func compileSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("story.schema.json", strings.NewReader(storySchema)); err != nil {
		return nil, err
	}
	return compiler.Compile("story.schema.json")
}
