package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/dgallion1/mdbook-header-footer/internal/padding"
)

// PreprocessorName is the key of this preprocessor's table under
// [preprocessor] in book.toml.
const PreprocessorName = "header-footer"

var (
	// ErrInvalidRules is matched by every malformed rules document.
	ErrInvalidRules = errors.New("invalid rules")
	// ErrUnsupportedRulesFile is returned for rule files with an unknown extension.
	ErrUnsupportedRulesFile = errors.New("unsupported rules file")
)

// RuleDoc is one header or footer rule as written by the user.
type RuleDoc struct {
	Regex   *string `json:"regex,omitempty" yaml:"regex,omitempty" toml:"regex,omitempty"`
	Padding *string `json:"padding" yaml:"padding" toml:"padding" validate:"required"`
}

// RulesDoc is the header-footer configuration table.
type RulesDoc struct {
	Headers []RuleDoc `json:"headers" yaml:"headers" toml:"headers" validate:"dive"`
	Footers []RuleDoc `json:"footers" yaml:"footers" toml:"footers" validate:"dive"`
}

// bookTOML is the subset of book.toml holding the rules.
type bookTOML struct {
	Preprocessor map[string]toml.Primitive `toml:"preprocessor"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Raw validates the document and converts it to a padding.RawConfig,
// filling omitted patterns with padding.DefaultPattern.
func (d RulesDoc) Raw() (padding.RawConfig, error) {
	if err := validate.Struct(d); err != nil {
		return padding.RawConfig{}, describeValidation(err)
	}
	return padding.RawConfig{
		Headers: toRaw(d.Headers),
		Footers: toRaw(d.Footers),
	}, nil
}

func toRaw(docs []RuleDoc) []padding.RawMatcher {
	out := make([]padding.RawMatcher, 0, len(docs))
	for _, d := range docs {
		pattern := padding.DefaultPattern
		if d.Regex != nil {
			pattern = *d.Regex
		}
		out = append(out, padding.RawMatcher{Pattern: pattern, Padding: *d.Padding})
	}
	return out
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %w", ErrInvalidRules, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", ruleField(fe.Namespace()), fe.Tag()))
	}
	return fmt.Errorf("%w: %s", ErrInvalidRules, strings.Join(msgs, "; "))
}

// ruleField turns "RulesDoc.Headers[0].Padding" into "headers[0].padding".
func ruleField(ns string) string {
	ns = strings.TrimPrefix(ns, "RulesDoc.")
	return strings.ToLower(ns)
}

// ParseRulesJSON decodes a JSON rules table. Empty input or null yields an
// empty configuration.
func ParseRulesJSON(data []byte) (padding.RawConfig, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return padding.RawConfig{}, nil
	}
	var doc RulesDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return padding.RawConfig{}, fmt.Errorf("%w: decode json: %w", ErrInvalidRules, err)
	}
	return doc.Raw()
}

// ParseRulesYAML decodes a YAML rules document.
func ParseRulesYAML(data []byte) (padding.RawConfig, error) {
	var doc RulesDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return padding.RawConfig{}, fmt.Errorf("%w: decode yaml: %w", ErrInvalidRules, err)
	}
	return doc.Raw()
}

// ParseRulesTOML decodes either a full book.toml, taking the
// [preprocessor.header-footer] table, or a bare rules document.
func ParseRulesTOML(data []byte) (padding.RawConfig, error) {
	var book bookTOML
	md, err := toml.Decode(string(data), &book)
	if err != nil {
		return padding.RawConfig{}, fmt.Errorf("%w: decode toml: %w", ErrInvalidRules, err)
	}

	var doc RulesDoc
	if prim, ok := book.Preprocessor[PreprocessorName]; ok {
		if err := md.PrimitiveDecode(prim, &doc); err != nil {
			return padding.RawConfig{}, fmt.Errorf("%w: decode [preprocessor.%s]: %w", ErrInvalidRules, PreprocessorName, err)
		}
		return doc.Raw()
	}
	if book.Preprocessor != nil {
		// A book.toml without our table configures nothing.
		return padding.RawConfig{}, nil
	}

	if _, err := toml.Decode(string(data), &doc); err != nil {
		return padding.RawConfig{}, fmt.Errorf("%w: decode toml: %w", ErrInvalidRules, err)
	}
	return doc.Raw()
}

// LoadRulesFile reads a rules file, choosing the decoder by extension.
func LoadRulesFile(path string) (padding.RawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return padding.RawConfig{}, fmt.Errorf("read rules file: %w", err)
	}

	var raw padding.RawConfig
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		raw, err = ParseRulesYAML(data)
	case ".toml":
		raw, err = ParseRulesTOML(data)
	case ".json":
		raw, err = ParseRulesJSON(data)
	default:
		return padding.RawConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedRulesFile, path)
	}
	if err != nil {
		return padding.RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return raw, nil
}
