package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"

	"github.com/abhisek/quizmaster/internal/quiz"
)

// FormatVersion is written into every JSON export. Imports accept any
// version with the same major number.
const FormatVersion = "1.0"

// Document is the JSON backup layout.
type Document struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Questions   []quiz.Question `json:"questions"`
	ExportedAt  time.Time       `json:"exportedAt"`
	Version     string          `json:"version"`
}

// ErrIncompatibleVersion is returned when a JSON document was written by
// an incompatible format version.
var ErrIncompatibleVersion = errors.New("incompatible export version")

// WriteJSON renders q as an indented Document.
func WriteJSON(w io.Writer, q *quiz.Quiz, now time.Time) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Document{
		Title:       q.Title,
		Description: q.Description,
		Questions:   q.Questions,
		ExportedAt:  now.UTC(),
		Version:     FormatVersion,
	})
}

const documentSchema = `{
  "type": "object",
  "required": ["title", "questions"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "description": {"type": "string"},
    "version": {"type": "string"},
    "questions": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["question", "type"],
        "properties": {
          "question": {"type": "string"},
          "type": {"enum": ["choice", "truefalse", "matching", "ordering"]},
          "options": {"type": "array", "items": {"type": "string"}},
          "correct": {"type": "array", "items": {"type": "integer"}}
        }
      }
    }
  }
}`

var (
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
	compileSchemaOnce sync.Once
)

func schema() (*jsonschema.Schema, error) {
	compileSchemaOnce.Do(func() {
		const url = "schema://quiz-export.json"
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(documentSchema))
		if err != nil {
			compiledSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(url)
	})
	return compiledSchema, compiledSchemaErr
}

// ReadJSON imports a JSON document. The document must match the export
// layout and carry a compatible version; a missing version is read as
// FormatVersion. The questions are not validated here.
func ReadJSON(r io.Reader) (*quiz.SaveRequest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read JSON: %w", err)
	}

	raw, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("invalid JSON file: %w", err)
	}
	sch, err := schema()
	if err != nil {
		return nil, fmt.Errorf("compile import schema: %w", err)
	}
	if err := sch.Validate(raw); err != nil {
		return nil, fmt.Errorf("invalid quiz format: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid quiz format: %w", err)
	}
	if err := CheckVersion(doc.Version); err != nil {
		return nil, err
	}

	return &quiz.SaveRequest{
		Title:       doc.Title,
		Description: doc.Description,
		Questions:   doc.Questions,
	}, nil
}

// CheckVersion reports whether a document version can be imported.
func CheckVersion(version string) error {
	if version == "" {
		version = FormatVersion
	}
	v := canonicalVersion(version)
	if !semver.IsValid(v) {
		return fmt.Errorf("%w: %q is not a version", ErrIncompatibleVersion, version)
	}
	if want := semver.Major(canonicalVersion(FormatVersion)); semver.Major(v) != want {
		return fmt.Errorf("%w: file is %s, this build reads %s.x", ErrIncompatibleVersion, version, strings.TrimPrefix(want, "v"))
	}
	return nil
}

func canonicalVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
