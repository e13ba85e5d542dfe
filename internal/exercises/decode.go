// Package exercises loads exercise definitions from embedded built-ins, a
// directory on disk, or a remote exercise server.
//
// Documents wrap the exercise in a top-level "exercise" key, in JSON or YAML:
//
//	{"exercise": {"id": "linux-basics", "title": "...", "steps": [...]}}
package exercises

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/darwinyusef/termsim/pkg/termsim"
	"gopkg.in/yaml.v3"
)

// ErrTopicRequired is returned by Find when the query has no topic.
var ErrTopicRequired = errors.New("topic parameter is required")

// Document is the on-disk and on-the-wire envelope of an exercise.
type Document struct {
	Exercise *termsim.Exercise `json:"exercise" yaml:"exercise"`
}

// IsDocument reports whether name has an extension Decode understands.
func IsDocument(name string) bool {
	switch strings.ToLower(path.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// Decode parses an exercise document. The format is chosen by name's
// extension; anything other than .yaml or .yml is read as JSON.
func Decode(name string, data []byte) (*termsim.Exercise, error) {
	var doc Document
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", termsim.ErrInvalidExercise, name, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", termsim.ErrInvalidExercise, name, err)
		}
	}

	if doc.Exercise == nil {
		return nil, fmt.Errorf("%w: %s: missing \"exercise\" key", termsim.ErrInvalidExercise, name)
	}
	if st := doc.Exercise.InitialState; st != nil && st.Filesystem != nil {
		fillNames(st.Filesystem)
	}
	return doc.Exercise, nil
}

// fillNames names every child after its key when the document left the
// name out.
func fillNames(n *termsim.Node) {
	for key, child := range n.Children {
		if child == nil {
			delete(n.Children, key)
			continue
		}
		if child.Name == "" {
			child.Name = key
		}
		fillNames(child)
	}
}

func summarize(ex *termsim.Exercise, filename string) termsim.ExerciseSummary {
	return termsim.ExerciseSummary{
		ID:         ex.ID,
		Title:      ex.Title,
		Category:   ex.Category,
		Difficulty: ex.Difficulty,
		Filename:   filename,
	}
}

// levelNames maps the numeric levels used in topic queries to difficulties.
var levelNames = map[int]string{
	1: "beginner",
	2: "intermediate",
	3: "advanced",
}

// Matches reports whether ex satisfies q: the category equals the topic or
// the id contains it, case-insensitively, and when a level is given and the
// exercise declares a difficulty, the two agree.
func Matches(ex *termsim.Exercise, q termsim.ExerciseQuery) bool {
	topic := strings.ToLower(q.Topic)
	if strings.ToLower(ex.Category) != topic && !strings.Contains(strings.ToLower(ex.ID), topic) {
		return false
	}
	if q.Level != 0 && ex.Difficulty != "" {
		return strings.EqualFold(levelNames[q.Level], ex.Difficulty)
	}
	return true
}
