// Package samples provides the seed reading corpus and a user-editable
// override list.
package samples

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/flowread/internal/model"
	"github.com/verte-zerg/flowread/internal/textproc"
)

// MaxSamples bounds the user list.
const MaxSamples = 20

//go:embed samples.yaml
var defaultYAML []byte

// Defaults returns the built-in passages.
func Defaults() ([]model.SampleText, error) {
	return decode(defaultYAML)
}

func decode(data []byte) ([]model.SampleText, error) {
	var list []model.SampleText
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse sample texts: %w", err)
	}
	for i := range list {
		fill(&list[i])
	}
	return list, nil
}

func fill(s *model.SampleText) {
	s.Title = strings.TrimSpace(s.Title)
	s.Content = strings.TrimSpace(s.Content)
	if s.WordCount == 0 {
		s.WordCount = textproc.CountWords(s.Content)
	}
	if s.Difficulty == 0 {
		s.Difficulty = textproc.Difficulty(s.Content)
	}
}

// Library reads and writes the user's sample list at path. Until the file
// exists the defaults are used.
type Library struct {
	path string
}

// NewLibrary returns a library backed by path.
func NewLibrary(path string) *Library {
	return &Library{path: path}
}

// Path returns the override file location.
func (l *Library) Path() string { return l.path }

// List returns the user list, or the defaults when none was saved.
func (l *Library) List() ([]model.SampleText, error) {
	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		return Defaults()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sample texts: %w", err)
	}
	return decode(data)
}

// Save replaces the user list.
func (l *Library) Save(list []model.SampleText) error {
	if len(list) > MaxSamples {
		return fmt.Errorf("at most %d sample texts can be stored", MaxSamples)
	}
	data, err := yaml.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode sample texts: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("failed to create samples dir: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sample texts: %w", err)
	}
	return nil
}

// Add appends a passage to the list.
func (l *Library) Add(title, content string) (model.SampleText, error) {
	s := model.SampleText{Title: title, Content: content}
	fill(&s)
	if s.Title == "" || s.Content == "" {
		return model.SampleText{}, errors.New("sample text needs a title and content")
	}
	list, err := l.List()
	if err != nil {
		return model.SampleText{}, err
	}
	if err := l.Save(append(list, s)); err != nil {
		return model.SampleText{}, err
	}
	return s, nil
}

// Delete removes the passage at index. It reports false for an index out
// of range.
func (l *Library) Delete(index int) (bool, error) {
	list, err := l.List()
	if err != nil {
		return false, err
	}
	if index < 0 || index >= len(list) {
		return false, nil
	}
	list = append(list[:index], list[index+1:]...)
	if err := l.Save(list); err != nil {
		return false, err
	}
	return true, nil
}
