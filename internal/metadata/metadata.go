// Package metadata extracts the labeled Title/Subtitle/Description lines that
// authors put in unit doc blocks and folder text files.
package metadata

import (
	"fmt"
	"os"
	"strings"
)

// Field labels, in the order they are searched.
const (
	LabelTitle       = "Title:"
	LabelSubtitle    = "Subtitle:"
	LabelDescription = "Description:"
)

// Labels is the ordered set of recognised field labels.
var Labels = []string{LabelTitle, LabelSubtitle, LabelDescription}

// Block holds the optional metadata fields. A nil field was not present.
type Block struct {
	Title       *string `json:"title,omitempty"`
	Subtitle    *string `json:"subtitle,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Empty reports whether no field was found.
func (b Block) Empty() bool {
	return b.Title == nil && b.Subtitle == nil && b.Description == nil
}

// Extract searches text for each label independently. The value of a label is
// the trimmed text after its first occurrence up to the next line break, or to
// the end of text when no line break follows.
func Extract(text string) Block {
	fields := make(map[string]*string, len(Labels))
	for _, label := range Labels {
		fields[label] = extractField(text, label)
	}
	return Block{
		Title:       fields[LabelTitle],
		Subtitle:    fields[LabelSubtitle],
		Description: fields[LabelDescription],
	}
}

// ExtractFile reads a folder metadata text file and extracts its fields.
func ExtractFile(path string) (Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Block{}, fmt.Errorf("metadata: read %s: %w", path, err)
	}
	return Extract(string(data)), nil
}

func extractField(text, label string) *string {
	start := strings.Index(text, label)
	if start < 0 {
		return nil
	}
	rest := text[start+len(label):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	value := strings.TrimSpace(rest)
	return &value
}

// Value dereferences an optional field, returning "" when absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
