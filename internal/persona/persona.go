// Package persona holds the white-label company profile. Rebranding the
// chatbot for a new client means editing one JSON file, not the code.
package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

type Profile struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Language    string            `json:"language"`
	Tone        string            `json:"tone"`
	Contacts    []string          `json:"contacts"`
	Facts       map[string]string `json:"facts"`
}

func LoadFromFile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile file: %w", err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}
	if p.Name == "" {
		return nil, fmt.Errorf("profile %s: name is required", path)
	}
	return &p, nil
}

// FormatForPrompt renders the profile as the bullet block injected into
// the system prompt.
func (p *Profile) FormatForPrompt() string {
	var b strings.Builder

	fmt.Fprintf(&b, "- Company: %s\n", p.Name)
	if p.Description != "" {
		fmt.Fprintf(&b, "- About: %s\n", p.Description)
	}
	if p.Language != "" {
		fmt.Fprintf(&b, "- Primary language: %s\n", p.Language)
	}
	if p.Tone != "" {
		fmt.Fprintf(&b, "- Tone: %s\n", p.Tone)
	}
	if len(p.Contacts) > 0 {
		fmt.Fprintf(&b, "- Contacts (include when relevant): %s\n", strings.Join(p.Contacts, ", "))
	}
	keys := make([]string, 0, len(p.Facts))
	for k := range p.Facts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %s\n", k, p.Facts[k])
	}
	return b.String()
}
