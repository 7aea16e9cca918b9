// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package converter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/MKhiriev/go-lst-sync/models"
)

const frontMatterFence = "---"

var (
	checkboxItemRe = regexp.MustCompile(`^\s*[-*] \[([ xX])\](?: (.*?))?(?:  \^([A-Za-z0-9-]{4,}))?\s*$`)
	plainItemRe    = regexp.MustCompile(`^\s*[-*] (.*?)(?:  \^([A-Za-z0-9-]{4,}))?\s*$`)
	categoryRe     = regexp.MustCompile(`^##\s+(.+?)\s*$`)
)

// Item is one parsed list entry.
type Item struct {
	Anchor   string
	Text     string
	Done     bool
	Category string
}

// ListFile is the parsed form of a list document.
type ListFile struct {
	FrontMatter string
	Items       []Item
}

// FrontMatter holds the front matter keys the sync engine reads. Other keys
// are preserved verbatim but not interpreted.
type FrontMatter struct {
	ID    string `yaml:"id"`
	Title string `yaml:"title"`
}

// ParseList parses list markdown. Blank lines are ignored; any line that is
// neither an item nor a "## category" header fails with [models.ErrConversion].
func ParseList(content string) (ListFile, error) {
	fm, body, err := splitFrontMatter(content)
	if err != nil {
		return ListFile{}, err
	}

	list := ListFile{FrontMatter: fm}
	category := ""
	for n, line := range strings.Split(body, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := categoryRe.FindStringSubmatch(line); m != nil {
			category = m[1]
			continue
		}
		if m := checkboxItemRe.FindStringSubmatch(line); m != nil {
			list.Items = append(list.Items, Item{
				Done:     m[1] != " ",
				Text:     m[2],
				Anchor:   m[3],
				Category: category,
			})
			continue
		}
		if m := plainItemRe.FindStringSubmatch(line); m != nil {
			list.Items = append(list.Items, Item{Text: m[1], Anchor: m[2], Category: category})
			continue
		}
		return ListFile{}, fmt.Errorf("%w: line %d is not a list item: %q", models.ErrConversion, n+1, line)
	}

	return list, nil
}

// RenderList writes items without a category first, then every category in
// order of first appearance.
func RenderList(list ListFile) string {
	var b strings.Builder
	writeFrontMatter(&b, list.FrontMatter)

	var order []string
	grouped := make(map[string][]Item)
	for _, item := range list.Items {
		if _, seen := grouped[item.Category]; !seen && item.Category != "" {
			order = append(order, item.Category)
		}
		grouped[item.Category] = append(grouped[item.Category], item)
	}

	for _, item := range grouped[""] {
		writeItem(&b, item)
	}
	for i, category := range order {
		if i > 0 || len(grouped[""]) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("## " + category + "\n")
		for _, item := range grouped[category] {
			writeItem(&b, item)
		}
	}

	return b.String()
}

func writeItem(b *strings.Builder, item Item) {
	mark := " "
	if item.Done {
		mark = "x"
	}
	b.WriteString("- [" + mark + "] " + item.Text)
	if item.Anchor != "" {
		b.WriteString("  ^" + item.Anchor)
	}
	b.WriteString("\n")
}

// ParseNote splits a note into its front matter and body.
func ParseNote(content string) (frontMatter, body string, err error) {
	return splitFrontMatter(content)
}

// RenderNote joins front matter and body.
func RenderNote(frontMatter, body string) string {
	var b strings.Builder
	writeFrontMatter(&b, frontMatter)
	b.WriteString(body)
	return b.String()
}

// ParseFrontMatter decodes the keys of a front matter block.
func ParseFrontMatter(fm string) (FrontMatter, error) {
	var out FrontMatter
	if strings.TrimSpace(fm) == "" {
		return out, nil
	}
	if err := yaml.Unmarshal([]byte(fm), &out); err != nil {
		return FrontMatter{}, fmt.Errorf("%w: front matter: %w", models.ErrConversion, err)
	}
	return out, nil
}

// DocIDHint returns the document id declared in the file's front matter, if
// it is a valid uuid.
func DocIDHint(content string) string {
	fm, _, err := splitFrontMatter(content)
	if err != nil || fm == "" {
		return ""
	}
	parsed, err := ParseFrontMatter(fm)
	if err != nil {
		return ""
	}
	id, err := uuid.Parse(strings.TrimSpace(parsed.ID))
	if err != nil {
		return ""
	}
	return id.String()
}

func splitFrontMatter(content string) (string, string, error) {
	if !strings.HasPrefix(content, frontMatterFence+"\n") {
		return "", content, nil
	}

	lines := strings.Split(content, "\n")
	for i := 1; i < len(lines); i++ {
		if strings.TrimRight(lines[i], " \t\r") == frontMatterFence {
			fm := strings.Join(lines[1:i], "\n")
			if _, err := ParseFrontMatter(fm); err != nil {
				return "", "", err
			}
			return fm, strings.Join(lines[i+1:], "\n"), nil
		}
	}

	return "", "", fmt.Errorf("%w: front matter is not closed", models.ErrConversion)
}

func writeFrontMatter(b *strings.Builder, fm string) {
	if fm == "" {
		return
	}
	b.WriteString(frontMatterFence + "\n")
	b.WriteString(fm)
	b.WriteString("\n" + frontMatterFence + "\n")
}
