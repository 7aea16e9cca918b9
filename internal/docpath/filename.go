package docpath

import (
	"path"
	"strings"
	"unicode"

	"github.com/MKhiriev/go-lst-sync/models"
)

const maxSlugLength = 50

// FileNameFromContent builds a file name for a document that arrived from the
// relay without a known path. The first meaningful line is slugified; when it
// yields nothing the first eight characters of the doc id are used.
func FileNameFromContent(content, docID string) string {
	slug := ""
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "#")
		line = strings.TrimPrefix(strings.TrimSpace(line), "- [ ] ")
		line = strings.TrimPrefix(line, "- [x] ")
		line = strings.TrimPrefix(line, "- [X] ")
		line = strings.TrimPrefix(line, "- ")
		if idx := strings.LastIndex(line, "  ^"); idx > 0 {
			line = line[:idx]
		}
		if line == "" || line == "---" {
			continue
		}
		slug = slugify(line)
		if slug != "" {
			break
		}
	}

	if slug == "" {
		slug = shortID(docID)
	}

	return slug + ".md"
}

// PathForNewDocument returns the canonical path a document of kind should be
// written to when only its content is known.
func PathForNewDocument(kind models.DocType, content, docID string) string {
	dir := NotesDir
	if kind == models.DocTypeList {
		dir = ListsDir
	}
	return dir + "/" + FileNameFromContent(content, docID)
}

// UniquePath returns candidate if it is free, otherwise candidate with a
// "_<docid8>" suffix before the extension.
func UniquePath(candidate, docID string, taken func(string) bool) string {
	if !taken(candidate) {
		return candidate
	}

	ext := path.Ext(candidate)
	stem := strings.TrimSuffix(candidate, ext)
	return stem + "_" + shortID(docID) + ext
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		if b.Len() >= maxSlugLength {
			break
		}
	}

	out := []rune(strings.TrimRight(b.String(), "-"))
	if len(out) > maxSlugLength {
		out = out[:maxSlugLength]
	}
	return strings.TrimRight(string(out), "-")
}

func shortID(docID string) string {
	id := strings.ReplaceAll(docID, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
