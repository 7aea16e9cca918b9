// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package docpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-lst-sync/models"
)

const root = "/home/user/lst"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "already canonical", input: "lists/groceries.md", want: "lists/groceries.md"},
		{name: "leading dot slash", input: "./lists/groceries.md", want: "lists/groceries.md"},
		{name: "absolute under root", input: "/home/user/lst/lists/groceries.md", want: "lists/groceries.md"},
		{name: "root with trailing slash spelling", input: "/home/user/lst//lists/./groceries.md", want: "lists/groceries.md"},
		{name: "windows separators", input: `lists\groceries.md`, want: "lists/groceries.md"},
		{name: "windows absolute under other root", input: `C:\Users\bob\lst\notes\todo.md`, want: "notes/todo.md"},
		{name: "absolute from another machine", input: "/Users/alice/Documents/lst/lists/work.md", want: "lists/work.md"},
		{name: "duplicate slashes", input: "notes//2026//plan.md", want: "notes/2026/plan.md"},
		{name: "nfd is folded to nfc", input: "notes/cafe\u0301.md", want: "notes/caf\u00e9.md"},
		{name: "surrounding spaces", input: "  notes/a.md ", want: "notes/a.md"},
		{name: "empty", input: "", wantErr: ErrEmptyPath},
		{name: "dot only", input: "./", wantErr: ErrEmptyPath},
		{name: "escapes root", input: "../secrets.md", wantErr: ErrOutsideRoot},
		{name: "absolute outside root without content dir", input: "/etc/passwd", wantErr: ErrOutsideRoot},
		{name: "root itself", input: "/home/user/lst", wantErr: ErrOutsideRoot},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(root, tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCanonicalize_Idempotent(t *testing.T) {
	inputs := []string{
		"lists/a.md",
		"./notes/b.md",
		"/home/user/lst/lists/c.md",
		`notes\sub\d.md`,
		"/Users/alice/lst/notes/e.md",
		"notes/cafe\u0301.md",
	}

	for _, in := range inputs {
		once, err := Canonicalize(root, in)
		require.NoError(t, err, in)
		twice, err := Canonicalize(root, once)
		require.NoError(t, err, in)
		assert.Equal(t, once, twice, in)
		assert.True(t, IsCanonical(once), in)
	}
}

func TestCanonicalize_SpellingsCollide(t *testing.T) {
	spellings := []string{
		"lists/groceries.md",
		"./lists/groceries.md",
		"/home/user/lst/lists/groceries.md",
		`lists\groceries.md`,
		"lists//groceries.md",
	}

	ids := make(map[string]struct{})
	for _, s := range spellings {
		c, err := Canonicalize(root, s)
		require.NoError(t, err)
		ids[DocID(Kind(c), c)] = struct{}{}
	}
	assert.Len(t, ids, 1)
}

func TestKind(t *testing.T) {
	assert.Equal(t, models.DocTypeList, Kind("lists/a.md"))
	assert.Equal(t, models.DocTypeList, Kind("lists/sub/a.md"))
	assert.Equal(t, models.DocTypeNote, Kind("notes/a.md"))
	assert.Equal(t, models.DocTypeNote, Kind("listsa.md"))
	assert.Equal(t, models.DocTypeNote, Kind("a.md"))
}

func TestDocID_Deterministic(t *testing.T) {
	a := DocID(models.DocTypeList, "lists/a.md")
	assert.Equal(t, a, DocID(models.DocTypeList, "lists/a.md"))
	assert.NotEqual(t, a, DocID(models.DocTypeNote, "lists/a.md"))
	assert.NotEqual(t, a, DocID(models.DocTypeList, "lists/b.md"))
}

func TestIsIgnored(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"lists/a.md", false},
		{"lists/.a.md.swp", true},
		{"lists/a.md.tmp", true},
		{"lists/a.md~", true},
		{".git/config", true},
		{"notes/.hidden/b.md", true},
		{"./notes/b.md", false},
		{`notes\.trash\b.md`, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsIgnored(tt.path), tt.path)
	}
}

func TestFileNameFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "heading", content: "# Weekend Plans!\nbody", want: "weekend-plans.md"},
		{name: "list item", content: "- [ ] Buy Milk  ^abcde\n", want: "buy-milk.md"},
		{name: "skips blank and front matter fence", content: "\n---\ntitle\n", want: "title.md"},
		{name: "fallback to doc id", content: "   \n\n", want: "0a1b2c3d.md"},
		{name: "truncated", content: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", want: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.md"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileNameFromContent(tt.content, "0a1b2c3d-0000-0000-0000-000000000000"))
		})
	}
}

func TestUniquePath(t *testing.T) {
	taken := map[string]bool{"lists/a.md": true}
	isTaken := func(p string) bool { return taken[p] }

	assert.Equal(t, "lists/b.md", UniquePath("lists/b.md", "12345678-aaaa", isTaken))
	assert.Equal(t, "lists/a_12345678.md", UniquePath("lists/a.md", "12345678-aaaa", isTaken))
}

func TestPathForNewDocument(t *testing.T) {
	assert.Equal(t, "lists/milk.md", PathForNewDocument(models.DocTypeList, "- [ ] milk", "x"))
	assert.Equal(t, "notes/hello.md", PathForNewDocument(models.DocTypeNote, "hello", "x"))
}
