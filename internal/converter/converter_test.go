package converter

import (
	"strings"
	"testing"

	"github.com/automerge/automerge-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-lst-sync/models"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func newReplica(t *testing.T, device string, kind models.DocType) *automerge.Doc {
	t.Helper()
	doc, err := NewDoc(ActorID(device))
	require.NoError(t, err)
	_, err = SetKind(doc, kind)
	require.NoError(t, err)
	return doc
}

// fork copies doc to another device, as a snapshot would.
func fork(t *testing.T, doc *automerge.Doc, device string) *automerge.Doc {
	t.Helper()
	other, err := LoadDoc(doc.Save(), ActorID(device))
	require.NoError(t, err)
	return other
}

// exchange delivers each replica's changes to the other.
func exchange(t *testing.T, a, b *automerge.Doc) {
	t.Helper()
	_, err := a.Merge(b)
	require.NoError(t, err)
	_, err = b.Merge(a)
	require.NoError(t, err)
}

func apply(t *testing.T, doc *automerge.Doc, content string) {
	t.Helper()
	ok, err := ApplyFile(doc, content)
	require.NoError(t, err)
	require.True(t, ok, "expected a change")
}

func materialize(t *testing.T, doc *automerge.Doc) string {
	t.Helper()
	out, err := Materialize(doc)
	require.NoError(t, err)
	return out
}

func items(t *testing.T, doc *automerge.Doc) []Item {
	t.Helper()
	out, err := Items(doc)
	require.NoError(t, err)
	return out
}

func texts(t *testing.T, doc *automerge.Doc) []string {
	t.Helper()
	var out []string
	for _, item := range items(t, doc) {
		out = append(out, item.Text)
	}
	return out
}

func anchors(t *testing.T, doc *automerge.Doc) map[string]string {
	t.Helper()
	out := make(map[string]string)
	for _, item := range items(t, doc) {
		out[item.Text] = item.Anchor
	}
	return out
}

// ── parsing ───────────────────────────────────────────────────────────────────

func TestParseList(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []Item
		wantErr bool
	}{
		{
			name:    "checkboxes with anchors",
			content: "- [ ] milk  ^abc12\n- [x] bread  ^def34\n",
			want: []Item{
				{Anchor: "abc12", Text: "milk"},
				{Anchor: "def34", Text: "bread", Done: true},
			},
		},
		{
			name:    "plain bullets and categories",
			content: "* eggs\n\n## Dairy\n- [X] cheese\n",
			want: []Item{
				{Text: "eggs"},
				{Text: "cheese", Done: true, Category: "Dairy"},
			},
		},
		{
			name:    "trailing whitespace and crlf",
			content: "- [ ] milk \r\n- [ ] tea  ^zzzz9\r\n",
			want: []Item{
				{Text: "milk"},
				{Text: "tea", Anchor: "zzzz9"},
			},
		},
		{
			name:    "bare checkbox",
			content: "- [ ]\n- [x] \n",
			want: []Item{
				{Text: ""},
				{Text: "", Done: true},
			},
		},
		{
			name:    "empty",
			content: "\n\n",
		},
		{
			name:    "free text is rejected",
			content: "- [ ] milk\nremember to call mom\n",
			wantErr: true,
		},
		{
			name:    "unclosed front matter",
			content: "---\ntitle: x\n- [ ] milk\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseList(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrConversion)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Items)
		})
	}
}

func TestRenderList_GroupsCategories(t *testing.T) {
	out := RenderList(ListFile{
		FrontMatter: "title: groceries",
		Items: []Item{
			{Anchor: "aaaaa", Text: "milk", Category: "Dairy"},
			{Anchor: "bbbbb", Text: "bag"},
			{Anchor: "ccccc", Text: "apple", Category: "Fruit", Done: true},
			{Anchor: "ddddd", Text: "cheese", Category: "Dairy"},
		},
	})

	want := "---\ntitle: groceries\n---\n" +
		"- [ ] bag  ^bbbbb\n" +
		"\n## Dairy\n" +
		"- [ ] milk  ^aaaaa\n" +
		"- [ ] cheese  ^ddddd\n" +
		"\n## Fruit\n" +
		"- [x] apple  ^ccccc\n"
	assert.Equal(t, want, out)
}

func TestDocIDHint(t *testing.T) {
	const id = "0b8e6f7a-3f0e-4e51-9b57-1a0f8ad7a111"
	assert.Equal(t, id, DocIDHint("---\nid: "+id+"\n---\n- [ ] a\n"))
	assert.Empty(t, DocIDHint("---\nid: nope\n---\n"))
	assert.Empty(t, DocIDHint("- [ ] a\n"))
	assert.Empty(t, DocIDHint("---\nid: [\n---\n"))
}

// ── lists ────────────────────────────────────────────────────────────────────

func TestApplyFile_ListRoundTrip(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n- [x] bread\n")

	out := materialize(t, doc)
	assert.Regexp(t, `^- \[ \] milk  \^[A-Za-z0-9]{5}\n- \[x\] bread  \^[A-Za-z0-9]{5}\n$`, out)

	changed, err := ApplyFile(doc, out)
	require.NoError(t, err)
	assert.False(t, changed, "materialized content must apply as a no-op")
}

func TestApplyFile_AppendAfterBlankLine(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n")
	base := materialize(t, doc)

	apply(t, doc, base+"\n\n- [ ] bread\n")
	assert.Equal(t, []string{"milk", "bread"}, texts(t, doc))
}

func TestApplyFile_EditsKeepAnchors(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n- [ ] bread\n- [ ] eggs\n")
	before := anchors(t, doc)

	content := materialize(t, doc)
	content = strings.Replace(content, "- [ ] bread", "- [x] bread", 1)
	apply(t, doc, content)

	assert.Equal(t, before, anchors(t, doc))
	assert.True(t, items(t, doc)[1].Done)
}

func TestApplyFile_ReorderKeepsAnchors(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] one\n- [ ] two\n- [ ] three\n")
	before := anchors(t, doc)

	lines := strings.Split(strings.TrimSuffix(materialize(t, doc), "\n"), "\n")
	reordered := lines[2] + "\n" + lines[0] + "\n" + lines[1] + "\n"
	apply(t, doc, reordered)

	assert.Equal(t, []string{"three", "one", "two"}, texts(t, doc))
	assert.Equal(t, before, anchors(t, doc))
}

func TestApplyFile_DeleteItem(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] one\n- [ ] two\n")
	lines := strings.Split(materialize(t, doc), "\n")

	apply(t, doc, lines[1]+"\n")
	assert.Equal(t, []string{"two"}, texts(t, doc))
}

func TestApplyFile_ConcurrentAppendsConverge(t *testing.T) {
	a := newReplica(t, "device-a", models.DocTypeList)
	apply(t, a, "- [ ] eggs\n")
	b := fork(t, a, "device-b")
	shared := materialize(t, a)
	require.Equal(t, shared, materialize(t, b))

	apply(t, a, shared+"- [ ] milk\n")
	apply(t, b, shared+"- [ ] bread\n")
	exchange(t, a, b)

	assert.Equal(t, materialize(t, a), materialize(t, b))
	got := texts(t, a)
	require.Len(t, got, 3)
	assert.Equal(t, "eggs", got[0])
	assert.ElementsMatch(t, []string{"milk", "bread"}, got[1:])
}

func TestApplyFile_IndependentCreationsShareTheList(t *testing.T) {
	a := newReplica(t, "device-a", models.DocTypeList)
	b := newReplica(t, "device-b", models.DocTypeList)
	apply(t, a, "- [ ] milk\n")
	apply(t, b, "- [ ] bread\n")

	exchange(t, a, b)

	assert.ElementsMatch(t, []string{"milk", "bread"}, texts(t, a))
	assert.Equal(t, materialize(t, a), materialize(t, b))
}

func TestApplyFile_ConcurrentMovesKeepOneCopy(t *testing.T) {
	a := newReplica(t, "device-a", models.DocTypeList)
	apply(t, a, "- [ ] milk\n- [ ] eggs\n- [ ] bread\n- [ ] tea\n")
	b := fork(t, a, "device-b")

	lines := strings.Split(strings.TrimSuffix(materialize(t, a), "\n"), "\n")
	milk, eggs, bread, tea := lines[0], lines[1], lines[2], lines[3]
	apply(t, a, bread+"\n"+milk+"\n"+eggs+"\n"+tea+"\n")
	apply(t, b, milk+"\n"+eggs+"\n"+tea+"\n"+bread+"\n")

	exchange(t, a, b)

	require.Equal(t, materialize(t, a), materialize(t, b))
	got := texts(t, a)
	assert.Len(t, got, 4)
	assert.ElementsMatch(t, []string{"milk", "eggs", "bread", "tea"}, got)

	// the next local edit drops the surplus copy from the document itself
	apply(t, a, materialize(t, a)+"- [ ] jam\n")
	elems, err := listElements(a)
	require.NoError(t, err)
	assert.Len(t, elems, 5)
}

func TestApplyFile_ConversionErrorLeavesDocUntouched(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n")
	before := doc.Heads()

	changed, err := ApplyFile(doc, "this is not a list\n")
	require.ErrorIs(t, err, models.ErrConversion)
	assert.False(t, changed)
	assert.Equal(t, before, doc.Heads())
	assert.Equal(t, []string{"milk"}, texts(t, doc))
}

func TestApplyFile_FrontMatterPreserved(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "---\ntitle: groceries\ntags: [home]\n---\n- [ ] milk\n")

	out := materialize(t, doc)
	assert.True(t, strings.HasPrefix(out, "---\ntitle: groceries\ntags: [home]\n---\n"), out)
}

func TestApplyFile_DuplicateAnchorBecomesNewItem(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n")
	line := strings.TrimSuffix(materialize(t, doc), "\n")

	apply(t, doc, line+"\n"+strings.Replace(line, "milk", "more milk", 1)+"\n")

	got := items(t, doc)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].Anchor, got[1].Anchor)
}

func TestApplyFile_AdoptsUserAnchor(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n")

	content := materialize(t, doc) + "- [ ] tea  ^my-tea\n"
	apply(t, doc, content)

	assert.Equal(t, "my-tea", anchors(t, doc)["tea"])
	changed, err := ApplyFile(doc, content)
	require.NoError(t, err)
	assert.False(t, changed, "the file already carries every anchor")
}

func TestApplyFile_BareCheckbox(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeList)
	apply(t, doc, "- [ ] milk\n- [ ]\n")

	got := items(t, doc)
	require.Len(t, got, 2)
	assert.Equal(t, "", got[1].Text)
	assert.False(t, got[1].Done)

	changed, err := ApplyFile(doc, materialize(t, doc))
	require.NoError(t, err)
	assert.False(t, changed)
}

// ── notes ────────────────────────────────────────────────────────────────────

func TestApplyFile_NoteEdits(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeNote)
	apply(t, doc, "hello world\n")
	apply(t, doc, "hello brave world\n")
	assert.Equal(t, "hello brave world\n", materialize(t, doc))

	apply(t, doc, "---\ntitle: t\n---\nhéllo 🙃\n")
	assert.Equal(t, "---\ntitle: t\n---\nhéllo 🙃\n", materialize(t, doc))

	changed, err := ApplyFile(doc, materialize(t, doc))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApplyFile_ConcurrentNoteEditsConverge(t *testing.T) {
	a := newReplica(t, "a", models.DocTypeNote)
	apply(t, a, "ac")
	b := fork(t, a, "b")

	apply(t, a, "abc")
	apply(t, b, "acd")
	exchange(t, a, b)

	assert.Equal(t, "abcd", materialize(t, a))
	assert.Equal(t, "abcd", materialize(t, b))
}

func TestApplyFile_NoteEditsAtBothEndsKeepMiddleEdit(t *testing.T) {
	a := newReplica(t, "a", models.DocTypeNote)
	apply(t, a, "alpha\nthe middle line\nomega\n")
	b := fork(t, a, "b")

	apply(t, a, "start alpha\nthe middle line\nomega end\n")
	apply(t, b, "alpha\nthe rewritten middle line\nomega\n")
	exchange(t, a, b)

	want := "start alpha\nthe rewritten middle line\nomega end\n"
	assert.Equal(t, want, materialize(t, a))
	assert.Equal(t, want, materialize(t, b))
}

// ── metadata ─────────────────────────────────────────────────────────────────

func TestMarkDeleted(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeNote)
	apply(t, doc, "x")

	ok, err := MarkDeleted(doc)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, IsDeleted(doc))

	ok, err = MarkDeleted(doc)
	require.NoError(t, err)
	assert.False(t, ok)

	apply(t, doc, "x")
	assert.False(t, IsDeleted(doc), "re-creating the file clears the tombstone")
}

func TestSetPath(t *testing.T) {
	doc := newReplica(t, "a", models.DocTypeNote)
	ok, err := SetPath(doc, "notes/a.md")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = SetPath(doc, "notes/a.md")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, "notes/a.md", Path(doc))
}

func TestKind(t *testing.T) {
	doc, err := NewDoc(ActorID("a"))
	require.NoError(t, err)
	assert.Equal(t, models.DocType(""), Kind(doc))

	_, err = SetPath(doc, "lists/groceries.md")
	require.NoError(t, err)
	assert.Equal(t, models.DocTypeList, Kind(doc), "derived from the path")

	_, err = SetKind(doc, models.DocTypeNote)
	require.NoError(t, err)
	assert.Equal(t, models.DocTypeNote, Kind(doc))
}

func TestChangesSince(t *testing.T) {
	a := newReplica(t, "a", models.DocTypeNote)
	b := fork(t, a, "b")
	base := a.Heads()

	apply(t, a, "one")
	apply(t, a, "one two")

	raw, err := ChangesSince(a, base)
	require.NoError(t, err)
	require.Len(t, raw, 2)

	second, err := DecodeChanges(raw[1])
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.False(t, Ready(b, second[0]), "depends on the first change")

	first, err := DecodeChanges(raw[0])
	require.NoError(t, err)
	require.True(t, Ready(b, first[0]))
	require.NoError(t, b.Apply(first...))
	assert.True(t, Has(b, first[0]))
	assert.True(t, Ready(b, second[0]))
	require.NoError(t, b.Apply(second...))

	assert.Equal(t, "one two", materialize(t, b))

	_, err = DecodeChanges([]byte("garbage"))
	assert.ErrorIs(t, err, models.ErrConversion)
}

func TestActorID(t *testing.T) {
	assert.Equal(t, ActorID("device-a"), ActorID("device-a"))
	assert.NotEqual(t, ActorID("device-a"), ActorID("device-b"))
	assert.Len(t, ActorID(""), 32)
}

func TestStableSubsequence(t *testing.T) {
	assert.Equal(t, []bool{false, true, true}, stableSubsequence([]int{2, 0, 1}))
	assert.Equal(t, []bool{true, false, true}, stableSubsequence([]int{0, -1, 1}))
	assert.Equal(t, []bool{}, stableSubsequence([]int{}))
}
