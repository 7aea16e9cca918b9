// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package converter maps plain-text list and note files to automerge
// documents and back.
//
// A list is an automerge list of item maps holding the item's anchor, text,
// completion and category. A note is an automerge text object. Front matter,
// the canonical path and the deletion tombstone live in the root map.
package converter

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode/utf8"

	"github.com/automerge/automerge-go"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/MKhiriev/go-lst-sync/internal/docpath"
	"github.com/MKhiriev/go-lst-sync/models"
)

// Item field and root keys.
const (
	FieldAnchor   = "anchor"
	FieldText     = "text"
	FieldDone     = "done"
	FieldCategory = "category"

	MetaKind        = "kind"
	MetaFrontMatter = "frontmatter"
	MetaDeleted     = "deleted"
	MetaPath        = "path"

	keyItems = "items"
	keyText  = "body"
)

const (
	anchorLength   = 5
	anchorAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// ApplyFile diffs content against the replica and commits the difference as
// one local change. It reports false when the file matches the replica.
// Unparseable content fails with [models.ErrConversion] before the replica
// is touched; after any other error the replica must be discarded.
func ApplyFile(doc *automerge.Doc, content string) (bool, error) {
	var (
		changed bool
		err     error
	)
	switch Kind(doc) {
	case models.DocTypeList:
		changed, err = diffList(doc, content)
	default:
		changed, err = diffNote(doc, content)
	}
	if err != nil {
		return false, err
	}

	if IsDeleted(doc) {
		if err = doc.RootMap().Set(MetaDeleted, false); err != nil {
			return false, err
		}
		changed = true
	}

	return commit(doc, "edit", changed)
}

// SetKind records the document kind. The creator of a document sets it once.
func SetKind(doc *automerge.Doc, kind models.DocType) (bool, error) {
	if metaString(doc, MetaKind) == string(kind) {
		return false, nil
	}
	if err := doc.RootMap().Set(MetaKind, string(kind)); err != nil {
		return false, err
	}
	return commit(doc, "kind", true)
}

// Kind returns the recorded kind, else the kind implied by the recorded
// path. It is empty for a replica that has seen neither.
func Kind(doc *automerge.Doc) models.DocType {
	if k := metaString(doc, MetaKind); k != "" {
		return models.ParseDocType(k)
	}
	if p := Path(doc); p != "" {
		return docpath.Kind(p)
	}
	return ""
}

// MarkDeleted records the removal of the file as a tombstone on the
// document. The stored state itself is kept.
func MarkDeleted(doc *automerge.Doc) (bool, error) {
	if IsDeleted(doc) {
		return false, nil
	}
	if err := doc.RootMap().Set(MetaDeleted, true); err != nil {
		return false, err
	}
	return commit(doc, "delete", true)
}

// IsDeleted reports whether the document's file was removed.
func IsDeleted(doc *automerge.Doc) bool {
	v, err := doc.RootMap().Get(MetaDeleted)
	return err == nil && v.Kind() == automerge.KindBool && v.Bool()
}

// SetPath records the canonical path so that devices bootstrapping from a
// snapshot can place the file.
func SetPath(doc *automerge.Doc, canonical string) (bool, error) {
	if Path(doc) == canonical {
		return false, nil
	}
	if err := doc.RootMap().Set(MetaPath, canonical); err != nil {
		return false, err
	}
	return commit(doc, "path", true)
}

// Path returns the recorded canonical path.
func Path(doc *automerge.Doc) string {
	return metaString(doc, MetaPath)
}

// Materialize renders the replica as file content.
func Materialize(doc *automerge.Doc) (string, error) {
	fm := metaString(doc, MetaFrontMatter)

	switch kind := Kind(doc); kind {
	case models.DocTypeList:
		items, err := Items(doc)
		if err != nil {
			return "", err
		}
		return RenderList(ListFile{FrontMatter: fm, Items: items}), nil
	case models.DocTypeNote:
		body, err := doc.Path(keyText).Text().Get()
		if err != nil {
			return "", fmt.Errorf("%w: %w", models.ErrConversion, err)
		}
		return RenderNote(fm, body), nil
	default:
		return "", fmt.Errorf("%w: unknown document kind %q", models.ErrConversion, kind)
	}
}

// Items returns the visible items of a list replica. Concurrent moves of
// one item leave several copies with the same anchor; the first in list
// order wins on every replica.
func Items(doc *automerge.Doc) ([]Item, error) {
	elems, err := listElements(doc)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(elems))
	items := make([]Item, 0, len(elems))
	for _, e := range elems {
		if e.Anchor != "" && seen[e.Anchor] {
			continue
		}
		seen[e.Anchor] = true
		items = append(items, e.Item)
	}
	return items, nil
}

// element is a stored item and the map holding it.
type element struct {
	Item
	m *automerge.Map
}

func listElements(doc *automerge.Doc) ([]element, error) {
	values, err := doc.Path(keyItems).List().Values()
	if err != nil {
		return nil, fmt.Errorf("%w: read items: %w", models.ErrConversion, err)
	}

	elems := make([]element, 0, len(values))
	for _, v := range values {
		if v.Kind() != automerge.KindMap {
			continue
		}
		m := v.Map()
		elems = append(elems, element{
			Item: Item{
				Anchor:   mapString(m, FieldAnchor),
				Text:     mapString(m, FieldText),
				Done:     mapBool(m, FieldDone),
				Category: mapString(m, FieldCategory),
			},
			m: m,
		})
	}
	return elems, nil
}

func diffFrontMatter(doc *automerge.Doc, fm string) (bool, error) {
	if metaString(doc, MetaFrontMatter) == fm {
		return false, nil
	}
	return true, doc.RootMap().Set(MetaFrontMatter, fm)
}

// diffNote turns the difference between the stored and the new body into
// text splices, so concurrent edits elsewhere in the note survive.
func diffNote(doc *automerge.Doc, content string) (bool, error) {
	fm, body, err := ParseNote(content)
	if err != nil {
		return false, err
	}
	changed, err := diffFrontMatter(doc, fm)
	if err != nil {
		return false, err
	}

	text := doc.Path(keyText).Text()
	old, err := text.Get()
	if err != nil {
		return false, fmt.Errorf("%w: read note: %w", models.ErrConversion, err)
	}
	if old == body {
		return changed, nil
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(old, body, false))

	// positions are in runes
	pos := 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			pos += n
		case diffmatchpatch.DiffDelete:
			if err = text.Delete(pos, n); err != nil {
				return false, err
			}
		case diffmatchpatch.DiffInsert:
			if err = text.Insert(pos, d.Text); err != nil {
				return false, err
			}
			pos += n
		}
	}

	return true, nil
}

// diffList matches parsed items to existing elements by anchor (or, for
// items without an anchor, by text), keeps the longest run of items whose
// relative order is unchanged, and re-inserts moved items with their
// original anchor. Anchors the user wrote that the document has not seen
// are adopted; only an anchor repeated within the file is replaced.
func diffList(doc *automerge.Doc, content string) (bool, error) {
	parsed, err := ParseList(content)
	if err != nil {
		return false, err
	}
	changed, err := diffFrontMatter(doc, parsed.FrontMatter)
	if err != nil {
		return false, err
	}

	current, err := listElements(doc)
	if err != nil {
		return false, err
	}
	byAnchor := make(map[string]int, len(current))
	for i, e := range current {
		if _, dup := byAnchor[e.Anchor]; !dup {
			byAnchor[e.Anchor] = i
		}
	}

	used := make(map[int]bool, len(current))
	claimed := make(map[string]bool, len(parsed.Items))
	match := make([]int, len(parsed.Items))
	for i := range parsed.Items {
		match[i] = -1
		anchor := parsed.Items[i].Anchor
		if anchor == "" {
			continue
		}
		if claimed[anchor] {
			parsed.Items[i].Anchor = ""
			continue
		}
		claimed[anchor] = true
		if idx, ok := byAnchor[anchor]; ok {
			match[i] = idx
			used[idx] = true
		}
	}
	for i := range parsed.Items {
		if match[i] >= 0 || parsed.Items[i].Anchor != "" {
			continue
		}
		for idx, e := range current {
			if !used[idx] && !claimed[e.Anchor] && e.Text == parsed.Items[i].Text {
				match[i] = idx
				used[idx] = true
				claimed[e.Anchor] = true
				parsed.Items[i].Anchor = e.Anchor
				break
			}
		}
	}

	keep := stableSubsequence(match)
	kept := make(map[int]bool, len(current))
	for i, k := range keep {
		if k {
			kept[match[i]] = true
		}
	}

	list := doc.Path(keyItems).List()

	// removed, moved and duplicated elements go first, from the back, so the
	// remaining indexes stay valid
	for idx := len(current) - 1; idx >= 0; idx-- {
		if kept[idx] {
			continue
		}
		if err = list.Delete(idx); err != nil {
			return false, err
		}
		changed = true
	}

	anchors := make(map[string]bool, len(current)+len(parsed.Items))
	for _, e := range current {
		anchors[e.Anchor] = true
	}
	for a := range claimed {
		anchors[a] = true
	}

	pos := 0
	for i, item := range parsed.Items {
		if keep[i] {
			e := current[match[i]]
			fieldsChanged, err := setFields(e.m, e.Item, item, false)
			if err != nil {
				return false, err
			}
			changed = changed || fieldsChanged
			pos++
			continue
		}

		if item.Anchor == "" {
			if item.Anchor, err = newAnchor(anchors); err != nil {
				return false, err
			}
			anchors[item.Anchor] = true
		}

		m := automerge.NewMap()
		if err = list.Insert(pos, m); err != nil {
			return false, err
		}
		if err = m.Set(FieldAnchor, item.Anchor); err != nil {
			return false, err
		}
		if _, err = setFields(m, Item{}, item, true); err != nil {
			return false, err
		}
		changed = true
		pos++
	}

	return changed, nil
}

// setFields writes the fields of next that differ from cur. A fresh map
// gets its text even when empty.
func setFields(m *automerge.Map, cur, next Item, fresh bool) (bool, error) {
	changed := false
	if fresh || cur.Text != next.Text {
		if err := m.Set(FieldText, next.Text); err != nil {
			return false, err
		}
		changed = true
	}
	if cur.Done != next.Done {
		if err := m.Set(FieldDone, next.Done); err != nil {
			return false, err
		}
		changed = true
	}
	if cur.Category != next.Category {
		if err := m.Set(FieldCategory, next.Category); err != nil {
			return false, err
		}
		changed = true
	}
	return changed, nil
}

func commit(doc *automerge.Doc, msg string, changed bool) (bool, error) {
	if !changed {
		return false, nil
	}
	if _, err := doc.Commit(msg); err != nil {
		return false, fmt.Errorf("commit %s: %w", msg, err)
	}
	return true, nil
}

func metaString(doc *automerge.Doc, key string) string {
	return mapString(doc.RootMap(), key)
}

func mapString(m *automerge.Map, key string) string {
	v, err := m.Get(key)
	if err != nil || v.Kind() != automerge.KindStr {
		return ""
	}
	return v.Str()
}

func mapBool(m *automerge.Map, key string) bool {
	v, err := m.Get(key)
	return err == nil && v.Kind() == automerge.KindBool && v.Bool()
}

// stableSubsequence marks the positions of the longest increasing
// subsequence of matched element indexes; unmatched positions are -1.
func stableSubsequence(match []int) []bool {
	keep := make([]bool, len(match))

	// tails[k] is the position in match ending the best run of length k+1
	var tails []int
	prevPos := make([]int, len(match))
	for i, v := range match {
		prevPos[i] = -1
		if v < 0 {
			continue
		}
		lo, hi := 0, len(tails)
		for lo < hi {
			mid := (lo + hi) / 2
			if match[tails[mid]] < v {
				lo = mid + 1
			} else {
				hi = mid
			}
		}
		if lo > 0 {
			prevPos[i] = tails[lo-1]
		}
		if lo == len(tails) {
			tails = append(tails, i)
		} else {
			tails[lo] = i
		}
	}

	if len(tails) == 0 {
		return keep
	}
	for i := tails[len(tails)-1]; i >= 0; i = prevPos[i] {
		keep[i] = true
	}
	return keep
}

func newAnchor(taken map[string]bool) (string, error) {
	max := big.NewInt(int64(len(anchorAlphabet)))
	for {
		buf := make([]byte, anchorLength)
		for i := range buf {
			n, err := rand.Int(rand.Reader, max)
			if err != nil {
				return "", fmt.Errorf("generate anchor: %w", err)
			}
			buf[i] = anchorAlphabet[n.Int64()]
		}
		if a := string(buf); !taken[a] {
			return a, nil
		}
	}
}
