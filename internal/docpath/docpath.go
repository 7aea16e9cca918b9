// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package docpath turns on-disk file paths into canonical document paths.
//
// A canonical path is relative to the content root, uses forward slashes,
// has no leading "./" or "/", is Unicode NFC and is stable across platforms.
// Every function here is pure: nothing touches the file system.
package docpath

import (
	"errors"
	"path"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/MKhiriev/go-lst-sync/models"
)

var (
	// ErrEmptyPath is returned when the input normalizes to nothing.
	ErrEmptyPath = errors.New("empty document path")
	// ErrOutsideRoot is returned for paths that escape the content root and
	// carry no recognizable content directory segment.
	ErrOutsideRoot = errors.New("path is outside of content root")
)

// Top-level content directories.
const (
	ListsDir = "lists"
	NotesDir = "notes"
)

// Canonicalize returns the canonical relative form of p. Absolute inputs are
// made relative to root; absolute inputs from another machine are re-rooted
// at their first lists/ or notes/ segment. Canonicalize is idempotent.
func Canonicalize(root, p string) (string, error) {
	p = toSlash(strings.TrimSpace(p))
	if p == "" {
		return "", ErrEmptyPath
	}

	if isAbs(p) {
		rel, ok := trimRoot(toSlash(root), p)
		if !ok {
			rel, ok = reroot(p)
		}
		if !ok {
			return "", ErrOutsideRoot
		}
		p = rel
	}

	p = path.Clean(p)
	if p == "" || p == "." {
		return "", ErrEmptyPath
	}
	if strings.HasPrefix(p, "../") || p == ".." {
		return "", ErrOutsideRoot
	}

	return norm.NFC.String(p), nil
}

// IsCanonical reports whether p is already in canonical form.
func IsCanonical(p string) bool {
	c, err := Canonicalize("", p)
	return err == nil && c == p
}

// Kind derives the document type from a canonical path.
func Kind(canonical string) models.DocType {
	if canonical == ListsDir || strings.HasPrefix(canonical, ListsDir+"/") {
		return models.DocTypeList
	}
	return models.DocTypeNote
}

// DocID derives the deterministic document identifier for a canonical path,
// so that two devices creating the same file agree on its identity.
func DocID(kind models.DocType, canonical string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(string(kind)+":"+canonical)).String()
}

// IsIgnored reports whether a path points at a hidden file, a file inside a
// hidden directory, or an editor temporary file.
func IsIgnored(p string) bool {
	for _, segment := range strings.Split(toSlash(p), "/") {
		if strings.HasPrefix(segment, ".") && segment != "." && segment != ".." {
			return true
		}
	}

	base := path.Base(toSlash(p))
	return strings.HasSuffix(base, ".tmp") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, "~")
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func isAbs(p string) bool {
	if strings.HasPrefix(p, "/") {
		return true
	}
	// windows drive letter, e.g. C:/Users
	return len(p) >= 3 && p[1] == ':' && p[2] == '/'
}

func trimRoot(root, p string) (string, bool) {
	root = strings.TrimSpace(root)
	if root == "" {
		return "", false
	}
	root = strings.TrimSuffix(path.Clean(root), "/")
	cleaned := path.Clean(p)

	if cleaned == root {
		return "", false
	}
	if !strings.HasPrefix(cleaned, root+"/") {
		return "", false
	}

	return strings.TrimPrefix(cleaned, root+"/"), true
}

func reroot(p string) (string, bool) {
	segments := strings.Split(path.Clean(p), "/")
	for i, segment := range segments {
		if (segment == ListsDir || segment == NotesDir) && i < len(segments)-1 {
			return strings.Join(segments[i:], "/"), true
		}
	}
	return "", false
}
