// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package converter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/automerge/automerge-go"

	"github.com/MKhiriev/go-lst-sync/models"
)

// genesisActor writes the first change of every replica. The change is
// byte-identical on all devices, so replicas created independently share
// its list and text objects instead of racing to create them.
const genesisActor = "00"

// ActorID maps a device id to an automerge actor id.
func ActorID(deviceID string) string {
	sum := sha256.Sum256([]byte(deviceID))
	return hex.EncodeToString(sum[:16])
}

// NewDoc creates an empty replica owned by actor.
func NewDoc(actor string) (*automerge.Doc, error) {
	doc := automerge.New()
	if err := doc.SetActorID(genesisActor); err != nil {
		return nil, fmt.Errorf("set genesis actor: %w", err)
	}

	root := doc.RootMap()
	if err := root.Set(keyItems, automerge.NewList()); err != nil {
		return nil, fmt.Errorf("create item list: %w", err)
	}
	if err := root.Set(keyText, automerge.NewText("")); err != nil {
		return nil, fmt.Errorf("create note text: %w", err)
	}
	if _, err := doc.Commit("", automerge.CommitOptions{Time: &time.Time{}}); err != nil {
		return nil, fmt.Errorf("commit genesis: %w", err)
	}

	if err := doc.SetActorID(actor); err != nil {
		return nil, fmt.Errorf("set actor: %w", err)
	}
	return doc, nil
}

// LoadDoc restores a replica saved with [automerge.Doc.Save].
func LoadDoc(state []byte, actor string) (*automerge.Doc, error) {
	doc, err := automerge.Load(state)
	if err != nil {
		return nil, err
	}
	if err = doc.SetActorID(actor); err != nil {
		return nil, fmt.Errorf("set actor: %w", err)
	}
	return doc, nil
}

// ChangesSince encodes every change applied after heads, one change per
// element, in an order that respects their dependencies.
func ChangesSince(doc *automerge.Doc, heads []automerge.ChangeHash) ([][]byte, error) {
	changes, err := doc.Changes(heads...)
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	out := make([][]byte, 0, len(changes))
	for _, ch := range changes {
		out = append(out, ch.Save())
	}
	return out, nil
}

// DecodeChanges parses changes produced by [ChangesSince].
func DecodeChanges(raw []byte) ([]*automerge.Change, error) {
	changes, err := automerge.LoadChanges(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrConversion, err)
	}
	return changes, nil
}

// Has reports whether ch was already applied to doc.
func Has(doc *automerge.Doc, ch *automerge.Change) bool {
	_, err := doc.Change(ch.Hash())
	return err == nil
}

// Ready reports whether every dependency of ch was applied to doc.
func Ready(doc *automerge.Doc, ch *automerge.Change) bool {
	for _, dep := range ch.Dependencies() {
		if _, err := doc.Change(dep); err != nil {
			return false
		}
	}
	return true
}
