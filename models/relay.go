package models

// StoredChange is an encrypted change as kept in the relay change log.
type StoredChange struct {
	// Seq is the relay arrival sequence of the change.
	Seq      int64
	DeviceID string
	Payload  []byte
}

// StoredSnapshot is the latest encrypted snapshot of a relay document.
// Payload is nil while no device has pushed a snapshot yet.
type StoredSnapshot struct {
	DocID   string
	Owner   string
	Payload []byte
	// Seq is the highest arrival sequence the snapshot covers.
	Seq int64
}

// AppendResult reports where pushed changes landed in the relay log.
type AppendResult struct {
	// Seq is the arrival sequence of the last appended change.
	Seq int64
	// PrevSeq is the arrival sequence the document had reached before the
	// push. The pushed changes are exactly those in (PrevSeq, Seq].
	PrevSeq int64
	// LogLength is the number of changes kept for the document afterwards.
	LogLength int64
	// Created is true when the push introduced the document.
	Created bool
}
