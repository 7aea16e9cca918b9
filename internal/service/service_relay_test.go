// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-lst-sync/internal/config"
	"github.com/MKhiriev/go-lst-sync/internal/logger"
	"github.com/MKhiriev/go-lst-sync/internal/mock"
	"github.com/MKhiriev/go-lst-sync/internal/store"
	"github.com/MKhiriev/go-lst-sync/models"
)

type relayMocks struct {
	documents   *mock.MockRelayDocumentRepository
	permissions *mock.MockPermissionRepository
}

func newRelayService(t *testing.T) (RelayService, relayMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := relayMocks{
		documents:   mock.NewMockRelayDocumentRepository(ctrl),
		permissions: mock.NewMockPermissionRepository(ctrl),
	}
	svc := NewRelayService(m.documents, m.permissions, config.Server{CompactionThreshold: 10}, logger.Nop())
	return svc, m
}

// ── push ──────────────────────────────────────────────────────────────────────

func TestRelayService_PushChanges(t *testing.T) {
	svc, m := newRelayService(t)
	changes := [][]byte{[]byte("c1"), []byte("c2")}
	want := models.AppendResult{Seq: 2, LogLength: 2, Created: true}

	m.documents.EXPECT().AppendChanges(gomock.Any(), "alice", "dev-1", "doc", changes).Return(want, nil)

	got, err := svc.PushChanges(testCtx(), "alice", "dev-1", "doc", changes)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRelayService_PushChanges_Denied(t *testing.T) {
	svc, m := newRelayService(t)
	m.documents.EXPECT().AppendChanges(gomock.Any(), "eve", "dev", "doc", gomock.Any()).
		Return(models.AppendResult{}, store.ErrPermissionDenied)

	_, err := svc.PushChanges(testCtx(), "eve", "dev", "doc", [][]byte{[]byte("x")})
	assert.ErrorIs(t, err, store.ErrPermissionDenied)
}

func TestRelayService_PushSnapshot(t *testing.T) {
	svc, m := newRelayService(t)
	m.documents.EXPECT().SaveSnapshot(gomock.Any(), "alice", "doc", []byte("snap"), int64(7)).Return(nil)
	require.NoError(t, svc.PushSnapshot(testCtx(), "alice", "doc", []byte("snap"), 7))

	m.documents.EXPECT().SaveSnapshot(gomock.Any(), "alice", "doc", gomock.Any(), int64(3)).Return(store.ErrStaleSnapshot)
	assert.ErrorIs(t, svc.PushSnapshot(testCtx(), "alice", "doc", []byte("old"), 3), store.ErrStaleSnapshot)
}

func TestRelayService_NeedsCompaction(t *testing.T) {
	svc, _ := newRelayService(t)
	assert.False(t, svc.NeedsCompaction(models.AppendResult{LogLength: 10}))
	assert.True(t, svc.NeedsCompaction(models.AppendResult{LogLength: 11}))
}

// ── read ──────────────────────────────────────────────────────────────────────

func TestRelayService_Snapshot(t *testing.T) {
	svc, m := newRelayService(t)
	snap := models.StoredSnapshot{DocID: "doc", Owner: "alice", Payload: []byte("s"), Seq: 5}
	tail := []models.StoredChange{{Seq: 6, DeviceID: "dev", Payload: []byte("c")}}

	gomock.InOrder(
		m.permissions.EXPECT().Permission(gomock.Any(), "doc", "bob").Return(models.PermissionReader, nil),
		m.documents.EXPECT().GetSnapshot(gomock.Any(), "doc").Return(snap, nil),
		m.documents.EXPECT().ChangesAfter(gomock.Any(), "doc", int64(5)).Return(tail, nil),
	)

	gotSnap, gotTail, err := svc.Snapshot(testCtx(), "bob", "doc")
	require.NoError(t, err)
	assert.Equal(t, snap, gotSnap)
	assert.Equal(t, tail, gotTail)
}

func TestRelayService_ReadRequiresPermission(t *testing.T) {
	tests := []struct {
		name    string
		permErr error
		want    error
	}{
		{name: "no permission row", permErr: store.ErrPermissionDenied, want: store.ErrPermissionDenied},
		{name: "unknown document", permErr: store.ErrDocumentNotFound, want: store.ErrDocumentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newRelayService(t)
			m.permissions.EXPECT().Permission(gomock.Any(), "doc", "eve").Return(models.Permission(""), tt.permErr).Times(3)

			_, _, err := svc.Snapshot(testCtx(), "eve", "doc")
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.ChangesAfter(testCtx(), "eve", "doc", 0)
			assert.ErrorIs(t, err, tt.want)
			_, err = svc.ListACL(testCtx(), "eve", "doc")
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRelayService_ChangesAfter(t *testing.T) {
	svc, m := newRelayService(t)
	want := []models.StoredChange{{Seq: 4}, {Seq: 5}}
	gomock.InOrder(
		m.permissions.EXPECT().Permission(gomock.Any(), "doc", "alice").Return(models.PermissionOwner, nil),
		m.documents.EXPECT().GetSnapshot(gomock.Any(), "doc").Return(models.StoredSnapshot{DocID: "doc", Seq: 3}, nil),
		m.documents.EXPECT().ChangesAfter(gomock.Any(), "doc", int64(3)).Return(want, nil),
	)

	got, err := svc.ChangesAfter(testCtx(), "alice", "doc", 3)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRelayService_ChangesAfter_Truncated(t *testing.T) {
	svc, m := newRelayService(t)
	m.permissions.EXPECT().Permission(gomock.Any(), "doc", "alice").Return(models.PermissionOwner, nil)
	m.documents.EXPECT().GetSnapshot(gomock.Any(), "doc").Return(models.StoredSnapshot{DocID: "doc", Seq: 9}, nil)

	_, err := svc.ChangesAfter(testCtx(), "alice", "doc", 4)
	assert.ErrorIs(t, err, ErrChangesTruncated)
}

func TestRelayService_ListDocuments(t *testing.T) {
	svc, m := newRelayService(t)
	want := []models.DocumentInfo{{DocID: "doc", LatestSeq: 3}}
	m.documents.EXPECT().ListDocuments(gomock.Any(), "alice").Return(want, nil)

	got, err := svc.ListDocuments(testCtx(), "alice")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestRelayService_CanRead(t *testing.T) {
	tests := []struct {
		name    string
		perm    models.Permission
		permErr error
		want    bool
		wantErr bool
	}{
		{name: "reader", perm: models.PermissionReader, want: true},
		{name: "owner", perm: models.PermissionOwner, want: true},
		{name: "denied", permErr: store.ErrPermissionDenied},
		{name: "unknown document", permErr: store.ErrDocumentNotFound},
		{name: "store failure", permErr: store.ErrExecutingQuery, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newRelayService(t)
			m.permissions.EXPECT().Permission(gomock.Any(), "doc", "bob").Return(tt.perm, tt.permErr)

			got, err := svc.CanRead(testCtx(), "bob", "doc")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// ── ACL ───────────────────────────────────────────────────────────────────────

func TestRelayService_Grant(t *testing.T) {
	tests := []struct {
		name    string
		caller  models.Permission
		wantErr error
	}{
		{name: "owner grants", caller: models.PermissionOwner},
		{name: "writer cannot grant", caller: models.PermissionWriter, wantErr: store.ErrPermissionDenied},
		{name: "reader cannot grant", caller: models.PermissionReader, wantErr: store.ErrPermissionDenied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newRelayService(t)
			m.permissions.EXPECT().Permission(gomock.Any(), "doc", "alice").Return(tt.caller, nil)
			if tt.wantErr == nil {
				m.permissions.EXPECT().Grant(gomock.Any(), "doc", "bob", models.PermissionWriter).Return(nil)
			}

			err := svc.Grant(testCtx(), "alice", "doc", "bob", models.PermissionWriter)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestRelayService_Revoke(t *testing.T) {
	svc, m := newRelayService(t)
	m.permissions.EXPECT().Permission(gomock.Any(), "doc", "alice").Return(models.PermissionOwner, nil)
	m.permissions.EXPECT().Revoke(gomock.Any(), "doc", "alice").Return(store.ErrCannotRevokeOwner)

	err := svc.Revoke(testCtx(), "alice", "doc", "alice")
	assert.ErrorIs(t, err, store.ErrCannotRevokeOwner)
}

func TestRelayService_ListACL(t *testing.T) {
	svc, m := newRelayService(t)
	rows := []models.DocumentPermission{{DocID: "doc", Identity: "alice", Permission: models.PermissionOwner}}
	m.permissions.EXPECT().Permission(gomock.Any(), "doc", "bob").Return(models.PermissionReader, nil)
	m.permissions.EXPECT().ListPermissions(gomock.Any(), "doc").Return(rows, nil)

	got, err := svc.ListACL(testCtx(), "bob", "doc")
	require.NoError(t, err)
	assert.Equal(t, rows, got)
}
