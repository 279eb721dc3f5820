// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"maplecms/internal/models"
)

func TestMediaStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)

	email := "test-media-create@store-test.local"
	key := "media/test/" + uuid.NewString() + ".png"
	t.Cleanup(func() {
		cleanMedia(t, db, key)
		cleanUsers(t, db, email)
	})
	uploaderID := testAuthor(t, db, email)

	m, err := s.Create(&models.Media{
		Filename:         "abc123.png",
		OriginalFilename: "screenshot.png",
		MimeType:         "image/png",
		SizeBytes:        2048,
		StorageKey:       key,
		URL:              "https://cdn.example.test/" + key,
		UploaderID:       &uploaderID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if m.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}

	found, err := s.FindByID(m.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected media, got nil")
	}
	if found.OriginalFilename != "screenshot.png" {
		t.Errorf("original filename: got %q", found.OriginalFilename)
	}
	if found.UploaderID == nil || *found.UploaderID != uploaderID {
		t.Errorf("uploader: got %v, want %s", found.UploaderID, uploaderID)
	}
}

func TestMediaStoreUploaderDetachedOnUserDelete(t *testing.T) {
	db := testDB(t)
	media := NewMediaStore(db)
	users := NewUserStore(db)

	email := "test-media-detach@store-test.local"
	key := "media/test/" + uuid.NewString() + ".jpg"
	t.Cleanup(func() { cleanMedia(t, db, key) })
	uploaderID := testAuthor(t, db, email)

	m, err := media.Create(&models.Media{
		Filename:         "photo.jpg",
		OriginalFilename: "photo.jpg",
		MimeType:         "image/jpeg",
		SizeBytes:        1,
		StorageKey:       key,
		URL:              "https://cdn.example.test/" + key,
		UploaderID:       &uploaderID,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := users.Delete(uploaderID); err != nil {
		t.Fatalf("Delete user: %v", err)
	}

	// The media row survives with the uploader detached.
	found, _ := media.FindByID(m.ID)
	if found == nil {
		t.Fatal("media must survive uploader delete")
	}
	if found.UploaderID != nil {
		t.Errorf("uploader_id: got %v, want nil", found.UploaderID)
	}
}

func TestMediaStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewMediaStore(db)

	key := "media/test/" + uuid.NewString() + ".pdf"

	m, err := s.Create(&models.Media{
		Filename:         "doc.pdf",
		OriginalFilename: "doc.pdf",
		MimeType:         "application/pdf",
		SizeBytes:        10,
		StorageKey:       key,
		URL:              "https://cdn.example.test/" + key,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(m.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if found, _ := s.FindByID(m.ID); found != nil {
		t.Error("expected nil after delete")
	}
	if err := s.Delete(m.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
