package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/chachabrian/rideflow-backend/internal/config"
	"github.com/chachabrian/rideflow-backend/internal/models"
)

func TestLocalArchiveSave(t *testing.T) {
	dir := t.TempDir()
	archive, err := NewLocalArchive(dir)
	if err != nil {
		t.Fatalf("NewLocalArchive: %v", err)
	}

	rating := 4
	fb := models.Feedback{ID: "fb-1", Rating: &rating, Comment: "ok", Timestamp: noon, Status: "processed"}
	rel, err := archive.Save(context.Background(), fb)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if rel != filepath.Join("feedback", "fb-1.json") {
		t.Fatalf("unexpected location %q", rel)
	}

	body, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	var got models.Feedback
	if err := json.Unmarshal(body, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.ID != "fb-1" || got.Rating == nil || *got.Rating != 4 {
		t.Fatalf("unexpected archived feedback %+v", got)
	}
}

func TestInitStorageFallsBackToLocal(t *testing.T) {
	archive, err := InitStorage(config.Config{FeedbackDir: t.TempDir()})
	if err != nil {
		t.Fatalf("InitStorage: %v", err)
	}
	if _, ok := archive.(*LocalArchive); !ok {
		t.Fatalf("expected LocalArchive without AWS settings, got %T", archive)
	}
}
