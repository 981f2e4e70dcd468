package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shubhamchhangani/hindu-matrimony/pkg/migrate"
)

func TestProfileImagesMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_profile_images.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no profile images migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE profile_images",
		"REFERENCES profiles(id) ON DELETE CASCADE",
		"CHECK (image_type IN ('profile', 'house'))",
		"CREATE UNIQUE INDEX idx_profile_images_primary_profile",
		"CREATE UNIQUE INDEX idx_profile_images_primary_house",
		"WHERE is_primary_profile",
		"WHERE is_primary_house",
		"DROP TABLE profile_images",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLikesMigrationEnforcesOneLikePerUser(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_posts_likes_comments.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no posts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}

	if !strings.Contains(string(data), "UNIQUE (post_id, user_id)") {
		t.Error("likes table missing unique (post_id, user_id) constraint")
	}
}

func TestMigrationsDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migrations dir failed validation: %v", err)
	}
}
