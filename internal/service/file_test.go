package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"cipherdrive/internal/repo"
	"cipherdrive/internal/service"
	"cipherdrive/model"
)

func TestUploadFileChargesQuota(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "upload", model.RoleUser, 1000)

	file := uploadTestFile(t, user.ID, nil, "report.txt", 120)
	if got := usedBytes(t, user.ID); got != 120 {
		t.Fatalf("used = %d, want 120", got)
	}

	reader, info, err := service.OpenFile(context.Background(), file)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	data, err := io.ReadAll(reader)
	if err != nil {
		t.Fatal(err)
	}
	if int64(len(data)) != 120 || info.Size != 120 {
		t.Fatalf("stored %d bytes (info %d), want 120", len(data), info.Size)
	}
}

func TestUploadFileQuotaExceededLeavesNothing(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "full", model.RoleUser, 50)

	data := bytes.Repeat([]byte("b"), 100)
	_, err := service.UploadFile(context.Background(), user.ID, nil, "big.bin", bytes.NewReader(data), 100, "application/octet-stream")
	if !errors.Is(err, service.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}

	var count int64
	if err := repo.Db.Model(&model.File{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("file rows = %d, want 0", count)
	}
	if got := usedBytes(t, user.ID); got != 0 {
		t.Fatalf("used = %d, want 0", got)
	}
	if n := testStore.count(); n != 0 {
		t.Fatalf("orphan objects in store: %d", n)
	}
}

func TestUploadFileDuplicateName(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "dup", model.RoleUser, 1000)

	uploadTestFile(t, user.ID, nil, "notes.txt", 10)
	data := []byte("other")
	_, err := service.UploadFile(context.Background(), user.ID, nil, "notes.txt", bytes.NewReader(data), int64(len(data)), "text/plain")
	if err == nil {
		t.Fatal("duplicate name accepted")
	}
}

func TestCipherRoleCannotUpload(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "cipher", model.RoleCipher, -1)

	data := []byte("x")
	_, err := service.UploadFile(context.Background(), user.ID, nil, "x.txt", bytes.NewReader(data), 1, "text/plain")
	if !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestFoldersTakeNoQuota(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "folders", model.RoleUser, 1000)

	if _, err := service.CreateFolder(user.ID, nil, "docs"); err != nil {
		t.Fatal(err)
	}
	if got := usedBytes(t, user.ID); got != 0 {
		t.Fatalf("used = %d, want 0", got)
	}
}

func TestDeleteFileReleasesQuota(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "delete", model.RoleUser, 1000)

	file := uploadTestFile(t, user.ID, nil, "temp.bin", 200)
	if err := service.DeleteFile(file.ID, user.ID); err != nil {
		t.Fatal(err)
	}
	if got := usedBytes(t, user.ID); got != 0 {
		t.Fatalf("used = %d, want 0", got)
	}
	if n := testStore.count(); n != 0 {
		t.Fatalf("objects left in store: %d", n)
	}
}

func TestDeleteFolderRecursive(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "tree", model.RoleUser, 10000)

	root, err := service.CreateFolder(user.ID, nil, "projects")
	if err != nil {
		t.Fatal(err)
	}
	sub, err := service.CreateFolder(user.ID, &root.ID, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	uploadTestFile(t, user.ID, &root.ID, "readme.md", 100)
	uploadTestFile(t, user.ID, &sub.ID, "main.go", 250)
	if got := usedBytes(t, user.ID); got != 350 {
		t.Fatalf("used = %d, want 350", got)
	}

	if err := service.DeleteFile(root.ID, user.ID); err != nil {
		t.Fatal(err)
	}
	var count int64
	if err := repo.Db.Model(&model.File{}).Where("owner_id = ?", user.ID).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("file rows = %d, want 0", count)
	}
	if got := usedBytes(t, user.ID); got != 0 {
		t.Fatalf("used = %d, want 0", got)
	}
	if n := testStore.count(); n != 0 {
		t.Fatalf("objects left in store: %d", n)
	}
}

func TestDeleteFileRequiresOwnerOrAdmin(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "owner", model.RoleUser, 1000)
	other := seedUser(t, "other", model.RoleUser, 1000)
	admin := seedUser(t, "admin", model.RoleAdmin, -1)

	file := uploadTestFile(t, owner.ID, nil, "mine.txt", 10)
	if err := service.DeleteFile(file.ID, other.ID); !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
	if err := service.DeleteFile(file.ID, admin.ID); err != nil {
		t.Fatal(err)
	}
	// Freed bytes go back to the owner, not the admin.
	if got := usedBytes(t, owner.ID); got != 0 {
		t.Fatalf("owner used = %d, want 0", got)
	}
}

func TestUsageMatchesStoredSizes(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "sum", model.RoleUser, 10000)

	a := uploadTestFile(t, user.ID, nil, "a.bin", 100)
	uploadTestFile(t, user.ID, nil, "b.bin", 300)
	uploadTestFile(t, user.ID, nil, "c.bin", 50)
	if err := service.DeleteFile(a.ID, user.ID); err != nil {
		t.Fatal(err)
	}

	var sum struct{ Total int64 }
	if err := repo.Db.Model(&model.File{}).
		Select("COALESCE(SUM(size_bytes), 0) AS total").
		Where("owner_id = ? AND is_folder = ?", user.ID, false).
		Scan(&sum).Error; err != nil {
		t.Fatal(err)
	}
	if got := usedBytes(t, user.ID); got != sum.Total {
		t.Fatalf("used = %d, stored sizes sum to %d", got, sum.Total)
	}
}
