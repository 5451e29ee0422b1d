package service_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"cipherdrive/internal/repo"
	"cipherdrive/internal/service"
	"cipherdrive/model"
)

func seedShare(t *testing.T, ownerID, fileID uint64, expiresAt *time.Time, maxDownloads *int64, password string) *model.ShareLink {
	t.Helper()
	link, err := service.CreateShare(ownerID, fileID, expiresAt, maxDownloads, password)
	if err != nil {
		t.Fatal(err)
	}
	return link
}

func backdateExpiry(t *testing.T, linkID uint64) {
	t.Helper()
	past := time.Now().Add(-time.Hour)
	if err := repo.Db.Model(&model.ShareLink{}).
		Where("id = ?", linkID).
		Update("expires_at", &past).Error; err != nil {
		t.Fatal(err)
	}
}

func reloadShare(t *testing.T, linkID uint64) *model.ShareLink {
	t.Helper()
	var link model.ShareLink
	if err := repo.Db.Where("id = ?", linkID).First(&link).Error; err != nil {
		t.Fatal(err)
	}
	return &link
}

func TestCreateShareRequiresOwnership(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sowner", model.RoleUser, 1000)
	other := seedUser(t, "sother", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "shared.txt", 10)

	_, err := service.CreateShare(other.ID, file.ID, nil, nil, "")
	if !errors.Is(err, service.ErrNotOwner) {
		t.Fatalf("err = %v, want ErrNotOwner", err)
	}
}

func TestCreateShareRejectsFolder(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sfolder", model.RoleUser, 1000)
	folder, err := service.CreateFolder(owner.ID, nil, "stuff")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := service.CreateShare(owner.ID, folder.ID, nil, nil, ""); err == nil {
		t.Fatal("sharing a folder accepted")
	}
}

func TestCreateShareRejectsPastExpiry(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sexpiry", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "old.txt", 10)

	past := time.Now().Add(-time.Minute)
	_, err := service.CreateShare(owner.ID, file.ID, &past, nil, "")
	if !errors.Is(err, service.ErrInvalidExpiry) {
		t.Fatalf("err = %v, want ErrInvalidExpiry", err)
	}
}

func TestRedeemShareIncrementsCounter(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sredeem", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "doc.pdf", 40)
	link := seedShare(t, owner.ID, file.ID, nil, nil, "")

	for i := 1; i <= 3; i++ {
		got, redeemed, err := service.RedeemShare(link.Token, "")
		if err != nil {
			t.Fatal(err)
		}
		if got.CurrentDownloads != int64(i) {
			t.Fatalf("downloads = %d, want %d", got.CurrentDownloads, i)
		}
		if redeemed.ID != file.ID {
			t.Fatalf("redeemed file %d, want %d", redeemed.ID, file.ID)
		}
	}
}

func TestRedeemShareWrongPasswordDoesNotCount(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "spwd", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "secret.txt", 10)
	link := seedShare(t, owner.ID, file.ID, nil, nil, "hunter2")

	_, _, err := service.RedeemShare(link.Token, "wrong")
	if !errors.Is(err, service.ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if got := reloadShare(t, link.ID); got.CurrentDownloads != 0 {
		t.Fatalf("downloads = %d after wrong password, want 0", got.CurrentDownloads)
	}

	got, _, err := service.RedeemShare(link.Token, "hunter2")
	if err != nil {
		t.Fatal(err)
	}
	if got.CurrentDownloads != 1 {
		t.Fatalf("downloads = %d, want 1", got.CurrentDownloads)
	}
}

func TestRedeemShareDownloadLimit(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "slimit", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "once.txt", 10)
	max := int64(1)
	link := seedShare(t, owner.ID, file.ID, nil, &max, "")

	if _, _, err := service.RedeemShare(link.Token, ""); err != nil {
		t.Fatal(err)
	}
	_, _, err := service.RedeemShare(link.Token, "")
	if !errors.Is(err, service.ErrDownloadLimitReached) {
		t.Fatalf("err = %v, want ErrDownloadLimitReached", err)
	}
	if got := reloadShare(t, link.ID); got.Status != model.ShareExpired {
		t.Fatalf("status = %s after limit, want expired", got.Status)
	}
}

func TestRedeemShareConcurrentSingleSlot(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "srace", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "race.txt", 10)
	max := int64(1)
	link := seedShare(t, owner.ID, file.ID, nil, &max, "")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = service.RedeemShare(link.Token, "")
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		}
	}
	if successes != 1 {
		t.Fatalf("successes = %d, want exactly 1", successes)
	}
	if got := reloadShare(t, link.ID); got.CurrentDownloads != 1 {
		t.Fatalf("downloads = %d, want 1", got.CurrentDownloads)
	}
}

func TestRedeemShareExpired(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sexp", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "stale.txt", 10)
	future := time.Now().Add(time.Hour)
	link := seedShare(t, owner.ID, file.ID, &future, nil, "")
	backdateExpiry(t, link.ID)

	_, _, err := service.RedeemShare(link.Token, "")
	if !errors.Is(err, service.ErrShareExpired) {
		t.Fatalf("err = %v, want ErrShareExpired", err)
	}
	if got := reloadShare(t, link.ID); got.Status != model.ShareExpired {
		t.Fatalf("status = %s, want expired", got.Status)
	}
}

func TestDisableShare(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sdis", model.RoleUser, 1000)
	other := seedUser(t, "sdisother", model.RoleUser, 1000)
	admin := seedUser(t, "sdisadmin", model.RoleAdmin, -1)
	file := uploadTestFile(t, owner.ID, nil, "gone.txt", 10)
	link := seedShare(t, owner.ID, file.ID, nil, nil, "")

	if err := service.DisableShare(link.ID, other.ID); !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
	if err := service.DisableShare(link.ID, owner.ID); err != nil {
		t.Fatal(err)
	}
	// Disabling twice is a no-op, including for an admin.
	if err := service.DisableShare(link.ID, admin.ID); err != nil {
		t.Fatal(err)
	}

	_, _, err := service.RedeemShare(link.Token, "")
	if !errors.Is(err, service.ErrShareDisabled) {
		t.Fatalf("err = %v, want ErrShareDisabled", err)
	}
}

func TestValidateShareDoesNotCount(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sval", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "peek.txt", 10)
	link := seedShare(t, owner.ID, file.ID, nil, nil, "")

	for i := 0; i < 3; i++ {
		if _, _, err := service.ValidateShare(link.Token, ""); err != nil {
			t.Fatal(err)
		}
	}
	if got := reloadShare(t, link.ID); got.CurrentDownloads != 0 {
		t.Fatalf("downloads = %d after metadata reads, want 0", got.CurrentDownloads)
	}
}

func TestValidateShareAfterLimitExhausted(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sspent", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "spent.txt", 10)
	max := int64(1)
	link := seedShare(t, owner.ID, file.ID, nil, &max, "")

	if _, _, err := service.RedeemShare(link.Token, ""); err != nil {
		t.Fatal(err)
	}
	// The metadata endpoint must report exhaustion, not the stale
	// creation-time counter.
	_, _, err := service.ValidateShare(link.Token, "")
	if !errors.Is(err, service.ErrDownloadLimitReached) {
		t.Fatalf("err = %v, want ErrDownloadLimitReached", err)
	}
	if got := reloadShare(t, link.ID); got.Status != model.ShareExpired {
		t.Fatalf("status = %s, want expired", got.Status)
	}
}

func TestSweepExpiredShares(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "ssweep", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "sweep.txt", 10)

	future := time.Now().Add(time.Hour)
	stale := seedShare(t, owner.ID, file.ID, &future, nil, "")
	fresh := seedShare(t, owner.ID, file.ID, &future, nil, "")
	open := seedShare(t, owner.ID, file.ID, nil, nil, "")
	backdateExpiry(t, stale.ID)

	count, err := service.SweepExpiredShares()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("swept = %d, want 1", count)
	}
	if got := reloadShare(t, stale.ID); got.Status != model.ShareExpired {
		t.Fatalf("stale status = %s, want expired", got.Status)
	}
	if got := reloadShare(t, fresh.ID); got.Status != model.ShareActive {
		t.Fatalf("fresh status = %s, want active", got.Status)
	}
	if got := reloadShare(t, open.ID); got.Status != model.ShareActive {
		t.Fatalf("open status = %s, want active", got.Status)
	}
}

func TestGetShareStats(t *testing.T) {
	cleanTables(t)
	owner := seedUser(t, "sstats", model.RoleUser, 1000)
	file := uploadTestFile(t, owner.ID, nil, "stats.txt", 10)

	active := seedShare(t, owner.ID, file.ID, nil, nil, "")
	future := time.Now().Add(time.Hour)
	stale := seedShare(t, owner.ID, file.ID, &future, nil, "")
	backdateExpiry(t, stale.ID)

	if _, _, err := service.RedeemShare(active.Token, ""); err != nil {
		t.Fatal(err)
	}
	if _, err := service.SweepExpiredShares(); err != nil {
		t.Fatal(err)
	}

	stats, err := service.GetShareStats(owner.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stats.TotalShares != 2 || stats.ActiveShares != 1 || stats.ExpiredShares != 1 || stats.TotalDownloads != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
