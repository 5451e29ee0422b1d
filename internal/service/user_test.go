package service_test

import (
	"errors"
	"testing"

	"cipherdrive/config"
	"cipherdrive/internal/repo"
	"cipherdrive/internal/service"
	"cipherdrive/model"
)

func TestProvisionUserDefaultQuotas(t *testing.T) {
	cleanTables(t)

	user, err := service.ProvisionUser("plainuser", "plain@test.com", "123456", model.RoleUser, nil)
	if err != nil {
		t.Fatal(err)
	}
	if user.QuotaBytes != config.AppConfig.DefaultQuotaBytes {
		t.Fatalf("user quota = %d, want %d", user.QuotaBytes, config.AppConfig.DefaultQuotaBytes)
	}

	admin, err := service.ProvisionUser("rootuser", "root@test.com", "123456", model.RoleAdmin, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !admin.QuotaExempt() {
		t.Fatalf("admin quota = %d, want exempt", admin.QuotaBytes)
	}

	cipher, err := service.ProvisionUser("mediauser", "media@test.com", "123456", model.RoleCipher, nil)
	if err != nil {
		t.Fatal(err)
	}
	if cipher.QuotaBytes != config.AppConfig.CipherQuotaBytes {
		t.Fatalf("cipher quota = %d, want %d", cipher.QuotaBytes, config.AppConfig.CipherQuotaBytes)
	}
}

func TestProvisionUserRejectsUnknownRole(t *testing.T) {
	cleanTables(t)
	if _, err := service.ProvisionUser("odd", "odd@test.com", "123456", model.Role("superuser"), nil); err == nil {
		t.Fatal("unknown role accepted")
	}
}

func TestAuthenticate(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "auth", model.RoleUser, 1000)

	got, err := service.Authenticate(user.UserName, "123456")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != user.ID {
		t.Fatalf("authenticated user %d, want %d", got.ID, user.ID)
	}

	if _, err := service.Authenticate(user.UserName, "nope"); !errors.Is(err, service.ErrWrongPassword) {
		t.Fatalf("err = %v, want ErrWrongPassword", err)
	}
	if _, err := service.Authenticate("ghost", "123456"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	if err := repo.Db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("is_active", false).Error; err != nil {
		t.Fatal(err)
	}
	if _, err := service.Authenticate(user.UserName, "123456"); !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}
}

func TestSetUserQuota(t *testing.T) {
	cleanTables(t)
	admin := seedUser(t, "qadmin", model.RoleAdmin, -1)
	user := seedUser(t, "quser", model.RoleUser, 1000)

	if err := service.SetUserQuota(user, user.ID, 500); !errors.Is(err, service.ErrNotAuthorized) {
		t.Fatalf("err = %v, want ErrNotAuthorized", err)
	}

	uploadTestFile(t, user.ID, nil, "keep.bin", 400)
	if err := service.SetUserQuota(admin, user.ID, 300); err == nil {
		t.Fatal("quota below usage accepted")
	}
	if err := service.SetUserQuota(admin, user.ID, 2000); err != nil {
		t.Fatal(err)
	}
	got, err := service.GetUser(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.QuotaBytes != 2000 {
		t.Fatalf("quota = %d, want 2000", got.QuotaBytes)
	}
}

func TestPasswordResetFlow(t *testing.T) {
	cleanTables(t)
	user := seedUser(t, "reset", model.RoleUser, 1000)

	reset, err := service.CreatePasswordReset(user.Email)
	if err != nil {
		t.Fatal(err)
	}
	if err := service.ResetPassword(reset.Token, "newpass"); err != nil {
		t.Fatal(err)
	}
	if _, err := service.Authenticate(user.UserName, "newpass"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
	if _, err := service.Authenticate(user.UserName, "123456"); !errors.Is(err, service.ErrWrongPassword) {
		t.Fatalf("old password still works: %v", err)
	}

	// A reset token is single use.
	if err := service.ResetPassword(reset.Token, "another"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound on reuse", err)
	}
}

func TestPasswordResetUnknownEmail(t *testing.T) {
	cleanTables(t)
	if _, err := service.CreatePasswordReset("nobody@test.com"); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
