package accounts

import (
	"testing"

	"github.com/postpilot/composer/internal/rules"
)

func testAccounts() []Account {
	return []Account{
		{Platform: rules.PlatformInstagram, AccountID: "ig-100", BrandID: "acme"},
		{Platform: rules.PlatformInstagram, AccountID: "ig-200", BrandID: "acme"},
		{Platform: rules.PlatformX, AccountID: "x-100", BrandID: "globex"},
		{Platform: rules.PlatformLinkedIn, AccountID: "li-100", BrandID: "acme"},
	}
}

func TestNewDirectoryRejectsIncompleteAccounts(t *testing.T) {
	t.Parallel()

	if _, err := NewDirectory([]Account{{Platform: rules.PlatformX, AccountID: " ", BrandID: "acme"}}); err == nil {
		t.Fatal("expected error for blank account id")
	}
	if _, err := NewDirectory([]Account{{Platform: "friendster", AccountID: "1", BrandID: "acme"}}); err == nil {
		t.Fatal("expected error for unknown platform")
	}
}

func TestForPlatformUsesFirstAccount(t *testing.T) {
	t.Parallel()

	directory, err := NewDirectory(testAccounts())
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	account, ok := directory.ForPlatform(rules.PlatformInstagram, "")
	if !ok || account.AccountID != "ig-100" {
		t.Fatalf("unexpected account %+v", account)
	}
	if count := directory.CountForPlatform(rules.PlatformInstagram, "acme"); count != 2 {
		t.Fatalf("unexpected account count %d", count)
	}
}

func TestForPlatformHonorsBrandScope(t *testing.T) {
	t.Parallel()

	directory, err := NewDirectory(testAccounts())
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	if _, ok := directory.ForPlatform(rules.PlatformX, "acme"); ok {
		t.Fatal("x account should not resolve under acme")
	}
	account, ok := directory.ForPlatform(rules.PlatformX, "globex")
	if !ok || account.AccountID != "x-100" {
		t.Fatalf("unexpected account %+v", account)
	}
}

func TestBrandsPreserveFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	directory, err := NewDirectory(testAccounts())
	if err != nil {
		t.Fatalf("new directory: %v", err)
	}

	brands := directory.Brands()
	if len(brands) != 2 || brands[0] != "acme" || brands[1] != "globex" {
		t.Fatalf("unexpected brands %v", brands)
	}
}
