package accounts

import (
	"fmt"
	"strings"

	"github.com/postpilot/composer/internal/rules"
)

// Account is one connected social account: a platform bound to an account
// id under an owning brand.
type Account struct {
	Platform  rules.Platform `json:"platform" yaml:"platform"`
	AccountID string         `json:"account_id" yaml:"account_id"`
	BrandID   string         `json:"brand_id" yaml:"brand_id"`
}

// Directory is a read-only view over the connected accounts. The engine
// never mutates it; the surrounding application owns its contents.
type Directory struct {
	accounts []Account
}

func NewDirectory(accounts []Account) (*Directory, error) {
	cleaned := make([]Account, 0, len(accounts))
	for i, account := range accounts {
		platform, err := rules.ParsePlatform(string(account.Platform))
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i, err)
		}
		accountID := strings.TrimSpace(account.AccountID)
		if accountID == "" {
			return nil, fmt.Errorf("account %d: account_id is required", i)
		}
		brandID := strings.TrimSpace(account.BrandID)
		if brandID == "" {
			return nil, fmt.Errorf("account %d: brand_id is required", i)
		}
		cleaned = append(cleaned, Account{Platform: platform, AccountID: accountID, BrandID: brandID})
	}
	return &Directory{accounts: cleaned}, nil
}

// All returns the directory entries in registration order.
func (d *Directory) All() []Account {
	out := make([]Account, len(d.accounts))
	copy(out, d.accounts)
	return out
}

// ForPlatform resolves the account used for a platform, optionally limited
// to one brand. When several accounts are connected for the same platform
// only the first one is used; a post targets one account per platform, and
// extra accounts need their own submission.
func (d *Directory) ForPlatform(platform rules.Platform, brandID string) (Account, bool) {
	brandID = strings.TrimSpace(brandID)
	for _, account := range d.accounts {
		if account.Platform != platform {
			continue
		}
		if brandID != "" && account.BrandID != brandID {
			continue
		}
		return account, true
	}
	return Account{}, false
}

// CountForPlatform reports how many accounts are connected for a platform
// within the given brand scope. Callers use it to surface the
// first-account-only limitation instead of hiding it.
func (d *Directory) CountForPlatform(platform rules.Platform, brandID string) int {
	brandID = strings.TrimSpace(brandID)
	total := 0
	for _, account := range d.accounts {
		if account.Platform != platform {
			continue
		}
		if brandID != "" && account.BrandID != brandID {
			continue
		}
		total++
	}
	return total
}

// Brands lists the distinct brand ids in first-appearance order.
func (d *Directory) Brands() []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(d.accounts))
	for _, account := range d.accounts {
		if _, ok := seen[account.BrandID]; ok {
			continue
		}
		seen[account.BrandID] = struct{}{}
		out = append(out, account.BrandID)
	}
	return out
}
