package common

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type SeedAccount struct {
	Name           string `yaml:"name"`
	Email          string `yaml:"email"`
	Phone          string `yaml:"phone"`
	OpeningBalance string `yaml:"opening_balance"`
}

type SeedAccountsConfig struct {
	Accounts []SeedAccount `yaml:"accounts"`
}

// LoadSeedAccounts reads the account seed file used by cmd/setup.
func LoadSeedAccounts(accountsFile string) ([]SeedAccount, error) {
	var accountsPath string
	if filepath.IsAbs(accountsFile) {
		accountsPath = accountsFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		accountsPath = filepath.Join(wd, accountsFile)
	}

	data, err := os.ReadFile(accountsPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", accountsFile, err)
	}

	var config SeedAccountsConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", accountsFile, err)
	}

	for i, account := range config.Accounts {
		if account.Name == "" {
			return nil, fmt.Errorf("account at index %d missing name", i)
		}
		if account.Email == "" {
			return nil, fmt.Errorf("account at index %d missing email", i)
		}
		if account.Phone == "" {
			return nil, fmt.Errorf("account at index %d missing phone", i)
		}
	}

	return config.Accounts, nil
}
