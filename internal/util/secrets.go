package util

import (
	"encoding/json"
	"fmt"
	"os"
)

type Secrets struct {
	Db        DbSecrets       `json:"db"`
	Execution ExecutionConfig `json:"execution"`
	// BenchmarkSymbol names the price series backtests run against.
	BenchmarkSymbol string `json:"benchmarkSymbol"`
}

type DbSecrets struct {
	Host      string `json:"host"`
	User      string `json:"user"`
	Port      string `json:"port"`
	Password  string `json:"password"`
	Database  string `json:"database"`
	EnableSsl bool   `json:"enableSsl"`
}

func (t DbSecrets) ToConnectionStr() string {
	x := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		t.Host, t.Port, t.User, t.Password, t.Database)
	if !t.EnableSsl {
		x += " sslmode=disable"
	}
	return x
}

// ExecutionConfig fixes the per-deployment execution limits. Budgets
// are deliberately not per-request so a strategy author cannot grant
// themselves more.
type ExecutionConfig struct {
	Workers           int `json:"workers"`
	QueueDepth        int `json:"queueDepth"`
	MaxWallClockSecs  int `json:"maxWallClockSecs"`
	MaxOutputRecords  int `json:"maxOutputRecords"`
	MaxEvalsPerPeriod int `json:"maxEvalsPerPeriod"`
}

func LoadSecrets() (*Secrets, error) {
	secretsFile := "/go/src/app/secrets.json"
	if os.Getenv("QUANTLAB_ENV") == "dev" {
		secretsFile = "secrets-dev.json"
	} else if os.Getenv("QUANTLAB_ENV") == "test" {
		secretsFile = "secrets-test.json"
	}
	f, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", secretsFile, err)
	}

	secrets := Secrets{}
	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, err
	}

	return &secrets, nil
}
