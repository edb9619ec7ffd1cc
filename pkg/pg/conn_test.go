package pg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDSN(t *testing.T) {
	cfg := Config{
		User:     "etl",
		Host:     "warehouse.internal",
		Port:     "5432",
		Password: "secret",
		Database: "finance",
	}
	assert.Equal(t,
		"host=warehouse.internal user=etl password=secret dbname=finance port=5432 sslmode=disable",
		cfg.dsn())
}
