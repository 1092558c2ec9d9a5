package database

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pth/internal/config"
)

func TestDSN(t *testing.T) {
	m := NewManager(config.Database{
		Host:     "db.local",
		Port:     "3307",
		User:     "app",
		Password: "s3cr:t",
		Name:     "testing",
	}, nil)

	parsed, err := mysql.ParseDSN(m.DSN())
	require.NoError(t, err)
	assert.Equal(t, "app", parsed.User)
	assert.Equal(t, "s3cr:t", parsed.Passwd)
	assert.Equal(t, "tcp", parsed.Net)
	assert.Equal(t, "db.local:3307", parsed.Addr)
	assert.Empty(t, parsed.DBName)
}

func TestIsValidDatabaseName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"testing", true},
		{"app_test_1", true},
		{"laravel-testing", true},
		{"", false},
		{"a`b", false},
		{"x; DROP DATABASE y", false},
		{"name'quote", false},
		{string(make([]byte, 65)), false},
	}

	for _, tt := range tests {
		if got := isValidDatabaseName(tt.name); got != tt.want {
			t.Errorf("isValidDatabaseName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEnsureDatabase_RejectsInvalidName(t *testing.T) {
	m := NewManager(config.Database{Host: "127.0.0.1", Port: "3306", User: "root", Name: "bad;name"}, nil)
	_, err := m.EnsureDatabase(context.Background())
	assert.ErrorContains(t, err, "invalid database name")
}
