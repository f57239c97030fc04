package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/netusage/internal/config"
)

func TestWriteConfig_RedactsSecrets(t *testing.T) {
	c := &config.Config{
		Store:  config.StoreConfig{DatabaseURL: "postgres://user:pw@db/netusage", MaxConns: 10},
		Source: config.SourceConfig{BaseURL: "https://stats.example", Token: "s3cret"},
		Server: config.ServerConfig{Port: 8080},
	}

	var buf bytes.Buffer
	require.NoError(t, writeConfig(&buf, c))

	out := buf.String()
	assert.NotContains(t, out, "s3cret")
	assert.NotContains(t, out, "pw@db")
	assert.Contains(t, out, "https://stats.example")

	var back config.Config
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &back))
	assert.Equal(t, 8080, back.Server.Port)
	assert.Equal(t, int32(10), back.Store.MaxConns)
	assert.Equal(t, "********", back.Source.Token)

	// The caller's config is left untouched.
	assert.Equal(t, "s3cret", c.Source.Token)
}
