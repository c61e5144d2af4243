package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rpupo63/company-rating-backend/config"
	"github.com/rpupo63/company-rating-backend/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRanking(t *testing.T) {
	var buf bytes.Buffer
	err := writeRanking(&buf, []models.RankedCompany{
		{Company: "Acme", Location: "NY", Stipend: 5000, AverageScore: 4.5},
		{Company: "Globex", Location: "Berlin", Stipend: 3000, AverageScore: 0},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "4.50")
	assert.Contains(t, out, "Globex")
	assert.Contains(t, out, "0.00")
	assert.Less(t, strings.Index(out, "Acme"), strings.Index(out, "Globex"))
}

func TestOpenDatabase(t *testing.T) {
	db, err := openDatabase(context.Background(), config.Config{DBType: "memory"})
	require.NoError(t, err)
	require.NotNil(t, db.CompanyRepo())
	assert.NoError(t, db.Close(context.Background()))

	_, err = openDatabase(context.Background(), config.Config{DBType: "sqlite"})
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	var buf bytes.Buffer
	setupLogging(config.Config{LogLevel: "warn", LogFormat: "json"}, &buf)
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())

	log.Info().Msg("dropped")
	log.Warn().Msg("kept")
	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), `"message":"kept"`)
}
