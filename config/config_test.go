package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aua-planner/planner/scrape/catalog"
	"github.com/aua-planner/planner/scrape/gened"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "data/courses.json", cfg.Input)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Empty(t, cfg.Database.DSN)
	assert.Equal(t, gened.DefaultURL, cfg.Clusters.URL)
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("DATABASE_CONNECTION_STRING", "")
	t.Setenv("COURSES_DATABASE_DRIVER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Rules(t *testing.T) {
	t.Setenv("DATABASE_CONNECTION_STRING", "")
	t.Setenv("COURSES_DATABASE_DRIVER", "")

	path := filepath.Join(t.TempDir(), "pipeline.yaml")
	doc := `
input: scraped.json
report: missing.csv
database:
  driver: sqlite
  dsn: runs.db
rules:
  extra_exclusions:
    - '\bnot only\b'
  course_types:
    mba: MBA Program's core or track elective course
  defaults:
    times: TBD
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "scraped.json", cfg.Input)
	assert.Equal(t, "data/courses.csv", cfg.Output)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)

	rules, err := cfg.RulesSet()
	require.NoError(t, err)
	assert.Equal(t, "TBD", rules.Defaults[catalog.ColumnTimes])
	assert.Equal(t, "MBA Program's core or track elective course", rules.Type("MBA300"))
	assert.Contains(t, rules.Exclusions, `\bnot only\b`)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DATABASE_CONNECTION_STRING", "postgres://localhost/courses")
	t.Setenv("COURSES_DATABASE_DRIVER", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/courses", cfg.Database.DSN)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("COURSES_DATABASE_DRIVER", "mysql")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("COURSES_DATABASE_DRIVER", "")
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules:\n  defaults:\n    year: '2024'\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestConfig_SaveLoad(t *testing.T) {
	t.Setenv("DATABASE_CONNECTION_STRING", "")
	t.Setenv("COURSES_DATABASE_DRIVER", "")

	path := filepath.Join(t.TempDir(), "nested", "pipeline.yaml")
	cfg := Default()
	cfg.Report = "report.csv"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "report.csv", loaded.Report)
}
