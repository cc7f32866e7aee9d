package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
	"expensetracker/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		LogLevel:       "error",
		LogFormat:      "text",
		StoreBackend:   "sqlite",
		SQLiteDBPath:   filepath.Join(dir, "ledger.db"),
		QueryCacheSize: 4,
		ExportDir:      filepath.Join(dir, "exports"),
	}
}

func runCmd(t *testing.T, cfg *config.Config, args ...string) (string, int) {
	t.Helper()
	var out bytes.Buffer
	code := run(context.Background(), cfg, applog.Discard(), args, &out)
	return out.String(), code
}

func TestRun_Usage(t *testing.T) {
	out, code := runCmd(t, testConfig(t))
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "Usage: expense-tracker")
}

func TestRun_AddListAndBudget(t *testing.T) {
	cfg := testConfig(t)

	out, code := runCmd(t, cfg, "budget", "1000")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Monthly budget set to ₹1000.00")

	today := strings.Fields(mustToday(t, cfg))[0]
	out, code = runCmd(t, cfg, "add", "-amount", "800", "-category", "food", "-desc", "Groceries")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "🍕 Food & Dining ₹800.00 on "+today)
	assert.Contains(t, out, "Heads up!")

	out, code = runCmd(t, cfg, "list", "-category", "food")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "₹800.00")

	out, code = runCmd(t, cfg, "status")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "warning")
	assert.Contains(t, out, "80.0%")
}

func TestRun_ValidationExitCodes(t *testing.T) {
	cfg := testConfig(t)

	out, code := runCmd(t, cfg, "add", "-amount", "0", "-category", "food")
	assert.Equal(t, 2, code)
	assert.Contains(t, out, "error:")

	_, code = runCmd(t, cfg, "delete", "-id", "42", "-yes")
	assert.Equal(t, 3, code)

	_, code = runCmd(t, cfg, "delete", "-id", "42")
	assert.Equal(t, 2, code)

	_, code = runCmd(t, cfg, "frobnicate")
	assert.Equal(t, 2, code)

	_, code = runCmd(t, cfg, "list", "-category", "pets")
	assert.Equal(t, 2, code)
}

func TestRun_StorageFailuresExitWithStorageCode(t *testing.T) {
	cfg := testConfig(t)
	store, err := storage.NewSQLiteStore(cfg.SQLiteDBPath)
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), storage.KeyExpenses, `[{"id":1,`))
	require.NoError(t, store.Close())

	out, code := runCmd(t, cfg, "status")
	assert.Equal(t, 4, code)
	assert.Contains(t, out, "error:")

	cfg = testConfig(t)
	cfg.SQLiteDBPath = t.TempDir()
	_, code = runCmd(t, cfg, "status")
	assert.Equal(t, 4, code)
}

func TestRun_ExportCSVAndJSON(t *testing.T) {
	cfg := testConfig(t)
	_, code := runCmd(t, cfg, "add", "-amount", "200", "-category", "health", "-desc", `Pharmacy "night"`)
	require.Equal(t, 0, code)

	out, code := runCmd(t, cfg, "export")
	require.Equal(t, 0, code, out)
	matches, err := filepath.Glob(filepath.Join(cfg.ExportDir, "expense-tracker-*.csv"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"💊 Health & Medical","200","Pharmacy ""night"""`)

	out, code = runCmd(t, cfg, "export", "-format", "json")
	require.Equal(t, 0, code, out)
	matches, err = filepath.Glob(filepath.Join(cfg.ExportDir, "expense-tracker-*.json"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	_, code = runCmd(t, cfg, "export", "-format", "sheets")
	assert.Equal(t, 2, code)
}

func TestRun_Theme(t *testing.T) {
	cfg := testConfig(t)

	out, code := runCmd(t, cfg, "theme")
	require.Equal(t, 0, code)
	assert.Equal(t, "Theme: light\n", out)

	out, _ = runCmd(t, cfg, "theme", "toggle")
	assert.Equal(t, "Theme: dark\n", out)

	out, _ = runCmd(t, cfg, "theme")
	assert.Equal(t, "Theme: dark\n", out)

	_, code = runCmd(t, cfg, "theme", "sepia")
	assert.Equal(t, 2, code)
}

func TestRun_EditKeepsUnsetFields(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedSampleData = true

	out, code := runCmd(t, cfg, "list", "-category", "transport")
	require.Equal(t, 0, code, out)
	id := firstID(t, out)

	out, code = runCmd(t, cfg, "edit", "-id", id, "-amount", "50")
	require.Equal(t, 0, code, out)
	assert.Contains(t, out, "🚌 Transport ₹50.00")

	out, _ = runCmd(t, cfg, "list", "-category", "transport")
	assert.Contains(t, out, "Auto fare")
}

func TestRun_SummaryAndCategories(t *testing.T) {
	cfg := testConfig(t)
	cfg.SeedSampleData = true

	out, code := runCmd(t, cfg, "summary")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "🎬 Entertainment")
	assert.NotContains(t, out, "Rent")

	out, code = runCmd(t, cfg, "categories")
	require.Equal(t, 0, code)
	assert.Equal(t, 9, strings.Count(out, "\n"))

	out, code = runCmd(t, cfg, "dashboard")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "Total expenses")
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "[--------------------]", progressBar(0))
	assert.Equal(t, "[##########----------]", progressBar(50))
	assert.Equal(t, "[####################]", progressBar(100))
	assert.Equal(t, "[####################]", progressBar(250))
}

func mustToday(t *testing.T, cfg *config.Config) string {
	t.Helper()
	out, code := runCmd(t, cfg, "add", "-amount", "1", "-category", "other", "-desc", "date check")
	require.Equal(t, 0, code, out)
	i := strings.LastIndex(out, " on ")
	require.Greater(t, i, 0)
	id := strings.TrimSuffix(strings.Fields(out)[2], ":")
	_, code = runCmd(t, cfg, "delete", "-id", id, "-yes")
	require.Equal(t, 0, code)
	return out[i+len(" on "):]
}

func firstID(t *testing.T, listing string) string {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(listing), "\n")
	require.GreaterOrEqual(t, len(lines), 2)
	return strings.Fields(lines[1])[0]
}
