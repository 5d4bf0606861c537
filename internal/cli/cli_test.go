package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"github.com/xuri/excelize/v2"

	"catalog_admin_v1_202610/internal/bootstrap"
	"catalog_admin_v1_202610/internal/config"
	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/internal/testutil"
)

type testApp struct {
	app *cli.App
	out *bytes.Buffer
}

func newTestApp(t *testing.T, jwtSecret string) *testApp {
	t.Helper()

	prev := middleware.GetJWTConfig()
	t.Cleanup(func() { middleware.SetJWTConfig(prev) })

	db := testutil.NewDB(t)
	cfg := &config.Config{
		Server:  config.ServerConfig{BulkRatePerMinute: 6, BulkBurst: 3},
		Storage: config.StorageConfig{Provider: "local", BasePath: t.TempDir(), PublicURL: "http://localhost:8080/storage"},
		JWT:     config.JWTConfig{Secret: jwtSecret, Issuer: "catalog-admin"},
		Import:  config.ImportConfig{MaxFileSizeKB: 5120, BatchSize: 100},
		Tasks:   config.TasksConfig{ImportLogRetentionDays: 30, ImportLogCleanupSpec: "0 30 3 * * *"},
	}

	out := &bytes.Buffer{}
	app := NewApp(out, func(c *cli.Context) (*bootstrap.Dependencies, error) {
		return bootstrap.NewWithDB(context.Background(), cfg, db, nil)
	})
	// 不让 cli.Exit 退出测试进程
	app.ExitErrHandler = func(*cli.Context, error) {}
	return &testApp{app: app, out: out}
}

func (a *testApp) run(args ...string) error {
	a.out.Reset()
	return a.app.Run(append([]string{"catalogctl"}, args...))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func exitCode(err error) int {
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return -1
}

func TestImportExportCommands(t *testing.T) {
	a := newTestApp(t, "")

	path := writeFile(t, "products.csv", "name,price,tags\nMug,9.99,\"kitchen, gift\"\nVase,50,decor\n")
	require.NoError(t, a.run("import", "--file", path))
	assert.Contains(t, a.out.String(), "成功: 2")
	assert.Contains(t, a.out.String(), "Products imported successfully.")

	dir := t.TempDir()
	require.NoError(t, a.run("export", "--out", dir, "--min-price", "10"))
	assert.Contains(t, a.out.String(), "已导出 1 条商品")

	matches, err := filepath.Glob(filepath.Join(dir, "products_*.xlsx"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	f, err := excelize.OpenFile(matches[0])
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Vase", rows[1][1])
}

func TestImportCommand_RowErrors(t *testing.T) {
	a := newTestApp(t, "")

	path := writeFile(t, "bad.csv", "name,price\nOK,1\n,abc\n")
	err := a.run("import", "--file", path)
	require.Error(t, err)
	assert.Equal(t, 1, exitCode(err))

	out := a.out.String()
	assert.Contains(t, out, "ROW")
	assert.Contains(t, out, "Product name is required")
	assert.Contains(t, out, "Price must be a number")
}

func TestImportCommand_FileError(t *testing.T) {
	a := newTestApp(t, "")

	path := writeFile(t, "notes.txt", "hello")
	err := a.run("import", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported")

	err = a.run("import", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, 2, exitCode(err))
}

func TestExportCommand_InvalidPrice(t *testing.T) {
	a := newTestApp(t, "")

	err := a.run("export", "--out", t.TempDir(), "--max-price", "cheap")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--max-price")
}

func TestLogsAndCleanupCommands(t *testing.T) {
	a := newTestApp(t, "")

	require.NoError(t, a.run("logs"))
	assert.Contains(t, a.out.String(), "暂无导入记录")

	path := writeFile(t, "p.csv", "name,price\nA,1\n")
	require.NoError(t, a.run("import", "--file", path))

	require.NoError(t, a.run("logs", "-n", "5"))
	assert.Contains(t, a.out.String(), "p.csv")
	assert.Contains(t, a.out.String(), "success")

	require.NoError(t, a.run("cleanup"))
	assert.Contains(t, a.out.String(), "已删除 0 条导入记录")
}

func TestMigrateCommand(t *testing.T) {
	a := newTestApp(t, "")
	require.NoError(t, a.run("migrate"))
	assert.Contains(t, a.out.String(), "迁移完成")
}

func TestTokenCommand(t *testing.T) {
	a := newTestApp(t, "cli-secret")
	require.NoError(t, a.run("token", "--user-id", "9", "--username", "ops"))

	token := strings.TrimSpace(a.out.String())
	claims, err := middleware.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(9), claims.UserID)
	assert.Equal(t, "ops", claims.Username)

	// 未配置密钥
	b := newTestApp(t, "")
	err = b.run("token")
	assert.Equal(t, 1, exitCode(err))
}
