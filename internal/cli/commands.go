package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"catalog_admin_v1_202610/internal/bootstrap"
	"catalog_admin_v1_202610/internal/middleware"
	"catalog_admin_v1_202610/internal/repository"
	"catalog_admin_v1_202610/internal/service"
)

// ==================== import ====================

func (r *runner) importCmd() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "从 xlsx / xls / csv 导入商品",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "待导入文件", Required: true},
			&cli.Int64Flag{Name: "user-id", Usage: "记录到导入日志的操作人"},
		},
		Action: func(c *cli.Context) error {
			path := c.String("file")
			f, err := os.Open(path)
			if err != nil {
				return cli.Exit(fmt.Sprintf("打开文件失败: %v", err), 2)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return cli.Exit(fmt.Sprintf("读取文件信息失败: %v", err), 2)
			}

			return r.withDeps(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				result, err := deps.Services.Import.Import(ctx, service.ImportFile{
					Name:   filepath.Base(path),
					Size:   info.Size(),
					Reader: f,
					UserID: c.Int64("user-id"),
				})
				if err != nil {
					var fe *service.FileError
					if errors.As(err, &fe) {
						return cli.Exit(fmt.Sprintf("文件无法导入 (%s): %v", fe.Reason, err), 1)
					}
					return cli.Exit(fmt.Sprintf("导入失败，已导入 %d 条: %v", result.ImportedCount, err), 1)
				}

				fmt.Fprintf(r.out, "格式: %s  数据行: %d  成功: %d  批次: %d\n",
					result.Format, result.TotalRows, result.ImportedCount, result.Batches)

				if !result.HasErrors() {
					fmt.Fprintln(r.out, "Products imported successfully.")
					return nil
				}

				w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ROW\tATTRIBUTE\tERRORS")
				for _, e := range result.Errors {
					fmt.Fprintf(w, "%d\t%s\t%s\n", e.Row, e.Attribute, strings.Join(e.Errors, "; "))
				}
				_ = w.Flush()
				return cli.Exit(fmt.Sprintf("%d 行校验失败", result.FailedRows()), 1)
			})
		},
	}
}

// ==================== export ====================

func (r *runner) exportCmd() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "按筛选条件导出 xlsx",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "输出目录", Value: "."},
			&cli.StringFlag{Name: "search", Usage: "名称或描述关键字"},
			&cli.StringFlag{Name: "min-price", Usage: "最低价格"},
			&cli.StringFlag{Name: "max-price", Usage: "最高价格"},
			&cli.StringFlag{Name: "sort", Usage: "排序字段 id|name|price|created_at|updated_at"},
			&cli.StringFlag{Name: "direction", Usage: "asc|desc", Value: "asc"},
		},
		Action: func(c *cli.Context) error {
			filter, err := filterFromFlags(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			dir := c.String("out")
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return cli.Exit(fmt.Sprintf("创建输出目录失败: %v", err), 2)
			}

			return r.withDeps(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				path := filepath.Join(dir, service.ExportFileName(time.Now()))
				f, err := os.Create(path)
				if err != nil {
					return cli.Exit(fmt.Sprintf("创建文件失败: %v", err), 1)
				}

				n, err := deps.Services.Export.Export(ctx, filter, f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					_ = os.Remove(path)
					return cli.Exit(fmt.Sprintf("导出失败: %v", err), 1)
				}

				fmt.Fprintf(r.out, "已导出 %d 条商品到 %s\n", n, path)
				return nil
			})
		},
	}
}

func filterFromFlags(c *cli.Context) (repository.ProductFilter, error) {
	filter := repository.ProductFilter{
		Search:    c.String("search"),
		Sort:      c.String("sort"),
		Direction: strings.ToLower(c.String("direction")),
	}
	for _, p := range []struct {
		flag string
		dst  **decimal.Decimal
	}{
		{"min-price", &filter.MinPrice},
		{"max-price", &filter.MaxPrice},
	} {
		raw := strings.TrimSpace(c.String(p.flag))
		if raw == "" {
			continue
		}
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, fmt.Errorf("--%s 必须是数字", p.flag)
		}
		*p.dst = &d
	}
	return filter, nil
}

// ==================== migrate ====================

func (r *runner) migrateCmd() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "建表 / 补字段",
		Action: func(c *cli.Context) error {
			return r.withDeps(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				if err := deps.Migrate(ctx); err != nil {
					return cli.Exit(fmt.Sprintf("迁移失败: %v", err), 1)
				}
				fmt.Fprintln(r.out, "迁移完成")
				return nil
			})
		},
	}
}

// ==================== logs / cleanup ====================

func (r *runner) logsCmd() *cli.Command {
	return &cli.Command{
		Name:  "logs",
		Usage: "查看最近的导入记录",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20},
		},
		Action: func(c *cli.Context) error {
			return r.withDeps(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				logs, err := deps.Services.Import.RecentLogs(ctx, c.Int("limit"))
				if err != nil {
					return cli.Exit(fmt.Sprintf("查询失败: %v", err), 1)
				}
				if len(logs) == 0 {
					fmt.Fprintln(r.out, "暂无导入记录")
					return nil
				}

				w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTIME\tFILE\tSTATUS\tROWS\tIMPORTED\tFAILED")
				for _, l := range logs {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\n",
						l.ID, l.CreatedAt.Format(service.ExportTimeLayout), l.FileName,
						l.Status, l.TotalRows, l.ImportedCount, l.FailedRows)
				}
				return w.Flush()
			})
		},
	}
}

func (r *runner) cleanupCmd() *cli.Command {
	return &cli.Command{
		Name:  "cleanup",
		Usage: "立即清理过期导入记录",
		Action: func(c *cli.Context) error {
			return r.withDeps(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				deleted, err := deps.TaskManager().TriggerImportLogCleanup(ctx)
				if err != nil {
					return cli.Exit(fmt.Sprintf("清理失败: %v", err), 1)
				}
				fmt.Fprintf(r.out, "已删除 %d 条导入记录\n", deleted)
				return nil
			})
		},
	}
}

// ==================== token ====================

func (r *runner) tokenCmd() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "签发管理员 Access Token",
		Flags: []cli.Flag{
			&cli.Int64Flag{Name: "user-id", Value: 1},
			&cli.StringFlag{Name: "username", Value: "admin"},
			&cli.StringFlag{Name: "role", Value: "admin"},
		},
		Action: func(c *cli.Context) error {
			return r.withDeps(c, func(ctx context.Context, deps *bootstrap.Dependencies) error {
				token, err := middleware.GenerateAccessToken(c.Int64("user-id"), c.String("username"), c.String("role"))
				if err != nil {
					return cli.Exit(fmt.Sprintf("签发失败: %v", err), 1)
				}
				fmt.Fprintln(r.out, token)
				return nil
			})
		},
	}
}
