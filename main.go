// 命令行入口：
// - 解析 flags 与 settings.yaml
// - 初始化日志、HTTP 客户端、数据库
// - 支持内容校验（-check，可用 -kind 限定集合）、分页调试（-pages）、表格调试（-sheet）与导出（data.json）
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"go-aidevdaily/internal/build"
	"go-aidevdaily/internal/config"
	"go-aidevdaily/internal/content"
	"go-aidevdaily/internal/export"
	"go-aidevdaily/internal/fetch"
	"go-aidevdaily/internal/logx"
	"go-aidevdaily/internal/paginate"
	"go-aidevdaily/internal/schema"
	"go-aidevdaily/internal/sheets"
	"go-aidevdaily/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "settings.yaml", "path to settings.yaml")
		exportPath = flag.String("export", "data.json", "export json path")
		check      = flag.Bool("check", false, "validate content collections and exit (exit 1 on violations)")
		kind       = flag.String("kind", "", "limit -check to one collection: blog|tools|authors")
		pages      = flag.String("pages", "", "print pagination markers for TOTAL,CURRENT and exit")
		sheetOnly  = flag.Bool("sheet", false, "fetch the tools sheet, print tools as json and exit")
	)
	flag.Parse()

	// 0) 分页调试不需要配置
	if *pages != "" {
		total, current, err := parsePages(*pages)
		if err != nil {
			log.Fatalf("-pages: %v", err)
		}
		ms, err := paginate.Markers(total, current)
		if err != nil {
			log.Fatalf("markers: %v", err)
		}
		fmt.Println(paginate.Format(ms))
		return
	}

	// 1) 加载配置并初始化日志：级别/格式/语言/颜色
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logx.Init(logx.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Locale: cfg.LogLocale, Color: cfg.LogColor})

	ctx := context.Background()
	if *check {
		// 2) 仅校验内容集合
		os.Exit(runCheck(cfg.ContentDir, *kind))
	}

	// 3) 初始化 HTTP 客户端（含代理与重试）
	cl, err := fetch.New(fetch.Options{
		ProxyHTTP:  cfg.Proxy.HTTP,
		ProxyHTTPS: cfg.Proxy.HTTPS,
		Timeout:    cfg.Fetch.TimeoutDuration(),
		Retry:      cfg.Fetch.Retry,
	})
	if err != nil {
		log.Fatalf("http client: %v", err)
	}

	if *sheetOnly {
		// 4) 调试：只抓取表格并打印结果
		format, err := sheets.ParseFormat(cfg.Sheet.Format)
		if err != nil {
			log.Fatalf("sheet format: %v", err)
		}
		tools, err := sheets.Fetch(ctx, cl, sheets.Source{URL: cfg.Sheet.URL, Format: format, Sheet: cfg.Sheet.Name})
		if err != nil {
			logx.Errorf("从表格获取工具失败：%v", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tools); err != nil {
			log.Fatalf("encode tools: %v", err)
		}
		logx.Infof("表格共 %d 条工具", len(tools))
		return
	}

	// 5) 数据存储：极简模式不打开数据库；正常模式打开并按需重置
	var st *store.SQLite
	if !cfg.SimpleMode {
		st, err = store.OpenSQLite(cfg.Database.DSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer st.Close()
		if cfg.ResetOnStart {
			if err := st.Reset(ctx); err != nil {
				logx.Warnf("启动清理数据库失败：%v", err)
			} else {
				logx.Infof("已清理数据库表（tools/entries/fetch_log/builds）")
			}
		}
	} else if cfg.ResetOnStart {
		logx.Infof("极简模式：跳过数据库打开与清理")
	}
	if cfg.ResetOnStart && *exportPath != "" {
		if err := os.Remove(*exportPath); err == nil {
			logx.Infof("已删除导出文件：%s", *exportPath)
		}
	}

	// 6) 运行构建流程
	run := build.New(cfg, st, cl)
	logx.Infof("开始构建：极简模式=%v", cfg.SimpleMode)
	if err := run.Run(ctx); err != nil {
		logx.Errorf("运行失败：%v", err)
		os.Exit(1)
	}

	// 7) 导出：极简模式导出内存结果，正常模式从数据库导出
	if *exportPath == "" {
		return
	}
	if cfg.SimpleMode {
		err = export.ToJSONData(ctx, run.BufferData(), *exportPath)
	} else {
		err = export.ToJSON(ctx, st, cfg.PageSize, *exportPath)
	}
	if err != nil {
		log.Fatalf("export json: %v", err)
	}
	logx.Infof("已导出 %s", *exportPath)
}

// runCheck 校验内容集合（kind 为空时校验全部）并打印违规明细，返回进程退出码。
func runCheck(dir, kind string) int {
	var reps []content.Report
	if kind == "" {
		all, err := content.LoadAll(dir)
		if err != nil {
			logx.Errorf("加载内容失败：%v", err)
			return 1
		}
		reps = all
	} else {
		k, err := schema.ParseKind(kind)
		if err != nil {
			logx.Errorf("-kind：%v", err)
			return 2
		}
		rep, err := content.LoadCollection(dir, k)
		if err != nil {
			logx.Errorf("加载内容失败：%v", err)
			return 1
		}
		reps = []content.Report{rep}
	}
	for _, rep := range reps {
		for _, f := range rep.Failures {
			vs := f.Violations()
			if len(vs) == 0 {
				logx.Errorf("%s：%v", f.Path, f.Err)
				continue
			}
			for _, v := range vs {
				logx.Errorf("%s：%s", f.Path, v)
			}
		}
	}
	valid, invalid := content.Counts(reps)
	logx.Infof("内容校验：有效=%d 无效=%d", valid, invalid)
	if invalid > 0 {
		return 1
	}
	return 0
}

// parsePages 解析 "TOTAL,CURRENT"。
func parsePages(s string) (int, int, error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("want TOTAL,CURRENT, got %q", s)
	}
	total, err := strconv.Atoi(strings.TrimSpace(a))
	if err != nil {
		return 0, 0, fmt.Errorf("total: %w", err)
	}
	current, err := strconv.Atoi(strings.TrimSpace(b))
	if err != nil {
		return 0, 0, fmt.Errorf("current: %w", err)
	}
	return total, current, nil
}
