// 包 build 负责主流程编排：
// - 并发加载内容集合与抓取工具表格
// - 表格不可用时回退到数据库快照
// - 落库与分页索引计算
package build

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-aidevdaily/internal/config"
	"go-aidevdaily/internal/content"
	"go-aidevdaily/internal/logx"
	"go-aidevdaily/internal/model"
	"go-aidevdaily/internal/paginate"
	"go-aidevdaily/internal/schema"
	"go-aidevdaily/internal/sheets"
	"go-aidevdaily/internal/store"
)

// Result 为一轮构建的结果。
type Result struct {
	Source  string
	Tools   []model.Tool
	Reports []content.Report
	Pages   []model.PageIndex
}

// Runner 构建执行器，持有配置/存储/表格抓取器。
type Runner struct {
	cfg   *config.Config
	fetch sheets.Getter
	// 极简模式下为 nil：不读写数据库
	store *store.SQLite
	buf   *Buffer
	pages []model.PageIndex
}

// New 创建 Runner。极简模式下忽略传入的存储。
func New(cfg *config.Config, s *store.SQLite, g sheets.Getter) *Runner {
	r := &Runner{cfg: cfg, store: s, fetch: g, buf: NewBuffer()}
	if cfg.SimpleMode {
		r.store = nil
	}
	return r
}

// Run 执行一轮构建：内容校验 + 表格抓取（并发）→ 落库 → 分页索引。
func (r *Runner) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	var contentErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		contentErr = r.loadContent()
	}()
	go func() {
		defer wg.Done()
		r.loadTools(ctx)
	}()
	wg.Wait()
	if contentErr != nil {
		return fmt.Errorf("load content: %w", contentErr)
	}

	source, tools, reps := r.buf.Snapshot()
	if r.store != nil {
		r.persist(ctx, source, tools, reps)
	}
	pages, err := paginate.Index(len(tools), r.cfg.PageSize)
	if err != nil {
		return fmt.Errorf("paginate: %w", err)
	}
	r.pages = pages
	valid, invalid := content.Counts(reps)
	logx.Infof("构建完成：工具=%d（来源=%s），页数=%d，内容有效=%d，无效=%d", len(tools), source, len(pages), valid, invalid)
	return nil
}

// loadContent 校验全部内容集合；未通过校验的文件记录日志后跳过。
func (r *Runner) loadContent() error {
	log := logx.With("component", "content")
	reps, err := content.LoadAll(r.cfg.ContentDir)
	if err != nil {
		return err
	}
	for _, rep := range reps {
		for _, f := range rep.Failures {
			var ve *schema.ValidationError
			if !errors.As(f.Err, &ve) {
				log.Warn(fmt.Sprintf("内容文件无法解析：%v", f.Err), "path", f.Path)
				continue
			}
			first := ve.First()
			log.Warn("内容校验失败", "path", f.Path, "field", first.Field, "constraint", first.Constraint, "violations", len(ve.Violations))
		}
		log.Info(fmt.Sprintf("集合 %s：有效=%d 无效=%d", rep.Kind, len(rep.Entries), len(rep.Failures)))
		r.buf.AddReport(rep)
	}
	return nil
}

// loadTools 抓取表格；失败时正常模式回退到数据库快照，极简模式得到空列表。
func (r *Runner) loadTools(ctx context.Context) {
	log := logx.With("component", "sheets")
	if r.cfg.SkipSheet {
		log.Info("已跳过表格抓取")
		r.fallback(ctx)
		return
	}
	format, err := sheets.ParseFormat(r.cfg.Sheet.Format)
	if err != nil {
		logx.Errorf("表格格式无效：%v", err)
		r.fallback(ctx)
		return
	}
	src := sheets.Source{URL: r.cfg.Sheet.URL, Format: format, Sheet: r.cfg.Sheet.Name}
	tools, err := sheets.Fetch(ctx, r.fetch, src)
	if err != nil {
		if errors.Is(err, sheets.ErrTransport) {
			logx.Errorf("从表格获取工具失败：%v", err)
		} else {
			logx.Errorf("解析表格失败：%v", err)
		}
		r.logLastFetch(ctx)
		r.recordFetch(ctx, false, 0, err.Error())
		r.fallback(ctx)
		return
	}
	log.Info(fmt.Sprintf("表格解析完成：%d 条工具", len(tools)), "format", string(format))
	r.recordFetch(ctx, true, len(tools), "")
	r.buf.SetTools(model.SourceSheet, tools)
}

func (r *Runner) fallback(ctx context.Context) {
	if r.store == nil {
		r.buf.SetTools(model.SourceNone, nil)
		return
	}
	snap, err := r.store.ListTools(ctx)
	if err != nil {
		logx.Warnf("读取工具快照失败：%v", err)
		r.buf.SetTools(model.SourceNone, nil)
		return
	}
	if len(snap) == 0 {
		logx.Warnf("没有可用的工具快照")
		r.buf.SetTools(model.SourceNone, nil)
		return
	}
	logx.Infof("使用数据库中的工具快照：%d 条", len(snap))
	r.buf.SetTools(model.SourceSnapshot, snap)
}

// logLastFetch 在回退前记录上一次抓取的情况，便于判断快照新旧。
func (r *Runner) logLastFetch(ctx context.Context) {
	if r.store == nil {
		return
	}
	rec, found, err := r.store.LastFetch(ctx)
	switch {
	case err != nil:
		logx.Warnf("读取抓取记录失败：%v", err)
	case !found:
		logx.Infof("没有历史抓取记录")
	default:
		logx.Infof("上次抓取：%s 成功=%v 工具=%d", rec.FetchedAt.Format(time.RFC3339), rec.OK, rec.Tools)
	}
}

func (r *Runner) recordFetch(ctx context.Context, ok bool, n int, errText string) {
	if r.store == nil {
		return
	}
	if err := r.store.RecordFetch(ctx, ok, n, errText); err != nil {
		logx.Warnf("写入抓取记录失败：%v", err)
	}
}

// persist 写入工具快照（仅当本轮来自表格），按集合整体替换内容索引，并记录本轮摘要。
// 内容索引只保留本轮通过校验的条目。
func (r *Runner) persist(ctx context.Context, source string, tools []model.Tool, reps []content.Report) {
	if source == model.SourceSheet {
		if err := r.store.ReplaceTools(ctx, tools); err != nil {
			logx.Warnf("写入工具快照失败：%v", err)
		}
	}
	for _, rep := range reps {
		entries := make([]store.EntryData, 0, len(rep.Entries))
		for _, e := range rep.Entries {
			entries = append(entries, store.EntryData{Slug: e.Slug, Data: e.Data})
		}
		if err := r.store.ReplaceEntries(ctx, string(rep.Kind), entries); err != nil {
			logx.Warnf("写入内容索引失败：%v", err)
		}
	}
	_, invalid := content.Counts(reps)
	if err := r.store.RecordBuild(ctx, source, invalid); err != nil {
		logx.Warnf("写入构建记录失败：%v", err)
	}
}

// BufferData 返回本轮构建的内存结果，供导出使用。
func (r *Runner) BufferData() Result {
	if r == nil || r.buf == nil {
		return Result{Source: model.SourceNone, Tools: []model.Tool{}}
	}
	source, tools, reps := r.buf.Snapshot()
	return Result{Source: source, Tools: tools, Reports: reps, Pages: r.pages}
}
