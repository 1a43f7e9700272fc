// 包 export 负责导出 data.json：可直接导出本轮构建结果，也可从数据库快照导出。
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go-aidevdaily/internal/build"
	"go-aidevdaily/internal/content"
	"go-aidevdaily/internal/model"
	"go-aidevdaily/internal/paginate"
	"go-aidevdaily/internal/store"
)

// ToJSONData 将本轮构建的内存结果写为 data.json，附带统计。
func ToJSONData(ctx context.Context, res build.Result, path string) error {
	valid, invalid := content.Counts(res.Reports)
	refs := make([]model.ContentRef, 0, valid)
	for _, rep := range res.Reports {
		for _, e := range rep.Entries {
			refs = append(refs, model.ContentRef{Kind: string(e.Kind), Slug: e.Slug})
		}
	}
	st := statsOf(res.Tools, len(res.Pages))
	st.ContentValid = valid
	st.ContentInvalid = invalid
	out := model.Export{Stats: st, Source: res.Source, Tools: orEmpty(res.Tools), Pages: res.Pages, Content: refs}
	return write(ctx, out, path)
}

// ToJSON 查询数据库中的工具快照与内容索引，重新分页后写入 JSON 文件。
// 来源与无效内容条数取自最近一轮构建记录；内容索引只含该轮通过校验的条目。
func ToJSON(ctx context.Context, s *store.SQLite, pageSize int, path string) error {
	tools, err := s.ListTools(ctx)
	if err != nil {
		return fmt.Errorf("list tools: %w", err)
	}
	entries, err := s.ListEntries(ctx, "")
	if err != nil {
		return fmt.Errorf("list entries: %w", err)
	}
	st, err := s.Stats(ctx)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	pages, err := paginate.Index(len(tools), pageSize)
	if err != nil {
		return fmt.Errorf("paginate: %w", err)
	}
	st.Pages = len(pages)
	refs := make([]model.ContentRef, 0, len(entries))
	for _, e := range entries {
		refs = append(refs, model.ContentRef{Kind: e.Kind, Slug: e.Slug})
	}
	source := model.SourceSnapshot
	if len(tools) == 0 {
		source = model.SourceNone
	}
	last, found, err := s.LastBuild(ctx)
	if err != nil {
		return fmt.Errorf("last build: %w", err)
	}
	if found {
		source = last.Source
		st.ContentInvalid = last.ContentInvalid
	}
	return write(ctx, model.Export{Stats: st, Source: source, Tools: tools, Pages: pages, Content: refs}, path)
}

func statsOf(tools []model.Tool, pages int) model.Stats {
	featured := 0
	for _, t := range tools {
		if t.Featured {
			featured++
		}
	}
	return model.Stats{ToolsTotal: len(tools), ToolsFeatured: featured, Pages: pages, UpdatedAt: time.Now()}
}

func orEmpty(tools []model.Tool) []model.Tool {
	if tools == nil {
		return []model.Tool{}
	}
	return tools
}

func write(ctx context.Context, out model.Export, path string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("export %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode json to %s: %w", path, err)
	}
	return nil
}
