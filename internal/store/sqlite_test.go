package store

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"go-aidevdaily/internal/model"
)

func open(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil { t.Fatalf("open sqlite: %v", err) }
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func strp(s string) *string { return &s }

func TestSQLite_ToolsKeepOrderAndDuplicates(t *testing.T) {
	s := open(t)
	ctx := context.Background()

	tools := []model.Tool{
		{ID: "b", Name: "B", Rating: 4.5, Tags: []string{"x", "y"}, Featured: true, Subcategory: strp("ide")},
		{ID: "a", Name: "A", Tags: []string{}},
		{ID: "b", Name: "B again", Tags: []string{}},
	}
	if err := s.ReplaceTools(ctx, tools); err != nil { t.Fatalf("replace: %v", err) }
	got, err := s.ListTools(ctx)
	if err != nil { t.Fatalf("list: %v", err) }
	if len(got) != 3 { t.Fatalf("len=%d want=3", len(got)) }
	for i := range tools {
		if got[i].ID != tools[i].ID || got[i].Name != tools[i].Name { t.Fatalf("order mismatch at %d: %+v", i, got[i]) }
	}
	if got[0].Subcategory == nil || *got[0].Subcategory != "ide" || got[0].Image != nil { t.Fatalf("optional fields lost: %+v", got[0]) }
	if got[0].Rating != 4.5 || len(got[0].Tags) != 2 { t.Fatalf("fields lost: %+v", got[0]) }

	// 再次替换：旧快照整体消失
	if err := s.ReplaceTools(ctx, tools[1:2]); err != nil { t.Fatalf("replace again: %v", err) }
	got, _ = s.ListTools(ctx)
	if len(got) != 1 || got[0].ID != "a" { t.Fatalf("snapshot not replaced: %+v", got) }

	st, err := s.Stats(ctx)
	if err != nil { t.Fatalf("stats: %v", err) }
	if st.ToolsTotal != 1 || st.ToolsFeatured != 0 { t.Fatalf("stats mismatch: %+v", st) }
}

func TestSQLite_EmptySnapshot(t *testing.T) {
	s := open(t)
	got, err := s.ListTools(context.Background())
	if err != nil { t.Fatalf("list: %v", err) }
	if got == nil || len(got) != 0 { t.Fatalf("want empty non-nil slice, got %#v", got) }
}

func TestSQLite_ReplaceEntries(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	blog := []EntryData{{Slug: "hello", Data: model.BlogPost{Title: "v1"}}, {Slug: "old", Data: model.BlogPost{Title: "old"}}}
	if err := s.ReplaceEntries(ctx, "blog", blog); err != nil { t.Fatalf("replace blog: %v", err) }
	if err := s.ReplaceEntries(ctx, "authors", []EntryData{{Slug: "jane", Data: model.Author{Name: "Jane"}}}); err != nil { t.Fatalf("replace authors: %v", err) }
	if err := s.ReplaceEntries(ctx, "", nil); err == nil { t.Fatalf("expect error for empty kind") }

	// 第二轮：old 不再出现（失效或被删除），hello 更新；其他集合不受影响
	if err := s.ReplaceEntries(ctx, "blog", []EntryData{{Slug: "hello", Data: model.BlogPost{Title: "v2"}}}); err != nil { t.Fatalf("replace blog again: %v", err) }
	got, err := s.ListEntries(ctx, "blog")
	if err != nil || len(got) != 1 { t.Fatalf("list blog: %v len=%d", err, len(got)) }
	var p model.BlogPost
	if err := json.Unmarshal(got[0].Data, &p); err != nil { t.Fatalf("decode: %v", err) }
	if got[0].Slug != "hello" || p.Title != "v2" { t.Fatalf("entry not replaced: %s %+v", got[0].Slug, p) }

	all, err := s.ListEntries(ctx, "")
	if err != nil || len(all) != 2 { t.Fatalf("list all: %v len=%d", err, len(all)) }
	if all[0].Kind != "authors" { t.Fatalf("order by kind: %+v", all[0]) }

	// 空列表清空该集合；失败的批次整体回滚
	if err := s.ReplaceEntries(ctx, "authors", nil); err != nil { t.Fatalf("clear authors: %v", err) }
	if err := s.ReplaceEntries(ctx, "blog", []EntryData{{Slug: "a", Data: 1}, {Slug: ""}}); err == nil { t.Fatalf("expect error for empty slug") }
	all, _ = s.ListEntries(ctx, "")
	if len(all) != 1 || all[0].Slug != "hello" { t.Fatalf("unexpected entries after rollback: %+v", all) }
}

func TestSQLite_BuildLog(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if _, found, err := s.LastBuild(ctx); err != nil || found { t.Fatalf("empty log: found=%v err=%v", found, err) }
	if err := s.RecordBuild(ctx, model.SourceSnapshot, 0); err != nil { t.Fatalf("record: %v", err) }
	if err := s.RecordBuild(ctx, model.SourceSheet, 2); err != nil { t.Fatalf("record: %v", err) }
	rec, found, err := s.LastBuild(ctx)
	if err != nil || !found { t.Fatalf("last: found=%v err=%v", found, err) }
	if rec.Source != model.SourceSheet || rec.ContentInvalid != 2 { t.Fatalf("unexpected last build: %+v", rec) }
}

func TestSQLite_FetchLogAndReset(t *testing.T) {
	s := open(t)
	ctx := context.Background()
	if _, found, err := s.LastFetch(ctx); err != nil || found { t.Fatalf("empty log: found=%v err=%v", found, err) }
	if err := s.RecordFetch(ctx, true, 10, ""); err != nil { t.Fatalf("record: %v", err) }
	if err := s.RecordFetch(ctx, false, 0, "503"); err != nil { t.Fatalf("record: %v", err) }
	rec, found, err := s.LastFetch(ctx)
	if err != nil || !found { t.Fatalf("last: found=%v err=%v", found, err) }
	if rec.OK || rec.Error != "503" || rec.Tools != 0 { t.Fatalf("unexpected last fetch: %+v", rec) }

	_ = s.ReplaceTools(ctx, []model.Tool{{ID: "a"}})
	_ = s.ReplaceEntries(ctx, "blog", []EntryData{{Slug: "x", Data: map[string]any{"title": "x"}}})
	_ = s.RecordBuild(ctx, model.SourceSheet, 0)
	if err := s.Reset(ctx); err != nil { t.Fatalf("reset: %v", err) }
	st, _ := s.Stats(ctx)
	if st.ToolsTotal != 0 || st.ContentValid != 0 { t.Fatalf("reset did not clear: %+v", st) }
	if _, found, _ := s.LastFetch(ctx); found { t.Fatalf("fetch log not cleared") }
	if _, found, _ := s.LastBuild(ctx); found { t.Fatalf("build log not cleared") }
}
