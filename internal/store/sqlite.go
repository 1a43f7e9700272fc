// 包 store 提供存储实现（SQLite）：工具快照、内容索引、抓取记录与构建记录。
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"go-aidevdaily/internal/model"
)

// SQLite 封装 *sql.DB，基于 modernc.org/sqlite（纯 Go 实现）。
type SQLite struct {
	db *sql.DB
}

// StoredEntry 为内容索引中的一条记录，Data 为校验后的 JSON。
type StoredEntry struct {
	Kind      string
	Slug      string
	Data      json.RawMessage
	UpdatedAt time.Time
}

// FetchRecord 为一次表格抓取的结果记录。
type FetchRecord struct {
	OK        bool
	Tools     int
	Error     string
	FetchedAt time.Time
}

// BuildRecord 为一轮构建的摘要：工具来源与未通过校验的内容条数。
type BuildRecord struct {
	Source         string
	ContentInvalid int
	BuiltAt        time.Time
}

// OpenSQLite 打开 SQLite 数据库并执行自动迁移。
func OpenSQLite(path string) (*SQLite, error) {
	// 说明：modernc sqlite 的 DSN 可直接使用文件路径，或以 'file:...' 前缀表示
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

// Reset 清空业务数据表（不删除数据库文件）。
func (s *SQLite) Reset(ctx context.Context) error {
	for _, tbl := range []string{"tools", "entries", "fetch_log", "builds"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+tbl); err != nil {
			return fmt.Errorf("delete %s: %w", tbl, err)
		}
	}
	return nil
}

// migrate 执行建表语句，保持幂等。
func (s *SQLite) migrate() error {
	stmts := []string{
		// tools 不以 id 唯一：表格中允许重复 id，顺序由 pos 保持
		`CREATE TABLE IF NOT EXISTS tools (
            pos INTEGER PRIMARY KEY,
            id TEXT,
            featured INTEGER,
            data TEXT NOT NULL,
            created_at TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS entries (
            kind TEXT NOT NULL,
            slug TEXT NOT NULL,
            data TEXT NOT NULL,
            updated_at TIMESTAMP,
            UNIQUE(kind, slug)
        );`,
		`CREATE TABLE IF NOT EXISTS builds (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            source TEXT,
            content_invalid INTEGER,
            built_at TIMESTAMP
        );`,
		`CREATE TABLE IF NOT EXISTS fetch_log (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            ok INTEGER,
            tools INTEGER,
            error TEXT,
            fetched_at TIMESTAMP
        );`,
	}
	for _, q := range stmts {
		if _, err := s.db.Exec(q); err != nil {
			return fmt.Errorf("exec migrate: %w", err)
		}
	}
	return nil
}

// ReplaceTools 在一个事务内整体替换工具快照，保持传入顺序与重复项。
func (s *SQLite) ReplaceTools(ctx context.Context, tools []model.Tool) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM tools`); err != nil {
		return fmt.Errorf("delete tools: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO tools(pos, id, featured, data, created_at) VALUES(?,?,?,?,?)`)
	if err != nil {
		return fmt.Errorf("prepare insert tool: %w", err)
	}
	defer stmt.Close()
	now := time.Now()
	for i, t := range tools {
		b, mErr := json.Marshal(t)
		if mErr != nil {
			return fmt.Errorf("marshal tool %q: %w", t.ID, mErr)
		}
		if _, err = stmt.ExecContext(ctx, i, t.ID, t.Featured, string(b), now); err != nil {
			return fmt.Errorf("insert tool %q: %w", t.ID, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListTools 按写入顺序返回工具快照；为空时返回空切片。
func (s *SQLite) ListTools(ctx context.Context) ([]model.Tool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM tools ORDER BY pos`)
	if err != nil {
		return nil, fmt.Errorf("query tools: %w", err)
	}
	defer rows.Close()
	out := []model.Tool{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan tools: %w", err)
		}
		var t model.Tool
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("decode tool: %w", err)
		}
		if t.Tags == nil {
			t.Tags = []string{}
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tools: %w", err)
	}
	return out, nil
}

// EntryData 为待写入内容索引的一条记录。
type EntryData struct {
	Slug string
	Data any
}

// ReplaceEntries 在一个事务内整体替换某集合的内容索引；本轮未通过校验或已删除的条目随之移除。
func (s *SQLite) ReplaceEntries(ctx context.Context, kind string, entries []EntryData) (err error) {
	if kind == "" {
		return errors.New("entry kind required")
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err = tx.ExecContext(ctx, `DELETE FROM entries WHERE kind = ?`, kind); err != nil {
		return fmt.Errorf("delete entries %s: %w", kind, err)
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO entries(kind, slug, data, updated_at)
        VALUES(?,?,?,?)
        ON CONFLICT(kind, slug) DO UPDATE SET data=excluded.data, updated_at=excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare insert entry: %w", err)
	}
	defer stmt.Close()
	now := time.Now()
	for _, e := range entries {
		if e.Slug == "" {
			return fmt.Errorf("entry %s: slug required", kind)
		}
		b, mErr := json.Marshal(e.Data)
		if mErr != nil {
			return fmt.Errorf("marshal entry %s/%s: %w", kind, e.Slug, mErr)
		}
		if _, err = stmt.ExecContext(ctx, kind, e.Slug, string(b), now); err != nil {
			return fmt.Errorf("insert entry %s/%s: %w", kind, e.Slug, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListEntries 返回某集合的内容索引，按 slug 排序；kind 为空时返回全部集合。
func (s *SQLite) ListEntries(ctx context.Context, kind string) ([]StoredEntry, error) {
	q := `SELECT kind, slug, data, updated_at FROM entries WHERE (? = '' OR kind = ?) ORDER BY kind, slug`
	rows, err := s.db.QueryContext(ctx, q, kind, kind)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()
	var out []StoredEntry
	for rows.Next() {
		var e StoredEntry
		var raw string
		var updated sql.NullTime
		if err := rows.Scan(&e.Kind, &e.Slug, &raw, &updated); err != nil {
			return nil, fmt.Errorf("scan entries: %w", err)
		}
		e.Data = json.RawMessage(raw)
		e.UpdatedAt = nowOr(updated)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// RecordFetch 记录一次表格抓取结果。
func (s *SQLite) RecordFetch(ctx context.Context, ok bool, n int, errText string) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO fetch_log(ok, tools, error, fetched_at) VALUES(?,?,?,?)`,
		ok, n, errText, time.Now())
	if err != nil {
		return fmt.Errorf("record fetch: %w", err)
	}
	return nil
}

// LastFetch 返回最近一次抓取记录；没有记录时 found 为 false。
func (s *SQLite) LastFetch(ctx context.Context) (rec FetchRecord, found bool, err error) {
	var at sql.NullTime
	var errText sql.NullString
	err = s.db.QueryRowContext(ctx, `SELECT ok, tools, error, fetched_at FROM fetch_log ORDER BY seq DESC LIMIT 1`).
		Scan(&rec.OK, &rec.Tools, &errText, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return FetchRecord{}, false, nil
	}
	if err != nil {
		return FetchRecord{}, false, fmt.Errorf("last fetch: %w", err)
	}
	rec.Error = errText.String
	rec.FetchedAt = nowOr(at)
	return rec, true, nil
}

// RecordBuild 记录一轮构建的摘要。
func (s *SQLite) RecordBuild(ctx context.Context, source string, invalid int) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO builds(source, content_invalid, built_at) VALUES(?,?,?)`,
		source, invalid, time.Now())
	if err != nil {
		return fmt.Errorf("record build: %w", err)
	}
	return nil
}

// LastBuild 返回最近一轮构建的摘要；没有记录时 found 为 false。
func (s *SQLite) LastBuild(ctx context.Context) (rec BuildRecord, found bool, err error) {
	var at sql.NullTime
	err = s.db.QueryRowContext(ctx, `SELECT source, content_invalid, built_at FROM builds ORDER BY seq DESC LIMIT 1`).
		Scan(&rec.Source, &rec.ContentInvalid, &at)
	if errors.Is(err, sql.ErrNoRows) {
		return BuildRecord{}, false, nil
	}
	if err != nil {
		return BuildRecord{}, false, fmt.Errorf("last build: %w", err)
	}
	rec.BuiltAt = nowOr(at)
	return rec, true, nil
}

// Stats 统计汇总：工具总数/推荐数、有效内容条数、更新时间。
// 无效内容与分页数不落库，由调用方补齐。
func (s *SQLite) Stats(ctx context.Context) (model.Stats, error) {
	var st model.Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tools`).Scan(&st.ToolsTotal); err != nil {
		return st, fmt.Errorf("count tools: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM tools WHERE featured = 1`).Scan(&st.ToolsFeatured); err != nil {
		return st, fmt.Errorf("count featured tools: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM entries`).Scan(&st.ContentValid); err != nil {
		return st, fmt.Errorf("count entries: %w", err)
	}
	st.UpdatedAt = time.Now()
	return st, nil
}

func nowOr(t sql.NullTime) time.Time {
	if !t.Valid || t.Time.IsZero() {
		return time.Now()
	}
	return t.Time
}
