package content

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-aidevdaily/internal/model"
	"go-aidevdaily/internal/schema"
)

func TestSplitFrontMatter(t *testing.T) {
	doc := "---\ntitle: Hello\ntags:\n  - a\n  - b\n---\n# Body\n"
	m, body, err := SplitFrontMatter([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "Hello", m["title"])
	assert.Equal(t, []any{"a", "b"}, m["tags"])
	assert.Equal(t, "# Body\n", string(body))

	m, _, err = SplitFrontMatter([]byte("\xef\xbb\xbf---\r\ndate: 2024-01-15\r\n---\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", m["date"])

	_, _, err = SplitFrontMatter([]byte("# no header\n"))
	assert.True(t, errors.Is(err, ErrNoFrontMatter))
	_, _, err = SplitFrontMatter([]byte("---\ntitle: x\n"))
	assert.True(t, errors.Is(err, ErrNoFrontMatter))
	_, _, err = SplitFrontMatter(nil)
	assert.True(t, errors.Is(err, ErrNoFrontMatter))
}

func write(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadAll(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "blog", "hello.md"), `---
title: Hello
excerpt: First
image: /img/a.png
imageAlt: a
category: news
date: "2024-01-15"
readTime: 3 min
featured: false
author: Jane
tldr: [one, two]
---
body
`)
	write(t, filepath.Join(root, "blog", "broken.md"), "---\ntitle: Broken\n---\n")
	write(t, filepath.Join(root, "tools", "cursor.yaml"), "name: Cursor\ndescription: editor\nlink: https://cursor.sh\ncategory: IDE\ntags: [ai]\n")
	write(t, filepath.Join(root, "tools", "bad.json"), `{"name":"X","description":"d","link":"not-a-url","category":"c","tags":[]}`)
	write(t, filepath.Join(root, "tools", "notes.txt"), "ignored")
	write(t, filepath.Join(root, "tools", "_draft.md"), "ignored")

	reps, err := LoadAll(root)
	require.NoError(t, err)
	require.Len(t, reps, 3)

	blog := reps[0]
	assert.Equal(t, schema.KindBlog, blog.Kind)
	require.Len(t, blog.Entries, 1)
	assert.Equal(t, "hello", blog.Entries[0].Slug)
	post := blog.Entries[0].Data.(*model.BlogPost)
	assert.Equal(t, []string{"one", "two"}, post.TLDR)
	require.Len(t, blog.Failures, 1)
	assert.NotEmpty(t, blog.Failures[0].Violations())

	tools := reps[1]
	require.Len(t, tools.Entries, 1)
	assert.Equal(t, "cursor", tools.Entries[0].Slug)
	require.Len(t, tools.Failures, 1)
	vs := tools.Failures[0].Violations()
	require.Len(t, vs, 1)
	assert.Equal(t, "link", vs[0].Field)
	assert.Equal(t, schema.ConstraintURL, vs[0].Constraint)

	// authors 目录不存在 -> 空集合
	assert.Empty(t, reps[2].Entries)
	assert.Empty(t, reps[2].Failures)

	valid, invalid := Counts(reps)
	assert.Equal(t, 2, valid)
	assert.Equal(t, 2, invalid)
}

func TestLoadCollection_ParseErrorIsFailure(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "authors", "jane.md"), "no front matter here")
	rep, err := LoadCollection(root, schema.KindAuthors)
	require.NoError(t, err)
	require.Len(t, rep.Failures, 1)
	assert.Nil(t, rep.Failures[0].Violations())
	assert.True(t, errors.Is(rep.Failures[0].Err, ErrNoFrontMatter))
}
