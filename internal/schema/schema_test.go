package schema_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-aidevdaily/internal/model"
	"go-aidevdaily/internal/schema"
)

func toolRecord() map[string]any {
	return map[string]any{
		"name":        "Cursor",
		"description": "AI code editor",
		"link":        "https://example.com",
		"category":    "IDE",
		"tags":        []any{"editor", "ai"},
	}
}

func blogRecord() map[string]any {
	return map[string]any{
		"title":    "Hello",
		"excerpt":  "First post",
		"image":    "/img/hello.png",
		"imageAlt": "hello",
		"category": "news",
		"date":     "2024-01-15",
		"readTime": "5 min",
		"featured": true,
		"author":   "Jane",
	}
}

func TestValidateTool_URL(t *testing.T) {
	rec := toolRecord()
	rec["link"] = "not-a-url"
	_, err := schema.ValidateTool(rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, schema.ErrSchemaViolation))

	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("link", schema.ConstraintURL), "violations: %v", ve.Violations)

	rec["link"] = "https://example.com"
	got, err := schema.ValidateTool(rec)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", got.Link)
	assert.Equal(t, []string{"editor", "ai"}, got.Tags)
}

func TestValidateTool_FeaturedDefault(t *testing.T) {
	got, err := schema.ValidateTool(toolRecord())
	require.NoError(t, err)
	assert.False(t, got.Featured)
	assert.Nil(t, got.Image)

	rec := toolRecord()
	rec["featured"] = true
	rec["image"] = "/tools/cursor.png"
	got, err = schema.ValidateTool(rec)
	require.NoError(t, err)
	assert.True(t, got.Featured)
	require.NotNil(t, got.Image)
	assert.Equal(t, "/tools/cursor.png", *got.Image)
}

func TestValidateTool_WrongTypes(t *testing.T) {
	rec := toolRecord()
	rec["featured"] = "yes"
	rec["tags"] = []any{"ok", 3}
	rec["image"] = nil
	_, err := schema.ValidateTool(rec)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("featured", "expected boolean"))
	assert.True(t, ve.Has("tags[1]", "expected string"))
	assert.True(t, ve.Has("image", "expected string"))
	assert.False(t, ve.Has("tags[0]", ""))
}

func TestValidateTool_TagsRequired(t *testing.T) {
	rec := toolRecord()
	delete(rec, "tags")
	_, err := schema.ValidateTool(rec)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, schema.Violation{Field: "tags", Constraint: schema.ConstraintRequired}, ve.First())
}

func TestValidateBlog(t *testing.T) {
	got, err := schema.ValidateBlog(blogRecord())
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.True(t, got.Featured)
	assert.Nil(t, got.AuthorRole)
	assert.Nil(t, got.TLDR)

	rec := blogRecord()
	rec["authorRole"] = "Editor"
	rec["tldr"] = []any{"one", "two"}
	rec["unknown"] = 42
	got, err = schema.ValidateBlog(rec)
	require.NoError(t, err)
	require.NotNil(t, got.AuthorRole)
	assert.Equal(t, "Editor", *got.AuthorRole)
	assert.Equal(t, []string{"one", "two"}, got.TLDR)
}

func TestValidateBlog_CollectsAllViolations(t *testing.T) {
	rec := blogRecord()
	delete(rec, "featured")
	rec["title"] = 12
	rec["tldr"] = []any{1}
	rec["excerpt"] = ""
	_, err := schema.ValidateBlog(rec)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Len(t, ve.Violations, 3)
	assert.True(t, ve.Has("featured", schema.ConstraintRequired))
	assert.True(t, ve.Has("title", "expected string"))
	assert.True(t, ve.Has("tldr[0]", "expected string"))
	assert.Contains(t, err.Error(), "blog record")
}

func TestValidateAuthor(t *testing.T) {
	rec := map[string]any{"name": "Jane", "role": "Editor", "bio": "", "twitter": "@jane"}
	got, err := schema.ValidateAuthor(rec)
	require.NoError(t, err)
	assert.Equal(t, "", got.Bio)
	require.NotNil(t, got.Twitter)
	assert.Equal(t, "@jane", *got.Twitter)
	assert.Nil(t, got.LinkedIn)

	delete(rec, "role")
	rec["name"] = nil
	_, err = schema.ValidateAuthor(rec)
	var ve *schema.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.True(t, ve.Has("role", schema.ConstraintRequired))
	assert.True(t, ve.Has("name", schema.ConstraintRequired))
}

func TestValidate_ReturnsTypedPointer(t *testing.T) {
	v, err := schema.Validate(schema.KindTools, toolRecord())
	require.NoError(t, err)
	_, ok := v.(*model.CollectionTool)
	assert.True(t, ok)

	_, err = schema.Validate(schema.Kind("pages"), toolRecord())
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	k, err := schema.ParseKind(" Blog ")
	require.NoError(t, err)
	assert.Equal(t, schema.KindBlog, k)
	_, err = schema.ParseKind("docs")
	assert.Error(t, err)
}
