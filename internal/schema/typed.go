package schema

import "go-aidevdaily/internal/model"

// ValidateBlog 校验 blog 集合记录。
func ValidateBlog(raw map[string]any) (model.BlogPost, error) {
	v, err := Validate(KindBlog, raw)
	if err != nil {
		return model.BlogPost{}, err
	}
	return *v.(*model.BlogPost), nil
}

// ValidateTool 校验 tools 集合记录。
func ValidateTool(raw map[string]any) (model.CollectionTool, error) {
	v, err := Validate(KindTools, raw)
	if err != nil {
		return model.CollectionTool{}, err
	}
	return *v.(*model.CollectionTool), nil
}

// ValidateAuthor 校验 authors 集合记录。
func ValidateAuthor(raw map[string]any) (model.Author, error) {
	v, err := Validate(KindAuthors, raw)
	if err != nil {
		return model.Author{}, err
	}
	return *v.(*model.Author), nil
}
