package injection

import (
	"crypto/md5"
	"fmt"
	"sync"

	"github.com/osteele/liquid"

	"github.com/ignite/signature-relay/internal/pkg/logger"
)

// TemplateService renders signature HTML containing Liquid placeholders
// ({{ first_name }}, {{ job_title }}, ...) against the sender's profile.
// Parsed templates are cached by content hash. Rendering is lax: a template
// that fails to parse or render falls back to the raw signature HTML rather
// than blocking the send.
type TemplateService struct {
	engine *liquid.Engine
	cache  sync.Map // md5 hex -> *liquid.Template
}

// NewTemplateService creates a template service with the default filters.
func NewTemplateService() *TemplateService {
	return &TemplateService{engine: liquid.NewEngine()}
}

// Render substitutes profile bindings into the signature source.
func (ts *TemplateService) Render(source string, bindings map[string]interface{}) string {
	if source == "" {
		return ""
	}
	tpl, err := ts.parse(source)
	if err != nil {
		logger.Warn("signature template parse failed", "error", err)
		return source
	}
	out, err := tpl.RenderString(bindings)
	if err != nil {
		logger.Warn("signature template render failed", "error", err)
		return source
	}
	return out
}

func (ts *TemplateService) parse(source string) (*liquid.Template, error) {
	key := fmt.Sprintf("%x", md5.Sum([]byte(source)))
	if cached, ok := ts.cache.Load(key); ok {
		return cached.(*liquid.Template), nil
	}
	tpl, err := ts.engine.ParseString(source)
	if err != nil {
		return nil, err
	}
	ts.cache.Store(key, tpl)
	return tpl, nil
}
