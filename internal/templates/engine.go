// Package templates renders outreach email templates with the Liquid
// template language.
package templates

import (
	"fmt"
	"html"
	"log"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/osteele/liquid"
)

// Engine compiles and renders Liquid templates with a parse cache.
type Engine struct {
	engine *liquid.Engine
	cache  sync.Map // map[string]*liquid.Template
}

// NewEngine creates a template engine with the outreach filter set.
func NewEngine() *Engine {
	e := &Engine{engine: liquid.NewEngine()}
	e.registerFilters()
	return e
}

func (e *Engine) registerFilters() {
	// Fallback value: {{ nome | default: "criador" }}
	e.engine.RegisterFilter("default", func(value interface{}, fallback string) interface{} {
		if value == nil {
			return fallback
		}
		s := fmt.Sprintf("%v", value)
		if s == "" || s == "<nil>" {
			return fallback
		}
		return value
	})

	// Capitalize first letter: {{ nome | capitalize }}
	e.engine.RegisterFilter("capitalize", func(s string) string {
		if len(s) == 0 {
			return s
		}
		return strings.ToUpper(string(s[0])) + strings.ToLower(s[1:])
	})

	// Truncate with ellipsis: {{ bio | truncate: 80 }}
	e.engine.RegisterFilter("truncate", func(s string, length int) string {
		if len(s) <= length {
			return s
		}
		if length <= 3 {
			return s[:length]
		}
		return s[:length-3] + "..."
	})

	// HTML escape: {{ notes | escape }}
	e.engine.RegisterFilter("escape", func(s string) string {
		return html.EscapeString(s)
	})

	// Brazilian currency: {{ valor | brl }}
	e.engine.RegisterFilter("brl", func(value interface{}) string {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		case string:
			parsed, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return v
			}
			f = parsed
		default:
			return fmt.Sprintf("%v", value)
		}
		whole := fmt.Sprintf("%.2f", f)
		whole = strings.ReplaceAll(whole, ".", ",")
		return "R$ " + whole
	})

	// Percentage: {{ comissao | percentage }}
	e.engine.RegisterFilter("percentage", func(value interface{}) string {
		var f float64
		switch v := value.(type) {
		case float64:
			f = v
		case float32:
			f = float64(v)
		case int:
			f = float64(v)
		default:
			return fmt.Sprintf("%v", value)
		}
		return fmt.Sprintf("%.1f%%", f)
	})

	// Follower counts: {{ seguidores | compact_number }}
	e.engine.RegisterFilter("compact_number", func(value interface{}) string {
		var n int64
		switch v := value.(type) {
		case int:
			n = int64(v)
		case int64:
			n = v
		case float64:
			n = int64(v)
		default:
			return fmt.Sprintf("%v", value)
		}
		switch {
		case n >= 1_000_000:
			return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000_000), ".0") + "M"
		case n >= 1_000:
			return strings.TrimSuffix(fmt.Sprintf("%.1f", float64(n)/1_000), ".0") + "K"
		default:
			return fmt.Sprintf("%d", n)
		}
	})
}

// Parse compiles a template string and returns any syntax error.
func (e *Engine) Parse(templateStr string) error {
	_, err := e.engine.ParseString(templateStr)
	return err
}

// Render processes a template with the given variables. cacheKey enables
// reuse of the compiled template across renders; pass "" to skip caching.
func (e *Engine) Render(cacheKey, templateStr string, vars map[string]interface{}) (string, error) {
	if cacheKey != "" {
		if cached, ok := e.cache.Load(cacheKey); ok {
			return cached.(*liquid.Template).RenderString(vars)
		}
	}

	tpl, err := e.engine.ParseString(templateStr)
	if err != nil {
		log.Printf("[templates.Engine] parse error: %v", err)
		return "", err
	}
	if cacheKey != "" {
		e.cache.Store(cacheKey, tpl)
	}

	out, err := tpl.RenderString(vars)
	if err != nil {
		log.Printf("[templates.Engine] render error: %v", err)
		return "", err
	}
	return out, nil
}

// InvalidateCache drops a compiled template, used after a template edit.
func (e *Engine) InvalidateCache(key string) {
	e.cache.Delete(key)
}

var varPattern = regexp.MustCompile(`\{\{\s*([a-zA-Z_][a-zA-Z0-9_.]*?)(?:\s*\||\s*\}\})`)

// MissingVariables reports template variables absent from vars. Used to
// refuse a send that would go out with holes in it.
func (e *Engine) MissingVariables(templateStr string, vars map[string]interface{}) []string {
	var missing []string
	seen := make(map[string]bool)
	for _, match := range varPattern.FindAllStringSubmatch(templateStr, -1) {
		if len(match) < 2 {
			continue
		}
		name := strings.TrimSpace(match[1])
		if seen[name] || isLiquidKeyword(name) {
			continue
		}
		seen[name] = true
		if _, ok := vars[strings.SplitN(name, ".", 2)[0]]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func isLiquidKeyword(name string) bool {
	switch strings.ToLower(name) {
	case "if", "elsif", "else", "endif", "unless", "endunless",
		"case", "when", "endcase", "for", "endfor", "break", "continue",
		"capture", "endcapture", "comment", "endcomment", "raw", "endraw",
		"assign", "increment", "decrement", "forloop",
		"true", "false", "nil", "null", "empty", "blank",
		"and", "or", "not", "contains", "in", "limit", "offset", "reversed":
		return true
	}
	return false
}
