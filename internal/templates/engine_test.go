package templates

import (
	"strings"
	"testing"
)

func TestRenderSubstitutesAllPlaceholders(t *testing.T) {
	e := NewEngine()
	body := "Oi {{ nome }}, nossa proposta é de {{ valor | brl }} por post."
	out, err := e.Render("tpl-1", body, map[string]interface{}{
		"nome":  "Maria",
		"valor": 1500.0,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "{{") || strings.Contains(out, "}}") {
		t.Fatalf("unsubstituted placeholder left in output: %s", out)
	}
	if !strings.Contains(out, "Maria") || !strings.Contains(out, "R$ 1500,00") {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestRenderCachedTemplate(t *testing.T) {
	e := NewEngine()
	for i := 0; i < 2; i++ {
		out, err := e.Render("cached", "Olá {{ nome }}", map[string]interface{}{"nome": "Ana"})
		if err != nil {
			t.Fatalf("render %d: %v", i, err)
		}
		if out != "Olá Ana" {
			t.Fatalf("render %d: got %q", i, out)
		}
	}
}

func TestParseRejectsBrokenTemplate(t *testing.T) {
	e := NewEngine()
	if err := e.Parse("{% if nome %}never closed"); err == nil {
		t.Fatal("expected parse error for unterminated tag")
	}
}

func TestMissingVariables(t *testing.T) {
	e := NewEngine()
	missing := e.MissingVariables("Oi {{ nome }}, {{ valor }} e {{ cupom }}", map[string]interface{}{
		"nome": "Maria",
	})
	if len(missing) != 2 {
		t.Fatalf("expected 2 missing vars, got %v", missing)
	}
}

func TestFilters(t *testing.T) {
	e := NewEngine()
	cases := map[string]string{
		"{{ x | default: \"amigo\" }}":   "amigo",
		"{{ nome | capitalize }}":        "Maria",
		"{{ seguidores | compact_number }}": "1.2M",
		"{{ taxa | percentage }}":        "12.5%",
	}
	vars := map[string]interface{}{
		"nome":       "mARIA",
		"seguidores": int64(1_200_000),
		"taxa":       12.5,
	}
	for tpl, want := range cases {
		got, err := e.Render("", tpl, vars)
		if err != nil {
			t.Fatalf("render %q: %v", tpl, err)
		}
		if got != want {
			t.Errorf("render %q: got %q, want %q", tpl, got, want)
		}
	}
}
