package msgcat

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRenderEmbedded(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("chess.status.checkmate", map[string]string{"Winner": "Light"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "Checkmate! Light wins." {
		t.Fatalf("Render = %q", got)
	}
	if _, err := c.Render("chess.status.checkmate", map[string]string{}); err == nil {
		t.Fatalf("missing template field should be an error")
	}
	if _, err := c.Render("chess.nope", nil); err == nil {
		t.Fatalf("unknown key should be an error")
	}
	if got := c.Text("chess.nope", nil, "fallback"); got != "fallback" {
		t.Fatalf("Text fallback = %q", got)
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	body := "chess:\n  status:\n    stalemate: \"Pat!\"\n"
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := c.Text("chess.status.stalemate", nil, ""); got != "Pat!" {
		t.Fatalf("override not applied: %q", got)
	}
	if !c.Has("chess.status.check") {
		t.Fatalf("embedded keys should survive overrides")
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("duplicate keys across override files should fail")
	}
}

func TestRejectsNonStringLeaves(t *testing.T) {
	if _, err := parseYAMLToFlat([]byte("chess:\n  count: 3\n")); err == nil {
		t.Fatalf("expected error for numeric leaf")
	}
}

func TestBrokenOverrideFailsAtLoad(t *testing.T) {
	dir := t.TempDir()
	body := "chess:\n  status:\n    normal: \"{{.Side\"\n"
	if err := os.WriteFile(filepath.Join(dir, "bad.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := New(dir); err == nil {
		t.Fatalf("unparsable template should fail New")
	}
}

func TestEmptyOverrideRemovesKey(t *testing.T) {
	dir := t.TempDir()
	body := "chess:\n  move:\n    ai:\n"
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.Has("chess.move.ai") {
		t.Fatalf("blank override should remove the key")
	}
	if got := c.Text("chess.move.ai", map[string]string{"Move": "e7e5"}, "e7e5"); got != "e7e5" {
		t.Fatalf("Text = %q, want fallback", got)
	}
}
