package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"creator-growth/internal/domain"
	"creator-growth/internal/refdata"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "LLM_API_KEY"} {
		t.Setenv(key, "")
	}
}

func TestAnalyzeCommandOffline(t *testing.T) {
	clearProviderEnv(t)
	dir := t.TempDir()
	profilePath := filepath.Join(dir, "profile.json")
	profile := `{"name":"Ana","niche":"Beauty","platform":"Instagram","followers":50000,"engagementRate":0.08,"monthlyViews":500000}`
	if err := os.WriteFile(profilePath, []byte(profile), 0o644); err != nil {
		t.Fatalf("write profile: %v", err)
	}
	outPDF := filepath.Join(dir, "report.pdf")

	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"analyze", "--profile", profilePath, "--user-id", "u1", "--out", outPDF})
	if err := root.Execute(); err != nil {
		t.Fatalf("analyze failed: %v (stderr: %s)", err, stderr.String())
	}

	var result domain.AnalysisResult
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		t.Fatalf("decode stdout: %v", err)
	}
	if result.UserID != "u1" || result.Analysis.FameScore <= 0 {
		t.Fatalf("unexpected result %+v", result.Analysis)
	}
	if len(result.MarketResearch.Trends) != len(refdata.DefaultTrends()) {
		t.Fatalf("offline run should use canned research, got %v", result.MarketResearch.Trends)
	}
	if !strings.Contains(stderr.String(), "running offline") {
		t.Fatalf("expected offline notice, got %q", stderr.String())
	}

	doc, err := os.ReadFile(outPDF)
	if err != nil || !bytes.HasPrefix(doc, []byte("%PDF")) {
		t.Fatalf("expected pdf at %s (%v)", outPDF, err)
	}
}

func TestAnalyzeCommandRequiresProfile(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"analyze"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected missing --profile error")
	}
}

func TestProductsCommand(t *testing.T) {
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetArgs([]string{"products", "--engagement", "0.9"})
	if err := root.Execute(); err != nil {
		t.Fatalf("products failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
	if len(lines) != len(refdata.Products())+1 || !strings.HasPrefix(lines[0], "ID") {
		t.Fatalf("unexpected table:\n%s", stdout.String())
	}
}
