package copywriter

import (
	"context"
	"io"
	"log"
	"strings"
	"testing"
)

func TestUnconfiguredWriterUsesPlaceholders(t *testing.T) {
	w := New("", "", log.New(io.Discard, "", 0))
	if w.Configured() {
		t.Fatal("writer without key reports configured")
	}

	got := w.Describe(context.Background(), "Carrara White", "Marble", "60x60cm")
	if !strings.Contains(got, "marble") || !strings.Contains(got, "60x60cm") {
		t.Errorf("placeholder copy = %q", got)
	}

	insight := w.Insight(context.Background(), 12500.50, 42, "Ceramic")
	if !strings.Contains(insight, "42") || !strings.Contains(insight, "12500.50") {
		t.Errorf("placeholder insight = %q", insight)
	}
	if !strings.Contains(insight, "Ceramic") {
		t.Errorf("insight omits top category: %q", insight)
	}
}

func TestInsightWithoutTopCategory(t *testing.T) {
	w := New("", "", log.New(io.Discard, "", 0))
	got := w.Insight(context.Background(), 0, 0, "")
	if strings.Contains(got, "largest category") {
		t.Errorf("empty inventory insight mentions a category: %q", got)
	}
}

func TestConfiguredFlag(t *testing.T) {
	w := New("sk-test", "", log.New(io.Discard, "", 0))
	if !w.Configured() {
		t.Error("writer with key reports unconfigured")
	}
	if w.model != DefaultModel {
		t.Errorf("model = %q, want default", w.model)
	}
}
