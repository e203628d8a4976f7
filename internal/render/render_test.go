package render

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"heading", "# Lecture 3", []string{"<h1>Lecture 3</h1>"}},
		{"bullets", "- entropy\n- enthalpy", []string{"<ul>", "<li>entropy</li>", "<li>enthalpy</li>"}},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |", []string{"<table>", "<td>1</td>"}},
		{"strikethrough", "~~old~~", []string{"<del>old</del>"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HTML(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("output %q missing %q", got, w)
				}
			}
		})
	}
}

func TestHTML_OmitsRawHTML(t *testing.T) {
	got, err := HTML("<script>alert(1)</script>\n\ntext")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("raw html should be omitted, got %q", got)
	}
}
