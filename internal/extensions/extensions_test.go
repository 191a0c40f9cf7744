package extensions

import "testing"

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"corpus.tsv", "tsv"},
		{"corpus.tsv.gz", "tsv.gz"},
		{"corpus.txt.xz", "txt.xz"},
		{"corpus.tar.gz", "tar.gz"},
		{"corpus.tgz", "tgz"},
		{"corpus.zip", "zip"},
		{"corpus.gz", "gz"},
		{"https://example.org/data/train.de-en.tsv", "tsv"},
		{"https://example.org/d/c.zip?dl=1", "zip"},
		{"https://example.org/d/c.txt#section", "txt"},
		{"https://example.org/download", ""},
		{"noext", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Detect(tt.input); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
