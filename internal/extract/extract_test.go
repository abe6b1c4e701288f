package extract_test

import (
	"strings"
	"testing"

	"github.com/chriscorrea/copycheck/internal/extract"
)

const paperHTML = `<!DOCTYPE html>
<html>
<head><title>Jurnal</title></head>
<body>
    <nav>Beranda | Arsip | Kontak</nav>
    <article>
        <h1>Deteksi Plagiarisme</h1>
        <p>Plagiarisme akademik merupakan <strong>pelanggaran etika</strong> yang serius dalam dunia <em>pendidikan</em> tinggi.</p>
        <p>Lihat <a href="https://example.com/ref">kebijakan kampus</a> untuk detail.</p>
        <ul>
            <li>Integritas</li>
            <li>Orisinalitas</li>
        </ul>
        <img src="chart.png" alt="grafik">
    </article>
    <footer><p>Hak cipta dilindungi</p></footer>
</body>
</html>`

func TestToTextWithSelector(t *testing.T) {
	tests := []struct {
		name        string
		html        string
		selector    string
		expectError bool
		contains    []string
		notContains []string
	}{
		{
			name:        "article selector",
			html:        paperHTML,
			selector:    "article",
			contains:    []string{"Deteksi Plagiarisme", "Integritas", "Orisinalitas"},
			notContains: []string{"Beranda", "Hak cipta"},
		},
		{
			name:        "inline markup removed",
			html:        paperHTML,
			selector:    "article",
			contains:    []string{"merupakan pelanggaran etika yang serius dalam dunia pendidikan tinggi", "Lihat kebijakan kampus untuk detail"},
			notContains: []string{"**", "](", "<strong>", "chart.png"},
		},
		{
			name:     "multiple elements",
			html:     `<html><body><p>Para satu</p><p>Para dua</p></body></html>`,
			selector: "p",
			contains: []string{"Para satu", "Para dua"},
		},
		{
			name:        "non-existent selector",
			html:        paperHTML,
			selector:    ".non-existent",
			expectError: true,
		},
		{
			name:        "invalid selector",
			html:        paperHTML,
			selector:    ">>invalid<<",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := extract.ToText(strings.NewReader(tt.html), tt.selector, false, nil)

			if tt.expectError {
				if err == nil {
					t.Errorf("ToText() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("ToText() unexpected error: %v", err)
			}

			for _, expected := range tt.contains {
				if !strings.Contains(result, expected) {
					t.Errorf("ToText() result should contain %q but doesn't.\nResult: %s", expected, result)
				}
			}
			for _, notExpected := range tt.notContains {
				if strings.Contains(result, notExpected) {
					t.Errorf("ToText() result should not contain %q but does.\nResult: %s", notExpected, result)
				}
			}
		})
	}
}

func TestToTextIncludeAll(t *testing.T) {
	result, err := extract.ToText(strings.NewReader(paperHTML), "", true, nil)
	if err != nil {
		t.Fatalf("ToText() unexpected error: %v", err)
	}

	for _, expected := range []string{"Beranda", "Deteksi Plagiarisme", "Hak cipta dilindungi"} {
		if !strings.Contains(result, expected) {
			t.Errorf("ToText(includeAll) result should contain %q.\nResult: %s", expected, result)
		}
	}
	if strings.Contains(result, "\n\n\n") {
		t.Errorf("ToText(includeAll) result contains runs of blank lines:\n%s", result)
	}
}
