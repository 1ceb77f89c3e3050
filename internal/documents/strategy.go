package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfFont      = "Arial"
	pdfTitleSize = 12
	pdfBodySize  = 12
	lineHeight   = 10

	maxFilenameRunes = 50
)

// StrategyFilename derives the file name a strategy for description is saved
// under: spaces become underscores, the result is cut to its first 50
// characters and any remaining character unsafe in file names becomes an
// underscore.
func StrategyFilename(description string) string {
	name := []rune(strings.ReplaceAll(description, " ", "_"))
	if len(name) > maxFilenameRunes {
		name = name[:maxFilenameRunes]
	}
	for i, r := range name {
		if unsafeFilenameRune(r) {
			name[i] = '_'
		}
	}
	return "strategy_" + string(name) + ".pdf"
}

func unsafeFilenameRune(r rune) bool {
	if r < 0x20 || r == 0x7f {
		return true
	}
	return strings.ContainsRune(`/\:*?"<>|`, r)
}

// WriteStrategy renders strategy as a PDF in outputDir and returns its path.
// The directory is created when missing.
func WriteStrategy(description, strategy, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory %s: %w", outputDir, err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	pdf.SetFont(pdfFont, "", pdfTitleSize)
	pdf.CellFormat(0, lineHeight, tr("Marketing Strategy for "+description), "", 1, "C", false, 0, "")
	pdf.SetFont(pdfFont, "", pdfBodySize)
	pdf.MultiCell(0, lineHeight, tr(strategy), "", "L", false)

	path := filepath.Join(outputDir, StrategyFilename(description))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("writing strategy pdf: %w", err)
	}
	return path, nil
}
