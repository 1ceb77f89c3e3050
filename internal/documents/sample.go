package documents

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SampleTitle heads the sample knowledge-base document.
const SampleTitle = "Sample Marketing Strategies Document"

// SampleSections are the headings of the sample knowledge-base document.
var SampleSections = []string{
	"Introduction to Marketing Strategies",
	"Defining Campaign Objectives",
	"Understanding Your Target Audience",
	"Selecting the Right Marketing Channels",
	"Crafting Engaging Content",
	"Budget Allocation for Maximum Impact",
	"Measuring Campaign Success with KPIs",
}

func sampleSectionText(section string) string {
	topic := strings.ToLower(section)
	return fmt.Sprintf("This section provides an overview of %[1]s. "+
		"It covers key concepts and best practices. "+
		"Understanding these principles is crucial for developing effective marketing strategies. "+
		"In the following paragraphs, we will explore various aspects of %[1]s, "+
		"including its importance, common challenges, and practical tips for implementation.\n\n"+
		"Additionally, we will discuss how %[1]s integrates with other components "+
		"of a marketing campaign. By the end of this section, you will have a solid foundation "+
		"to apply these concepts to your own marketing efforts.", topic)
}

// WriteSampleKnowledgeBase writes a small marketing document to path so a
// fresh installation has something to retrieve from.
func WriteSampleKnowledgeBase(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont(pdfFont, "B", 16)
	pdf.CellFormat(0, lineHeight, SampleTitle, "", 1, "C", false, 0, "")

	for _, section := range SampleSections {
		pdf.SetFont(pdfFont, "B", 14)
		pdf.MultiCell(0, lineHeight, section, "", "L", false)

		pdf.SetFont(pdfFont, "", pdfBodySize)
		pdf.MultiCell(0, lineHeight, sampleSectionText(section), "", "L", false)

		pdf.Ln(lineHeight)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("writing sample pdf: %w", err)
	}
	return nil
}
