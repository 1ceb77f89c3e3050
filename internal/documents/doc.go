// Package documents reads and writes the PDFs that surround the strategist:
// knowledge-base sources going in, generated strategies coming out, and a
// sample knowledge-base document for first runs.
package documents
