package pdfextract

import (
	"errors"
	"testing"
)

func TestExtractTextEmpty(t *testing.T) {
	if _, err := ExtractText(nil); !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestExtractTextNotAPDF(t *testing.T) {
	_, err := ExtractText([]byte("plain text, not a pdf"))
	if err == nil {
		t.Fatal("expected error for non-pdf input")
	}
}
