package plate

import (
	"context"
	"image"
	"strings"
)

// ExtractText runs OCR on the patch and joins the fragments with single spaces
func ExtractText(ctx context.Context, engine OCREngine, patch image.Image) (string, error) {
	fragments, err := engine.ReadText(ctx, patch)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Join(fragments, " ")), nil
}

// Normalize drops every byte outside [A-Za-z0-9]
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}
