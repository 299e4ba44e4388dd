package plate

import (
	"context"
	"errors"
	"image"
	"regexp"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
)

type stubOCR struct {
	fragments []string
	err       error
	calls     int
}

func (s *stubOCR) ReadText(_ context.Context, _ image.Image) ([]string, error) {
	s.calls++
	return s.fragments, s.err
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      string
	}{
		{"single fragment", []string{"MH12AB1234"}, "MH12AB1234"},
		{"fragments joined with one space", []string{"MH12", "AB", "1234"}, "MH12 AB 1234"},
		{"outer whitespace trimmed", []string{"  MH12", "1234  "}, "MH12 1234"},
		{"nothing recognized", nil, ""},
		{"detection order kept", []string{"1234", "MH12"}, "1234 MH12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(context.Background(), &stubOCR{fragments: tt.fragments}, image.NewGray(image.Rect(0, 0, 1, 1)))
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_EngineError(t *testing.T) {
	boom := errors.New("tesseract crashed")
	_, err := ExtractText(context.Background(), &stubOCR{err: boom}, image.NewGray(image.Rect(0, 0, 1, 1)))
	assert.ErrorIs(t, err, boom)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"MH 12 AB 1234", "MH12AB1234"},
		{"KA-01.AB/99", "KA01AB99"},
		{"  \t\n", ""},
		{"àbc–12", "bc12"},
		{"ABC123", "ABC123"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in), "Normalize(%q)", tt.in)
	}
}

func TestNormalize_Properties(t *testing.T) {
	alnum := regexp.MustCompile(`^[A-Za-z0-9]*$`)

	idempotent := func(s string) bool {
		once := Normalize(s)
		return Normalize(once) == once
	}
	charset := func(s string) bool {
		return alnum.MatchString(Normalize(s))
	}

	assert.NoError(t, quick.Check(idempotent, nil))
	assert.NoError(t, quick.Check(charset, nil))
}
