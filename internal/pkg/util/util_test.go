package util

import (
	"bytes"
	"io"
	"testing"
	"time"

	"Huddle/internal/model"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrToUint64(t *testing.T) {
	cases := []struct {
		in   any
		want uint64
		ok   bool
	}{
		{"42", 42, true},
		{float64(7), 7, true},
		{int64(9), 9, true},
		{json.Number("11"), 11, true},
		{float64(1.5), 0, false},
		{-1, 0, false},
		{nil, 0, false},
		{"abc", 0, false},
		{true, 0, false},
	}
	for _, c := range cases {
		got, err := StrToUint64(c.in)
		if c.ok {
			require.NoError(t, err, "%v", c.in)
			assert.Equal(t, c.want, got)
		} else {
			assert.Error(t, err, "%v", c.in)
		}
	}
}

func TestStrToTime(t *testing.T) {
	got, err := StrToTime("2024-05-01 10:20:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC), got)

	got, err = StrToTime("2024-05-01T10:20:30.5Z")
	require.NoError(t, err)
	assert.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))

	_, err = StrToTime("yesterday")
	assert.Error(t, err)
}

func TestStrToString(t *testing.T) {
	s, ok := StrToString(nil)
	assert.False(t, ok)
	assert.Empty(t, s)

	s, ok = StrToString("x")
	assert.True(t, ok)
	assert.Equal(t, "x", s)
}

func TestFileNameFromURL(t *testing.T) {
	assert.Equal(t, "report.pdf", FileNameFromURL("https://cdn.example.com/a/b/report.pdf"))
	assert.Equal(t, "photo.png", FileNameFromURL("https://cdn.example.com/x/photo.png?sig=abc#frag"))
	assert.Equal(t, "my file.txt", FileNameFromURL("https://cdn.example.com/my%20file.txt"))
	assert.Equal(t, "dir", FileNameFromURL("https://cdn.example.com/dir/"))
	assert.Equal(t, "", FileNameFromURL("https://cdn.example.com"))
	assert.Equal(t, "plain.txt", FileNameFromURL("plain.txt"))
}

func TestClassifyMime(t *testing.T) {
	assert.Equal(t, model.FileTypeImage, ClassifyMime("image/png"))
	assert.Equal(t, model.FileTypeVideo, ClassifyMime("video/mp4"))
	assert.Equal(t, model.FileTypeAudio, ClassifyMime("audio/ogg"))
	assert.Equal(t, model.FileTypeDocument, ClassifyMime("application/pdf"))
	assert.True(t, IsFileType(model.FileTypeDocument))
	assert.False(t, IsFileType("archive"))
}

func TestCursorRoundTrip(t *testing.T) {
	c := MessageCursor{CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), ID: 99}
	decoded, err := DecodeCursor(EncodeCursor(c))
	require.NoError(t, err)
	assert.True(t, c.CreatedAt.Equal(decoded.CreatedAt))
	assert.Equal(t, c.ID, decoded.ID)

	empty, err := DecodeCursor("")
	assert.NoError(t, err)
	assert.Nil(t, empty)

	_, err = DecodeCursor("!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestValidateDTO(t *testing.T) {
	type payload struct {
		Name string `validate:"required"`
	}
	assert.ErrorIs(t, ValidateDTO(&payload{}), ErrValidation)
	assert.NoError(t, ValidateDTO(&payload{Name: "ok"}))
}

func TestGetSafeContentType(t *testing.T) {
	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
	r := bytes.NewReader(png)
	mt, err := GetSafeContentType(r)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mt)

	rest, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, png, rest)
}

func TestOriginAllowed(t *testing.T) {
	assert.True(t, OriginAllowed(nil, "https://a.example.com"))
	assert.True(t, OriginAllowed([]string{"*"}, "https://a.example.com"))
	assert.True(t, OriginAllowed([]string{"https://A.example.com"}, "https://a.example.com"))
	assert.False(t, OriginAllowed([]string{"https://b.example.com"}, "https://a.example.com"))
}
