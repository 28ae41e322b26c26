package service

import (
	stdjson "encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "advancedapi/internal/errors"
)

func TestToolsService_Hash(t *testing.T) {
	s := NewToolsService()

	tests := []struct {
		algorithm string
		expected  string
	}{
		{"md5", "900150983cd24fb0d6963f7d28e17f72"},
		{"sha1", "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{"sha256", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"SHA512", "ddaf35a193617abacc417349ae20413112e6fa4e89a97ea20a9eeee64b55d39a2192992a274fc1a836ba3c23a3feebbd454d4423643ce80e2a9ac94fa54ca49f"},
	}

	for _, tt := range tests {
		t.Run("algorithm "+tt.algorithm, func(t *testing.T) {
			res, err := s.Hash("abc", tt.algorithm)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, res.Hash)
			assert.Equal(t, len(tt.expected), res.Length)
			assert.Equal(t, "abc", res.OriginalText)
		})
	}

	t.Run("unsupported algorithm", func(t *testing.T) {
		_, err := s.Hash("abc", "crc32")
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("missing text", func(t *testing.T) {
		_, err := s.Hash("", "md5")
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestToolsService_GeneratePassword(t *testing.T) {
	s := NewToolsService()

	t.Run("every class enabled", func(t *testing.T) {
		for _, length := range []int{1, 8, 12, 16, 64} {
			res, err := s.GeneratePassword(PasswordOptions{Length: length, IncludeSymbols: true, IncludeNumbers: true, IncludeUppercase: true})
			require.NoError(t, err)
			assert.Len(t, res.Password, length)
			charset := lowercaseChars + uppercaseChars + numberChars + symbolChars
			for _, r := range res.Password {
				assert.True(t, strings.ContainsRune(charset, r), "unexpected character %q", r)
			}
			if length >= 16 {
				assert.Equal(t, StrengthVeryStrong, res.Strength)
			} else {
				assert.NotEqual(t, StrengthVeryStrong, res.Strength)
			}
		}
	})

	t.Run("lowercase only", func(t *testing.T) {
		res, err := s.GeneratePassword(PasswordOptions{Length: 32})
		require.NoError(t, err)
		for _, r := range res.Password {
			assert.True(t, strings.ContainsRune(lowercaseChars, r))
		}
		assert.Equal(t, StrengthWeak, res.Strength)
		assert.False(t, res.Settings.IncludeSymbols)
	})

	t.Run("length out of range", func(t *testing.T) {
		for _, length := range []int{0, -1, maxPasswordLength + 1} {
			_, err := s.GeneratePassword(PasswordOptions{Length: length})
			var ve *apperrors.ValidationError
			assert.ErrorAs(t, err, &ve)
		}
	})
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		opts     PasswordOptions
		expected string
	}{
		{"sixteen with all classes", PasswordOptions{Length: 16, IncludeSymbols: true, IncludeNumbers: true, IncludeUppercase: true}, StrengthVeryStrong},
		{"twenty without symbols", PasswordOptions{Length: 20, IncludeNumbers: true, IncludeUppercase: true}, StrengthMedium},
		{"twelve with all classes", PasswordOptions{Length: 12, IncludeSymbols: true, IncludeNumbers: true, IncludeUppercase: true}, StrengthStrong},
		{"eight with numbers and upper", PasswordOptions{Length: 8, IncludeNumbers: true, IncludeUppercase: true}, StrengthMedium},
		{"seven with all classes", PasswordOptions{Length: 7, IncludeSymbols: true, IncludeNumbers: true, IncludeUppercase: true}, StrengthWeak},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PasswordStrength(tt.opts))
		})
	}
}

func TestToolsService_Base64(t *testing.T) {
	s := NewToolsService()

	t.Run("round trip", func(t *testing.T) {
		for _, text := range []string{"hello", "مرحبا بالعالم", "a", "line\nbreak"} {
			enc, err := s.Base64(text, "encode")
			require.NoError(t, err)
			assert.Equal(t, "تشفير", enc.Operation)

			dec, err := s.Base64(enc.Result, "decode")
			require.NoError(t, err)
			assert.Equal(t, text, dec.Result)
			assert.Equal(t, "فك تشفير", dec.Operation)
		}
	})

	t.Run("known value", func(t *testing.T) {
		res, err := s.Base64("hello", "encode")
		require.NoError(t, err)
		assert.Equal(t, "aGVsbG8=", res.Result)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		for _, text := range []string{"not base64!", "aGVsbG8", "aGVs\nbG8=", "/w=="} {
			_, err := s.Base64(text, "decode")
			var ve *apperrors.ValidationError
			require.ErrorAs(t, err, &ve, text)
			assert.Equal(t, "النص المدخل ليس Base64 صحيح", ve.Message)
		}
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := s.Base64("hello", "rot13")
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve)
	})
}

func TestToolsService_FormatJSON(t *testing.T) {
	s := NewToolsService()

	t.Run("pretty print object", func(t *testing.T) {
		res, err := s.FormatJSON(`{"a":1,"b":[1,2]}`, false)
		require.NoError(t, err)
		assert.Equal(t, "{\n  \"a\": 1,\n  \"b\": [\n    1,\n    2\n  ]\n}", res.Formatted)
		assert.True(t, res.Valid)
		assert.False(t, res.Minified)
		assert.Equal(t, 2, res.Stats.Keys)
		assert.Equal(t, 7, res.Stats.Lines)
		assert.Equal(t, len(res.Formatted), res.Stats.Size)
		assert.Equal(t, "object", res.Stats.Type)
	})

	t.Run("minify array", func(t *testing.T) {
		res, err := s.FormatJSON("[ 1, 2,\n 3 ]", true)
		require.NoError(t, err)
		assert.Equal(t, "[1,2,3]", res.Formatted)
		assert.Equal(t, 1, res.Stats.Lines)
		assert.Equal(t, 3, res.Stats.Keys)
		assert.Equal(t, "array", res.Stats.Type)
	})

	t.Run("scalar types", func(t *testing.T) {
		for input, typ := range map[string]string{`"x"`: "string", `42`: "number", `true`: "boolean", `null`: "object"} {
			res, err := s.FormatJSON(input, false)
			require.NoError(t, err)
			assert.Equal(t, typ, res.Stats.Type)
			assert.Equal(t, 0, res.Stats.Keys)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		for _, input := range []string{`{"a":`, `01`, `-01`, `1.`, `[01]`, `{"a":007}`, `.5`, `1e`, `{"a":1,}`, `[1 2]`, `{'a':1}`, `NaN`} {
			_, err := s.FormatJSON(input, false)
			var ve *apperrors.ValidationError
			assert.ErrorAs(t, err, &ve, input)
		}
	})

	t.Run("formatted output parses to the same value", func(t *testing.T) {
		inputs := []string{
			`{"b":1,"a":[true,null,"x"],"c":{"d":-0.5e3}}`,
			`[ ]`,
			`"\u00e9t\u00e9"`,
			`{"unicode":"مرحبا","n":1.25}`,
			`0`,
		}
		for _, input := range inputs {
			var want interface{}
			require.NoError(t, stdjson.Unmarshal([]byte(input), &want), input)

			for _, minify := range []bool{false, true} {
				res, err := s.FormatJSON(input, minify)
				require.NoError(t, err, input)
				assert.True(t, stdjson.Valid([]byte(res.Formatted)), res.Formatted)

				var got interface{}
				require.NoError(t, stdjson.Unmarshal([]byte(res.Formatted), &got))
				assert.Equal(t, want, got, input)
			}
		}
	})
}

func TestToolsService_QRCode(t *testing.T) {
	s := NewToolsService()

	res, err := s.QRCode("hello world&x=1", DefaultQRSize)
	require.NoError(t, err)
	assert.Equal(t, "https://api.qrserver.com/v1/create-qr-code/?size=200x200&data=hello%20world%26x%3D1", res.URL)

	_, err = s.QRCode("", DefaultQRSize)
	assert.Error(t, err)
	_, err = s.QRCode("x", maxQRSize+1)
	assert.Error(t, err)
}

func TestToolsService_ShortenURL(t *testing.T) {
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	s := &toolsService{now: func() time.Time { return fixed }}

	res, err := s.ShortenURL("https://example.com/a/very/long/path")
	require.NoError(t, err)
	assert.Len(t, res.ShortID, 8)
	assert.Equal(t, "https://short.ly/"+res.ShortID, res.ShortURL)
	assert.Equal(t, fixed, res.CreatedAt)

	for _, bad := range []string{"", "not a url", "/relative/path"} {
		_, err := s.ShortenURL(bad)
		var ve *apperrors.ValidationError
		assert.ErrorAs(t, err, &ve, bad)
	}
}
