package service

import (
	"bytes"
	"crypto/md5"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"hash"
	"math/big"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	apperrors "advancedapi/internal/errors"
)

const (
	qrServerURL     = "https://api.qrserver.com/v1/create-qr-code/"
	shortLinkPrefix = "https://short.ly/"

	DefaultQRSize = 200
	minQRSize     = 10
	maxQRSize     = 1000

	maxPasswordLength = 512

	lowercaseChars = "abcdefghijklmnopqrstuvwxyz"
	uppercaseChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	numberChars    = "0123456789"
	symbolChars    = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// Password strength labels.
const (
	StrengthWeak       = "ضعيف"
	StrengthMedium     = "متوسط"
	StrengthStrong     = "قوي"
	StrengthVeryStrong = "قوي جداً"
)

// QRCode is a link to a rendered QR image.
type QRCode struct {
	URL  string `json:"url"`
	Text string `json:"text"`
	Size int    `json:"size"`
}

// ShortLink is a shortened URL.
type ShortLink struct {
	OriginalURL string    `json:"originalUrl"`
	ShortURL    string    `json:"shortUrl"`
	ShortID     string    `json:"shortId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PasswordOptions are the recognized password generator settings.
type PasswordOptions struct {
	Length           int  `json:"length"`
	IncludeSymbols   bool `json:"includeSymbols"`
	IncludeNumbers   bool `json:"includeNumbers"`
	IncludeUppercase bool `json:"includeUppercase"`
}

// DefaultPasswordOptions returns a 12 character password with every class enabled.
func DefaultPasswordOptions() PasswordOptions {
	return PasswordOptions{
		Length:           12,
		IncludeSymbols:   true,
		IncludeNumbers:   true,
		IncludeUppercase: true,
	}
}

// PasswordSettings echoes the character classes a password was drawn from.
type PasswordSettings struct {
	IncludeSymbols   bool `json:"includeSymbols"`
	IncludeNumbers   bool `json:"includeNumbers"`
	IncludeUppercase bool `json:"includeUppercase"`
}

// GeneratedPassword is a random password and its strength label.
type GeneratedPassword struct {
	Password string           `json:"password"`
	Length   int              `json:"length"`
	Strength string           `json:"strength"`
	Settings PasswordSettings `json:"settings"`
}

// HashResult is a hex digest.
type HashResult struct {
	OriginalText string `json:"originalText"`
	Hash         string `json:"hash"`
	Algorithm    string `json:"algorithm"`
	Length       int    `json:"length"`
}

// Base64Result is the outcome of one encode or decode.
type Base64Result struct {
	Original  string `json:"original"`
	Result    string `json:"result"`
	Action    string `json:"action"`
	Operation string `json:"operation"`
}

// JSONStats describes a formatted JSON document.
type JSONStats struct {
	Keys  int    `json:"keys"`
	Size  int    `json:"size"`
	Lines int    `json:"lines"`
	Type  string `json:"type"`
}

// JSONFormatResult is a formatted JSON document.
type JSONFormatResult struct {
	Original  string    `json:"original"`
	Formatted string    `json:"formatted"`
	Valid     bool      `json:"valid"`
	Minified  bool      `json:"minified"`
	Stats     JSONStats `json:"stats"`
}

// ToolsService implements the stateless developer utilities.
type ToolsService interface {
	QRCode(text string, size int) (*QRCode, error)
	ShortenURL(rawURL string) (*ShortLink, error)
	GeneratePassword(opts PasswordOptions) (*GeneratedPassword, error)
	Hash(text, algorithm string) (*HashResult, error)
	Base64(text, action string) (*Base64Result, error)
	FormatJSON(input string, minify bool) (*JSONFormatResult, error)
}

type toolsService struct {
	now func() time.Time
}

// NewToolsService builds a ToolsService.
func NewToolsService() ToolsService {
	return &toolsService{now: time.Now}
}

func (s *toolsService) QRCode(text string, size int) (*QRCode, error) {
	if text == "" {
		return nil, apperrors.NewValidationError("النص مطلوب")
	}
	if size < minQRSize || size > maxQRSize {
		return nil, apperrors.NewValidationError(fmt.Sprintf("حجم الرمز يجب أن يكون بين %d و %d", minQRSize, maxQRSize))
	}
	// encodeURIComponent style: spaces as %20, not +
	data := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return &QRCode{
		URL:  fmt.Sprintf("%s?size=%dx%d&data=%s", qrServerURL, size, size, data),
		Text: text,
		Size: size,
	}, nil
}

func (s *toolsService) ShortenURL(rawURL string) (*ShortLink, error) {
	if rawURL == "" {
		return nil, apperrors.NewValidationError("الرابط مطلوب")
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.Opaque == "") {
		return nil, apperrors.NewValidationError("الرابط غير صحيح")
	}
	shortID := uuid.New().String()[:8]
	return &ShortLink{
		OriginalURL: rawURL,
		ShortURL:    shortLinkPrefix + shortID,
		ShortID:     shortID,
		CreatedAt:   s.now().UTC(),
	}, nil
}

func (s *toolsService) GeneratePassword(opts PasswordOptions) (*GeneratedPassword, error) {
	if opts.Length < 1 || opts.Length > maxPasswordLength {
		return nil, apperrors.NewValidationError(fmt.Sprintf("طول كلمة المرور يجب أن يكون بين 1 و %d", maxPasswordLength))
	}

	charset := passwordCharset(opts)
	limit := big.NewInt(int64(len(charset)))
	buf := make([]byte, opts.Length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return nil, fmt.Errorf("read random: %w", err)
		}
		buf[i] = charset[n.Int64()]
	}

	return &GeneratedPassword{
		Password: string(buf),
		Length:   opts.Length,
		Strength: PasswordStrength(opts),
		Settings: PasswordSettings{
			IncludeSymbols:   opts.IncludeSymbols,
			IncludeNumbers:   opts.IncludeNumbers,
			IncludeUppercase: opts.IncludeUppercase,
		},
	}, nil
}

func passwordCharset(opts PasswordOptions) string {
	charset := lowercaseChars
	if opts.IncludeUppercase {
		charset += uppercaseChars
	}
	if opts.IncludeNumbers {
		charset += numberChars
	}
	if opts.IncludeSymbols {
		charset += symbolChars
	}
	return charset
}

// PasswordStrength labels a password by its length and enabled character classes.
func PasswordStrength(opts PasswordOptions) string {
	all := opts.IncludeNumbers && opts.IncludeUppercase && opts.IncludeSymbols
	switch {
	case opts.Length >= 16 && all:
		return StrengthVeryStrong
	case opts.Length >= 12 && all:
		return StrengthStrong
	case opts.Length >= 8 && opts.IncludeNumbers && opts.IncludeUppercase:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

var hashAlgorithms = map[string]func() hash.Hash{
	"md5":    md5.New,
	"sha1":   sha1.New,
	"sha256": sha256.New,
	"sha512": sha512.New,
}

func (s *toolsService) Hash(text, algorithm string) (*HashResult, error) {
	if text == "" {
		return nil, apperrors.NewValidationError("النص مطلوب")
	}
	if algorithm == "" {
		algorithm = "sha256"
	}
	newHash, ok := hashAlgorithms[strings.ToLower(algorithm)]
	if !ok {
		return nil, apperrors.NewValidationError("خوارزمية التشفير غير مدعومة، استخدم md5 أو sha1 أو sha256 أو sha512")
	}
	h := newHash()
	h.Write([]byte(text))
	digest := hex.EncodeToString(h.Sum(nil))
	return &HashResult{
		OriginalText: text,
		Hash:         digest,
		Algorithm:    strings.ToLower(algorithm),
		Length:       len(digest),
	}, nil
}

var strictBase64 = base64.StdEncoding.Strict()

func (s *toolsService) Base64(text, action string) (*Base64Result, error) {
	if text == "" || action == "" {
		return nil, apperrors.NewValidationError("النص ونوع العملية مطلوبان")
	}

	res := &Base64Result{Original: text, Action: action}
	switch action {
	case "encode":
		res.Result = strictBase64.EncodeToString([]byte(text))
		res.Operation = "تشفير"
	case "decode":
		// the decoder skips line breaks, which would break encode(decode(x)) == x
		if strings.ContainsAny(text, "\r\n") {
			return nil, apperrors.NewValidationError("النص المدخل ليس Base64 صحيح")
		}
		decoded, err := strictBase64.DecodeString(text)
		if err != nil || !utf8.Valid(decoded) {
			return nil, apperrors.NewValidationError("النص المدخل ليس Base64 صحيح")
		}
		res.Result = string(decoded)
		res.Operation = "فك تشفير"
	default:
		return nil, apperrors.NewValidationError("نوع العملية يجب أن يكون encode أو decode")
	}
	return res, nil
}

func (s *toolsService) FormatJSON(input string, minify bool) (*JSONFormatResult, error) {
	if input == "" {
		return nil, apperrors.NewValidationError("نص JSON مطلوب")
	}

	// goccy accepts leading zeros and trailing dots in numbers; RFC 8259 does not
	if !stdjson.Valid([]byte(input)) {
		var syntaxErr *stdjson.SyntaxError
		if err := stdjson.Unmarshal([]byte(input), new(interface{})); errors.As(err, &syntaxErr) {
			return nil, apperrors.NewValidationError("JSON غير صحيح: " + syntaxErr.Error())
		}
		return nil, apperrors.NewValidationError("JSON غير صحيح")
	}

	var parsed interface{}
	if err := json.Unmarshal([]byte(input), &parsed); err != nil {
		return nil, apperrors.NewValidationError("JSON غير صحيح: " + err.Error())
	}

	var out bytes.Buffer
	var err error
	if minify {
		err = json.Compact(&out, []byte(input))
	} else {
		err = json.Indent(&out, []byte(input), "", "  ")
	}
	if err != nil {
		return nil, apperrors.NewValidationError("JSON غير صحيح: " + err.Error())
	}
	formatted := strings.TrimSpace(out.String())

	return &JSONFormatResult{
		Original:  input,
		Formatted: formatted,
		Valid:     true,
		Minified:  minify,
		Stats: JSONStats{
			Keys:  countKeys(parsed),
			Size:  len(formatted),
			Lines: strings.Count(formatted, "\n") + 1,
			Type:  jsonType(parsed),
		},
	}, nil
}

// countKeys counts top level members: object keys or array elements.
func countKeys(v interface{}) int {
	switch t := v.(type) {
	case map[string]interface{}:
		return len(t)
	case []interface{}:
		return len(t)
	default:
		return 0
	}
}

func jsonType(v interface{}) string {
	switch v.(type) {
	case map[string]interface{}:
		return "object"
	case []interface{}:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		// null reports as object, the way JavaScript's typeof does
		return "object"
	}
}
