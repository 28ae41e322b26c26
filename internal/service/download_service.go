package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	apperrors "advancedapi/internal/errors"
)

const (
	// DefaultProbeTimeout bounds the header-only file probe.
	DefaultProbeTimeout = 10 * time.Second

	unknownValue    = "غير محدد"
	unknownFilename = "ملف_غير_محدد"
)

// VideoFormat is one downloadable rendition.
type VideoFormat struct {
	Quality string `json:"quality"`
	Format  string `json:"format"`
	Size    string `json:"size"`
}

// YouTubeInfo is placeholder metadata for a YouTube video.
type YouTubeInfo struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Duration    string        `json:"duration"`
	Views       string        `json:"views"`
	Thumbnail   string        `json:"thumbnail"`
	Channel     string        `json:"channel"`
	UploadDate  string        `json:"uploadDate"`
	Formats     []VideoFormat `json:"formats"`
}

// MediaItem is one image or video attached to a post.
type MediaItem struct {
	Type      string `json:"type"`
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

// InstagramInfo is placeholder metadata for an Instagram post.
type InstagramInfo struct {
	ID        string      `json:"id"`
	Type      string      `json:"type"`
	Caption   string      `json:"caption"`
	Username  string      `json:"username"`
	Likes     string      `json:"likes"`
	Comments  string      `json:"comments"`
	Timestamp string      `json:"timestamp"`
	Media     []MediaItem `json:"media"`
}

// TikTokInfo is placeholder metadata for a TikTok video.
type TikTokInfo struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Username    string `json:"username"`
	Likes       string `json:"likes"`
	Comments    string `json:"comments"`
	Shares      string `json:"shares"`
	Views       string `json:"views"`
	Duration    string `json:"duration"`
	Music       string `json:"music"`
	Thumbnail   string `json:"thumbnail"`
	DownloadURL string `json:"downloadUrl"`
}

// FileInfo is metadata gathered from a HEAD request.
type FileInfo struct {
	URL          string `json:"url"`
	Filename     string `json:"filename"`
	Size         string `json:"size"`
	Type         string `json:"type"`
	LastModified string `json:"lastModified"`
	Server       string `json:"server"`
	DownloadID   string `json:"downloadId"`
}

// DownloadService returns placeholder media metadata and probes file links.
type DownloadService interface {
	YouTubeInfo(link string) (*YouTubeInfo, error)
	InstagramInfo(link string) (*InstagramInfo, error)
	TikTokInfo(link string) (*TikTokInfo, error)
	FileInfo(ctx context.Context, link string) (*FileInfo, error)
}

type downloadService struct {
	links   *LinkValidator
	client  *http.Client
	timeout time.Duration
}

// NewDownloadService builds a DownloadService. A non-positive timeout uses DefaultProbeTimeout.
func NewDownloadService(client *http.Client, timeout time.Duration) DownloadService {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &downloadService{
		links:   NewLinkValidator(),
		client:  client,
		timeout: timeout,
	}
}

func (s *downloadService) YouTubeInfo(link string) (*YouTubeInfo, error) {
	id, err := s.links.YouTubeVideoID(link)
	if err != nil {
		return nil, err
	}
	return &YouTubeInfo{
		ID:          id,
		Title:       "فيديو YouTube - " + id,
		Description: "وصف الفيديو سيظهر هنا",
		Duration:    "5:30",
		Views:       "1,234,567",
		Thumbnail:   "https://img.youtube.com/vi/" + id + "/maxresdefault.jpg",
		Channel:     "اسم القناة",
		UploadDate:  "2023-01-01",
		Formats: []VideoFormat{
			{Quality: "720p", Format: "mp4", Size: "50MB"},
			{Quality: "480p", Format: "mp4", Size: "30MB"},
			{Quality: "360p", Format: "mp4", Size: "20MB"},
		},
	}, nil
}

func (s *downloadService) InstagramInfo(link string) (*InstagramInfo, error) {
	post, err := s.links.InstagramPost(link)
	if err != nil {
		return nil, err
	}
	kind := "فيديو"
	switch post.Kind {
	case "p":
		kind = "صورة"
	case "reel":
		kind = "ريل"
	}
	return &InstagramInfo{
		ID:        post.ID,
		Type:      kind,
		Caption:   "وصف المنشور سيظهر هنا...",
		Username:  "اسم_المستخدم",
		Likes:     "1,234",
		Comments:  "56",
		Timestamp: "2023-01-01T12:00:00Z",
		Media: []MediaItem{{
			Type:      "image",
			URL:       "https://via.placeholder.com/400x400",
			Thumbnail: "https://via.placeholder.com/150x150",
		}},
	}, nil
}

func (s *downloadService) TikTokInfo(link string) (*TikTokInfo, error) {
	id, err := s.links.TikTokVideoID(link)
	if err != nil {
		return nil, err
	}
	return &TikTokInfo{
		ID:          id,
		Description: "وصف فيديو TikTok...",
		Username:    "@اسم_المستخدم",
		Likes:       "12.3K",
		Comments:    "456",
		Shares:      "789",
		Views:       "100K",
		Duration:    "15s",
		Music:       "اسم الأغنية - الفنان",
		Thumbnail:   "https://via.placeholder.com/300x400",
		DownloadURL: "https://example.com/download/tiktok-video.mp4",
	}, nil
}

// FileInfo issues a HEAD request with a fixed deadline. Unresolvable hosts and refused
// connections are reported as apperrors.ErrUnreachableURL.
func (s *downloadService) FileInfo(ctx context.Context, link string) (*FileInfo, error) {
	if link == "" {
		return nil, apperrors.NewValidationError("رابط الملف مطلوب")
	}
	u, err := url.Parse(link)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, apperrors.NewValidationError("الرابط غير صحيح")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, apperrors.NewValidationError("الرابط غير صحيح")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if isUnreachable(err) {
			return nil, apperrors.ErrUnreachableURL
		}
		return nil, fmt.Errorf("probe %s: %w", u.Host, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("probe %s: status %d", u.Host, resp.StatusCode)
	}

	info := &FileInfo{
		URL:          link,
		Filename:     extractFilename(u),
		Size:         unknownValue,
		Type:         headerOrUnknown(resp.Header, "Content-Type"),
		LastModified: headerOrUnknown(resp.Header, "Last-Modified"),
		Server:       headerOrUnknown(resp.Header, "Server"),
		DownloadID:   uuid.New().String(),
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil && n >= 0 {
		info.Size = FormatFileSize(n)
	}
	return info, nil
}

func isUnreachable(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}

func headerOrUnknown(h http.Header, key string) string {
	if v := h.Get(key); v != "" {
		return v
	}
	return unknownValue
}

func extractFilename(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return unknownFilename
	}
	if u.Path[len(u.Path)-1] == '/' {
		return unknownFilename
	}
	return name
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// FormatFileSize renders a byte count in the largest unit up to GB, rounded to two
// decimals with trailing zeros dropped.
func FormatFileSize(bytes int64) string {
	if bytes == 0 {
		return "0 Bytes"
	}
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
