package service

import (
	"regexp"

	apperrors "advancedapi/internal/errors"
)

var (
	youtubePattern   = regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	instagramPattern = regexp.MustCompile(`instagram\.com/(p|reel|tv)/([a-zA-Z0-9_-]+)`)
	tiktokPattern    = regexp.MustCompile(`tiktok\.com/@[\w.-]+/video/(\d+)|vm\.tiktok\.com/([a-zA-Z0-9]+)`)
)

// InstagramPost identifies a post and its kind.
type InstagramPost struct {
	ID   string
	Kind string // p, reel or tv
}

// LinkValidator validates social media links.
type LinkValidator struct{}

// NewLinkValidator creates a new link validator.
func NewLinkValidator() *LinkValidator {
	return &LinkValidator{}
}

// YouTubeVideoID extracts the 11 character video id from a watch or short link.
func (v *LinkValidator) YouTubeVideoID(link string) (string, error) {
	if link == "" {
		return "", apperrors.NewValidationError("رابط الفيديو مطلوب")
	}
	m := youtubePattern.FindStringSubmatch(link)
	if m == nil {
		return "", apperrors.NewValidationError("رابط YouTube غير صحيح")
	}
	return m[1], nil
}

// InstagramPost extracts the post id and kind.
func (v *LinkValidator) InstagramPost(link string) (*InstagramPost, error) {
	if link == "" {
		return nil, apperrors.NewValidationError("رابط المنشور مطلوب")
	}
	m := instagramPattern.FindStringSubmatch(link)
	if m == nil {
		return nil, apperrors.NewValidationError("رابط Instagram غير صحيح")
	}
	return &InstagramPost{ID: m[2], Kind: m[1]}, nil
}

// TikTokVideoID extracts the id from a full video link or a vm.tiktok.com short link.
func (v *LinkValidator) TikTokVideoID(link string) (string, error) {
	if link == "" {
		return "", apperrors.NewValidationError("رابط الفيديو مطلوب")
	}
	m := tiktokPattern.FindStringSubmatch(link)
	if m == nil {
		return "", apperrors.NewValidationError("رابط TikTok غير صحيح")
	}
	if m[1] != "" {
		return m[1], nil
	}
	return m[2], nil
}
