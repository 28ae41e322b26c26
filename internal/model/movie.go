package model

import (
	"fmt"
	"math"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "advancedapi/internal/errors"
)

// MovieStatus is the production lifecycle of a movie.
type MovieStatus string

const (
	MovieStatusRumored        MovieStatus = "rumored"
	MovieStatusPlanned        MovieStatus = "planned"
	MovieStatusInProduction   MovieStatus = "in_production"
	MovieStatusPostProduction MovieStatus = "post_production"
	MovieStatusReleased       MovieStatus = "released"
	MovieStatusCanceled       MovieStatus = "canceled"
)

// Result sources for movie listings.
const (
	SourceLocal   = "local"
	SourceTMDB    = "tmdb"
	SourceDefault = "default"
)

var imageURLPattern = regexp.MustCompile(`^https?://.+`)

// Movie is a catalog entry.
type Movie struct {
	ID                  uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Title               string          `json:"title" gorm:"size:200;not null;index:idx_movies_text,class:FULLTEXT"`
	OriginalTitle       string          `json:"originalTitle,omitempty" gorm:"size:200"`
	Overview            string          `json:"overview,omitempty" gorm:"size:2000;index:idx_movies_text,class:FULLTEXT"`
	ReleaseDate         *time.Time      `json:"releaseDate,omitempty" gorm:"type:date;index:,sort:desc"`
	Runtime             int             `json:"runtime,omitempty"`
	Rating              float64         `json:"rating" gorm:"not null;default:0;index:,sort:desc"`
	VoteCount           int64           `json:"voteCount" gorm:"not null;default:0"`
	Popularity          float64         `json:"popularity" gorm:"not null;default:0;index:,sort:desc"`
	Poster              string          `json:"poster,omitempty" gorm:"size:500"`
	Backdrop            string          `json:"backdrop,omitempty" gorm:"size:500"`
	Genres              []string        `json:"genres" gorm:"type:json;serializer:json"`
	Cast                []CastMember    `json:"cast,omitempty" gorm:"type:json;serializer:json"`
	Crew                []CrewMember    `json:"crew,omitempty" gorm:"type:json;serializer:json"`
	ProductionCompanies []Company       `json:"productionCompanies,omitempty" gorm:"type:json;serializer:json"`
	Budget              decimal.Decimal `json:"budget" gorm:"type:decimal(20,2);not null;default:0"`
	Revenue             decimal.Decimal `json:"revenue" gorm:"type:decimal(20,2);not null;default:0"`
	Status              MovieStatus     `json:"status" gorm:"type:varchar(20);not null;default:'released'"`
	Language            string          `json:"language" gorm:"size:10;not null;default:'ar'"`
	Country             string          `json:"country" gorm:"size:10;not null;default:'SA'"`
	ExternalIDs         ExternalIDs     `json:"externalIds" gorm:"embedded"`
	Tags                []string        `json:"tags,omitempty" gorm:"type:json;serializer:json"`
	IsActive            bool            `json:"isActive" gorm:"not null;index"`
	AddedBy             *uuid.UUID      `json:"addedBy,omitempty" gorm:"type:char(36)"`
	CreatedAt           time.Time       `json:"createdAt"`
	UpdatedAt           time.Time       `json:"updatedAt"`
}

// CastMember is one credited actor.
type CastMember struct {
	Name        string `json:"name" validate:"required"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
}

// CrewMember is one credited crew member.
type CrewMember struct {
	Name       string `json:"name" validate:"required"`
	Job        string `json:"job,omitempty"`
	Department string `json:"department,omitempty"`
}

// Company is a production company.
type Company struct {
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
}

// ExternalIDs links a catalog entry to third party databases.
type ExternalIDs struct {
	TMDBID           *int64 `json:"tmdbId,omitempty" gorm:"column:tmdb_id;index"`
	IMDBID           string `json:"imdbId,omitempty" gorm:"column:imdb_id;size:20"`
	RottenTomatoesID string `json:"rottenTomatoesId,omitempty" gorm:"column:rotten_tomatoes_id;size:100"`
}

// BeforeCreate sets UUID and defaults before creating the record.
func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.Status == "" {
		m.Status = MovieStatusReleased
	}
	if m.Language == "" {
		m.Language = "ar"
	}
	if m.Country == "" {
		m.Country = "SA"
	}
	return nil
}

// BeforeSave validates the record and derives popularity from rating and vote count.
func (m *Movie) BeforeSave(tx *gorm.DB) error {
	if err := m.Validate(); err != nil {
		return err
	}
	m.RecomputePopularity()
	return nil
}

// RecomputePopularity keeps popularity = rating * voteCount / 100.
func (m *Movie) RecomputePopularity() {
	m.Popularity = m.Rating * float64(m.VoteCount) / 100
}

// Validate checks field constraints that the storage schema cannot express.
func (m *Movie) Validate() error {
	switch {
	case m.Title == "":
		return apperrors.NewValidationError("عنوان الفيلم مطلوب")
	case utf8.RuneCountInString(m.Title) > 200:
		return apperrors.NewValidationError("عنوان الفيلم لا يمكن أن يزيد عن 200 حرف")
	case utf8.RuneCountInString(m.Overview) > 2000:
		return apperrors.NewValidationError("الوصف لا يمكن أن يزيد عن 2000 حرف")
	case m.Runtime < 0:
		return apperrors.NewValidationError("مدة الفيلم يجب أن تكون أكبر من 0")
	case m.Rating < 0:
		return apperrors.NewValidationError("التقييم لا يمكن أن يكون أقل من 0")
	case m.Rating > 10:
		return apperrors.NewValidationError("التقييم لا يمكن أن يكون أكبر من 10")
	case m.VoteCount < 0:
		return apperrors.NewValidationError("عدد الأصوات لا يمكن أن يكون سالباً")
	case m.Poster != "" && !imageURLPattern.MatchString(m.Poster):
		return apperrors.NewValidationError("رابط الصورة يجب أن يكون URL صحيح")
	case m.Backdrop != "" && !imageURLPattern.MatchString(m.Backdrop):
		return apperrors.NewValidationError("رابط الخلفية يجب أن يكون URL صحيح")
	case m.Budget.IsNegative():
		return apperrors.NewValidationError("الميزانية لا يمكن أن تكون سالبة")
	case m.Revenue.IsNegative():
		return apperrors.NewValidationError("الإيرادات لا يمكن أن تكون سالبة")
	case m.Status != "" && !m.Status.Valid():
		return apperrors.NewValidationError("حالة الفيلم غير صحيحة")
	}
	for _, member := range m.Cast {
		if member.Name == "" {
			return apperrors.NewValidationError("اسم الممثل مطلوب")
		}
	}
	for _, member := range m.Crew {
		if member.Name == "" {
			return apperrors.NewValidationError("اسم عضو الطاقم مطلوب")
		}
	}
	return nil
}

// Valid reports whether s is a known lifecycle status.
func (s MovieStatus) Valid() bool {
	switch s {
	case MovieStatusRumored, MovieStatusPlanned, MovieStatusInProduction,
		MovieStatusPostProduction, MovieStatusReleased, MovieStatusCanceled:
		return true
	}
	return false
}

// StarRating converts the 0-10 rating to 0-5 stars.
func (m *Movie) StarRating() int {
	return int(math.Round(m.Rating / 2))
}

// FormattedRuntime renders the runtime as hours and minutes.
func (m *Movie) FormattedRuntime() string {
	if m.Runtime <= 0 {
		return "غير محدد"
	}
	hours, minutes := m.Runtime/60, m.Runtime%60
	if hours > 0 {
		return fmt.Sprintf("%dس %dد", hours, minutes)
	}
	return fmt.Sprintf("%dد", minutes)
}

// Year returns the release year, or nil when the release date is unknown.
func (m *Movie) Year() *int {
	if m.ReleaseDate == nil {
		return nil
	}
	year := m.ReleaseDate.Year()
	return &year
}

// Summary flattens a catalog entry into the listing shape shared with provider results.
func (m *Movie) Summary() MovieSummary {
	s := MovieSummary{
		ID:       m.ID.String(),
		Title:    m.Title,
		Overview: m.Overview,
		Rating:   m.Rating,
		Genres:   m.Genres,
		Source:   SourceLocal,
	}
	if m.ReleaseDate != nil {
		s.ReleaseDate = m.ReleaseDate.Format("2006-01-02")
	}
	if m.Poster != "" {
		poster := m.Poster
		s.Poster = &poster
	}
	if s.Genres == nil {
		s.Genres = []string{}
	}
	return s
}

// MovieSummary is one entry of a search or popular listing.
type MovieSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview"`
	ReleaseDate string   `json:"releaseDate"`
	Rating      float64  `json:"rating"`
	Poster      *string  `json:"poster"`
	Genres      []string `json:"genres"`
	Source      string   `json:"source"`
}

// MovieDetails is a movie resolved from the external provider.
type MovieDetails struct {
	MovieSummary
	Runtime int   `json:"runtime"`
	Budget  int64 `json:"budget"`
	Revenue int64 `json:"revenue"`
}

// MovieView is a catalog entry with its derived display fields.
type MovieView struct {
	*Movie
	StarRating       int    `json:"starRating"`
	FormattedRuntime string `json:"formattedRuntime"`
	Year             *int   `json:"year"`
}

// View attaches the derived display fields.
func (m *Movie) View() MovieView {
	return MovieView{
		Movie:            m,
		StarRating:       m.StarRating(),
		FormattedRuntime: m.FormattedRuntime(),
		Year:             m.Year(),
	}
}
