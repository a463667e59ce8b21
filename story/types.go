// Package story defines the story domain: the parameters a caller submits,
// the pages parsed out of model output, and the record that gets persisted.
package story

import "time"

// Genre is the story genre chosen by the caller.
type Genre string

const (
	GenreAdventure      Genre = "Adventure"
	GenreFantasy        Genre = "Fantasy"
	GenreEducational    Genre = "Educational"
	GenreFriendship     Genre = "Friendship"
	GenreAnimalStories  Genre = "Animal Stories"
	GenreMystery        Genre = "Mystery"
	GenreScienceFiction Genre = "Science Fiction"
)

// CharacterType describes the main character.
type CharacterType string

const (
	CharacterBoy       CharacterType = "Boy"
	CharacterGirl      CharacterType = "Girl"
	CharacterNonBinary CharacterType = "Non-binary"
	CharacterAnimal    CharacterType = "Animal Character"
	CharacterMixed     CharacterType = "Mixed Group"
)

// AgeGroup is the target reader age band.
type AgeGroup string

const (
	Age3to5 AgeGroup = "3-5 years"
	Age5to7 AgeGroup = "5-7 years"
	Age7to9 AgeGroup = "7-9 years"
)

// Page count bounds accepted for a story.
const (
	MinPages     = 5
	MaxPages     = 8
	DefaultPages = 6
)

// Genres lists every supported genre in display order.
func Genres() []Genre {
	return []Genre{
		GenreAdventure,
		GenreFantasy,
		GenreEducational,
		GenreFriendship,
		GenreAnimalStories,
		GenreMystery,
		GenreScienceFiction,
	}
}

// CharacterTypes lists every supported character type in display order.
func CharacterTypes() []CharacterType {
	return []CharacterType{
		CharacterBoy,
		CharacterGirl,
		CharacterNonBinary,
		CharacterAnimal,
		CharacterMixed,
	}
}

// AgeGroups lists every supported age group, youngest first.
func AgeGroups() []AgeGroup {
	return []AgeGroup{Age3to5, Age5to7, Age7to9}
}

// Parameters is the record a caller submits to request a story.
// It is passed by value and never modified after submission.
type Parameters struct {
	Genre           Genre         `json:"genre" toml:"genre" validate:"required,oneof='Adventure' 'Fantasy' 'Educational' 'Friendship' 'Animal Stories' 'Mystery' 'Science Fiction'"`
	CharacterType   CharacterType `json:"character_type" toml:"character_type" validate:"required,oneof='Boy' 'Girl' 'Non-binary' 'Animal Character' 'Mixed Group'"`
	AgeGroup        AgeGroup      `json:"age_group" toml:"age_group" validate:"required,oneof='3-5 years' '5-7 years' '7-9 years'"`
	PageCount       int           `json:"page_count" toml:"page_count" validate:"min=5,max=8"`
	Description     string        `json:"description,omitempty" toml:"description" validate:"max=1000"`
	IncludeMoral    bool          `json:"include_moral" toml:"include_moral"`
	IncludeDialogue bool          `json:"include_dialogue" toml:"include_dialogue"`
	Rhyming         bool          `json:"rhyming" toml:"rhyming"`
}

// Page is one numbered page of a story. Page numbers start at 1 and
// increase by one with no gaps.
type Page struct {
	PageNumber int    `json:"page_number"`
	Content    string `json:"content"`
}

// GenerationResult is the structured form of one successful model call.
type GenerationResult struct {
	RawText string `json:"raw_text"`
	Title   string `json:"title"`
	Pages   []Page `json:"pages"`
}

// Metadata describes a stored story.
type Metadata struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Genre              Genre         `json:"genre"`
	CharacterType      CharacterType `json:"character_type"`
	AgeGroup           AgeGroup      `json:"age_group"`
	PageCountRequested int           `json:"page_count_requested"`
	Description        string        `json:"description"`
	CreatedAt          time.Time     `json:"created_at"`
	TotalPages         int           `json:"total_pages"`
	RequestID          string        `json:"request_id,omitempty"`
}

// Record is the persisted unit: ordered pages plus metadata under one ID.
// Re-saving a record under the same ID replaces it wholesale.
type Record struct {
	ID       string   `json:"-"`
	Pages    []Page   `json:"story"`
	Metadata Metadata `json:"metadata"`
}

// NewRecord assembles a record from a generation result and the parameters
// that produced it.
func NewRecord(id string, params Parameters, result GenerationResult, createdAt time.Time, requestID string) Record {
	pages := make([]Page, len(result.Pages))
	copy(pages, result.Pages)

	return Record{
		ID:    id,
		Pages: pages,
		Metadata: Metadata{
			ID:                 id,
			Title:              result.Title,
			Genre:              params.Genre,
			CharacterType:      params.CharacterType,
			AgeGroup:           params.AgeGroup,
			PageCountRequested: params.PageCount,
			Description:        params.Description,
			CreatedAt:          createdAt,
			TotalPages:         len(pages),
			RequestID:          requestID,
		},
	}
}
