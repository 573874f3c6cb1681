package books

import "mime/multipart"

type listBooksQuery struct {
	Genre         []int   `query:"genre" json:"genre"`
	Author        *int    `query:"author" json:"author"`
	Search        *string `query:"search" json:"search" mod:"trim"`
	SortField     string  `query:"sort_field" json:"sort_field" default:"date" validate:"oneof=title date rating"`
	SortDirection string  `query:"sort_direction" json:"sort_direction" default:"asc" validate:"oneof=asc desc"`
}

type uploadBookPayload struct {
	Title       string `form:"title" json:"title" mod:"trim" validate:"required,max=255"`
	Description string `form:"description" json:"description" mod:"trim" validate:"required"`
	GenreIDs    []int  `form:"genre_ids" json:"genre_ids" validate:"required,min=1"`

	FormFiles map[string][]*multipart.FileHeader `form:"-" json:"-"`
}

type updateBookPayload struct {
	Title       *string `form:"title" json:"title" mod:"trim" validate:"omitempty,max=255"`
	Description *string `form:"description" json:"description" mod:"trim"`
	GenreIDs    []int   `form:"genre_ids" json:"genre_ids"`

	FormFiles map[string][]*multipart.FileHeader `form:"-" json:"-"`
}

type hideBookPayload struct {
	HiddenComment string `json:"hidden_comment" mod:"trim" validate:"required"`
}
