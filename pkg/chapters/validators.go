package chapters

import "mime/multipart"

type uploadChapterPayload struct {
	Title   string `form:"title" json:"title" mod:"trim" validate:"required,max=255"`
	Content string `form:"content" json:"content" validate:"required"`

	// Positional metadata for the images[] parts, matched by index. A
	// blank or non-numeric orders[] entry means "assign the next free
	// value".
	Captions []string `form:"captions" json:"captions"`
	Orders   []string `form:"orders" json:"orders"`

	FormFiles map[string][]*multipart.FileHeader `form:"-" json:"-"`
}

type updateChapterImagePayload struct {
	ID      int     `json:"id" validate:"required"`
	Caption *string `json:"caption"`
	Order   *int    `json:"order" validate:"omitempty,min=0"`
}

type updateChapterPayload struct {
	Title   *string                     `json:"title" mod:"trim" validate:"omitempty,max=255"`
	Content *string                     `json:"content"`
	Images  []updateChapterImagePayload `json:"images" validate:"dive"`
}
