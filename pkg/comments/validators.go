package comments

type createCommentPayload struct {
	Content string `json:"content" mod:"trim" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
}

type updateCommentPayload struct {
	Content *string `json:"content" mod:"trim"`
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
}
