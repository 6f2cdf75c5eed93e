package models

type BookmarkReq struct {
	Title       string  `json:"title" validate:"required"`
	URL         string  `json:"url" validate:"required"`
	Description *string `json:"description"`
	Rating      *int    `json:"rating"`
}

func (r BookmarkReq) Fields() BookmarkFields {
	return BookmarkFields{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Rating:      r.Rating,
	}
}

// BookmarkPatchReq ignores unknown keys; a JSON null is treated like an absent key.
type BookmarkPatchReq struct {
	Title       *string `json:"title"`
	URL         *string `json:"url"`
	Description *string `json:"description"`
	Rating      *int    `json:"rating"`
}

func (r BookmarkPatchReq) Patch() BookmarkPatch {
	return BookmarkPatch{
		Title:       r.Title,
		URL:         r.URL,
		Description: r.Description,
		Rating:      r.Rating,
	}
}

type (
	ErrorResp struct {
		Error ErrorBody `json:"error"`
	}

	ErrorBody struct {
		Message string `json:"message"`
	}
)

func NewErrorResp(message string) ErrorResp {
	return ErrorResp{Error: ErrorBody{Message: message}}
}
