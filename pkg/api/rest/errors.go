package rest

import "errors"

var (
	ErrBadRequest    = errors.New("badRequest")    // 400
	ErrNotFound      = errors.New("notFound")      // 404
	ErrBotNameExists = errors.New("botNameExists") // 409
	ErrInternal      = errors.New("Internal")      // 500
)
