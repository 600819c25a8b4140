package bots

import "errors"

var (
	ErrBotNotFound   = errors.New("bot not found")
	ErrBotNameExists = errors.New("bot name exists")
)
