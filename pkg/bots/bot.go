package bots

import "github.com/delphi-social/server/pkg/posts"

// Bot is an automated persona. Names are unique case-insensitively and used
// for mention matching; only active bots get dispatched.
type Bot struct {
	Id         string          `json:"id"`
	Name       string          `json:"name"`
	IsActive   bool            `json:"is_active"`
	Timestamp  posts.Timestamp `json:"timestamp"`
	IsExisting bool            `json:"is_existing"`
}
