package rest

import (
	"github.com/delphi-social/server/pkg/bots"
	"github.com/delphi-social/server/pkg/posts"
)

type ErrResp struct {
	Error  bool              `json:"error"`
	Type   string            `json:"type"`
	Fields map[string]string `json:"fields,omitempty"`
}

type BotStatusResp struct {
	Id     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type BotStatusListResp struct {
	Bots []BotStatusResp `json:"bots"`
}

type BotListResp struct {
	Bots []bots.Bot `json:"bots"`
}

type TweetResp struct {
	Tweet posts.Post `json:"tweet"`
}

type StatusResp struct {
	Status string `json:"status"`
}
