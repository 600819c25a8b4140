package rest

type CreateTweetReq struct {
	Text     string  `json:"text" validate:"required"`
	Author   string  `json:"author" validate:"required"`
	ParentId *string `json:"parent_id"`
}

type CreateBotReq struct {
	BotName string `json:"bot_name" validate:"required,min=1,max=32"`
}

type ToggleBotReq struct {
	BotName string `json:"botName" validate:"required"`
	Active  *bool  `json:"active" validate:"required"`
}
