package rest

import (
	"errors"
	"net/http"

	"github.com/delphi-social/server/pkg/bots"
)

func (api *API) botStatusList() BotStatusListResp {
	resp := BotStatusListResp{Bots: []BotStatusResp{}}
	for _, bot := range api.Bots.List() {
		resp.Bots = append(resp.Bots, BotStatusResp{
			Id:     bot.Id,
			Name:   bot.Name,
			Active: bot.IsActive,
		})
	}
	return resp
}

func (api *API) getBotStatus(w http.ResponseWriter, r *http.Request) {
	returnData(w, http.StatusOK, api.botStatusList())
}

func (api *API) toggleBot(w http.ResponseWriter, r *http.Request) {
	var body ToggleBotReq
	if !decodeBody(w, r, &body) {
		return
	}

	if _, err := api.Bots.Toggle(body.BotName, *body.Active); err != nil {
		if errors.Is(err, bots.ErrBotNotFound) {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, err)
		}
		return
	}

	returnData(w, http.StatusOK, api.botStatusList())
}

func (api *API) createBot(w http.ResponseWriter, r *http.Request) {
	var body CreateBotReq
	if !decodeBody(w, r, &body) {
		return
	}

	if _, err := api.Bots.Create(body.BotName); err != nil {
		if errors.Is(err, bots.ErrBotNameExists) {
			returnErr(w, http.StatusConflict, ErrBotNameExists, nil)
		} else {
			returnInternal(w, err)
		}
		return
	}

	returnData(w, http.StatusOK, BotListResp{Bots: api.Bots.List()})
}
