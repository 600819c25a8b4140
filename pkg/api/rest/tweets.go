package rest

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/delphi-social/server/pkg/posts"
)

func (api *API) getTweets(w http.ResponseWriter, r *http.Request) {
	returnData(w, http.StatusOK, api.Store.GetAll())
}

func (api *API) getTweet(w http.ResponseWriter, r *http.Request) {
	tweet, err := api.Store.Get(chi.URLParam(r, "tweetId"))
	if err != nil {
		if errors.Is(err, posts.ErrPostNotFound) {
			returnErr(w, http.StatusNotFound, ErrNotFound, nil)
		} else {
			returnInternal(w, err)
		}
		return
	}

	// Replies come back with their whole thread. A root post carries no
	// thread id and comes back alone.
	if tweet.ThreadId != nil {
		returnData(w, http.StatusOK, api.Store.GetThread(*tweet.ThreadId))
		return
	}
	returnData(w, http.StatusOK, []posts.Post{tweet})
}

func (api *API) createTweet(w http.ResponseWriter, r *http.Request) {
	var body CreateTweetReq
	if !decodeBody(w, r, &body) {
		return
	}

	tweet, err := api.Store.Create(body.Text, body.Author, body.ParentId)
	if err != nil {
		returnInternal(w, err)
		return
	}

	// Bot replies happen after this response is already on the wire.
	api.Responder.Dispatch(tweet)

	returnData(w, http.StatusOK, TweetResp{Tweet: tweet})
}

func (api *API) getDebugInfo(w http.ResponseWriter, r *http.Request) {
	snapshot, _ := api.Debug.Latest(chi.URLParam(r, "tweetId"))
	returnData(w, http.StatusOK, snapshot)
}

func (api *API) clearTweets(w http.ResponseWriter, r *http.Request) {
	if err := api.Store.ClearNonExisting(); err != nil {
		returnInternal(w, err)
		return
	}
	if err := api.Bots.ClearNonExisting(); err != nil {
		returnInternal(w, err)
		return
	}
	returnData(w, http.StatusOK, StatusResp{Status: "success"})
}
