package mattermost

import (
	"context"
	"net/http"
	"sort"

	"github.com/ericzzh/mattermost-autodelete/server/app"
	"github.com/mattermost/mattermost-server/v6/model"
	"github.com/pkg/errors"
)

const postsPerPage = 200

// API is the part of model.Client4 the message store needs.
type API interface {
	GetPostsForChannel(channelId string, page, perPage int, etag string, collapsedThreads bool) (*model.PostList, *model.Response, error)
	GetPostsBefore(channelId, postId string, page, perPage int, etag string, collapsedThreads bool) (*model.PostList, *model.Response, error)
	GetPinnedPosts(channelId string, etag string) (*model.PostList, *model.Response, error)
	DeletePost(postId string) (*model.Response, error)
}

// Client is the message store backed by the Mattermost REST API.
type Client struct {
	api API
}

// NewAPI creates a REST client authenticated with the bot token.
func NewAPI(serverURL, token string) *model.Client4 {
	client := model.NewAPIv4Client(serverURL)
	client.SetToken(token)
	return client
}

// NewClient creates the message store.
func NewClient(api API) *Client {
	return &Client{api: api}
}

var _ app.MessageStore = (*Client)(nil)

// ForEachMessage pages through the channel, newest first. A page is fetched completely
// before fn sees any of its posts, so fn may delete them.
func (c *Client) ForEachMessage(ctx context.Context, channelID string, fn func(app.Message) bool) error {
	var before string
	for {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "history scan interrupted")
		}

		var (
			list *model.PostList
			err  error
		)
		if before == "" {
			list, _, err = c.api.GetPostsForChannel(channelID, 0, postsPerPage, "", false)
		} else {
			list, _, err = c.api.GetPostsBefore(channelID, before, 0, postsPerPage, "", false)
		}
		if err != nil {
			return errors.Wrapf(err, "failed to get posts of channel %s", channelID)
		}
		if list == nil || len(list.Order) == 0 {
			return nil
		}

		page := messagesOf(list)
		before = list.Order[len(list.Order)-1]

		for _, msg := range page {
			if !fn(msg) {
				return nil
			}
		}

		if len(list.Order) < postsPerPage {
			return nil
		}
	}
}

func (c *Client) GetPinnedMessages(_ context.Context, channelID string) ([]app.Message, error) {
	list, _, err := c.api.GetPinnedPosts(channelID, "")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get pinned posts of channel %s", channelID)
	}
	if list == nil {
		return nil, nil
	}

	pins := messagesOf(list)
	sort.SliceStable(pins, func(i, j int) bool {
		return pins[i].CreateAt < pins[j].CreateAt
	})
	return pins, nil
}

func (c *Client) DeleteMessage(_ context.Context, messageID string) error {
	resp, err := c.api.DeletePost(messageID)
	if err != nil {
		// already gone
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return errors.Wrapf(err, "failed to delete post %s", messageID)
	}
	return nil
}

// messagesOf keeps the list order and drops deleted posts.
func messagesOf(list *model.PostList) []app.Message {
	msgs := make([]app.Message, 0, len(list.Order))
	for _, id := range list.Order {
		post, ok := list.Posts[id]
		if !ok || post.DeleteAt != 0 {
			continue
		}
		msgs = append(msgs, ToMessage(post))
	}
	return msgs
}

// ToMessage converts a post into the retention view of it.
func ToMessage(post *model.Post) app.Message {
	return app.Message{
		ID:        post.Id,
		ChannelID: post.ChannelId,
		CreateAt:  post.CreateAt,
		Pinned:    post.IsPinned,
	}
}
