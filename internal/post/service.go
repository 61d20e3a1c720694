// Package post はコミュニティ掲示板の投稿を提供する。
// 投稿本文のHTMLは保存・中継の前に必ずサニタイズする。
package post

import (
	"context"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/model"
	"github.com/dogmates/dogmates-bff/internal/security"
)

// Service は投稿サービス。mockがnil以外の場合はモックモードとして動作する。
type Service struct {
	client    *api.Client
	mock      *fixtures.Store
	sanitizer security.ContentSanitizerService
}

// NewService はServiceを生成する。
func NewService(client *api.Client, mock *fixtures.Store, sanitizer security.ContentSanitizerService) *Service {
	return &Service{client: client, mock: mock, sanitizer: sanitizer}
}

// List は投稿一覧を返す。本文は応答前にもサニタイズする。
func (s *Service) List(ctx context.Context) ([]model.Post, error) {
	var posts []model.Post
	if s.mock != nil {
		posts = s.mock.Posts()
	} else {
		resp := s.client.Get(ctx, "/api/posts")
		if !resp.Success {
			return nil, resp.Err
		}
		decoded, err := api.DecodeList[model.Post](resp.Data)
		if err != nil {
			return nil, err
		}
		posts = decoded
	}

	for i := range posts {
		posts[i].Body = s.sanitizer.Sanitize(posts[i].Body)
	}
	return posts, nil
}

// Create は投稿を作成する。本文はサニタイズしてから保存する。
func (s *Service) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	if post.AuthorID == "" || post.Title == "" {
		return nil, model.NewInvalidRequestError("投稿者IDとタイトルは必須です")
	}
	post.Body = s.sanitizer.Sanitize(post.Body)

	if s.mock != nil {
		created := s.mock.AddPost(post)
		return &created, nil
	}

	resp := s.client.Post(ctx, "/api/posts", post)
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeObject[model.Post](resp.Data)
}
