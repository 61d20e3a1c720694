// Package owner は飼い主情報の参照・登録を提供する。
package owner

import (
	"context"
	"net/url"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// Service は飼い主サービス。mockがnil以外の場合はモックモードとして動作する。
type Service struct {
	client *api.Client
	mock   *fixtures.Store
}

// NewService はServiceを生成する。
func NewService(client *api.Client, mock *fixtures.Store) *Service {
	return &Service{client: client, mock: mock}
}

// Get は飼い主をIDで取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Owner, error) {
	if s.mock != nil {
		o, ok := s.mock.OwnerByID(id)
		if !ok {
			return nil, model.NewOwnerNotFoundError(id)
		}
		return o, nil
	}

	resp := s.client.Get(ctx, "/api/owners/"+url.PathEscape(id))
	if !resp.Success {
		if resp.Err.HTTPStatus == 404 {
			return nil, model.NewOwnerNotFoundError(id)
		}
		return nil, resp.Err
	}
	return api.DecodeObject[model.Owner](resp.Data)
}

// Create は飼い主を登録する。
func (s *Service) Create(ctx context.Context, owner model.Owner) (*model.Owner, error) {
	if owner.Name == "" || owner.Email == "" {
		return nil, model.NewInvalidRequestError("氏名とメールアドレスは必須です")
	}

	if s.mock != nil {
		created := s.mock.AddOwner(owner)
		return &created, nil
	}

	resp := s.client.Post(ctx, "/api/owners", owner)
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeObject[model.Owner](resp.Data)
}

// Dogs は飼い主に紐づく犬の一覧を返す。
func (s *Service) Dogs(ctx context.Context, ownerID string) ([]model.Dog, error) {
	if s.mock != nil {
		return s.mock.DogsByOwnerID(ownerID), nil
	}

	resp := s.client.Get(ctx, "/api/owners/"+url.PathEscape(ownerID)+"/dogs")
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeList[model.Dog](resp.Data)
}
