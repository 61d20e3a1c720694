// Package dog は登録犬の参照・登録を提供する。
package dog

import (
	"context"
	"net/url"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// Service は犬サービス。mockがnil以外の場合はモックモードとして動作する。
type Service struct {
	client *api.Client
	mock   *fixtures.Store
}

// NewService はServiceを生成する。
func NewService(client *api.Client, mock *fixtures.Store) *Service {
	return &Service{client: client, mock: mock}
}

// Get は犬をIDで取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Dog, error) {
	if s.mock != nil {
		d, ok := s.mock.DogByID(id)
		if !ok {
			return nil, model.NewDogNotFoundError(id)
		}
		return d, nil
	}

	resp := s.client.Get(ctx, "/api/dogs/"+url.PathEscape(id))
	if !resp.Success {
		if resp.Err.HTTPStatus == 404 {
			return nil, model.NewDogNotFoundError(id)
		}
		return nil, resp.Err
	}
	return api.DecodeObject[model.Dog](resp.Data)
}

// Create は犬を登録する。
func (s *Service) Create(ctx context.Context, dog model.Dog) (*model.Dog, error) {
	if dog.OwnerID == "" || dog.Name == "" {
		return nil, model.NewInvalidRequestError("飼い主IDと名前は必須です")
	}

	if s.mock != nil {
		created := s.mock.AddDog(dog)
		return &created, nil
	}

	resp := s.client.Post(ctx, "/api/dogs", dog)
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeObject[model.Dog](resp.Data)
}
