// Package event はコミュニティイベントの参照を提供する。
package event

import (
	"context"
	"net/url"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// Service はイベントサービス。mockがnil以外の場合はモックモードとして動作する。
type Service struct {
	client *api.Client
	mock   *fixtures.Store
}

// NewService はServiceを生成する。
func NewService(client *api.Client, mock *fixtures.Store) *Service {
	return &Service{client: client, mock: mock}
}

// List はイベント一覧を返す。
func (s *Service) List(ctx context.Context) ([]model.Event, error) {
	if s.mock != nil {
		return s.mock.Events(), nil
	}

	resp := s.client.Get(ctx, "/api/events")
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeList[model.Event](resp.Data)
}

// Get はイベントをIDで取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Event, error) {
	if s.mock != nil {
		e, ok := s.mock.EventByID(id)
		if !ok {
			return nil, model.NewEventNotFoundError(id)
		}
		return e, nil
	}

	resp := s.client.Get(ctx, "/api/events/"+url.PathEscape(id))
	if !resp.Success {
		if resp.Err.HTTPStatus == 404 {
			return nil, model.NewEventNotFoundError(id)
		}
		return nil, resp.Err
	}
	return api.DecodeObject[model.Event](resp.Data)
}
