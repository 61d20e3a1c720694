// Package master は犬種・サービス種別のマスターデータ参照を提供する。
package master

import (
	"context"

	"github.com/dogmates/dogmates-bff/internal/api"
	"github.com/dogmates/dogmates-bff/internal/fixtures"
	"github.com/dogmates/dogmates-bff/internal/model"
)

// Service はマスターデータサービス。mockがnil以外の場合はモックモードとして動作する。
type Service struct {
	client *api.Client
	mock   *fixtures.Store
}

// NewService はServiceを生成する。
func NewService(client *api.Client, mock *fixtures.Store) *Service {
	return &Service{client: client, mock: mock}
}

// Breeds は犬種マスターを返す。
func (s *Service) Breeds(ctx context.Context) ([]model.Breed, error) {
	if s.mock != nil {
		return s.mock.Breeds(), nil
	}

	resp := s.client.Get(ctx, "/api/breeds")
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeList[model.Breed](resp.Data)
}

// ServiceTypes はサービス種別マスターを返す。
func (s *Service) ServiceTypes(ctx context.Context) ([]model.ServiceType, error) {
	if s.mock != nil {
		return s.mock.ServiceTypes(), nil
	}

	resp := s.client.Get(ctx, "/api/service-types")
	if !resp.Success {
		return nil, resp.Err
	}
	return api.DecodeList[model.ServiceType](resp.Data)
}
