package api

import (
	"encoding/json"
	"fmt"
)

// DecodeList はバックエンドのリスト系レスポンスをデコードする。
// 以下の3形式を受け付ける:
//
//	[...]                          素の配列
//	{"items": [...]}               itemsエンベロープ
//	{"data": {"items": [...]}}     dataエンベロープ
//
// いずれにも一致しない場合はエラーを返す。
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	var items []T
	if err := json.Unmarshal(raw, &items); err == nil {
		return items, nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("リストレスポンスの解析に失敗しました: %w", err)
	}

	if inner, ok := envelope["items"]; ok {
		if err := json.Unmarshal(inner, &items); err != nil {
			return nil, fmt.Errorf("itemsフィールドの解析に失敗しました: %w", err)
		}
		return items, nil
	}

	if data, ok := envelope["data"]; ok {
		var dataEnvelope struct {
			Items []T `json:"items"`
		}
		if err := json.Unmarshal(data, &dataEnvelope); err != nil {
			return nil, fmt.Errorf("dataフィールドの解析に失敗しました: %w", err)
		}
		if dataEnvelope.Items != nil {
			return dataEnvelope.Items, nil
		}
	}

	return nil, fmt.Errorf("未対応のリストレスポンス形式です")
}

// DecodeObject は単一オブジェクトのレスポンスをデコードする。
// 素のオブジェクトと{"data": {...}}エンベロープの両方を受け付ける。
func DecodeObject[T any](raw json.RawMessage) (*T, error) {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 {
		raw = envelope.Data
	}

	var obj T
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("レスポンスの解析に失敗しました: %w", err)
	}
	return &obj, nil
}
