package booking

import (
	"strings"

	"github.com/dogmates/dogmates-bff/internal/model"
)

// 表示名ラベル
const (
	LabelFullDay = "一日コース"
	LabelHalfDay = "半日コース"
	LabelDogRun  = "ドッグラン利用"
	LabelGeneric = "サービス利用"
)

// FullDayRange は一日コースとみなす正規の利用時間帯。
const FullDayRange = "09:00-17:00"

// ServiceDisplayName はサービス種別コードをUI表示用のラベルに解決する。
// 保育園の場合は予約の利用時間帯から一日/半日を判定する。
// すでに解決済みのラベルや未知の値はそのまま返す。
func ServiceDisplayName(serviceType string, booking *model.Booking) string {
	switch serviceType {
	case "その他", "other":
		return LabelDogRun
	case "保育園", "nursery":
		if booking != nil && booking.BookingTime != "" && normalizeTimeRange(booking.BookingTime) != FullDayRange {
			return LabelHalfDay
		}
		return LabelFullDay
	case "一日", "1日":
		return LabelFullDay
	case "半日":
		return LabelHalfDay
	case "":
		return LabelGeneric
	default:
		return serviceType
	}
}

// normalizeTimeRange は利用時間帯の表記ゆれを正規化する。
// 区切り文字の全角チルダと空白を吸収し、時を2桁にゼロ詰めする。
func normalizeTimeRange(s string) string {
	s = strings.NewReplacer("〜", "-", "～", "-", " ", "", "　", "").Replace(s)
	parts := strings.SplitN(s, "-", 2)
	for i, p := range parts {
		parts[i] = padHour(p)
	}
	return strings.Join(parts, "-")
}

// padHour は"9:00"を"09:00"に揃える。
func padHour(t string) string {
	if i := strings.IndexByte(t, ':'); i == 1 {
		return "0" + t
	}
	return t
}
