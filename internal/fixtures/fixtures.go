// Package fixtures はモックモード用のインメモリデータセットを提供する。
// プロセスごとに明示的に生成して注入する。グローバル変数は持たない。
package fixtures

import (
	"fmt"
	"sync"
	"time"

	"github.com/dogmates/dogmates-bff/internal/model"
)

// Credential はモックモードのログイン認証情報。
type Credential struct {
	Email    string
	Password string
	UserID   string
}

// Store はモックデータセットを保持する。
// 全メソッドはミューテックスで保護され、返すスライスは毎回コピーする。
type Store struct {
	mu  sync.Mutex
	now func() time.Time
	seq int

	credentials  []Credential
	users        []model.User
	owners       []model.Owner
	dogs         []model.Dog
	bookings     []model.Booking
	events       []model.Event
	breeds       []model.Breed
	serviceTypes []model.ServiceType
	posts        []model.Post
}

// NewStore は標準のデモデータセットで初期化したStoreを返す。
func NewStore() *Store {
	s := &Store{now: time.Now}
	s.seed()
	return s
}

// NewEmptyStore は空のStoreを返す。テスト用。
func NewEmptyStore() *Store {
	return &Store{now: time.Now}
}

// SetClock は現在時刻の取得関数を差し替える。テスト用。
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) seed() {
	today := s.now().Format("2006-01-02")
	tomorrow := s.now().AddDate(0, 0, 1).Format("2006-01-02")
	nextWeek := s.now().AddDate(0, 0, 7).Format("2006-01-02")

	s.credentials = []Credential{
		{Email: "user@example.com", Password: "password123", UserID: "user_1"},
		{Email: "admin@example.com", Password: "admin123", UserID: "user_2"},
		{Email: "super@example.com", Password: "super123", UserID: "user_3"},
	}
	s.users = []model.User{
		{ID: "user_1", Name: "田中太郎", Email: "user@example.com", Role: model.RoleUser, Status: model.UserStatusActive},
		{ID: "user_2", Name: "管理者 花子", Email: "admin@example.com", Role: model.RoleAdmin, Status: model.UserStatusActive},
		{ID: "user_3", Name: "スーパー管理者", Email: "super@example.com", Role: model.RoleSuperAdmin, Status: model.UserStatusActive},
	}
	s.owners = []model.Owner{
		{ID: "owner_1", Name: "田中太郎", Email: "user@example.com", Phone: "090-1234-5678"},
	}
	s.dogs = []model.Dog{
		{ID: "dog_1", OwnerID: "owner_1", Name: "ポチ", Breed: "柴犬", Sex: "オス", Birthdate: "2021-04-01"},
		{ID: "dog_2", OwnerID: "owner_1", Name: "ハナ", Breed: "トイプードル", Sex: "メス", Birthdate: "2022-09-15"},
	}
	s.bookings = []model.Booking{
		{ID: "booking_1", OwnerID: "owner_1", DogID: "dog_1", ServiceType: "保育園", BookingDate: today, BookingTime: "09:00-17:00", Status: model.BookingStatusConfirmed, Amount: 5500, PaymentStatus: model.PaymentStatusPaid},
		{ID: "booking_2", OwnerID: "owner_1", DogID: "dog_2", ServiceType: "保育園", BookingDate: tomorrow, BookingTime: "09:00-13:00", Status: model.BookingStatusPending, Amount: 3300, PaymentStatus: model.PaymentStatusUnpaid},
		{ID: "booking_3", OwnerID: "owner_1", DogID: "dog_1", ServiceType: "その他", BookingDate: nextWeek, BookingTime: "10:00-12:00", Status: model.BookingStatusConfirmed, Amount: 1100, PaymentStatus: model.PaymentStatusUnpaid},
	}
	s.events = []model.Event{
		{ID: "event_1", Title: "合同しつけ教室", Category: "しつけ", Description: "ドッグトレーナーによる基礎しつけ教室です。", Date: nextWeek, StartTime: "10:00", EndTime: "12:00", Location: "第1ドッグラン", Organizer: "スタッフ", Price: "1,000円", Status: "開催予定"},
		{ID: "event_2", Title: "小型犬交流会", Category: "交流会", Description: "小型犬限定の交流イベントです。", Date: nextWeek, StartTime: "14:00", EndTime: "16:00", Location: "屋内プレイルーム", Organizer: "スタッフ", Price: "無料", Status: "開催予定"},
	}
	s.breeds = []model.Breed{
		{ID: "breed_1", Name: "柴犬"},
		{ID: "breed_2", Name: "トイプードル"},
		{ID: "breed_3", Name: "チワワ"},
		{ID: "breed_4", Name: "ミックス"},
	}
	s.serviceTypes = []model.ServiceType{
		{ID: "service_1", Name: "体験", Description: "初回体験利用", Price: 2200},
		{ID: "service_2", Name: "保育園", Description: "犬の保育園（一日/半日）", Price: 5500},
		{ID: "service_3", Name: "イベント", Description: "イベント参加"},
		{ID: "service_4", Name: "その他", Description: "ドッグラン利用", Price: 1100},
	}
	s.posts = []model.Post{
		{ID: "post_1", AuthorID: "user_1", Title: "はじめまして", Body: "<p>ポチともどもよろしくお願いします。</p>", CreatedAt: today},
	}
}

// AddUser は利用者ロールのユーザーを認証情報付きで登録する。
// メールアドレスが重複する場合はfalseを返す。
func (s *Store) AddUser(name, email, password string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			return nil, false
		}
	}
	s.seq++
	user := model.User{
		ID:     fmt.Sprintf("user_%d", len(s.users)+s.seq),
		Name:   name,
		Email:  email,
		Role:   model.RoleUser,
		Status: model.UserStatusActive,
	}
	s.users = append(s.users, user)
	s.credentials = append(s.credentials, Credential{Email: email, Password: password, UserID: user.ID})
	return &user, true
}

// Authenticate はメールアドレスとパスワードを照合し、一致したユーザーを返す。
func (s *Store) Authenticate(email, password string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.credentials {
		if c.Email == email && c.Password == password {
			return s.userByIDLocked(c.UserID), true
		}
	}
	return nil, false
}

// UserByEmail はメールアドレスでユーザーを検索する。
func (s *Store) UserByEmail(email string) (*model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].Email == email {
			u := s.users[i]
			return &u, true
		}
	}
	return nil, false
}

func (s *Store) userByIDLocked(id string) *model.User {
	for i := range s.users {
		if s.users[i].ID == id {
			u := s.users[i]
			return &u
		}
	}
	return nil
}

// OwnerByEmail はメールアドレスで飼い主を検索する。
func (s *Store) OwnerByEmail(email string) (*model.Owner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.owners {
		if s.owners[i].Email == email {
			o := s.owners[i]
			return &o, true
		}
	}
	return nil, false
}

// OwnerByID はIDで飼い主を検索する。
func (s *Store) OwnerByID(id string) (*model.Owner, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.owners {
		if s.owners[i].ID == id {
			o := s.owners[i]
			return &o, true
		}
	}
	return nil, false
}

// AddOwner は飼い主を追加して返す。
func (s *Store) AddOwner(owner model.Owner) model.Owner {
	s.mu.Lock()
	defer s.mu.Unlock()
	if owner.ID == "" {
		s.seq++
		owner.ID = fmt.Sprintf("owner_%d", len(s.owners)+s.seq)
	}
	s.owners = append(s.owners, owner)
	return owner
}

// DogsByOwnerID は飼い主に紐づく犬の一覧を返す。
func (s *Store) DogsByOwnerID(ownerID string) []model.Dog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var result []model.Dog
	for _, d := range s.dogs {
		if d.OwnerID == ownerID {
			result = append(result, d)
		}
	}
	return result
}

// DogByID はIDで犬を検索する。
func (s *Store) DogByID(id string) (*model.Dog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.dogs {
		if s.dogs[i].ID == id {
			d := s.dogs[i]
			return &d, true
		}
	}
	return nil, false
}

// AddDog は犬を追加して返す。
func (s *Store) AddDog(dog model.Dog) model.Dog {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dog.ID == "" {
		s.seq++
		dog.ID = fmt.Sprintf("dog_%d", len(s.dogs)+s.seq)
	}
	s.dogs = append(s.dogs, dog)
	return dog
}

// SearchBookings は条件に一致する予約を返す。Limitが0の場合はページングしない。
// 取消済みの予約は条件に関わらず一覧に含めない。
func (s *Store) SearchBookings(params model.BookingSearchParams) []model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []model.Booking
	for i := range s.bookings {
		if s.bookings[i].Status == model.BookingStatusCancelled {
			continue
		}
		if params.Matches(&s.bookings[i]) {
			matched = append(matched, s.bookings[i])
		}
	}
	if params.Limit <= 0 {
		return matched
	}
	page := params.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * params.Limit
	if start >= len(matched) {
		return nil
	}
	end := start + params.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end]
}

// BookingByID はIDで予約を検索する。
func (s *Store) BookingByID(id string) (*model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, true
		}
	}
	return nil, false
}

// AddBooking は予約作成リクエストから新しい予約を合成して追加する。
// 新規予約は受付中・未払いで登録される。
func (s *Store) AddBooking(req model.CreateBookingRequest) model.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	booking := model.Booking{
		ID:            fmt.Sprintf("mock_booking_%d", len(s.bookings)+s.seq),
		OwnerID:       req.OwnerID,
		DogID:         req.DogID,
		ServiceType:   req.ServiceType,
		BookingDate:   req.BookingDate,
		BookingTime:   req.BookingTime,
		Status:        model.BookingStatusPending,
		Amount:        req.Amount,
		PaymentStatus: model.PaymentStatusUnpaid,
		Memo:          req.Memo,
	}
	s.bookings = append(s.bookings, booking)
	return booking
}

// UpdateBooking は予約の指定フィールドを更新して返す。
// 見つからない場合はfalseを返す。
func (s *Store) UpdateBooking(id string, req model.UpdateBookingRequest) (*model.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID != id {
			continue
		}
		req.ApplyTo(&s.bookings[i])
		b := s.bookings[i]
		return &b, true
	}
	return nil, false
}

// CancelBooking は予約を取消状態に更新する。見つからない場合はfalseを返す。
func (s *Store) CancelBooking(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			s.bookings[i].Status = model.BookingStatusCancelled
			return true
		}
	}
	return false
}

// Events はイベント一覧を返す。
func (s *Store) Events() []model.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Event, len(s.events))
	copy(result, s.events)
	return result
}

// EventByID はIDでイベントを検索する。
func (s *Store) EventByID(id string) (*model.Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.events {
		if s.events[i].ID == id {
			e := s.events[i]
			return &e, true
		}
	}
	return nil, false
}

// Breeds は犬種マスターを返す。
func (s *Store) Breeds() []model.Breed {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Breed, len(s.breeds))
	copy(result, s.breeds)
	return result
}

// ServiceTypes はサービス種別マスターを返す。
func (s *Store) ServiceTypes() []model.ServiceType {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.ServiceType, len(s.serviceTypes))
	copy(result, s.serviceTypes)
	return result
}

// Posts は投稿一覧を返す。
func (s *Store) Posts() []model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]model.Post, len(s.posts))
	copy(result, s.posts)
	return result
}

// AddPost は投稿を追加して返す。
func (s *Store) AddPost(post model.Post) model.Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	if post.ID == "" {
		s.seq++
		post.ID = fmt.Sprintf("post_%d", len(s.posts)+s.seq)
	}
	if post.CreatedAt == "" {
		post.CreatedAt = s.now().Format(time.RFC3339)
	}
	s.posts = append(s.posts, post)
	return post
}
