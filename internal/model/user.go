// Package model はドメインモデルを定義する。
package model

// Role はユーザーの権限ロールを表す。
// 利用者 < 管理者 < スーパー管理者 の全順序を持つ。
type Role string

const (
	RoleUser       Role = "利用者"
	RoleAdmin      Role = "管理者"
	RoleSuperAdmin Role = "スーパー管理者"
)

// roleRanks はロール階層の定義。値が大きいほど強い権限を持つ。
var roleRanks = map[Role]int{
	RoleUser:       1,
	RoleAdmin:      2,
	RoleSuperAdmin: 3,
}

// Rank はロールの階層順位を返す。未知のロールは0（どの権限チェックも通らない）。
func (r Role) Rank() int {
	return roleRanks[r]
}

// AtLeast は自身がrequired以上の権限を持つかを返す。
func (r Role) AtLeast(required Role) bool {
	return r.Rank() >= required.Rank() && r.Rank() > 0
}

// UserStatus はユーザーアカウントの状態を表す。
type UserStatus string

const (
	UserStatusActive    UserStatus = "有効"
	UserStatusInactive  UserStatus = "無効"
	UserStatusSuspended UserStatus = "停止"
)

// User はサービス利用ユーザーを表す。
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	Status    UserStatus `json:"status,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
	UpdatedAt string     `json:"updated_at,omitempty"`
}

// Owner は飼い主を表す。Userと1対1で対応するが、
// バックエンド側でownerレコードが未作成の場合もある。
type Owner struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// Dog は登録犬を表す。
type Dog struct {
	ID        string `json:"id"`
	OwnerID   string `json:"owner_id"`
	Name      string `json:"name"`
	Breed     string `json:"breed,omitempty"`
	Sex       string `json:"sex,omitempty"`
	Birthdate string `json:"birthdate,omitempty"`
	Avatar    string `json:"avatar,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Owner     *Owner `json:"owner,omitempty"`
}

// UserProfile はログイン済みユーザーの合成プロフィール。
// ログイン・セッション復元時に生成され、ログアウトで破棄される。
type UserProfile struct {
	User  User   `json:"user"`
	Owner *Owner `json:"owner,omitempty"`
	Dogs  []Dog  `json:"dogs"`
}

// PrimaryDog は代表犬（先頭の1匹）を返す。犬が未登録の場合はnil。
func (p *UserProfile) PrimaryDog() *Dog {
	if p == nil || len(p.Dogs) == 0 {
		return nil
	}
	return &p.Dogs[0]
}

// Breed は犬種マスターデータを表す。
type Breed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ServiceType はサービス種別マスターデータを表す。
type ServiceType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int    `json:"price,omitempty"`
}
