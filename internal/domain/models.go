package domain

import "time"

// Role определяет уровень доступа пользователя к бакету.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
	RoleTeam   Role = "team"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleClient, RoleTeam:
		return true
	}
	return false
}

// Metadata — произвольный JSON-атрибут пользователя (jsonb в БД).
// Ядро схему не навязывает.
type Metadata map[string]any

// User — запись пользователя. Хэш пароля наружу не отдаём.
type User struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	PassHash  string     `json:"-"`
	Role      Role       `json:"type"`
	Prefix    string     `json:"prefix"` // домашний префикс в бакете; пустой для админов
	Metadata  Metadata   `json:"metadata"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // soft delete
}

// Principal — аутентифицированный субъект запроса. Создаётся резолвером
// на каждый запрос из токена + свежего чтения записи пользователя,
// не мутируется и живёт только до конца запроса.
type Principal struct {
	ID         int64
	Username   string
	Role       Role
	HomePrefix string // нормализован: либо пустой, либо заканчивается на "/"
}

// Unrestricted — true, если субъект видит весь бакет.
func (p Principal) Unrestricted() bool { return p.HomePrefix == "" }

// NormalizePrefix приводит префикс к канонической форме:
// пустая строка либо строка с завершающим "/".
func NormalizePrefix(prefix string) string {
	if prefix == "" {
		return ""
	}
	if prefix[len(prefix)-1] == '/' {
		return prefix
	}
	return prefix + "/"
}

// PrincipalFromUser строит субъекта из записи пользователя.
func PrincipalFromUser(u User) Principal {
	return Principal{
		ID:         u.ID,
		Username:   u.Username,
		Role:       u.Role,
		HomePrefix: NormalizePrefix(u.Prefix),
	}
}
