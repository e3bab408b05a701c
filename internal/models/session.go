package models

// Session — состояние сессии, хранимое по непрозрачному идентификатору
// из cookie. Сессия живёт в redis с TTL и уничтожается при logout.
type Session struct {
	UserUID         string `json:"user_uid"`
	IsAuthenticated bool   `json:"is_authenticated"`
}
