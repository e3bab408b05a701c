// Package models содержит доменные структуры сервиса: пользователей, стихотворения,
// закладки и сессии, а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"errors"
	"time"
)

// Ошибки доменного уровня, которые хранилище и сервисы
// пробрасывают наверх через errors.Is.
var (
	// ErrNotFound возвращается, когда запись отсутствует в хранилище.
	ErrNotFound = errors.New("not found")
	// ErrTitleTaken возвращается при попытке создать стихотворение с занятым названием.
	ErrTitleTaken = errors.New("poem title already taken")
	// ErrInvalidCredentials возвращается при неверной паре логин/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken возвращается при попытке регистрации с занятым именем или email.
	ErrUsernameTaken = errors.New("username or email already taken")
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID                  string     // Уникальный идентификатор пользователя
	Username             string     // Имя пользователя (уникальное)
	Email                string     // Электронная почта (уникальная)
	PasswordHash         *string    // Хэш пароля, nil для пользователей с внешней учётной записью
	ExternalID           *string    // Ссылка на внешнюю учётную запись, если есть
	Role                 string     // Роль пользователя, admin или user
	IsSubscribed         bool       // Флаг активной подписки (хранимый, см. SubscriptionInfo)
	SubscribedAt         *time.Time // Дата начала подписки
	SubscriptionEndDate  *time.Time // Дата окончания подписки
	StripeCustomerID     *string    // Идентификатор клиента в платёжном шлюзе
	StripeSubscriptionID *string    // Идентификатор подписки в платёжном шлюзе
	EmailVerified        bool       // Подтверждена ли электронная почта
	CreatedAt            time.Time  // Дата создания записи
}

// SubscriptionInfo — проекция состояния подписки, отдаваемая наружу.
// DaysRemaining вычисляется в момент чтения, IsActive выводится из него,
// а не из хранимого флага.
type SubscriptionInfo struct {
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	DaysRemaining int       `json:"days_remaining"`
	IsActive      bool      `json:"is_active"`
}

// ActivationInfo — сообщение для очереди уведомлений об активации подписки.
type ActivationInfo struct {
	Email    string    `json:"email"`
	Username string    `json:"username"`
	PlanType string    `json:"plan_type"`
	EndDate  time.Time `json:"end_date"`
}

// WelcomeInfo — сообщение для очереди приветственных писем с токеном
// подтверждения электронной почты.
type WelcomeInfo struct {
	Email             string `json:"email"`
	Username          string `json:"username"`
	VerificationToken string `json:"verification_token"`
}
