// Package models содержит доменные структуры платформы подготовки к экзаменам:
// пользователей, организации, тарифные планы, подписки, назначения и платежи.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей в системе.
const (
	RoleStudent      = "STUDENT"
	RoleOrganization = "ORGANIZATION"
	RoleAdmin        = "ADMIN"
)

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID            string    // Уникальный идентификатор пользователя
	Email          string    // Электронная почта
	Username       string    // Имя пользователя (уникальное)
	PasswordHash   string    // Хэш пароля пользователя
	Role           string    // Роль пользователя: STUDENT, ORGANIZATION или ADMIN
	OrganizationID *int      // Организация, в которой состоит пользователь (nil — не состоит)
	CreatedAt      time.Time // Дата создания учётной записи
}
