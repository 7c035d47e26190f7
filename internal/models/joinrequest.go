package models

import "time"

// Статусы заявок на вступление в организацию.
const (
	JoinRequestPending  = "PENDING"
	JoinRequestApproved = "APPROVED"
	JoinRequestRejected = "REJECTED"
)

// JoinRequest — заявка пользователя на вступление в организацию.
// Пользователь с ожидающей заявкой не считается обязанным оплачивать
// подписку: он находится в состоянии ожидания одобрения.
type JoinRequest struct {
	ID             int       // Уникальный идентификатор заявки
	UserUID        string    // Пользователь, подавший заявку
	OrganizationID int       // Организация, в которую подана заявка
	Status         string    // PENDING, APPROVED или REJECTED
	CreatedAt      time.Time // Дата подачи заявки
}
