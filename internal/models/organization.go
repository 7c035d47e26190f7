package models

// Organization представляет организацию (школу, учебный центр),
// владеющую одной подпиской и объединяющую несколько пользователей.
// Владелец организации — ровно один пользователь (OwnerUID).
type Organization struct {
	ID       int    // Уникальный идентификатор организации
	Name     string // Название организации
	OwnerUID string // UID пользователя-владельца
}
