package models

import "time"

// Assignment — выданное организацией задание: ограниченное по времени
// право доступа к конкретной работе, действующее независимо от подписок.
type Assignment struct {
	ID             int       // Уникальный идентификатор задания
	OrganizationID int       // Организация, выдавшая задание
	PaperID        int       // Работа, к которой открывается доступ
	Title          string    // Название задания
	StartTime      time.Time // Начало окна доступа
	EndTime        time.Time // Конец окна доступа
}

// OpenAt сообщает, открыто ли окно задания в указанный момент.
func (a *Assignment) OpenAt(now time.Time) bool {
	return !now.Before(a.StartTime) && !now.After(a.EndTime)
}
