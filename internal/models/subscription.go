package models

import "time"

// Subscription связывает тарифный план с пользователем или организацией.
// Владелец подписки — ровно одно из полей UserUID и OrganizationID.
// EndDate == nil означает бессрочную подписку (lifetime-план).
type Subscription struct {
	ID             int        // Уникальный идентификатор подписки
	PlanID         int        // Идентификатор тарифного плана
	Plan           *Plan      // Тарифный план (загружается вместе с подпиской)
	UserUID        *string    // Владелец-пользователь (nil, если подписка организации)
	OrganizationID *int       // Владелец-организация (nil, если подписка личная)
	StartDate      time.Time  // Дата начала действия
	EndDate        *time.Time // Дата окончания, nil — не истекает
	IsActive       bool       // Флаг активности, выставляется при оплате
}

// ActiveAt сообщает, действует ли подписка в указанный момент:
// подписка активна и срок либо не задан, либо ещё не истёк.
// Момент, совпадающий с EndDate, считается истёкшим.
func (s *Subscription) ActiveAt(now time.Time) bool {
	if s == nil || !s.IsActive {
		return false
	}
	return s.EndDate == nil || s.EndDate.After(now)
}
