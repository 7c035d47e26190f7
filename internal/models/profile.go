package models

import "time"

// AccessProfile — всё, что нужно для решения о доступе пользователя:
// сам пользователь, его организация и обе подписки (организации и личная)
// вместе с планами. Загружается хранилищем одним запросом.
type AccessProfile struct {
	User                 User
	Organization         *Organization // Организация, в которой состоит пользователь
	OrgSubscription      *Subscription // Подписка организации (с планом)
	PersonalSubscription *Subscription // Личная подписка (с планом)
}

// SelectActiveSubscription выбирает действующую подписку профиля:
// подписка организации имеет приоритет над личной. Возвращает nil,
// если ни одна подписка не действует в указанный момент.
// Второе значение сообщает, что выбрана подписка организации.
//
// Это единственная реализация цепочки выбора: резолвер доступа,
// агрегатор статуса и проектор фильтров используют её одинаково.
func (p *AccessProfile) SelectActiveSubscription(now time.Time) (*Subscription, bool) {
	if p.OrgSubscription.ActiveAt(now) {
		return p.OrgSubscription, true
	}
	if p.PersonalSubscription.ActiveAt(now) {
		return p.PersonalSubscription, false
	}
	return nil, false
}

// CurrentSubscription возвращает подписку, определяющую биллинговое
// состояние пользователя, без проверки срока действия: подписка
// организации-участника предпочитается личной. Используется агрегатором
// статуса, которому истёкшая подписка нужна для сообщения об оплате.
func (p *AccessProfile) CurrentSubscription() (*Subscription, bool) {
	if p.Organization != nil && p.OrgSubscription != nil {
		return p.OrgSubscription, true
	}
	return p.PersonalSubscription, false
}
