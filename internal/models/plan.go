package models

// Типы тарифных планов.
const (
	PlanTypeStudent      = "STUDENT"
	PlanTypeOrganization = "ORGANIZATION"
)

// Интервалы оплаты тарифных планов.
const (
	IntervalMonthly  = "monthly"
	IntervalQuarter  = "quarterly"
	IntervalBiannual = "biannual"
	IntervalYearly   = "yearly"
	IntervalLifetime = "lifetime"
)

// Plan представляет тарифный план: цену, интервал оплаты и ограничения
// доступа к каталогу. Price хранится в минимальных денежных единицах,
// ноль означает бесплатный план.
type Plan struct {
	ID       int          // Уникальный идентификатор плана
	Name     string       // Название плана
	Price    int          // Цена за интервал, 0 — бесплатный план
	Interval string       // Интервал оплаты: monthly, quarterly, biannual, yearly, lifetime
	Type     string       // Тип плана: STUDENT или ORGANIZATION
	Features PlanFeatures // Ограничения доступа из JSON-поля features
}
