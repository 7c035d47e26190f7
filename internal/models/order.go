package models

import "time"

// Статусы платёжных заказов.
const (
	OrderPending    = "PENDING"
	OrderSuccessful = "SUCCESSFUL"
	OrderFailed     = "FAILED"
)

// Order — запись о платеже за тарифный план. Reference — уникальная
// ссылка, по которой платёжный провайдер подтверждает оплату.
type Order struct {
	ID        int       // Уникальный идентификатор заказа
	Reference string    // Уникальная ссылка платежа
	UserUID   string    // Пользователь, оплачивающий план
	PlanID    int       // Оплачиваемый план
	Amount    int       // Сумма в минимальных денежных единицах
	Status    string    // PENDING, SUCCESSFUL или FAILED
	CreatedAt time.Time // Дата создания заказа
}
