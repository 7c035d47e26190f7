package models

// Status — снимок биллингового состояния пользователя для клиентской
// навигации: нужна ли регистрация подписки, требуется ли оплата и какое
// сообщение показать. Описывает состояние, но не решает вопрос доступа.
type Status struct {
	Authenticated       bool   `json:"authenticated"`
	Role                string `json:"role,omitempty"`
	MissingSubscription bool   `json:"missing_subscription"`
	NeedsPayment        bool   `json:"needs_payment"`
	PlanID              *int   `json:"plan_id,omitempty"`
	IsNewUser           bool   `json:"is_new_user"`
	IsOrgMember         bool   `json:"is_org_member"`
	StatusMessage       string `json:"status_message,omitempty"`
}
