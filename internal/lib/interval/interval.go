// Package interval содержит календарную арифметику интервалов оплаты
// тарифных планов: вычисление даты окончания подписки от базовой даты.
package interval

import (
	"fmt"
	"time"

	"github.com/examprep/entitlement-service/internal/models"
)

// Extend возвращает дату окончания подписки: base плюс один интервал
// оплаты плана. Для lifetime-планов возвращает nil — подписка бессрочная.
func Extend(base time.Time, planInterval string) (*time.Time, error) {
	const op = "interval.Extend"
	var end time.Time
	switch planInterval {
	case models.IntervalMonthly:
		end = base.AddDate(0, 1, 0)
	case models.IntervalQuarter:
		end = base.AddDate(0, 3, 0)
	case models.IntervalBiannual:
		end = base.AddDate(0, 6, 0)
	case models.IntervalYearly:
		end = base.AddDate(1, 0, 0)
	case models.IntervalLifetime:
		return nil, nil
	default:
		return nil, fmt.Errorf("%s: unknown plan interval %q", op, planInterval)
	}
	return &end, nil
}

// ExtensionBase выбирает дату, от которой отсчитывается продление:
// неистёкший конец подписки, иначе наибольшая из даты начала и текущего
// момента. Так повторная оплата продлевает подписку, а оплата давно
// истёкшей не дарит пропущенные месяцы.
func ExtensionBase(startDate time.Time, endDate *time.Time, now time.Time) time.Time {
	if endDate != nil && endDate.After(now) {
		return *endDate
	}
	if startDate.After(now) {
		return startDate
	}
	return now
}
