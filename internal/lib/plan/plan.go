// Package plan содержит нормализацию тарифов подписки и календарную
// арифметику дат: вычисление даты окончания и оставшихся дней.
package plan

import (
	"math"
	"strings"
	"time"
)

// Kind — тип тарифа подписки.
type Kind string

const (
	// Monthly — помесячный тариф.
	Monthly Kind = "monthly"
	// Annual — годовой тариф.
	Annual Kind = "annual"
)

// Normalize приводит произвольный идентификатор тарифа к Kind.
// Сравнение регистронезависимое: "annual" и "yearly" дают Annual,
// "monthly" и "month" — Monthly. Неизвестные значения трактуются
// как Monthly, а не отклоняются.
func Normalize(planType string) Kind {
	switch strings.ToLower(strings.TrimSpace(planType)) {
	case "annual", "yearly":
		return Annual
	case "monthly", "month":
		return Monthly
	default:
		return Monthly
	}
}

// EndDate вычисляет дату окончания подписки от даты начала:
// плюс один календарный месяц или год, а не фиксированное число дней.
// Если в целевом месяце нет такого дня, берётся последний день месяца
// (29 февраля + год = 28 февраля, 31 января + месяц = 28/29 февраля).
func EndDate(kind Kind, start time.Time) time.Time {
	if kind == Annual {
		return addMonths(start, 12)
	}
	return addMonths(start, 1)
}

// DaysRemaining возвращает число оставшихся дней подписки:
// ceil((end - now) / 24h). Для истёкшей подписки значение <= 0.
func DaysRemaining(end, now time.Time) int {
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}

// addMonths сдвигает дату на months месяцев, ограничивая день числом
// дней в целевом месяце. time.AddDate здесь не подходит: он нормализует
// переполнение (29 февраля + 12 месяцев дало бы 1 марта).
func addMonths(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	m := int(month) - 1 + months
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	targetMonth := time.Month(m + 1)

	if last := daysIn(year, targetMonth); day > last {
		day = last
	}
	hour, minute, sec := t.Clock()
	return time.Date(year, targetMonth, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// daysIn возвращает число дней в месяце.
func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
