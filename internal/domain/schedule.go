package domain

import (
	"time"

	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// ScheduleRule строка еженедельного расписания доступности ресурса
type ScheduleRule struct {
	ID         int64
	ResourceID int64
	Weekday    time.Weekday
	IsOpen     bool
	OpenTime   *types.TimeString
	CloseTime  *types.TimeString
}

// ScheduleOverride переопределение расписания на конкретную дату
// Переопределение всегда приоритетнее еженедельного шаблона
type ScheduleOverride struct {
	ID         int64
	ResourceID int64
	Date       time.Time
	IsClosed   bool // полный день закрыт
	OpenTime   *types.TimeString
	CloseTime  *types.TimeString
}

// TimeWindow непрерывное окно доступности [Start, End)
type TimeWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// Contains reports whether [start, end) fits entirely inside the window
func (w TimeWindow) Contains(start, end types.TimeString) bool {
	return !start.IsBefore(w.Start) && !end.IsAfter(w.End)
}

// DurationMinutes returns the window length in minutes
func (w TimeWindow) DurationMinutes() int {
	m, err := w.Start.MinutesBetween(w.End)
	if err != nil {
		return 0
	}
	return m
}

// SubtractInterval вырезает [start, end) из каждого окна
// Возвращает упорядоченный список непересекающихся остатков;
// окна нулевой длины отбрасываются
func SubtractInterval(windows []TimeWindow, start, end types.TimeString) []TimeWindow {
	result := make([]TimeWindow, 0, len(windows)+1)

	for _, w := range windows {
		// Интервал не пересекает окно — окно остаётся целиком
		if !start.IsBefore(w.End) || !end.IsAfter(w.Start) {
			result = append(result, w)
			continue
		}

		// Левый остаток
		if w.Start.IsBefore(start) {
			result = append(result, TimeWindow{Start: w.Start, End: start})
		}
		// Правый остаток
		if end.IsBefore(w.End) {
			result = append(result, TimeWindow{Start: end, End: w.End})
		}
	}

	return result
}
