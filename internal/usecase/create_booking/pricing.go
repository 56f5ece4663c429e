package create_booking

import (
	"math"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	"github.com/kitchrent/KRM-SettlementService/pkg/types"
)

// priceBreakdown расчёт стоимости бронирования в центах
type priceBreakdown struct {
	BaseCents       int64
	ServiceFeeCents int64
	TotalCents      int64
}

// priceHourly считает стоимость почасовой аренды
// Неполные часы оплачиваются пропорционально, округление до цента half up
func priceHourly(start, end types.TimeString, listing *listingservice.Listing, serviceFeeRate float64) (priceBreakdown, error) {
	minutes, err := start.MinutesBetween(end)
	if err != nil {
		return priceBreakdown{}, err
	}

	base := int64(math.Floor(float64(listing.HourlyRateCents)*float64(minutes)/60.0 + 0.5))
	return withServiceFee(base, serviceFeeRate), nil
}

// priceDaily считает стоимость хранения за включающий диапазон дат
func priceDaily(startDate, endDate time.Time, listing *listingservice.Listing, serviceFeeRate float64) priceBreakdown {
	days := inclusiveDays(startDate, endDate)
	base := int64(days) * listing.DailyRateCents
	return withServiceFee(base, serviceFeeRate)
}

func withServiceFee(baseCents int64, rate float64) priceBreakdown {
	fee := int64(math.Floor(float64(baseCents)*rate + 0.5))
	return priceBreakdown{
		BaseCents:       baseCents,
		ServiceFeeCents: fee,
		TotalCents:      baseCents + fee,
	}
}

// inclusiveDays возвращает число дней в диапазоне [start, end] включительно
func inclusiveDays(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}
