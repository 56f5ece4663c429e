package detect_overstays

// Report итог одного прохода детектора
type Report struct {
	OverdueBookings int // storage бронирований с истекшей датой окончания
	Detected        int // создано новых записей grace_period
	Promoted        int // переведено в pending_review
	Errors          int // бронирований пропущено из-за ошибок
}
