package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kitchrent/KRM-SettlementService/internal/domain"
	policyRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/policy"
	scheduleRepo "github.com/kitchrent/KRM-SettlementService/internal/infra/storage/schedule"
	listingClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/listingservice"
	payClient "github.com/kitchrent/KRM-SettlementService/internal/integrations/payservice"
	"github.com/kitchrent/KRM-SettlementService/internal/notifier"
)

// UseCase use case создания бронирования с валидацией конфликтов
type UseCase struct {
	bookingRepo   BookingRepository
	scheduleRepo  ScheduleRepository
	policyRepo    PolicyRepository
	listingClient ListingServiceClient
	payClient     PayServiceClient
	txManager     TransactionManager
	timeProvider  TimeProvider
	notifier      Notifier
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	scheduleRepo ScheduleRepository,
	policyRepo PolicyRepository,
	listingClient ListingServiceClient,
	payClient PayServiceClient,
	txManager TransactionManager,
	notifier Notifier,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		scheduleRepo:  scheduleRepo,
		policyRepo:    policyRepo,
		listingClient: listingClient,
		payClient:     payClient,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		notifier:      notifier,
		logger:        logger,
	}
}

// Execute выполняет use case создания бронирования
// Валидация конфликтов и вставка идут в одной сериализуемой транзакции
// с блокировкой дневных бронирований ресурса (FOR UPDATE)
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: chef=%d, listing=%d, date=%s",
		req.ChefID, req.ListingID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 2. Получаем листинг
	listing, err := uc.listingClient.GetListing(ctx, req.ListingID)
	if err != nil {
		if errors.Is(err, listingClient.ErrListingNotFound) {
			uc.logger.Warn("CreateBooking: listing id=%d not found", req.ListingID)
			return nil, ErrListingNotFound
		}
		uc.logger.Error("CreateBooking: failed to get listing id=%d: %v", req.ListingID, err)
		return nil, fmt.Errorf("%w: failed to get listing: %v", ErrInternal, err)
	}

	if !listing.IsActive {
		uc.logger.Warn("CreateBooking: listing id=%d is inactive", req.ListingID)
		return nil, ErrListingInactive
	}

	if err := validateTypeMatchesRequest(listing, req); err != nil {
		uc.logger.Warn("CreateBooking: type validation failed: %v", err)
		return nil, err
	}

	// 3. Получаем локацию листинга
	location, err := uc.listingClient.GetLocation(ctx, listing.LocationID)
	if err != nil {
		if errors.Is(err, listingClient.ErrLocationNotFound) {
			uc.logger.Warn("CreateBooking: location id=%d not found", listing.LocationID)
			return nil, ErrLocationNotFound
		}
		uc.logger.Error("CreateBooking: failed to get location id=%d: %v", listing.LocationID, err)
		return nil, fmt.Errorf("%w: failed to get location: %v", ErrInternal, err)
	}

	tz, err := time.LoadLocation(location.Timezone)
	if err != nil {
		uc.logger.Error("CreateBooking: invalid timezone %q for location id=%d: %v",
			location.Timezone, location.ID, err)
		return nil, fmt.Errorf("%w: invalid location timezone: %v", ErrInternal, err)
	}

	// Аккаунт локации должен принимать платежи до создания намерения
	account, err := uc.payClient.GetAccountStatus(ctx, location.ConnectedAccountID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get account status for location id=%d: %v",
			location.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrPaymentSetupFailed, err)
	}
	if !account.ChargesEnabled {
		uc.logger.Warn("CreateBooking: charges disabled for account=%s, location id=%d",
			location.ConnectedAccountID, location.ID)
		return nil, ErrLocationNotPayable
	}

	isStorage := listing.Type == string(domain.BookingTypeStorage)

	// 4. Расчёт стоимости
	var price priceBreakdown
	if isStorage {
		price = priceDaily(req.Date, *req.EndDate, listing, location.ServiceFeeRate)
	} else {
		price, err = priceHourly(*req.StartTime, *req.EndTime, listing, location.ServiceFeeRate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	var result *domain.Booking
	var intent *payClient.PaymentIntent

	// 5. Валидация конфликтов и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Политика локации (дефолты, если не настроена)
		policy, err := uc.policyRepo.GetByLocationID(txCtx, listing.LocationID)
		if err != nil {
			if !errors.Is(err, policyRepo.ErrPolicyNotFound) {
				uc.logger.Error("CreateBooking: failed to get policy: %v", err)
				return fmt.Errorf("%w: failed to get location policy: %v", ErrInternal, err)
			}
			policy = domain.DefaultPolicy(listing.LocationID)
		}

		// 5.2. Минимальное время до начала, в таймзоне локации
		if err := validateNotice(req, tz, now.In(tz), policy.MinBookingNoticeHours); err != nil {
			uc.logger.Warn("CreateBooking: notice validation failed: %v", err)
			return err
		}

		// 5.3. Дневной лимит бронирований шефа
		if policy.DailyBookingLimit > 0 {
			chefBookings, err := uc.bookingRepo.GetByChefID(txCtx, req.ChefID, nil)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to get chef bookings: %v", err)
				return fmt.Errorf("%w: failed to get chef bookings: %v", ErrInternal, err)
			}
			if err := validateDailyLimit(chefBookings, req.Date, policy.DailyBookingLimit); err != nil {
				uc.logger.Warn("CreateBooking: %v", err)
				return err
			}
		}

		// 5.4. Проверка конфликтов по типу ресурса
		if isStorage {
			if err := uc.validateStorageRange(txCtx, req); err != nil {
				return err
			}
		} else {
			if err := uc.validateIntraDayInterval(txCtx, req, listing); err != nil {
				return err
			}
		}

		// 5.5. Платёжное намерение: полная сумма с комиссией площадки
		// Сбой процессора откатывает транзакцию, бронирование не создаётся
		intent, err = uc.payClient.CreatePaymentIntent(txCtx, payClient.PaymentIntentRequest{
			AmountCents:         price.TotalCents,
			Currency:            "usd",
			PayerID:             req.ChefID,
			ConnectedAccountID:  location.ConnectedAccountID,
			ApplicationFeeCents: price.ServiceFeeCents,
			IdempotencyKey:      fmt.Sprintf("booking-%d-%d-%s", req.ChefID, req.ListingID, req.Date.Format(domain.DateFormat)),
			Description:         fmt.Sprintf("%s booking, listing %d", listing.Type, listing.ID),
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create payment intent: %v", err)
			return fmt.Errorf("%w: %v", ErrPaymentSetupFailed, err)
		}

		// 5.6. Создаем бронирование
		booking := &domain.Booking{
			ResourceID:       req.ListingID,
			LocationID:       listing.LocationID,
			ChefID:           req.ChefID,
			Type:             domain.BookingType(listing.Type),
			BookingDate:      req.Date,
			EndDate:          req.EndDate,
			StartTime:        req.StartTime,
			EndTime:          req.EndTime,
			Status:           domain.StatusPending,
			PaymentStatus:    domain.PaymentPending,
			PaymentIntentRef: &intent.Ref,
			TotalPriceCents:  price.TotalCents,
			ContentsPresent:  isStorage,
		}

		result, err = uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)

	uc.notifier.Publish(notifier.KeyBookingCreated, map[string]interface{}{
		"booking_id":  result.ID,
		"chef_id":     result.ChefID,
		"resource_id": result.ResourceID,
		"location_id": result.LocationID,
		"type":        string(result.Type),
		"date":        result.BookingDate.Format(domain.DateFormat),
	})

	return &Response{
		ID:               result.ID,
		ChefID:           result.ChefID,
		ResourceID:       result.ResourceID,
		LocationID:       result.LocationID,
		Type:             string(result.Type),
		Date:             result.BookingDate,
		EndDate:          result.EndDate,
		StartTime:        result.StartTime,
		EndTime:          result.EndTime,
		Status:           string(result.Status),
		PaymentStatus:    string(result.PaymentStatus),
		BaseAmountCents:  price.BaseCents,
		ServiceFeeCents:  price.ServiceFeeCents,
		TotalPriceCents:  price.TotalCents,
		PaymentIntentRef: intent.Ref,
		ClientSecret:     intent.ClientSecret,
		CreatedAt:        result.CreatedAt,
	}, nil
}

// validateIntraDayInterval проверяет интервал kitchen/equipment бронирования:
// длительность, рабочее окно и отсутствие пересечений
// Дневные бронирования ресурса читаются с блокировкой FOR UPDATE
func (uc *UseCase) validateIntraDayInterval(txCtx context.Context, req *Request, listing *listingClient.Listing) error {
	// Минимальная длительность
	if err := validateDuration(*req.StartTime, *req.EndTime, listing.MinDurationMinutes); err != nil {
		uc.logger.Warn("CreateBooking: duration validation failed: %v", err)
		return err
	}

	// Рабочее окно на дату: переопределение приоритетнее шаблона
	override, err := uc.scheduleRepo.GetOverride(txCtx, req.ListingID, req.Date)
	if err != nil && !errors.Is(err, scheduleRepo.ErrOverrideNotFound) {
		uc.logger.Error("CreateBooking: failed to get override: %v", err)
		return fmt.Errorf("%w: failed to get schedule override: %v", ErrInternal, err)
	}

	rules, err := uc.scheduleRepo.GetRules(txCtx, req.ListingID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get rules: %v", err)
		return fmt.Errorf("%w: failed to get schedule rules: %v", ErrInternal, err)
	}

	isOpen, window := workingWindow(rules, override, req.Date)
	if !isOpen {
		uc.logger.Warn("CreateBooking: resource id=%d closed on %s",
			req.ListingID, req.Date.Format(domain.DateFormat))
		return ErrResourceClosed
	}

	if !window.Contains(*req.StartTime, *req.EndTime) {
		uc.logger.Warn("CreateBooking: interval %s-%s outside working window %s-%s",
			*req.StartTime, *req.EndTime, window.Start, window.End)
		return ErrOutsideAvailability
	}

	// Активные бронирования ресурса на дату, с блокировкой
	bookings, err := uc.bookingRepo.GetByResourceWithFilter(txCtx, domain.ResourceBookingsFilter{
		ResourceID: req.ListingID,
		Date:       &req.Date,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		if !b.IsActive() {
			continue
		}
		if b.Overlaps(*req.StartTime, *req.EndTime) {
			uc.logger.Warn("CreateBooking: interval overlaps booking id=%d", b.ID)
			return ErrSlotAlreadyBooked
		}
	}

	return nil
}

// validateStorageRange проверяет, что диапазон дат storage бронирования
// не пересекается с активными storage бронированиями ресурса
func (uc *UseCase) validateStorageRange(txCtx context.Context, req *Request) error {
	if inclusiveDays(req.Date, *req.EndDate) > domain.MaxExtensionDays {
		return fmt.Errorf("%w: range exceeds %d days", ErrInvalidInput, domain.MaxExtensionDays)
	}

	bookings, err := uc.bookingRepo.GetByResourceWithFilter(txCtx, domain.ResourceBookingsFilter{
		ResourceID: req.ListingID,
	})
	if err != nil {
		uc.logger.Error("CreateBooking: failed to get bookings: %v", err)
		return fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
	}

	for _, b := range bookings {
		if !b.IsActive() || b.EndDate == nil {
			continue
		}
		if rangesOverlap(req.Date, *req.EndDate, b.BookingDate, *b.EndDate) {
			uc.logger.Warn("CreateBooking: date range overlaps booking id=%d", b.ID)
			return ErrSlotAlreadyBooked
		}
	}

	return nil
}

// workingWindow вычисляет рабочее окно ресурса на дату
func workingWindow(rules []*domain.ScheduleRule, override *domain.ScheduleOverride, date time.Time) (bool, *domain.TimeWindow) {
	if override != nil {
		if override.IsClosed || override.OpenTime == nil || override.CloseTime == nil {
			return false, nil
		}
		return true, &domain.TimeWindow{Start: *override.OpenTime, End: *override.CloseTime}
	}

	weekday := date.Weekday()
	for _, rule := range rules {
		if rule.Weekday != weekday {
			continue
		}
		if !rule.IsOpen || rule.OpenTime == nil || rule.CloseTime == nil {
			return false, nil
		}
		return true, &domain.TimeWindow{Start: *rule.OpenTime, End: *rule.CloseTime}
	}

	return false, nil
}
