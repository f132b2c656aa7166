package reports

import (
	"sort"

	bookingModel "culinary-booking/models/booking"
	reportTypes "culinary-booking/types/reports"
)

// The aggregation funcs below are pure: they take the bookings already
// filtered to the reporting window and fold them into report rows.
// Revenue counts money actually received (amount_paid), not booked totals.

func buildOverview(bookings []bookingModel.Booking) reportTypes.Overview {
	var o reportTypes.Overview
	o.TotalBookings = len(bookings)
	for _, b := range bookings {
		switch b.Status {
		case bookingModel.BookingStatusPending:
			o.PendingBookings++
		case bookingModel.BookingStatusConfirmed:
			o.ConfirmedBookings++
		case bookingModel.BookingStatusCancelled:
			o.CancelledBookings++
		case bookingModel.BookingStatusCompleted:
			o.CompletedBookings++
		}
		o.TotalRevenue += b.AmountPaid
		o.OutstandingDue += b.AmountDue
		o.RefundedAmount += b.RefundAmount
		o.TotalGuests += b.NumberOfGuests
		switch b.Source {
		case bookingModel.BookingSourceWhatsApp:
			o.WhatsAppBookings++
		case bookingModel.BookingSourceWebsite:
			o.WebsiteBookings++
		}
	}
	return o
}

func buildClientStats(bookings []bookingModel.Booking, limit int) []reportTypes.ClientStat {
	byPhone := make(map[string]*reportTypes.ClientStat)
	for _, b := range bookings {
		key := b.CustomerPhone
		if key == "" {
			key = b.CustomerEmail
		}
		stat, ok := byPhone[key]
		if !ok {
			stat = &reportTypes.ClientStat{
				Name:  b.CustomerName,
				Email: b.CustomerEmail,
				Phone: b.CustomerPhone,
			}
			byPhone[key] = stat
		}
		stat.Bookings++
		stat.TotalSpent += b.AmountPaid
		if b.CreatedAt.After(stat.LastVisit) {
			stat.LastVisit = b.CreatedAt
			stat.Name = b.CustomerName
		}
	}

	stats := make([]reportTypes.ClientStat, 0, len(byPhone))
	for _, s := range byPhone {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].TotalSpent != stats[j].TotalSpent {
			return stats[i].TotalSpent > stats[j].TotalSpent
		}
		return stats[i].Bookings > stats[j].Bookings
	})
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func buildClassStats(bookings []bookingModel.Booking) []reportTypes.ClassStat {
	byClass := make(map[string]*reportTypes.ClassStat)
	for _, b := range bookings {
		stat, ok := byClass[b.ClassID]
		if !ok {
			stat = &reportTypes.ClassStat{
				ClassID: b.ClassID,
				Name:    b.ClassName,
			}
			byClass[b.ClassID] = stat
		}
		stat.Bookings++
		stat.Guests += b.NumberOfGuests
		stat.Revenue += b.AmountPaid
	}

	stats := make([]reportTypes.ClassStat, 0, len(byClass))
	for _, s := range byClass {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Revenue > stats[j].Revenue
	})
	return stats
}

// buildRevenueSeries buckets paid bookings by paid_at day. Windows longer
// than 92 days fall back to monthly buckets to keep the chart readable.
func buildRevenueSeries(bookings []bookingModel.Booking, window reportTypes.Range) []reportTypes.RevenueBucket {
	layout := "2006-01-02"
	if window.End.Sub(window.Start).Hours() > 92*24 {
		layout = "2006-01"
	}

	byDate := make(map[string]*reportTypes.RevenueBucket)
	for _, b := range bookings {
		if b.PaidAt == nil || b.AmountPaid <= 0 {
			continue
		}
		key := b.PaidAt.Format(layout)
		bucket, ok := byDate[key]
		if !ok {
			bucket = &reportTypes.RevenueBucket{Date: key}
			byDate[key] = bucket
		}
		bucket.Revenue += b.AmountPaid
		bucket.Bookings++
	}

	series := make([]reportTypes.RevenueBucket, 0, len(byDate))
	for _, b := range byDate {
		series = append(series, *b)
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].Date < series[j].Date
	})
	return series
}
