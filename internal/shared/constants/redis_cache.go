package constants

import (
	"fmt"
	"time"
)

// Redis key layout: seatkeeper:{module}:{operation}:{identifier}:{params?}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG    = 24 * time.Hour   // site infos rarely change
	TTL_BOOKING_GUARD  = 2 * time.Minute  // auto-booking in flight
	TTL_REALTIME_SHORT = 30 * time.Second // free seat listings
)

// ================== REDIS KEY PREFIXES ==================

const (
	CACHE_PREFIX = "seatkeeper"
)

// ================== SITES ==================

const (
	CACHE_KEY_SITE_INFO = CACHE_PREFIX + ":sites:infos:" // + structure-id
)

const (
	TTL_SITE_INFO = TTL_STATIC_LONG
)

// ================== SEATS ==================

const (
	CACHE_KEY_FREE_SEATS    = CACHE_PREFIX + ":seats:free:"    // + structure-id:date:time
	CACHE_KEY_BOOKING_GUARD = CACHE_PREFIX + ":seats:booking:" // + structure-id:date:start:duration:email
)

const (
	TTL_FREE_SEATS = TTL_REALTIME_SHORT
)

// ================== RATE LIMIT ==================

const (
	RATE_LIMIT_PREFIX = CACHE_PREFIX + ":ratelimit:"
)

// ================== KEY BUILDERS ==================

func BuildSiteInfoKey(structureID string) string {
	return CACHE_KEY_SITE_INFO + structureID
}

func BuildFreeSeatsKey(structureID, date, at string) string {
	return fmt.Sprintf("%s%s:%s:%s", CACHE_KEY_FREE_SEATS, structureID, date, at)
}

func BuildBookingGuardKey(structureID, date, start string, duration int, email string) string {
	return fmt.Sprintf("%s%s:%s:%s:%d:%s", CACHE_KEY_BOOKING_GUARD, structureID, date, start, duration, email)
}

func BuildRateLimitKey(clientIP, limitType string) string {
	return RATE_LIMIT_PREFIX + clientIP + ":" + limitType
}
