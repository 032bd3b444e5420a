package engine

import "math/big"

// Daily spending limiter. The quota resets lazily: the day bucket is a pure
// function of the injected clock, evaluated only when a spend is attempted.

const secondsPerDay = 86400

// RemainingDailyLimit returns how much value may still move today.
// A nil return means the limit is unconfigured (unlimited).
func (w *Wallet) RemainingDailyLimit() *big.Int {
	if w.dailyLimit.Sign() == 0 {
		return nil
	}
	if w.currentDayBucket() > w.lastDayBucket {
		return new(big.Int).Set(w.dailyLimit)
	}
	remaining := new(big.Int).Sub(w.dailyLimit, w.spentToday)
	if remaining.Sign() < 0 {
		return new(big.Int)
	}
	return remaining
}

// DailyLimit returns the configured limit; zero means unlimited.
func (w *Wallet) DailyLimit() *big.Int { return new(big.Int).Set(w.dailyLimit) }

// checkAndConsume charges value against today's quota, rolling the bucket
// over first when the day has changed. A zero limit consumes nothing.
func (w *Wallet) checkAndConsume(value *big.Int) error {
	if w.dailyLimit.Sign() == 0 {
		return nil
	}
	if value == nil {
		return nil
	}
	if today := w.currentDayBucket(); today > w.lastDayBucket {
		w.spentToday.SetInt64(0)
		w.lastDayBucket = today
	}
	spent := new(big.Int).Add(w.spentToday, value)
	if spent.Cmp(w.dailyLimit) > 0 {
		return ErrDailyLimitExceeded
	}
	w.spentToday = spent
	return nil
}

// setDailyLimit reconfigures the quota. Self-call only. Setting zero
// removes the limit; the running total is kept so tightening the limit
// mid-day still counts earlier spends.
func (w *Wallet) setDailyLimit(limit *big.Int) error {
	if err := w.requireSelf(); err != nil {
		return err
	}
	if limit == nil {
		limit = new(big.Int)
	}
	w.dailyLimit = new(big.Int).Set(limit)
	return nil
}

func (w *Wallet) currentDayBucket() int64 {
	return w.cfg.Clock.Now().Unix() / secondsPerDay
}
