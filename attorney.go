package jobflow

import (
	"fmt"
	"time"
)

// attorney.go holds pure validator/normalizer functions for user-supplied
// options. Every function here fails synchronously with ErrInvalidArgument
// before any worker goroutine or database call is made.

// publishOptions is the normalized form of every PublishOption.
type publishOptions struct {
	startIn           time.Duration
	expireIn          time.Duration
	retryLimit        int
	singletonKey      string
	singletonSeconds  int64
	singletonNextSlot bool
	singletonOffset   int64

	// retriedNextSlot guards the singletonNextSlot recursion in
	// Queue.doPublish so it runs at most once.
	retriedNextSlot bool
}

func defaultPublishOptions() publishOptions {
	return publishOptions{
		expireIn: DefaultExpireIn,
	}
}

// subscribeOptions is the normalized form of every SubscribeOption.
type subscribeOptions struct {
	teamSize            int
	newJobCheckInterval time.Duration
}

func defaultSubscribeOptions(cfg *Config) subscribeOptions {
	return subscribeOptions{
		teamSize:            1,
		newJobCheckInterval: cfg.NewJobCheckInterval,
	}
}

// applyNewJobCheckInterval accepts either an explicit duration or a second
// count, enforces [minPollInterval, maxPollInterval], and returns the
// canonical duration.
func applyNewJobCheckInterval(interval time.Duration, seconds int) (time.Duration, error) {
	d := interval
	if d <= 0 && seconds > 0 {
		d = time.Duration(seconds) * time.Second
	}
	if d <= 0 {
		return 0, nil // caller keeps its existing default
	}
	if d < minPollInterval || d > maxPollInterval {
		return 0, fmt.Errorf("%w: newJobCheckInterval must be between %s and %s, got %s",
			ErrInvalidArgument, minPollInterval, maxPollInterval, d)
	}
	return d, nil
}

func validateTeamSize(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("%w: teamSize must be >= 1, got %d", ErrInvalidArgument, n)
	}
	return n, nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	return nil
}

func validateRetryLimit(n int) (int, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: retryLimit must be >= 0, got %d", ErrInvalidArgument, n)
	}
	return n, nil
}
