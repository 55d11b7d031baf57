package otp

import (
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueGeneratesSixDigitCode(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	pattern := regexp.MustCompile(`^[0-9]{6}$`)
	for i := 0; i < 20; i++ {
		code, err := c.Issue("+15550001")
		require.NoError(t, err)
		assert.Regexp(t, pattern, code)
	}
}

func TestVerifyIsOneShot(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	code, err := c.Issue("+15550001")
	require.NoError(t, err)

	require.NoError(t, c.Verify("+15550001", code))

	// The consumed code cannot be replayed
	assert.ErrorIs(t, c.Verify("+15550001", code), ErrNotFound)
}

func TestVerifyUnknownNumber(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	assert.ErrorIs(t, c.Verify("+19990000", "123456"), ErrNotFound)
}

func TestVerifyMismatchDoesNotConsume(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	code, err := c.Issue("+15550001")
	require.NoError(t, err)

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	assert.ErrorIs(t, c.Verify("+15550001", wrong), ErrMismatch)

	// A correct verify before expiry still succeeds
	assert.NoError(t, c.Verify("+15550001", code))
}

func TestVerifyAfterExpiry(t *testing.T) {
	c := NewCache(10 * time.Millisecond)
	defer c.Stop()

	code, err := c.Issue("+15550001")
	require.NoError(t, err)

	time.Sleep(25 * time.Millisecond)

	// Expired regardless of code correctness, and the entry is purged
	assert.ErrorIs(t, c.Verify("+15550001", code), ErrExpired)
	assert.ErrorIs(t, c.Verify("+15550001", code), ErrNotFound)
}

func TestReissueOverwritesPreviousCode(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	first, err := c.Issue("+15550001")
	require.NoError(t, err)
	second, err := c.Issue("+15550001")
	require.NoError(t, err)

	if first != second {
		assert.ErrorIs(t, c.Verify("+15550001", first), ErrMismatch)
	}
	assert.NoError(t, c.Verify("+15550001", second))
}

func TestConcurrentVerifyConsumesOnce(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	code, err := c.Issue("+15550001")
	require.NoError(t, err)

	const workers = 32
	results := make(chan error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- c.Verify("+15550001", code)
		}()
	}
	wg.Wait()
	close(results)

	var succeeded int
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, ErrNotFound)
		}
	}
	assert.Equal(t, 1, succeeded, "exactly one concurrent verify may succeed")
}

func TestClear(t *testing.T) {
	c := NewCache(DefaultTTL)
	defer c.Stop()

	code, err := c.Issue("+15550001")
	require.NoError(t, err)

	c.Clear()
	assert.ErrorIs(t, c.Verify("+15550001", code), ErrNotFound)
}
