package core

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrSwapchainBooting signals that the frame was skipped because the
	// swapchain is being rebuilt. Recoverable; the caller retries next loop.
	ErrSwapchainBooting = errors.New("swapchain resized or recreated, booting")
	ErrNotInitialized   = errors.New("not initialized")
)
